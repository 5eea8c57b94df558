package parser

type stmtReader func(*Parser) (Node[Stmt], *Error, *Error)

// readStmt tries each statement form in turn. When every form fails at the
// first token, the failure is reported as a missing statement rather than
// as whichever form happened to rank highest.
func (p *Parser) readStmt() (Node[Stmt], *Error, *Error) {
	start := p.peek()
	var failed *Error
	for _, read := range []stmtReader{
		(*Parser).readExprStmt,
		(*Parser).readPrintStmt,
		(*Parser).readIfStmt,
		(*Parser).readWhileStmt,
		(*Parser).readForStmt,
		(*Parser).readDeclStmt,
		(*Parser).readReturnStmt,
	} {
		stmt, best, err := attempt(p, read)
		if err == nil {
			return stmt, best.Merge(failed), nil
		}
		failed = failed.Merge(err)
	}
	missing := expectedAt(levelHard, start, Item{Kind: ItemStmt})
	if Rank(failed, missing) > 0 {
		return Node[Stmt]{}, nil, failed
	}
	return Node[Stmt]{}, nil, missing
}

// readStmts reads statements until one fails to parse. It never fails
// itself; the caller decides what must follow.
func (p *Parser) readStmts() ([]Node[Stmt], *Error) {
	var (
		stmts []Node[Stmt]
		best  *Error
	)
	for {
		stmt, sbest, err := attempt(p, (*Parser).readStmt)
		if err != nil {
			return stmts, best.Merge(err)
		}
		stmts = append(stmts, stmt)
		best = best.Merge(sbest)
	}
}

func (p *Parser) readBlock() (Node[Block], *Error, *Error) {
	open, err := p.expect(TokenLBrace)
	if err != nil {
		return Node[Block]{}, nil, err
	}
	if err := p.enter(); err != nil {
		return Node[Block]{}, nil, err
	}
	defer p.leave()
	stmts, best := p.readStmts()
	closing, err := p.expect(TokenRBrace)
	if err != nil {
		return Node[Block]{}, nil, err.Merge(best)
	}
	span := open.Span.Union(closing.Span)
	for _, stmt := range stmts {
		span = span.Union(stmt.Span)
	}
	return NewNode(Block(stmts), span), best, nil
}

func (p *Parser) readExprStmt() (Node[Stmt], *Error, *Error) {
	const production = "expression statement"
	expr, best, err := p.readExpr()
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	semi, err := p.expect(TokenSemicolon)
	if err != nil {
		return Node[Stmt]{}, nil, err.Merge(best).WithContext(production)
	}
	return NewNode[Stmt](&ExprStmt{Expr: expr}, expr.Span.Union(semi.Span)), best, nil
}

func (p *Parser) readPrintStmt() (Node[Stmt], *Error, *Error) {
	const production = "print statement"
	kw, err := p.leading(TokenPrint, production)
	if err != nil {
		return Node[Stmt]{}, nil, err
	}
	expr, semi, best, err := p.readExprThenSemicolon()
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	span := kw.Span.Union(expr.Span).Union(semi.Span)
	return NewNode[Stmt](&PrintStmt{Expr: expr}, span), best, nil
}

func (p *Parser) readReturnStmt() (Node[Stmt], *Error, *Error) {
	const production = "return statement"
	kw, err := p.leading(TokenReturn, production)
	if err != nil {
		return Node[Stmt]{}, nil, err
	}
	expr, semi, best, err := p.readExprThenSemicolon()
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	span := kw.Span.Union(expr.Span).Union(semi.Span)
	return NewNode[Stmt](&ReturnStmt{Value: expr}, span), best, nil
}

func (p *Parser) readExprThenSemicolon() (Node[Expr], Token, *Error, *Error) {
	expr, best, err := p.readExpr()
	if err != nil {
		return Node[Expr]{}, Token{}, nil, err
	}
	semi, err := p.expect(TokenSemicolon)
	if err != nil {
		return Node[Expr]{}, Token{}, nil, err.Merge(best)
	}
	return expr, semi, best, nil
}

// readIfStmt reads "if cond { ... }" with an optional else branch. A
// missing else is only recorded as a soft expectation.
func (p *Parser) readIfStmt() (Node[Stmt], *Error, *Error) {
	const production = "if-else statement"
	kw, err := p.leading(TokenIf, production)
	if err != nil {
		return Node[Stmt]{}, nil, err
	}
	cond, body, best, err := p.readCondBlock()
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	span := kw.Span.Union(cond.Span).Union(body.Span)
	elseTok, ok := p.accept(TokenElse)
	if !ok {
		best = best.Merge(p.probe(tokenItem(TokenElse)).WithContext(production))
		return NewNode[Stmt](&IfStmt{Cond: cond, Then: body}, span), best, nil
	}
	alt, abest, err := p.readBlock()
	if err != nil {
		return Node[Stmt]{}, nil, err.Merge(best).WithContext(production)
	}
	best = best.Merge(abest)
	span = span.Union(elseTok.Span).Union(alt.Span)
	return NewNode[Stmt](&IfElseStmt{Cond: cond, Then: body, Else: alt}, span), best, nil
}

func (p *Parser) readWhileStmt() (Node[Stmt], *Error, *Error) {
	const production = "while statement"
	kw, err := p.leading(TokenWhile, production)
	if err != nil {
		return Node[Stmt]{}, nil, err
	}
	cond, body, best, err := p.readCondBlock()
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	span := kw.Span.Union(cond.Span).Union(body.Span)
	return NewNode[Stmt](&WhileStmt{Cond: cond, Body: body}, span), best, nil
}

func (p *Parser) readCondBlock() (Node[Expr], Node[Block], *Error, *Error) {
	cond, best, err := p.readExpr()
	if err != nil {
		return Node[Expr]{}, Node[Block]{}, nil, err
	}
	body, bbest, err := p.readBlock()
	if err != nil {
		return Node[Expr]{}, Node[Block]{}, nil, err.Merge(best)
	}
	return cond, body, best.Merge(bbest), nil
}

func (p *Parser) readForStmt() (Node[Stmt], *Error, *Error) {
	const production = "for statement"
	kw, err := p.leading(TokenFor, production)
	if err != nil {
		return Node[Stmt]{}, nil, err
	}
	name, err := p.readIdent()
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	in, err := p.expect(TokenIn)
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	iter, body, best, err := p.readCondBlock()
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	span := kw.Span.Union(name.Span).Union(in.Span).Union(iter.Span).Union(body.Span)
	return NewNode[Stmt](&ForStmt{Var: name, Iter: iter, Body: body}, span), best, nil
}

func (p *Parser) readDeclStmt() (Node[Stmt], *Error, *Error) {
	const production = "variable declaration"
	kw, err := p.leading(TokenVar, production)
	if err != nil {
		return Node[Stmt]{}, nil, err
	}
	name, err := p.readIdent()
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	assign, err := p.expect(TokenAssign)
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	value, semi, best, err := p.readExprThenSemicolon()
	if err != nil {
		return Node[Stmt]{}, nil, err.WithContext(production)
	}
	span := kw.Span.Union(name.Span).Union(assign.Span).Union(value.Span).Union(semi.Span)
	return NewNode[Stmt](&DeclStmt{Name: name, Value: value}, span), best, nil
}
