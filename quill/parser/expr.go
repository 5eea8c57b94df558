package parser

type exprReader func(*Parser) (Node[Expr], *Error, *Error)

var assignOps = map[TokenKind]AssignOp{
	TokenAssign:        AssignPlain,
	TokenPlusAssign:    AssignAdd,
	TokenMinusAssign:   AssignSub,
	TokenStarAssign:    AssignMul,
	TokenSlashAssign:   AssignDiv,
	TokenPercentAssign: AssignRem,
}

var (
	logicalOps     = map[TokenKind]BinaryOp{TokenAnd: BinaryAnd, TokenOr: BinaryOr, TokenXor: BinaryXor}
	equivalenceOps = map[TokenKind]BinaryOp{TokenEQ: BinaryEq, TokenNE: BinaryNotEq}
	comparisonOps  = map[TokenKind]BinaryOp{
		TokenGT: BinaryGreater,
		TokenGE: BinaryGreaterEq,
		TokenLT: BinaryLess,
		TokenLE: BinaryLessEq,
	}
	rangeOps          = map[TokenKind]BinaryOp{TokenDotDot: BinaryRange}
	additionOps       = map[TokenKind]BinaryOp{TokenPlus: BinaryAdd, TokenMinus: BinarySub}
	multiplicationOps = map[TokenKind]BinaryOp{TokenStar: BinaryMul, TokenSlash: BinaryDiv, TokenPercent: BinaryRem}
	asOps             = map[TokenKind]BinaryOp{TokenAs: BinaryAs}
)

var (
	unaryOps    = map[TokenKind]UnaryOp{TokenNot: UnaryNot, TokenMinus: UnaryNeg}
	midUnaryOps = map[TokenKind]UnaryOp{TokenInput: UnaryInput, TokenClone: UnaryClone, TokenMirror: UnaryMirror}
)

// readExpr is the entry to the precedence ladder. Results are memoized by
// position so that the alternatives tried after '[' share their work.
func (p *Parser) readExpr() (Node[Expr], *Error, *Error) {
	key := memoKey{pos: p.pos, depth: p.depth}
	if r, ok := p.memo[key]; ok {
		p.pos = r.end
		return r.expr, r.best, r.err
	}
	expr, best, err := p.readExprUncached()
	p.memo[key] = exprResult{expr: expr, best: best, err: err, end: p.pos}
	return expr, best, err
}

func (p *Parser) readExprUncached() (Node[Expr], *Error, *Error) {
	if err := p.enter(); err != nil {
		return Node[Expr]{}, nil, err
	}
	defer p.leave()
	return p.readAssign()
}

// readAssign parses the logical level once. If an assignment operator
// follows, the parsed expression is reinterpreted as a target; when that or
// the right operand fails, the expression stands alone and the failure is
// kept as the best error.
func (p *Parser) readAssign() (Node[Expr], *Error, *Error) {
	lhs, best, err := p.readLogical()
	if err != nil {
		return lhs, nil, err
	}
	op, ok := assignOps[p.peek().Kind]
	if !ok {
		return lhs, best.Merge(p.probe(Item{Kind: ItemAssignment})), nil
	}
	assign, abest, err := attempt(p, func(t *Parser) (Node[Expr], *Error, *Error) {
		return t.readAssignTail(lhs, op)
	})
	if err != nil {
		return lhs, best.Merge(err), nil
	}
	return assign, best.Merge(abest), nil
}

func (p *Parser) readAssignTail(lhs Node[Expr], op AssignOp) (Node[Expr], *Error, *Error) {
	opTok := p.advance()
	target, ok := IntoLVal(lhs)
	if !ok {
		return Node[Expr]{}, nil, notAssignable(lhs.Span, opTok)
	}
	value, best, err := p.readExpr()
	if err != nil {
		return Node[Expr]{}, nil, err
	}
	span := lhs.Span.Union(opTok.Span).Union(value.Span)
	return NewNode[Expr](&AssignExpr{Op: op, OpSpan: opTok.Span, Target: target, Value: value}, span), best, nil
}

// readBinary folds a left-associative level: operands come from next, and
// the loop stops at the first token that is not one of ops.
func (p *Parser) readBinary(ops map[TokenKind]BinaryOp, next exprReader) (Node[Expr], *Error, *Error) {
	left, best, err := next(p)
	if err != nil {
		return left, nil, err
	}
	for {
		tok := p.peek()
		op, ok := ops[tok.Kind]
		if !ok {
			return left, best, nil
		}
		p.advance()
		right, rbest, err := next(p)
		if err != nil {
			return Node[Expr]{}, nil, err.Merge(best)
		}
		best = best.Merge(rbest)
		span := left.Span.Union(tok.Span).Union(right.Span)
		left = NewNode[Expr](&BinaryExpr{Op: op, OpSpan: tok.Span, Left: left, Right: right}, span)
	}
}

func (p *Parser) readLogical() (Node[Expr], *Error, *Error) {
	return p.readBinary(logicalOps, (*Parser).readEquivalence)
}

func (p *Parser) readEquivalence() (Node[Expr], *Error, *Error) {
	return p.readBinary(equivalenceOps, (*Parser).readComparison)
}

func (p *Parser) readComparison() (Node[Expr], *Error, *Error) {
	return p.readBinary(comparisonOps, (*Parser).readMidUnary)
}

// readMidUnary handles the stackable prefixes input, clone and mirror.
func (p *Parser) readMidUnary() (Node[Expr], *Error, *Error) {
	tok := p.peek()
	op, ok := midUnaryOps[tok.Kind]
	if !ok {
		return p.readRange()
	}
	if err := p.enter(); err != nil {
		return Node[Expr]{}, nil, err
	}
	defer p.leave()
	p.advance()
	operand, best, err := p.readMidUnary()
	if err != nil {
		return Node[Expr]{}, nil, err
	}
	return newUnary(op, tok, operand), best, nil
}

func (p *Parser) readRange() (Node[Expr], *Error, *Error) {
	return p.readBinary(rangeOps, (*Parser).readAddition)
}

func (p *Parser) readAddition() (Node[Expr], *Error, *Error) {
	return p.readBinary(additionOps, (*Parser).readMultiplication)
}

func (p *Parser) readMultiplication() (Node[Expr], *Error, *Error) {
	return p.readBinary(multiplicationOps, (*Parser).readUnary)
}

// readUnary handles '!' and '-'. Their operand is an as-level expression, so
// these prefixes do not stack.
func (p *Parser) readUnary() (Node[Expr], *Error, *Error) {
	tok := p.peek()
	op, ok := unaryOps[tok.Kind]
	if !ok {
		return p.readAs()
	}
	p.advance()
	operand, best, err := p.readAs()
	if err != nil {
		return Node[Expr]{}, nil, err
	}
	return newUnary(op, tok, operand), best, nil
}

func newUnary(op UnaryOp, tok Token, operand Node[Expr]) Node[Expr] {
	span := tok.Span.Union(operand.Span)
	return NewNode[Expr](&UnaryExpr{Op: op, OpSpan: tok.Span, Operand: operand}, span)
}

func (p *Parser) readAs() (Node[Expr], *Error, *Error) {
	return p.readBinary(asOps, (*Parser).readPostfix)
}

// readPostfix applies member access, indexing and calls in any order until
// none of them continues the expression.
func (p *Parser) readPostfix() (Node[Expr], *Error, *Error) {
	expr, best, err := p.readPrimary()
	if err != nil {
		return expr, nil, err
	}
	for {
		var (
			next  Node[Expr]
			nbest *Error
		)
		switch p.peek().Kind {
		case TokenDot:
			next, nbest, err = attempt(p, func(t *Parser) (Node[Expr], *Error, *Error) { return t.readMember(expr) })
		case TokenLBracket:
			next, nbest, err = attempt(p, func(t *Parser) (Node[Expr], *Error, *Error) { return t.readIndex(expr) })
		case TokenLParen:
			next, nbest, err = attempt(p, func(t *Parser) (Node[Expr], *Error, *Error) { return t.readCall(expr) })
		default:
			return expr, best.Merge(p.probe(tokenItem(TokenDot), tokenItem(TokenLBracket), tokenItem(TokenLParen))), nil
		}
		if err != nil {
			return expr, best.Merge(err), nil
		}
		expr = next
		best = best.Merge(nbest)
	}
}

func (p *Parser) readMember(target Node[Expr]) (Node[Expr], *Error, *Error) {
	dot := p.advance()
	name, err := p.readIdent()
	if err != nil {
		return Node[Expr]{}, nil, err
	}
	span := target.Span.Union(dot.Span).Union(name.Span)
	return NewNode[Expr](&DotExpr{Dot: dot.Span, Target: target, Name: name}, span), nil, nil
}

func (p *Parser) readIndex(target Node[Expr]) (Node[Expr], *Error, *Error) {
	open := p.advance()
	index, best, err := p.readExpr()
	if err != nil {
		return Node[Expr]{}, nil, err
	}
	closing, err := p.expect(TokenRBracket)
	if err != nil {
		return Node[Expr]{}, nil, err.Merge(best)
	}
	brackets := open.Span.Union(closing.Span)
	span := target.Span.Union(brackets).Union(index.Span)
	return NewNode[Expr](&IndexExpr{Brackets: brackets, Target: target, Index: index}, span), best, nil
}

func (p *Parser) readCall(callee Node[Expr]) (Node[Expr], *Error, *Error) {
	open := p.advance()
	args, more, best := p.readExprList()
	closing, err := p.expect(TokenRParen, continuation(more)...)
	if err != nil {
		return Node[Expr]{}, nil, err.Merge(best)
	}
	args.Span = args.Span.Union(open.Span).Union(closing.Span)
	span := callee.Span.Union(args.Span)
	return NewNode[Expr](&CallExpr{Callee: callee, Args: args}, span), best, nil
}

func (p *Parser) readPrimary() (Node[Expr], *Error, *Error) {
	tok := p.peek()
	var expr Expr
	switch tok.Kind {
	case TokenNumber:
		// Out of range literals saturate to ±Inf.
		value, _ := parseNumber(tok.Literal)
		expr = &NumberLit{Value: value}
	case TokenString:
		value, err := unquoteString(tok.Literal)
		if err != nil {
			return Node[Expr]{}, nil, expectedAt(levelHard, tok, Item{Kind: ItemPrimary})
		}
		expr = &StringLit{Value: value}
	case TokenChar:
		value, err := unquoteChar(tok.Literal)
		if err != nil {
			return Node[Expr]{}, nil, expectedAt(levelHard, tok, Item{Kind: ItemPrimary})
		}
		expr = &CharLit{Value: value}
	case TokenTrue, TokenFalse:
		expr = &BoolLit{Value: tok.Kind == TokenTrue}
	case TokenNull:
		expr = &NullLit{}
	case TokenIdent:
		expr = &Ident{Name: NewNode(tok.Literal, tok.Span)}
	case TokenLParen:
		return p.readParenExpr()
	case TokenPipe:
		return p.readFnExpr()
	case TokenLBracket:
		return p.readBracketExpr()
	default:
		return Node[Expr]{}, nil, expectedAt(levelHard, tok, Item{Kind: ItemPrimary})
	}
	p.advance()
	return NewNode(expr, tok.Span), nil, nil
}

// readParenExpr keeps the inner expression but widens its span to the
// parentheses.
func (p *Parser) readParenExpr() (Node[Expr], *Error, *Error) {
	open := p.advance()
	inner, best, err := p.readExpr()
	if err != nil {
		return Node[Expr]{}, nil, err
	}
	closing, err := p.expect(TokenRParen)
	if err != nil {
		return Node[Expr]{}, nil, err.Merge(best)
	}
	return NewNode(inner.Value, inner.Span.Union(open.Span).Union(closing.Span)), best, nil
}

func (p *Parser) readFnExpr() (Node[Expr], *Error, *Error) {
	const production = "function"
	open := p.advance()
	args, more, best := p.readArgs()
	bar, err := p.expect(TokenPipe, continuation(more)...)
	if err != nil {
		return Node[Expr]{}, nil, err.Merge(best).WithContext(production)
	}
	args.Span = args.Span.Union(open.Span).Union(bar.Span)
	body, bbest, err := p.readBlock()
	if err != nil {
		return Node[Expr]{}, nil, err.Merge(best).WithContext(production)
	}
	best = best.Merge(bbest)
	fn := &FnExpr{Source: p.src, Def: &FnDef{Args: args, Body: body}}
	return NewNode[Expr](fn, args.Span.Union(body.Span)), best, nil
}

// readArgs reads the parameter names of a function literal. It never
// fails; more reports whether a ',' could continue the list.
func (p *Parser) readArgs() (Node[Args], bool, *Error) {
	var (
		args Args
		span = EmptySpan()
		best *Error
	)
	for {
		tok, ok := p.accept(TokenIdent)
		if !ok {
			return NewNode(args, span), false, best.Merge(p.probe(Item{Kind: ItemIdent}))
		}
		args = append(args, NewNode(tok.Literal, tok.Span))
		span = span.Union(tok.Span)
		comma, ok := p.accept(TokenComma)
		if !ok {
			return NewNode(args, span), true, best.Merge(p.probe(tokenItem(TokenComma)))
		}
		span = span.Union(comma.Span)
	}
}

// readExprList reads comma separated expressions, allowing a trailing
// comma. It never fails; more reports whether a ',' could continue the list.
func (p *Parser) readExprList() (Node[[]Node[Expr]], bool, *Error) {
	var (
		items []Node[Expr]
		span  = EmptySpan()
		best  *Error
	)
	for {
		item, ibest, err := attempt(p, (*Parser).readExpr)
		if err != nil {
			return NewNode(items, span), false, best.Merge(err)
		}
		items = append(items, item)
		span = span.Union(item.Span)
		best = best.Merge(ibest)
		comma, ok := p.accept(TokenComma)
		if !ok {
			return NewNode(items, span), true, best.Merge(p.probe(tokenItem(TokenComma)))
		}
		span = span.Union(comma.Span)
	}
}

func continuation(more bool) []Item {
	if more {
		return []Item{tokenItem(TokenComma)}
	}
	return nil
}

// readBracketExpr resolves '[' by trying a list, then a list repeat, then
// a map. The first to succeed wins; otherwise the best failure of the three
// is reported.
func (p *Parser) readBracketExpr() (Node[Expr], *Error, *Error) {
	var failed *Error
	for _, read := range []exprReader{
		(*Parser).readListExpr,
		(*Parser).readListRepeatExpr,
		(*Parser).readMapExpr,
	} {
		expr, best, err := attempt(p, read)
		if err == nil {
			return expr, best.Merge(failed), nil
		}
		failed = failed.Merge(err)
	}
	return Node[Expr]{}, nil, failed
}

func (p *Parser) readListExpr() (Node[Expr], *Error, *Error) {
	const production = "list"
	open, err := p.expect(TokenLBracket)
	if err != nil {
		return Node[Expr]{}, nil, err.WithContext(production)
	}
	items, more, best := p.readExprList()
	closing, err := p.expect(TokenRBracket, continuation(more)...)
	if err != nil {
		return Node[Expr]{}, nil, err.Merge(best).WithContext(production)
	}
	span := open.Span.Union(items.Span).Union(closing.Span)
	return NewNode[Expr](&ListExpr{Items: items}, span), best, nil
}

func (p *Parser) readListRepeatExpr() (Node[Expr], *Error, *Error) {
	const production = "list repeat"
	open, err := p.expect(TokenLBracket)
	if err != nil {
		return Node[Expr]{}, nil, err.WithContext(production)
	}
	item, best, err := p.readExpr()
	if err != nil {
		return Node[Expr]{}, nil, err.WithContext(production)
	}
	semi, err := p.expect(TokenSemicolon)
	if err != nil {
		return Node[Expr]{}, nil, err.Merge(best).WithContext(production)
	}
	count, cbest, err := p.readExpr()
	if err != nil {
		return Node[Expr]{}, nil, err.Merge(best).WithContext(production)
	}
	best = best.Merge(cbest)
	closing, err := p.expect(TokenRBracket)
	if err != nil {
		return Node[Expr]{}, nil, err.Merge(best).WithContext(production)
	}
	span := open.Span.Union(item.Span).Union(semi.Span).Union(count.Span).Union(closing.Span)
	return NewNode[Expr](&ListRepeatExpr{Item: item, Count: count}, span), best, nil
}

func (p *Parser) readMapExpr() (Node[Expr], *Error, *Error) {
	const production = "map"
	open, err := p.expect(TokenLBracket)
	if err != nil {
		return Node[Expr]{}, nil, err.WithContext(production)
	}
	entries, more, best := p.readMapEntries()
	closing, err := p.expect(TokenRBracket, continuation(more)...)
	if err != nil {
		return Node[Expr]{}, nil, err.Merge(best).WithContext(production)
	}
	span := open.Span.Union(entries.Span).Union(closing.Span)
	return NewNode[Expr](&MapExpr{Entries: entries}, span), best, nil
}

// readMapEntries reads comma separated "key: value" pairs. An entry is
// committed only once its value has been read.
func (p *Parser) readMapEntries() (Node[[]MapEntry], bool, *Error) {
	var (
		entries []MapEntry
		span    = EmptySpan()
		best    *Error
	)
	for {
		entry, ebest, err := attempt(p, (*Parser).readMapEntry)
		if err != nil {
			return NewNode(entries, span), false, best.Merge(err)
		}
		entries = append(entries, entry.Value)
		span = span.Union(entry.Span)
		best = best.Merge(ebest)
		comma, ok := p.accept(TokenComma)
		if !ok {
			return NewNode(entries, span), true, best.Merge(p.probe(tokenItem(TokenComma)))
		}
		span = span.Union(comma.Span)
	}
}

func (p *Parser) readMapEntry() (Node[MapEntry], *Error, *Error) {
	key, best, err := p.readExpr()
	if err != nil {
		return Node[MapEntry]{}, nil, err
	}
	colon, ok := p.accept(TokenColon)
	if !ok {
		return Node[MapEntry]{}, nil, p.probe(tokenItem(TokenColon)).Merge(best)
	}
	value, vbest, err := p.readExpr()
	if err != nil {
		return Node[MapEntry]{}, nil, err.Merge(best)
	}
	span := key.Span.Union(colon.Span).Union(value.Span)
	return NewNode(MapEntry{Key: key, Value: value}, span), best.Merge(vbest), nil
}
