package parser

// DefaultMaxDepth bounds how deeply expressions and blocks may nest before
// parsing fails with ErrTooDeep.
const DefaultMaxDepth = 512

type Option func(*Parser)

// WithFile names the file stamped on positions when the parser lexes its
// own input.
func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// Parser is a cursor over an immutable token slice. It is a small value:
// a speculative trial runs on a copy and is committed by assigning the copy
// back, so a failed trial leaves the original untouched.
type Parser struct {
	file     string
	tokens   []Token
	pos      int
	src      *Source
	depth    int
	maxDepth int
	memo     map[memoKey]exprResult
}

type memoKey struct {
	pos   int
	depth int
}

type exprResult struct {
	expr Node[Expr]
	best *Error
	err  *Error
	end  int
}

func newParser(tokens []Token, src *Source, opts []Option) *Parser {
	p := &Parser{
		tokens:   tokens,
		src:      src,
		maxDepth: DefaultMaxDepth,
		memo:     make(map[memoKey]exprResult),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads a whole program. Every token must be consumed.
func Parse(tokens []Token, src *Source, opts ...Option) (*Program, error) {
	p := newParser(tokens, src, opts)
	stmts, best := p.readStmts()
	if err := p.expectEnd(best); err != nil {
		return nil, err
	}
	return &Program{Source: src, Stmts: stmts}, nil
}

// ParseExpr reads a single expression. Empty input yields NoneExpr.
func ParseExpr(tokens []Token, src *Source, opts ...Option) (Node[Expr], error) {
	p := newParser(tokens, src, opts)
	if p.peek().Kind == TokenEOF {
		return NewNode[Expr](&NoneExpr{}, EmptySpan()), nil
	}
	expr, best, err := p.readExpr()
	if err != nil {
		return Node[Expr]{}, err.WithContext("expression")
	}
	if err := p.expectEnd(best); err != nil {
		return Node[Expr]{}, err
	}
	return expr, nil
}

// ParseSource lexes src and parses the result as a program.
func ParseSource(src *Source, opts ...Option) (*Program, error) {
	tokens, err := lex(src, opts)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, src, opts...)
}

// ParseExprSource lexes src and parses the result as one expression.
func ParseExprSource(src *Source, opts ...Option) (Node[Expr], error) {
	tokens, err := lex(src, opts)
	if err != nil {
		return Node[Expr]{}, err
	}
	return ParseExpr(tokens, src, opts...)
}

func lex(src *Source, opts []Option) ([]Token, error) {
	p := newParser(nil, src, opts)
	file := src.Name
	if p.file != "" {
		file = p.file
	}
	return tokenize(src.Text, file)
}

func (p *Parser) expectEnd(best *Error) error {
	tok := p.peek()
	if tok.Kind == TokenEOF {
		return nil
	}
	return expectedAt(levelHard, tok, Item{Kind: ItemEnd}).Merge(best)
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokenEOF, Span: EOFSpan()}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

// accept consumes the next token if it has the given kind.
func (p *Parser) accept(kind TokenKind) (Token, bool) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, false
	}
	p.advance()
	return tok, true
}

// expect consumes a token that a committed production requires. The extra
// items name whatever else could have appeared at this point.
func (p *Parser) expect(kind TokenKind, also ...Item) (Token, *Error) {
	if tok, ok := p.accept(kind); ok {
		return tok, nil
	}
	return Token{}, expectedAt(levelHard, p.peek(), append([]Item{tokenItem(kind)}, also...)...)
}

// probe records that one of items could have appeared here but did not.
func (p *Parser) probe(items ...Item) *Error {
	return expectedAt(levelSoft, p.peek(), items...)
}

// leading consumes the keyword that selects a statement alternative.
// Not finding it is only a soft failure.
func (p *Parser) leading(kind TokenKind, production string) (Token, *Error) {
	if tok, ok := p.accept(kind); ok {
		return tok, nil
	}
	return Token{}, p.probe(tokenItem(kind)).WithContext(production)
}

func (p *Parser) readIdent() (Node[string], *Error) {
	tok, ok := p.accept(TokenIdent)
	if !ok {
		return Node[string]{}, expectedAt(levelHard, tok, Item{Kind: ItemIdent})
	}
	return NewNode(tok.Literal, tok.Span), nil
}

func (p *Parser) enter() *Error {
	if p.depth >= p.maxDepth {
		return tooDeep(p.peek(), p.maxDepth)
	}
	p.depth++
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// attempt runs read on a copy of p and commits the copy only on success.
func attempt[T any](p *Parser, read func(*Parser) (T, *Error, *Error)) (T, *Error, *Error) {
	trial := *p
	value, best, err := read(&trial)
	if err == nil {
		*p = trial
	}
	return value, best, err
}
