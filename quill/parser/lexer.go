package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input  []byte
	file   string
	pos    int
	line   int
	column int
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:  input,
		file:   file,
		pos:    0,
		line:   1,
		column: 1,
	}
}

// LexError reports input the lexer could not turn into a token.
type LexError struct {
	Span    Span
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
}

func (e *LexError) Location() Span { return e.Span }

// Tokenize lexes src completely. Whitespace and comments are dropped and the
// trailing EOF token is not included; the parser synthesizes its own.
func Tokenize(src *Source) ([]Token, error) {
	return tokenize(src.Text, src.Name)
}

func tokenize(text, file string) ([]Token, error) {
	l := NewLexer([]byte(text), file)
	var tokens []Token
	for {
		tok := l.NextToken()
		switch tok.Kind {
		case TokenEOF:
			return tokens, nil
		case TokenError:
			return tokens, &LexError{Span: tok.Span, Message: lexErrorMessage(tok)}
		case tokenSkip:
			continue
		}
		tokens = append(tokens, tok)
	}
}

// Comments returns the line and block comments of src in source order. The
// tokens keep their text in Literal and have kind TokenComment.
func Comments(src *Source) ([]Token, error) {
	l := NewLexer([]byte(src.Text), src.Name)
	var comments []Token
	for {
		tok := l.NextToken()
		switch tok.Kind {
		case TokenEOF:
			return comments, nil
		case TokenError:
			return comments, &LexError{Span: tok.Span, Message: lexErrorMessage(tok)}
		case tokenSkip:
			if strings.HasPrefix(tok.Literal, "//") || strings.HasPrefix(tok.Literal, "/*") {
				tok.Kind = TokenComment
				comments = append(comments, tok)
			}
		}
	}
}

func lexErrorMessage(tok Token) string {
	switch {
	case len(tok.Literal) > 1 && tok.Literal[0] == '"' && tok.Literal[len(tok.Literal)-1] == '"':
		return "invalid escape in string literal"
	case len(tok.Literal) > 0 && tok.Literal[0] == '"':
		return "unterminated string literal"
	case len(tok.Literal) > 0 && tok.Literal[0] == '\'':
		return "malformed character literal"
	case len(tok.Literal) > 1 && tok.Literal[:2] == "/*":
		return "unterminated block comment"
	}
	return fmt.Sprintf("unexpected character %q", tok.Literal)
}

// tokenSkip marks whitespace and comments; it never leaves the lexer.
const tokenSkip TokenKind = -1

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else if ch&0xC0 != 0x80 {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) NextToken() Token {
	startPos := l.Position()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: NewSpan(startPos, startPos)}
	}

	ch := l.peek()

	if ch == '/' && l.peekN(1) == '/' {
		return l.scanLineComment(startPos)
	}
	if ch == '/' && l.peekN(1) == '*' {
		return l.scanBlockComment(startPos)
	}

	if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
		return l.scanWhitespace(startPos)
	}

	if l.isLetter() {
		return l.scanIdentOrKeyword(startPos)
	}

	if isDigit(ch) {
		return l.scanNumber(startPos)
	}

	if ch == '\'' {
		return l.scanCharLiteral(startPos)
	}

	if ch == '"' {
		return l.scanStringLiteral(startPos)
	}

	return l.scanOperator(startPos)
}

func (l *Lexer) scanWhitespace(start Position) Token {
	for {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
		} else {
			break
		}
	}
	return l.token(tokenSkip, start)
}

func (l *Lexer) scanLineComment(start Position) Token {
	l.advanceN(2)
	for l.peek() != 0 && l.peek() != '\n' {
		l.advance()
	}
	return l.token(tokenSkip, start)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	l.advanceN(2)
	for {
		if l.pos >= len(l.input) {
			return l.token(TokenError, start)
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			break
		}
		l.advance()
	}
	return l.token(tokenSkip, start)
}

func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	for l.isLetter() || isDigit(l.peek()) {
		l.advanceRune()
	}
	tok := l.token(TokenIdent, start)
	tok.Kind = LookupKeyword(tok.Literal)
	return tok
}

func (l *Lexer) scanNumber(start Position) Token {
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	// "1..5" is a range, not a float
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.advance()
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	if (l.peek() == 'e' || l.peek() == 'E') &&
		(isDigit(l.peekN(1)) || ((l.peekN(1) == '+' || l.peekN(1) == '-') && isDigit(l.peekN(2)))) {
		l.advanceN(2)
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	return l.token(TokenNumber, start)
}

func (l *Lexer) scanCharLiteral(start Position) Token {
	l.advance()
	for l.peek() != 0 && l.peek() != '\'' && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.peek() != '\'' {
		return l.token(TokenError, start)
	}
	l.advance()
	tok := l.token(TokenChar, start)
	if _, err := unquoteChar(tok.Literal); err != nil {
		tok.Kind = TokenError
	}
	return tok
}

func (l *Lexer) scanStringLiteral(start Position) Token {
	l.advance()
	for l.peek() != 0 && l.peek() != '"' && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.peek() != '"' {
		return l.token(TokenError, start)
	}
	l.advance()
	tok := l.token(TokenString, start)
	if _, err := unquoteString(tok.Literal); err != nil {
		tok.Kind = TokenError
	}
	return tok
}

func (l *Lexer) scanOperator(start Position) Token {
	ch := l.peek()

	switch ch {
	case '(':
		l.advance()
		return l.token(TokenLParen, start)
	case ')':
		l.advance()
		return l.token(TokenRParen, start)
	case '{':
		l.advance()
		return l.token(TokenLBrace, start)
	case '}':
		l.advance()
		return l.token(TokenRBrace, start)
	case '[':
		l.advance()
		return l.token(TokenLBracket, start)
	case ']':
		l.advance()
		return l.token(TokenRBracket, start)
	case ';':
		l.advance()
		return l.token(TokenSemicolon, start)
	case ',':
		l.advance()
		return l.token(TokenComma, start)
	case ':':
		l.advance()
		return l.token(TokenColon, start)
	case '|':
		l.advance()
		return l.token(TokenPipe, start)

	case '.':
		if l.peekN(1) == '.' {
			l.advanceN(2)
			return l.token(TokenDotDot, start)
		}
		l.advance()
		return l.token(TokenDot, start)

	case '=':
		return l.withAssign(start, TokenAssign, TokenEQ)
	case '!':
		return l.withAssign(start, TokenNot, TokenNE)
	case '<':
		return l.withAssign(start, TokenLT, TokenLE)
	case '>':
		return l.withAssign(start, TokenGT, TokenGE)
	case '+':
		return l.withAssign(start, TokenPlus, TokenPlusAssign)
	case '-':
		return l.withAssign(start, TokenMinus, TokenMinusAssign)
	case '*':
		return l.withAssign(start, TokenStar, TokenStarAssign)
	case '/':
		return l.withAssign(start, TokenSlash, TokenSlashAssign)
	case '%':
		return l.withAssign(start, TokenPercent, TokenPercentAssign)
	}

	l.advanceRune()
	return l.token(TokenError, start)
}

// withAssign scans a one-character operator that has a two-character form
// ending in '='.
func (l *Lexer) withAssign(start Position, single, withEq TokenKind) Token {
	if l.peekN(1) == '=' {
		l.advanceN(2)
		return l.token(withEq, start)
	}
	l.advance()
	return l.token(single, start)
}

func (l *Lexer) advanceRune() {
	_, size := utf8.DecodeRune(l.input[l.pos:])
	if size < 1 {
		size = 1
	}
	l.advanceN(size)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    NewSpan(start, end),
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func (l *Lexer) isLetter() bool {
	ch := l.peek()
	if ch >= utf8.RuneSelf {
		r, _ := utf8.DecodeRune(l.input[l.pos:])
		return unicode.IsLetter(r)
	}
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
