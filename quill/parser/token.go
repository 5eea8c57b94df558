package parser

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type spanKind uint8

const (
	spanEmpty spanKind = iota
	spanRange
	spanEOF
)

// Span is a range of source positions, or one of two sentinels: the empty
// span (identity of Union) and the end-of-input span.
type Span struct {
	Start Position
	End   Position
	kind  spanKind
}

func NewSpan(start, end Position) Span {
	return Span{Start: start, End: end, kind: spanRange}
}

func EmptySpan() Span {
	return Span{}
}

func EOFSpan() Span {
	return Span{kind: spanEOF}
}

func (s Span) IsEmpty() bool { return s.kind == spanEmpty }
func (s Span) IsEOF() bool   { return s.kind == spanEOF }

// Union returns the smallest span covering both s and o. The empty span is
// the identity; end of input only survives a union with itself or the empty
// span.
func (s Span) Union(o Span) Span {
	switch {
	case s.kind == spanEmpty:
		return o
	case o.kind == spanEmpty:
		return s
	case s.kind == spanEOF:
		return o
	case o.kind == spanEOF:
		return s
	}
	out := s
	if o.Start.Offset < out.Start.Offset {
		out.Start = o.Start
	}
	if o.End.Offset > out.End.Offset {
		out.End = o.End
	}
	return out
}

// Contains reports whether o lies within s.
func (s Span) Contains(o Span) bool {
	if o.kind == spanEmpty {
		return true
	}
	if s.kind != spanRange || o.kind != spanRange {
		return s.kind == o.kind
	}
	return s.Start.Offset <= o.Start.Offset && o.End.Offset <= s.End.Offset
}

// Pos resolves the start of the span to a 1-based line and column.
func (s Span) Pos() (line, col int, ok bool) {
	if s.kind != spanRange {
		return 0, 0, false
	}
	return s.Start.Line, s.Start.Column, true
}

// Len is the number of characters the span covers in text.
func (s Span) Len(text string) (int, bool) {
	if s.kind != spanRange || s.End.Offset > len(text) || s.Start.Offset > s.End.Offset {
		return 0, false
	}
	return utf8.RuneCountInString(text[s.Start.Offset:s.End.Offset]), true
}

// depth orders spans by how far into the input they start.
func (s Span) depth() int {
	switch s.kind {
	case spanEOF:
		return math.MaxInt
	case spanEmpty:
		return -1
	}
	return s.Start.Offset
}

func (s Span) String() string {
	switch s.kind {
	case spanEmpty:
		return "<empty>"
	case spanEOF:
		return "<end of input>"
	}
	return s.Start.String() + "-" + s.End.String()
}

// Source is the text a token stream was lexed from. It is shared by pointer
// between the parser and every function literal that keeps it alive.
type Source struct {
	Name string
	Text string
}

func NewSource(name, text string) *Source {
	return &Source{Name: name, Text: text}
}

// Line returns the 1-based line n without its terminator.
func (s *Source) Line(n int) (string, bool) {
	if s == nil || n < 1 {
		return "", false
	}
	lines := strings.Split(s.Text, "\n")
	if n > len(lines) {
		return "", false
	}
	return strings.TrimSuffix(lines[n-1], "\r"), true
}

// LastLine returns the last line that is not blank, with its 1-based number.
func (s *Source) LastLine() (string, int, bool) {
	if s == nil {
		return "", 0, false
	}
	lines := strings.Split(s.Text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return strings.TrimSuffix(lines[i], "\r"), i + 1, true
		}
	}
	return "", 0, false
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenComment

	// Literals
	TokenIdent
	TokenNumber
	TokenString
	TokenChar
	TokenTrue
	TokenFalse
	TokenNull

	// Keywords
	TokenAnd
	TokenOr
	TokenXor
	TokenAs
	TokenInput
	TokenClone
	TokenMirror
	TokenPrint
	TokenIf
	TokenElse
	TokenWhile
	TokenFor
	TokenIn
	TokenVar
	TokenReturn

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenLBrace
	TokenRBrace
	TokenPipe
	TokenComma
	TokenDot
	TokenDotDot
	TokenColon
	TokenSemicolon

	// Operators
	TokenNot
	TokenMinus
	TokenPlus
	TokenStar
	TokenSlash
	TokenPercent
	TokenAssign
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
	TokenPercentAssign
	TokenEQ
	TokenNE
	TokenGT
	TokenGE
	TokenLT
	TokenLE
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:           "EOF",
	TokenError:         "Error",
	TokenComment:       "Comment",
	TokenIdent:         "Identifier",
	TokenNumber:        "Number",
	TokenString:        "String",
	TokenChar:          "Char",
	TokenTrue:          "true",
	TokenFalse:         "false",
	TokenNull:          "null",
	TokenAnd:           "and",
	TokenOr:            "or",
	TokenXor:           "xor",
	TokenAs:            "as",
	TokenInput:         "input",
	TokenClone:         "clone",
	TokenMirror:        "mirror",
	TokenPrint:         "print",
	TokenIf:            "if",
	TokenElse:          "else",
	TokenWhile:         "while",
	TokenFor:           "for",
	TokenIn:            "in",
	TokenVar:           "var",
	TokenReturn:        "return",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenPipe:          "|",
	TokenComma:         ",",
	TokenDot:           ".",
	TokenDotDot:        "..",
	TokenColon:         ":",
	TokenSemicolon:     ";",
	TokenNot:           "!",
	TokenMinus:         "-",
	TokenPlus:          "+",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenAssign:        "=",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
	TokenPercentAssign: "%=",
	TokenEQ:            "==",
	TokenNE:            "!=",
	TokenGT:            ">",
	TokenGE:            ">=",
	TokenLT:            "<",
	TokenLE:            "<=",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Span.Start, t.Kind, t.Literal)
}

var keywords = map[string]TokenKind{
	"true":   TokenTrue,
	"false":  TokenFalse,
	"null":   TokenNull,
	"and":    TokenAnd,
	"or":     TokenOr,
	"xor":    TokenXor,
	"as":     TokenAs,
	"input":  TokenInput,
	"clone":  TokenClone,
	"mirror": TokenMirror,
	"print":  TokenPrint,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"for":    TokenFor,
	"in":     TokenIn,
	"var":    TokenVar,
	"return": TokenReturn,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

// LookupToken returns the kind spelled text, for keywords and punctuation.
func LookupToken(text string) (TokenKind, bool) {
	for kind, name := range tokenKindNames {
		if kind >= TokenTrue && name == text {
			return kind, true
		}
	}
	return TokenError, false
}
