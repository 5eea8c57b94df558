package parser

import (
	"errors"
	"testing"
)

func lexKinds(t *testing.T, input string) []TokenKind {
	t.Helper()
	tokens, err := Tokenize(NewSource("test.ql", input))
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", input, err)
	}
	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"", nil},
		{"x", []TokenKind{TokenIdent}},
		{"var x = 1;", []TokenKind{TokenVar, TokenIdent, TokenAssign, TokenNumber, TokenSemicolon}},
		{"3.5", []TokenKind{TokenNumber}},
		{"1..5", []TokenKind{TokenNumber, TokenDotDot, TokenNumber}},
		{"1e10", []TokenKind{TokenNumber}},
		{`"hello"`, []TokenKind{TokenString}},
		{"'a'", []TokenKind{TokenChar}},
		{"// comment\nprint", []TokenKind{TokenPrint}},
		{"/* block */ print", []TokenKind{TokenPrint}},
		{"+ - * / %", []TokenKind{TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent}},
		{"+= -= *= /= %= =", []TokenKind{TokenPlusAssign, TokenMinusAssign, TokenStarAssign, TokenSlashAssign, TokenPercentAssign, TokenAssign}},
		{"== != < <= > >= !", []TokenKind{TokenEQ, TokenNE, TokenLT, TokenLE, TokenGT, TokenGE, TokenNot}},
		{"( ) [ ] { } | , . .. : ;", []TokenKind{
			TokenLParen, TokenRParen, TokenLBracket, TokenRBracket, TokenLBrace, TokenRBrace,
			TokenPipe, TokenComma, TokenDot, TokenDotDot, TokenColon, TokenSemicolon,
		}},
		{"a.b[0](1, 2)", []TokenKind{
			TokenIdent, TokenDot, TokenIdent, TokenLBracket, TokenNumber, TokenRBracket,
			TokenLParen, TokenNumber, TokenComma, TokenNumber, TokenRParen,
		}},
		{"input clone mirror as", []TokenKind{TokenInput, TokenClone, TokenMirror, TokenAs}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := lexKinds(t, tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %d tokens %v, want %d", len(got), got, len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLexerKeywords(t *testing.T) {
	for word, kind := range keywords {
		t.Run(word, func(t *testing.T) {
			if got := LookupKeyword(word); got != kind {
				t.Errorf("LookupKeyword(%q) = %v, want %v", word, got, kind)
			}
			if kind.String() != word {
				t.Errorf("%v.String() = %q, want %q", kind, kind.String(), word)
			}
		})
	}
	if got := LookupKeyword("printer"); got != TokenIdent {
		t.Errorf("LookupKeyword(printer) = %v, want Identifier", got)
	}
}

func TestLexerPositionTracking(t *testing.T) {
	tokens, err := Tokenize(NewSource("pos.ql", "var x\n  = 'é';"))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		index  int
		line   int
		column int
		offset int
	}{
		{0, 1, 1, 0},
		{1, 1, 5, 4},
		{2, 2, 3, 8},
		{3, 2, 5, 10},
		{4, 2, 8, 14},
	}
	for _, tt := range tests {
		start := tokens[tt.index].Span.Start
		if start.Line != tt.line || start.Column != tt.column || start.Offset != tt.offset {
			t.Errorf("token %d (%s) starts at %d:%d@%d, want %d:%d@%d",
				tt.index, tokens[tt.index], start.Line, start.Column, start.Offset, tt.line, tt.column, tt.offset)
		}
		if start.File != "pos.ql" {
			t.Errorf("token %d: File = %q, want pos.ql", tt.index, start.File)
		}
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
		column  int
	}{
		{`x = "open`, "unterminated string literal", 5},
		{`"bad \q escape"`, "invalid escape in string literal", 1},
		{"'ab'", "malformed character literal", 1},
		{"''", "malformed character literal", 1},
		{"1 /* never closed", "unterminated block comment", 3},
		{"a # b", `unexpected character "#"`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Tokenize(NewSource("", tt.input))
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *LexError, got %v", err)
			}
			if lexErr.Message != tt.message {
				t.Errorf("Message = %q, want %q", lexErr.Message, tt.message)
			}
			if lexErr.Span.Start.Column != tt.column {
				t.Errorf("Column = %d, want %d", lexErr.Span.Start.Column, tt.column)
			}
		})
	}
}

func TestUnquote(t *testing.T) {
	strs := []struct {
		lit  string
		want string
	}{
		{`""`, ""},
		{`"plain"`, "plain"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"q\"q"`, `q"q`},
		{`"nul\0"`, "nul\x00"},
	}
	for _, tt := range strs {
		got, err := unquoteString(tt.lit)
		if err != nil || got != tt.want {
			t.Errorf("unquoteString(%s) = %q, %v; want %q", tt.lit, got, err, tt.want)
		}
	}

	chars := []struct {
		lit  string
		want rune
	}{
		{"'a'", 'a'},
		{`'\n'`, '\n'},
		{`'\''`, '\''},
		{"'é'", 'é'},
	}
	for _, tt := range chars {
		got, err := unquoteChar(tt.lit)
		if err != nil || got != tt.want {
			t.Errorf("unquoteChar(%s) = %q, %v; want %q", tt.lit, got, err, tt.want)
		}
	}
}
