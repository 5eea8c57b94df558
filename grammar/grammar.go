// Package grammar holds the reference EBNF grammar of quill and tools that
// check source text and the hand-written parser against it.
package grammar

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/quill/quill/parser"
)

// Filename is the name the embedded grammar reports in positions.
const Filename = "quill.ebnf"

// Start is the production a whole source file derives from.
const Start = "Program"

//go:embed quill.ebnf
var source []byte

// Source returns the text of the embedded grammar.
func Source() []byte {
	return bytes.Clone(source)
}

// Terminals maps the lexical productions that stand for a whole token to the
// token kind the lexer produces for them.
func Terminals() map[string]parser.TokenKind {
	return map[string]parser.TokenKind{
		"identifier": parser.TokenIdent,
		"number":     parser.TokenNumber,
		"string_lit": parser.TokenString,
		"char_lit":   parser.TokenChar,
	}
}

// Load parses the embedded grammar and verifies it from Start.
func Load() (ebnf.Grammar, error) {
	return parseAndVerify(Filename, source, Start)
}

func parseAndVerify(name string, src []byte, start string) (ebnf.Grammar, error) {
	g, err := ebnf.Parse(name, bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if err := ebnf.Verify(g, start); err != nil {
		return nil, fmt.Errorf("verify %s: %w", name, err)
	}
	return g, nil
}

var (
	loadOnce   sync.Once
	recognizer *Recognizer
	loadErr    error
)

// Quill returns a recognizer for the embedded grammar, built on first use.
func Quill() (*Recognizer, error) {
	loadOnce.Do(func() {
		var g ebnf.Grammar
		g, loadErr = Load()
		if loadErr != nil {
			return
		}
		recognizer, loadErr = NewRecognizer(g, Start, Terminals())
	})
	return recognizer, loadErr
}

// Check lexes src and reports whether its tokens derive Program.
func Check(src *parser.Source) error {
	r, err := Quill()
	if err != nil {
		return err
	}
	tokens, err := parser.Tokenize(src)
	if err != nil {
		return err
	}
	return r.Recognize(tokens)
}
