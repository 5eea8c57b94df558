package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/quill/quill/parser"
)

// LineEncoder writes a token stream one token per line, as tab separated
// span, kind and quoted literal.
type LineEncoder struct {
	w      io.Writer
	tokens []parser.Token
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(tokens []parser.Token) error {
	e.tokens = tokens
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, tok := range e.tokens {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", spanLabel(tok.Span), tok.Kind, strconv.Quote(tok.Literal))
	}
	return []byte(sb.String()), nil
}
