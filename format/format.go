package format

import (
	"encoding"
	"fmt"

	"github.com/dhamidi/quill/quill/parser"
)

// Encoder writes a parsed tree in one output format. MarshalText renders
// the tree given to the most recent call to Encode.
type Encoder interface {
	encoding.TextMarshaler
	Encode(node parser.Syntax) error
}

var (
	_ Encoder = (*ASTJSONEncoder)(nil)
	_ Encoder = (*TreeEncoder)(nil)
)

func spanLabel(span parser.Span) string {
	switch {
	case span.IsEOF():
		return "<end of input>"
	case span.IsEmpty():
		return "<empty>"
	}
	return fmt.Sprintf("%d:%d-%d:%d", span.Start.Line, span.Start.Column, span.End.Line, span.End.Column)
}
