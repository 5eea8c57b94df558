package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/quill/quill/parser"
)

// TreeEncoder prints one node per line, indented by depth, with the span
// of each node.
type TreeEncoder struct {
	w      io.Writer
	node   parser.Syntax
	indent string
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w, indent: "  "}
}

func (e *TreeEncoder) Encode(node parser.Syntax) error {
	e.node = node
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	if e.node != nil {
		e.writeNode(&sb, e.node, 0)
	}
	return []byte(sb.String()), nil
}

func (e *TreeEncoder) writeNode(sb *strings.Builder, n parser.Syntax, depth int) {
	fmt.Fprintf(sb, "%s%s %s\n", strings.Repeat(e.indent, depth), parser.Describe(n), spanLabel(n.SourceSpan()))
	for _, child := range parser.Children(n) {
		e.writeNode(sb, child, depth+1)
	}
}
