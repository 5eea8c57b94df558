package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/quill/quill/parser"
)

type ASTJSONEncoder struct {
	w    io.Writer
	node parser.Syntax
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(node parser.Syntax) error {
	e.node = node
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *ASTJSONEncoder) MarshalText() ([]byte, error) {
	if e.node == nil {
		return []byte("null"), nil
	}
	return json.MarshalIndent(NodeToJSON(e.node), "", "  ")
}

// ASTNode is the JSON shape of one syntax node.
type ASTNode struct {
	Kind     string     `json:"kind"`
	Label    string     `json:"label"`
	Span     *ASTSpan   `json:"span,omitempty"`
	EOF      bool       `json:"eof,omitempty"`
	Children []*ASTNode `json:"children,omitempty"`
}

type ASTSpan struct {
	Start ASTPosition `json:"start"`
	End   ASTPosition `json:"end"`
}

type ASTPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

func NodeToJSON(n parser.Syntax) *ASTNode {
	jn := &ASTNode{
		Kind:  n.NodeKind().String(),
		Label: parser.Describe(n),
	}

	span := n.SourceSpan()
	if _, _, ok := span.Pos(); ok {
		jn.Span = &ASTSpan{
			Start: ASTPosition{Line: span.Start.Line, Column: span.Start.Column, Offset: span.Start.Offset},
			End:   ASTPosition{Line: span.End.Line, Column: span.End.Column, Offset: span.End.Offset},
		}
	}
	jn.EOF = span.IsEOF()

	for _, child := range parser.Children(n) {
		jn.Children = append(jn.Children, NodeToJSON(child))
	}
	return jn
}
