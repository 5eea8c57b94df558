package codebase

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/quill/quill/parser"
)

func TestSpanToRange(t *testing.T) {
	src := parser.NewSource("", "print 1;\n[1, 2\n\n")
	pos := func(line, char uint32) protocol.Position {
		return protocol.Position{Line: line, Character: char}
	}
	tests := []struct {
		name string
		span parser.Span
		want protocol.Range
	}{
		{
			name: "range",
			span: parser.NewSpan(
				parser.Position{Offset: 6, Line: 1, Column: 7},
				parser.Position{Offset: 7, Line: 1, Column: 8},
			),
			want: protocol.Range{Start: pos(0, 6), End: pos(0, 7)},
		},
		{
			name: "end of input",
			span: parser.EOFSpan(),
			want: protocol.Range{Start: pos(1, 5), End: pos(1, 5)},
		},
		{
			name: "empty",
			span: parser.EmptySpan(),
			want: protocol.Range{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spanToRange(tt.span, src); got != tt.want {
				t.Errorf("spanToRange = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProtocolDiagnostic(t *testing.T) {
	c := New("/tmp/quill_test")
	path := "/tmp/quill_test/diag.ql"
	f := c.UpdateFile(path, []byte("print 1"))

	d, ok := c.FileDiagnostic(path)
	if !ok {
		t.Fatal("expected a diagnostic")
	}
	pd := toProtocolDiagnostic(d, f.Source)
	if pd.Message != "expected ';', found end of input (while parsing print statement)" {
		t.Errorf("Message = %q", pd.Message)
	}
	if pd.Severity == nil || *pd.Severity != protocol.DiagnosticSeverityError {
		t.Errorf("Severity = %v", pd.Severity)
	}
	want := protocol.Position{Line: 0, Character: 7}
	if pd.Range.Start != want {
		t.Errorf("Range.Start = %+v, want %+v", pd.Range.Start, want)
	}
}

func TestHoverText(t *testing.T) {
	expr, err := parser.ParseExprSource(parser.NewSource("", "a + 1"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := hoverText(expr), "Binary add\n  Ident\n  Number 1"; got != want {
		t.Errorf("hoverText = %q, want %q", got, want)
	}
}

func TestURIs(t *testing.T) {
	path, err := uriToPath("file:///home/me/my%20code/main.ql")
	if err != nil {
		t.Fatal(err)
	}
	if path != "/home/me/my code/main.ql" {
		t.Errorf("uriToPath = %q", path)
	}
	if got := pathToURI(path); got != "file:///home/me/my%20code/main.ql" {
		t.Errorf("pathToURI = %q", got)
	}
	if got, _ := uriToPath("untitled:1"); got != "untitled:1" {
		t.Errorf("uriToPath(untitled) = %q", got)
	}
}

func TestWholeDocument(t *testing.T) {
	got := wholeDocument(parser.NewSource("", "a;\nbé;"))
	want := protocol.Range{End: protocol.Position{Line: 1, Character: 3}}
	if got != want {
		t.Errorf("wholeDocument = %+v, want %+v", got, want)
	}
}
