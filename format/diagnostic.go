package format

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/quill/quill/parser"
)

// DiagnosticEncoder renders a parse or lex error for a terminal: a header
// with the message, one line per production the error surfaced through,
// and the offending source line with carets under the reported span.
type DiagnosticEncoder struct {
	w   io.Writer
	src *parser.Source
	err error
}

func NewDiagnosticEncoder(w io.Writer, src *parser.Source) *DiagnosticEncoder {
	return &DiagnosticEncoder{w: w, src: src}
}

func (e *DiagnosticEncoder) Encode(err error) error {
	e.err = err
	text, merr := e.MarshalText()
	if merr != nil {
		return merr
	}
	_, werr := e.w.Write(text)
	return werr
}

func (e *DiagnosticEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	if e.err == nil {
		return nil, nil
	}

	var (
		parseErr *parser.Error
		lexErr   *parser.LexError
	)
	switch {
	case errors.As(e.err, &parseErr):
		e.writeHeader(&sb, parseErr.Message())
		for _, ctx := range parseErr.Context {
			fmt.Fprintf(&sb, "  while parsing %s\n", ctx)
		}
		e.writeSnippet(&sb, parseErr.Span)
	case errors.As(e.err, &lexErr):
		e.writeHeader(&sb, lexErr.Message)
		e.writeSnippet(&sb, lexErr.Span)
	default:
		e.writeHeader(&sb, e.err.Error())
	}
	return []byte(sb.String()), nil
}

func (e *DiagnosticEncoder) writeHeader(sb *strings.Builder, msg string) {
	if e.src != nil && e.src.Name != "" {
		fmt.Fprintf(sb, "error in %s: %s\n", e.src.Name, msg)
		return
	}
	fmt.Fprintf(sb, "error: %s\n", msg)
}

// writeSnippet prints "|line:col| text" followed by a caret line. An end of
// input span points one column past the last non-blank line.
func (e *DiagnosticEncoder) writeSnippet(sb *strings.Builder, span parser.Span) {
	line, col, ok := span.Pos()
	if !ok {
		text, n, found := e.src.LastLine()
		if !found {
			sb.WriteString("(no source available)\n")
			return
		}
		line, col = n, utf8.RuneCountInString(text)+1
		writeCaret(sb, line, col, text, 1)
		return
	}

	text, found := e.src.Line(line)
	if !found {
		fmt.Fprintf(sb, "|%d:%d| (no source available)\n", line, col)
		return
	}
	width := 1
	if n, ok := span.Len(e.src.Text); ok && n > 0 {
		width = n
	}
	// A span running past its first line is underlined to the line's end.
	if rest := utf8.RuneCountInString(text) - col + 1; width > rest && rest > 0 {
		width = rest
	}
	writeCaret(sb, line, col, text, width)
}

func writeCaret(sb *strings.Builder, line, col int, text string, width int) {
	prefix := fmt.Sprintf("|%d:%d| ", line, col)
	fmt.Fprintf(sb, "%s%s\n", prefix, text)
	sb.WriteString(strings.Repeat(" ", len(prefix)))
	// Tabs are kept so the carets line up with the text above them.
	i := 1
	for _, r := range text {
		if i >= col {
			break
		}
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteRune(' ')
		}
		i++
	}
	if i < col {
		sb.WriteString(strings.Repeat(" ", col-i))
	}
	fmt.Fprintf(sb, "%s\n", strings.Repeat("^", width))
}
