package format

import (
	"bytes"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/dhamidi/quill/quill/parser"
)

// Printer writes a program back out as source text in canonical layout:
// one statement per line, four space indentation, single blank lines kept.
// Comments are carried over in source order.
type Printer struct {
	w            io.Writer
	comments     []parser.Token
	commentIndex int
	indent       int
	indentStr    string
	atLineStart  bool
	lastLine     int
	err          error
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:           w,
		indentStr:   "    ",
		atLineStart: true,
	}
}

func (p *Printer) Print(prog *parser.Program, comments []parser.Token) error {
	p.comments = append([]parser.Token(nil), comments...)
	sort.Slice(p.comments, func(i, j int) bool {
		return p.comments[i].Span.Start.Offset < p.comments[j].Span.Start.Offset
	})
	p.commentIndex = 0
	p.lastLine = 0

	p.printStmts(prog.Stmts, math.MaxInt)
	p.emitRemainingComments()
	return p.err
}

// PrettyPrint parses src and returns it reformatted.
func PrettyPrint(src *parser.Source, opts ...parser.Option) ([]byte, error) {
	prog, err := parser.ParseSource(src, opts...)
	if err != nil {
		return nil, err
	}
	comments, err := parser.Comments(src)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := NewPrinter(&buf).Print(prog, comments); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Printer) writeIndent() {
	if !p.atLineStart {
		return
	}
	for i := 0; i < p.indent; i++ {
		p.write(p.indentStr)
	}
	p.atLineStart = false
}

func (p *Printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *Printer) newline() {
	p.write("\n")
	p.atLineStart = true
}

// separate emits a blank line when the source had one or more before line.
func (p *Printer) separate(line int) {
	if p.lastLine > 0 && line > p.lastLine+1 {
		p.newline()
	}
}

func (p *Printer) emitComment(c parser.Token) {
	p.separate(c.Span.Start.Line)
	p.writeIndent()
	p.write(c.Literal)
	p.newline()
	p.lastLine = c.Span.End.Line
}

// emitCommentsBefore writes every pending comment that starts before offset.
func (p *Printer) emitCommentsBefore(offset int) {
	for p.commentIndex < len(p.comments) && p.comments[p.commentIndex].Span.Start.Offset < offset {
		p.emitComment(p.comments[p.commentIndex])
		p.commentIndex++
	}
}

// endLine finishes a statement that ended on line, keeping comments that
// trail it on the same line and start before limit.
func (p *Printer) endLine(line, limit int) {
	for p.commentIndex < len(p.comments) {
		c := p.comments[p.commentIndex]
		if c.Span.Start.Line != line || c.Span.Start.Offset >= limit || strings.Contains(c.Literal, "\n") {
			break
		}
		p.write(" ")
		p.write(c.Literal)
		p.commentIndex++
	}
	p.newline()
	p.lastLine = line
}

func (p *Printer) emitRemainingComments() {
	for p.commentIndex < len(p.comments) {
		p.emitComment(p.comments[p.commentIndex])
		p.commentIndex++
	}
}
