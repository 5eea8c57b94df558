package format

import (
	"math"

	"github.com/dhamidi/quill/quill/parser"
)

// printStmts writes stmts one per line. Comments trailing a statement stay
// on its line unless they start at or after limit.
func (p *Printer) printStmts(stmts []parser.Node[parser.Stmt], limit int) {
	for i, stmt := range stmts {
		next := limit
		if i+1 < len(stmts) && hasPosition(stmts[i+1].Span) {
			next = stmts[i+1].Span.Start.Offset
		}
		if !hasPosition(stmt.Span) {
			p.printStmt(stmt)
			p.newline()
			continue
		}
		p.emitCommentsBefore(stmt.Span.Start.Offset)
		p.separate(stmt.Span.Start.Line)
		p.printStmt(stmt)
		p.endLine(stmt.Span.End.Line, next)
	}
}

func hasPosition(span parser.Span) bool {
	_, _, ok := span.Pos()
	return ok
}

func (p *Printer) printStmt(node parser.Node[parser.Stmt]) {
	p.writeIndent()
	switch s := node.Value.(type) {
	case *parser.ExprStmt:
		p.printExpr(s.Expr)
		p.write(";")
	case *parser.PrintStmt:
		p.write("print ")
		p.printExpr(s.Expr)
		p.write(";")
	case *parser.ReturnStmt:
		p.write("return ")
		p.printExpr(s.Value)
		p.write(";")
	case *parser.DeclStmt:
		p.write("var ")
		p.write(s.Name.Value)
		p.write(" = ")
		p.printExpr(s.Value)
		p.write(";")
	case *parser.IfStmt:
		p.write("if ")
		p.printExpr(s.Cond)
		p.write(" ")
		p.printBlock(s.Then)
	case *parser.IfElseStmt:
		p.write("if ")
		p.printExpr(s.Cond)
		p.write(" ")
		p.printBlock(s.Then)
		p.write(" else ")
		p.printBlock(s.Else)
	case *parser.WhileStmt:
		p.write("while ")
		p.printExpr(s.Cond)
		p.write(" ")
		p.printBlock(s.Body)
	case *parser.ForStmt:
		p.write("for ")
		p.write(s.Var.Value)
		p.write(" in ")
		p.printExpr(s.Iter)
		p.write(" ")
		p.printBlock(s.Body)
	}
}

// printBlock writes "{", the statements one level deeper, and "}" without a
// trailing newline so that callers can continue the line.
func (p *Printer) printBlock(node parser.Node[parser.Block]) {
	if len(node.Value) == 0 && !p.hasCommentsWithin(node.Span) {
		p.write("{}")
		return
	}
	p.write("{")
	p.newline()
	p.indent++
	p.lastLine = 0
	if hasPosition(node.Span) {
		p.printStmts(node.Value, node.Span.End.Offset-1)
		p.emitCommentsBefore(node.Span.End.Offset - 1)
	} else {
		p.printStmts(node.Value, math.MaxInt)
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *Printer) hasCommentsWithin(span parser.Span) bool {
	if p.commentIndex >= len(p.comments) || !hasPosition(span) {
		return false
	}
	c := p.comments[p.commentIndex]
	return c.Span.Start.Offset > span.Start.Offset && c.Span.End.Offset < span.End.Offset
}
