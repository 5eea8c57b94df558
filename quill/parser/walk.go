package parser

import (
	"fmt"
	"strconv"
)

// Syntax is any node of a parsed tree: a Node[T] of one of the AST payload
// types, or a *Program.
type Syntax interface {
	SourceSpan() Span
	NodeKind() NodeKind
}

func (n Node[T]) SourceSpan() Span { return n.Span }

func (n Node[T]) NodeKind() NodeKind {
	switch v := any(n.Value).(type) {
	case Expr:
		if v != nil {
			return v.Kind()
		}
	case Stmt:
		if v != nil {
			return v.Kind()
		}
	case LVal:
		if v != nil {
			return v.Kind()
		}
	case string:
		return KindName
	case []Node[Expr]:
		return KindItems
	case []MapEntry:
		return KindEntries
	case Args:
		return KindArgs
	case Block:
		return KindBlock
	}
	return KindInvalid
}

func (p *Program) SourceSpan() Span {
	span := EmptySpan()
	for _, stmt := range p.Stmts {
		span = span.Union(stmt.Span)
	}
	return span
}

func (p *Program) NodeKind() NodeKind { return KindProgram }

// Children returns the direct sub-nodes of s in source order.
func Children(s Syntax) []Syntax {
	switch n := s.(type) {
	case *Program:
		out := make([]Syntax, len(n.Stmts))
		for i, stmt := range n.Stmts {
			out[i] = stmt
		}
		return out
	case Node[Expr]:
		return exprChildren(n.Value)
	case Node[Stmt]:
		return stmtChildren(n.Value)
	case Node[LVal]:
		switch v := n.Value.(type) {
		case *LocalTarget:
			return []Syntax{v.Name}
		case *IndexTarget:
			return []Syntax{v.Target, v.Index}
		}
	case Node[[]Node[Expr]]:
		out := make([]Syntax, len(n.Value))
		for i, item := range n.Value {
			out[i] = item
		}
		return out
	case Node[[]MapEntry]:
		out := make([]Syntax, 0, 2*len(n.Value))
		for _, entry := range n.Value {
			out = append(out, entry.Key, entry.Value)
		}
		return out
	case Node[Args]:
		out := make([]Syntax, len(n.Value))
		for i, arg := range n.Value {
			out[i] = arg
		}
		return out
	case Node[Block]:
		out := make([]Syntax, len(n.Value))
		for i, stmt := range n.Value {
			out[i] = stmt
		}
		return out
	}
	return nil
}

func exprChildren(e Expr) []Syntax {
	switch v := e.(type) {
	case *Ident:
		return []Syntax{v.Name}
	case *ListExpr:
		return []Syntax{v.Items}
	case *ListRepeatExpr:
		return []Syntax{v.Item, v.Count}
	case *MapExpr:
		return []Syntax{v.Entries}
	case *CallExpr:
		return []Syntax{v.Callee, v.Args}
	case *DotExpr:
		return []Syntax{v.Target, v.Name}
	case *IndexExpr:
		return []Syntax{v.Target, v.Index}
	case *UnaryExpr:
		return []Syntax{v.Operand}
	case *BinaryExpr:
		return []Syntax{v.Left, v.Right}
	case *AssignExpr:
		return []Syntax{v.Target, v.Value}
	case *FnExpr:
		return []Syntax{v.Def.Args, v.Def.Body}
	}
	return nil
}

func stmtChildren(s Stmt) []Syntax {
	switch v := s.(type) {
	case *ExprStmt:
		return []Syntax{v.Expr}
	case *PrintStmt:
		return []Syntax{v.Expr}
	case *IfStmt:
		return []Syntax{v.Cond, v.Then}
	case *IfElseStmt:
		return []Syntax{v.Cond, v.Then, v.Else}
	case *WhileStmt:
		return []Syntax{v.Cond, v.Body}
	case *ForStmt:
		return []Syntax{v.Var, v.Iter, v.Body}
	case *DeclStmt:
		return []Syntax{v.Name, v.Value}
	case *ReturnStmt:
		return []Syntax{v.Value}
	}
	return nil
}

// Walk visits s and its descendants depth first. Returning false from fn
// skips the children of the node just visited.
func Walk(s Syntax, fn func(Syntax) bool) {
	if !fn(s) {
		return
	}
	for _, child := range Children(s) {
		Walk(child, fn)
	}
}

// NodeAt returns the innermost node whose span contains offset, or nil.
func NodeAt(root Syntax, offset int) Syntax {
	var found Syntax
	Walk(root, func(s Syntax) bool {
		span := s.SourceSpan()
		if span.IsEmpty() || span.IsEOF() {
			return true
		}
		if offset < span.Start.Offset || offset >= span.End.Offset {
			return false
		}
		found = s
		return true
	})
	return found
}

// Describe labels a node with its kind and, for leaves and operators, the
// detail that distinguishes it from its siblings.
func Describe(s Syntax) string {
	kind := s.NodeKind()
	switch n := s.(type) {
	case Node[string]:
		return fmt.Sprintf("%s %s", kind, n.Value)
	case Node[Expr]:
		switch v := n.Value.(type) {
		case *NumberLit:
			return fmt.Sprintf("%s %s", kind, strconv.FormatFloat(v.Value, 'g', -1, 64))
		case *StringLit:
			return fmt.Sprintf("%s %q", kind, v.Value)
		case *CharLit:
			return fmt.Sprintf("%s %q", kind, v.Value)
		case *BoolLit:
			return fmt.Sprintf("%s %t", kind, v.Value)
		case *UnaryExpr:
			return fmt.Sprintf("%s %s", kind, v.Op)
		case *BinaryExpr:
			return fmt.Sprintf("%s %s", kind, v.Op)
		case *AssignExpr:
			return fmt.Sprintf("%s %s", kind, v.Op)
		}
	}
	return kind.String()
}
