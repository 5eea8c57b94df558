package format

import (
	"github.com/dhamidi/quill/quill/parser"
)

// Binding strength of each expression form, loosest first.
const (
	precAssign = iota + 1
	precLogical
	precEquivalence
	precComparison
	precMidUnary
	precRange
	precAddition
	precMultiplication
	precUnary
	precAs
	precPostfix
	precPrimary
)

var binaryPrec = map[parser.BinaryOp]int{
	parser.BinaryAnd:       precLogical,
	parser.BinaryOr:        precLogical,
	parser.BinaryXor:       precLogical,
	parser.BinaryEq:        precEquivalence,
	parser.BinaryNotEq:     precEquivalence,
	parser.BinaryGreater:   precComparison,
	parser.BinaryGreaterEq: precComparison,
	parser.BinaryLess:      precComparison,
	parser.BinaryLessEq:    precComparison,
	parser.BinaryRange:     precRange,
	parser.BinaryAdd:       precAddition,
	parser.BinarySub:       precAddition,
	parser.BinaryMul:       precMultiplication,
	parser.BinaryDiv:       precMultiplication,
	parser.BinaryRem:       precMultiplication,
	parser.BinaryAs:        precAs,
}

var binarySymbols = map[parser.BinaryOp]string{
	parser.BinaryAnd:       " and ",
	parser.BinaryOr:        " or ",
	parser.BinaryXor:       " xor ",
	parser.BinaryEq:        " == ",
	parser.BinaryNotEq:     " != ",
	parser.BinaryGreater:   " > ",
	parser.BinaryGreaterEq: " >= ",
	parser.BinaryLess:      " < ",
	parser.BinaryLessEq:    " <= ",
	parser.BinaryRange:     "..",
	parser.BinaryAdd:       " + ",
	parser.BinarySub:       " - ",
	parser.BinaryMul:       " * ",
	parser.BinaryDiv:       " / ",
	parser.BinaryRem:       " % ",
	parser.BinaryAs:        " as ",
}

var unarySymbols = map[parser.UnaryOp]string{
	parser.UnaryNot:    "!",
	parser.UnaryNeg:    "-",
	parser.UnaryInput:  "input ",
	parser.UnaryClone:  "clone ",
	parser.UnaryMirror: "mirror ",
}

var assignSymbols = map[parser.AssignOp]string{
	parser.AssignPlain: " = ",
	parser.AssignAdd:   " += ",
	parser.AssignSub:   " -= ",
	parser.AssignMul:   " *= ",
	parser.AssignDiv:   " /= ",
	parser.AssignRem:   " %= ",
}

func isMidUnary(op parser.UnaryOp) bool {
	return op == parser.UnaryInput || op == parser.UnaryClone || op == parser.UnaryMirror
}

func exprPrec(e parser.Expr) int {
	switch v := e.(type) {
	case *parser.AssignExpr:
		return precAssign
	case *parser.BinaryExpr:
		return binaryPrec[v.Op]
	case *parser.UnaryExpr:
		if isMidUnary(v.Op) {
			return precMidUnary
		}
		return precUnary
	case *parser.CallExpr, *parser.DotExpr, *parser.IndexExpr:
		return precPostfix
	}
	return precPrimary
}

// printOperand parenthesizes node when it binds looser than min.
func (p *Printer) printOperand(node parser.Node[parser.Expr], min int) {
	if exprPrec(node.Value) < min {
		p.write("(")
		p.printExpr(node)
		p.write(")")
		return
	}
	p.printExpr(node)
}

func (p *Printer) printExpr(node parser.Node[parser.Expr]) {
	switch e := node.Value.(type) {
	case *parser.NoneExpr:
	case *parser.NumberLit:
		p.write(parser.FormatNumber(e.Value))
	case *parser.StringLit:
		p.write(parser.QuoteString(e.Value))
	case *parser.CharLit:
		p.write(parser.QuoteChar(e.Value))
	case *parser.BoolLit:
		if e.Value {
			p.write("true")
		} else {
			p.write("false")
		}
	case *parser.NullLit:
		p.write("null")
	case *parser.Ident:
		p.write(e.Name.Value)
	case *parser.ListExpr:
		p.write("[")
		p.printExprList(e.Items.Value)
		p.write("]")
	case *parser.ListRepeatExpr:
		p.write("[")
		p.printExpr(e.Item)
		p.write("; ")
		p.printExpr(e.Count)
		p.write("]")
	case *parser.MapExpr:
		p.printMapExpr(e)
	case *parser.CallExpr:
		p.printOperand(e.Callee, precPostfix)
		p.write("(")
		p.printExprList(e.Args.Value)
		p.write(")")
	case *parser.DotExpr:
		p.printOperand(e.Target, precPostfix)
		p.write(".")
		p.write(e.Name.Value)
	case *parser.IndexExpr:
		p.printOperand(e.Target, precPostfix)
		p.write("[")
		p.printExpr(e.Index)
		p.write("]")
	case *parser.UnaryExpr:
		p.printUnaryExpr(e)
	case *parser.BinaryExpr:
		p.printBinaryExpr(e)
	case *parser.AssignExpr:
		p.printAssignTarget(e.Target)
		p.write(assignSymbols[e.Op])
		p.printExpr(e.Value)
	case *parser.FnExpr:
		p.printFnExpr(e)
	}
}

func (p *Printer) printExprList(items []parser.Node[parser.Expr]) {
	for i, item := range items {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(item)
	}
}

func (p *Printer) printMapExpr(e *parser.MapExpr) {
	p.write("[")
	for i, entry := range e.Entries.Value {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(entry.Key)
		p.write(": ")
		p.printExpr(entry.Value)
	}
	p.write("]")
}

// printUnaryExpr writes the prefix and its operand. The input, clone and
// mirror prefixes stack; '!' and '-' take an as-level operand.
func (p *Printer) printUnaryExpr(e *parser.UnaryExpr) {
	p.write(unarySymbols[e.Op])
	if isMidUnary(e.Op) {
		p.printOperand(e.Operand, precMidUnary)
		return
	}
	p.printOperand(e.Operand, precAs)
}

// printBinaryExpr relies on every binary level being left associative.
func (p *Printer) printBinaryExpr(e *parser.BinaryExpr) {
	prec := binaryPrec[e.Op]
	p.printOperand(e.Left, prec)
	p.write(binarySymbols[e.Op])
	next := prec + 1
	if e.Op == parser.BinaryAs {
		next = precPostfix
	}
	p.printOperand(e.Right, next)
}

func (p *Printer) printAssignTarget(target parser.Node[parser.LVal]) {
	switch t := target.Value.(type) {
	case *parser.LocalTarget:
		p.write(t.Name.Value)
	case *parser.IndexTarget:
		p.printOperand(t.Target, precPostfix)
		p.write("[")
		p.printExpr(t.Index)
		p.write("]")
	}
}

func (p *Printer) printFnExpr(e *parser.FnExpr) {
	p.write("|")
	for i, arg := range e.Def.Args.Value {
		if i > 0 {
			p.write(", ")
		}
		p.write(arg.Value)
	}
	p.write("| ")
	p.printBlock(e.Def.Body)
}
