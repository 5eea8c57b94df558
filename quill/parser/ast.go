package parser

// Node pairs a syntax payload with the span of source text it came from. A
// composite node's span is the union of its children's spans and of the
// tokens that join them.
type Node[T any] struct {
	Value T
	Span  Span
}

func NewNode[T any](value T, span Span) Node[T] {
	return Node[T]{Value: value, Span: span}
}

type NodeKind int

const (
	KindInvalid NodeKind = iota

	// Expressions
	KindNone
	KindNumber
	KindString
	KindChar
	KindBool
	KindNull
	KindIdent
	KindList
	KindListRepeat
	KindMap
	KindCall
	KindDot
	KindIndex
	KindUnary
	KindBinary
	KindAssign
	KindFn

	// Assignment targets
	KindLocalTarget
	KindIndexTarget

	// Statements
	KindExprStmt
	KindPrintStmt
	KindIfStmt
	KindIfElseStmt
	KindWhileStmt
	KindForStmt
	KindDeclStmt
	KindReturnStmt

	// Supporting nodes
	KindName
	KindItems
	KindEntries
	KindArgs
	KindBlock
	KindProgram
)

var nodeKindNames = map[NodeKind]string{
	KindInvalid:     "Invalid",
	KindNone:        "None",
	KindNumber:      "Number",
	KindString:      "String",
	KindChar:        "Char",
	KindBool:        "Bool",
	KindNull:        "Null",
	KindIdent:       "Ident",
	KindList:        "List",
	KindListRepeat:  "ListRepeat",
	KindMap:         "Map",
	KindCall:        "Call",
	KindDot:         "Dot",
	KindIndex:       "Index",
	KindUnary:       "Unary",
	KindBinary:      "Binary",
	KindAssign:      "Assign",
	KindFn:          "Fn",
	KindLocalTarget: "LocalTarget",
	KindIndexTarget: "IndexTarget",
	KindExprStmt:    "ExprStmt",
	KindPrintStmt:   "PrintStmt",
	KindIfStmt:      "IfStmt",
	KindIfElseStmt:  "IfElseStmt",
	KindWhileStmt:   "WhileStmt",
	KindForStmt:     "ForStmt",
	KindDeclStmt:    "DeclStmt",
	KindReturnStmt:  "ReturnStmt",
	KindName:        "Name",
	KindItems:       "Items",
	KindEntries:     "Entries",
	KindArgs:        "Args",
	KindBlock:       "Block",
	KindProgram:     "Program",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type Expr interface {
	Kind() NodeKind
	exprNode()
}

type (
	// NoneExpr is the result of parsing an expression from empty input.
	NoneExpr struct{}

	NumberLit struct{ Value float64 }
	StringLit struct{ Value string }
	CharLit   struct{ Value rune }
	BoolLit   struct{ Value bool }
	NullLit   struct{}

	Ident struct{ Name Node[string] }

	ListExpr struct{ Items Node[[]Node[Expr]] }

	// ListRepeatExpr is "[item; count]".
	ListRepeatExpr struct {
		Item  Node[Expr]
		Count Node[Expr]
	}

	MapExpr struct{ Entries Node[[]MapEntry] }

	CallExpr struct {
		Callee Node[Expr]
		Args   Node[[]Node[Expr]]
	}

	DotExpr struct {
		Dot    Span
		Target Node[Expr]
		Name   Node[string]
	}

	IndexExpr struct {
		Brackets Span
		Target   Node[Expr]
		Index    Node[Expr]
	}

	UnaryExpr struct {
		Op      UnaryOp
		OpSpan  Span
		Operand Node[Expr]
	}

	BinaryExpr struct {
		Op     BinaryOp
		OpSpan Span
		Left   Node[Expr]
		Right  Node[Expr]
	}

	AssignExpr struct {
		Op     AssignOp
		OpSpan Span
		Target Node[LVal]
		Value  Node[Expr]
	}

	// FnExpr is a function literal. Source is the whole program text, not
	// just the literal, and Def is shared by every copy of the value.
	FnExpr struct {
		Source *Source
		Def    *FnDef
	}
)

type MapEntry struct {
	Key   Node[Expr]
	Value Node[Expr]
}

type FnDef struct {
	Args Node[Args]
	Body Node[Block]
}

func (*NoneExpr) Kind() NodeKind       { return KindNone }
func (*NumberLit) Kind() NodeKind      { return KindNumber }
func (*StringLit) Kind() NodeKind      { return KindString }
func (*CharLit) Kind() NodeKind        { return KindChar }
func (*BoolLit) Kind() NodeKind        { return KindBool }
func (*NullLit) Kind() NodeKind        { return KindNull }
func (*Ident) Kind() NodeKind          { return KindIdent }
func (*ListExpr) Kind() NodeKind       { return KindList }
func (*ListRepeatExpr) Kind() NodeKind { return KindListRepeat }
func (*MapExpr) Kind() NodeKind        { return KindMap }
func (*CallExpr) Kind() NodeKind       { return KindCall }
func (*DotExpr) Kind() NodeKind        { return KindDot }
func (*IndexExpr) Kind() NodeKind      { return KindIndex }
func (*UnaryExpr) Kind() NodeKind      { return KindUnary }
func (*BinaryExpr) Kind() NodeKind     { return KindBinary }
func (*AssignExpr) Kind() NodeKind     { return KindAssign }
func (*FnExpr) Kind() NodeKind         { return KindFn }

func (*NoneExpr) exprNode()       {}
func (*NumberLit) exprNode()      {}
func (*StringLit) exprNode()      {}
func (*CharLit) exprNode()        {}
func (*BoolLit) exprNode()        {}
func (*NullLit) exprNode()        {}
func (*Ident) exprNode()          {}
func (*ListExpr) exprNode()       {}
func (*ListRepeatExpr) exprNode() {}
func (*MapExpr) exprNode()        {}
func (*CallExpr) exprNode()       {}
func (*DotExpr) exprNode()        {}
func (*IndexExpr) exprNode()      {}
func (*UnaryExpr) exprNode()      {}
func (*BinaryExpr) exprNode()     {}
func (*AssignExpr) exprNode()     {}
func (*FnExpr) exprNode()         {}

type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
	UnaryInput
	UnaryClone
	UnaryMirror
)

var unaryOpNames = map[UnaryOp]string{
	UnaryNot:    "not",
	UnaryNeg:    "neg",
	UnaryInput:  "input",
	UnaryClone:  "clone",
	UnaryMirror: "mirror",
}

func (op UnaryOp) String() string {
	if name, ok := unaryOpNames[op]; ok {
		return name
	}
	return "unknown"
}

type BinaryOp int

const (
	BinaryMul BinaryOp = iota
	BinaryDiv
	BinaryRem
	BinaryAdd
	BinarySub
	BinaryGreater
	BinaryGreaterEq
	BinaryLess
	BinaryLessEq
	BinaryEq
	BinaryNotEq
	BinaryAnd
	BinaryOr
	BinaryXor
	BinaryRange
	BinaryAs
)

var binaryOpNames = map[BinaryOp]string{
	BinaryMul:       "mul",
	BinaryDiv:       "div",
	BinaryRem:       "rem",
	BinaryAdd:       "add",
	BinarySub:       "sub",
	BinaryGreater:   "greater",
	BinaryGreaterEq: "greater_eq",
	BinaryLess:      "less",
	BinaryLessEq:    "less_eq",
	BinaryEq:        "eq",
	BinaryNotEq:     "not_eq",
	BinaryAnd:       "and",
	BinaryOr:        "or",
	BinaryXor:       "xor",
	BinaryRange:     "range",
	BinaryAs:        "as",
}

func (op BinaryOp) String() string {
	if name, ok := binaryOpNames[op]; ok {
		return name
	}
	return "unknown"
}

type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignRem
)

var assignOpNames = map[AssignOp]string{
	AssignPlain: "assign",
	AssignAdd:   "add_assign",
	AssignSub:   "sub_assign",
	AssignMul:   "mul_assign",
	AssignDiv:   "div_assign",
	AssignRem:   "rem_assign",
}

func (op AssignOp) String() string {
	if name, ok := assignOpNames[op]; ok {
		return name
	}
	return "unknown"
}

// LVal is an assignment target. It is never parsed directly; see IntoLVal.
type LVal interface {
	Kind() NodeKind
	lvalNode()
}

type (
	LocalTarget struct{ Name Node[string] }

	IndexTarget struct {
		Target Node[Expr]
		Index  Node[Expr]
	}
)

func (*LocalTarget) Kind() NodeKind { return KindLocalTarget }
func (*IndexTarget) Kind() NodeKind { return KindIndexTarget }
func (*LocalTarget) lvalNode()      {}
func (*IndexTarget) lvalNode()      {}

// IntoLVal reinterprets an already parsed expression as an assignment
// target. Only identifiers and index expressions qualify.
func IntoLVal(n Node[Expr]) (Node[LVal], bool) {
	switch e := n.Value.(type) {
	case *Ident:
		return NewNode[LVal](&LocalTarget{Name: e.Name}, n.Span), true
	case *IndexExpr:
		return NewNode[LVal](&IndexTarget{Target: e.Target, Index: e.Index}, n.Span), true
	}
	return Node[LVal]{}, false
}

type Stmt interface {
	Kind() NodeKind
	stmtNode()
}

type (
	ExprStmt  struct{ Expr Node[Expr] }
	PrintStmt struct{ Expr Node[Expr] }

	IfStmt struct {
		Cond Node[Expr]
		Then Node[Block]
	}

	IfElseStmt struct {
		Cond Node[Expr]
		Then Node[Block]
		Else Node[Block]
	}

	WhileStmt struct {
		Cond Node[Expr]
		Body Node[Block]
	}

	ForStmt struct {
		Var  Node[string]
		Iter Node[Expr]
		Body Node[Block]
	}

	DeclStmt struct {
		Name  Node[string]
		Value Node[Expr]
	}

	ReturnStmt struct{ Value Node[Expr] }
)

func (*ExprStmt) Kind() NodeKind   { return KindExprStmt }
func (*PrintStmt) Kind() NodeKind  { return KindPrintStmt }
func (*IfStmt) Kind() NodeKind     { return KindIfStmt }
func (*IfElseStmt) Kind() NodeKind { return KindIfElseStmt }
func (*WhileStmt) Kind() NodeKind  { return KindWhileStmt }
func (*ForStmt) Kind() NodeKind    { return KindForStmt }
func (*DeclStmt) Kind() NodeKind   { return KindDeclStmt }
func (*ReturnStmt) Kind() NodeKind { return KindReturnStmt }

func (*ExprStmt) stmtNode()   {}
func (*PrintStmt) stmtNode()  {}
func (*IfStmt) stmtNode()     {}
func (*IfElseStmt) stmtNode() {}
func (*WhileStmt) stmtNode()  {}
func (*ForStmt) stmtNode()    {}
func (*DeclStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode() {}

// Args are the parameter names of a function literal, in order.
type Args []Node[string]

type Block []Node[Stmt]

// Program is the result of parsing a sequence of statements.
type Program struct {
	Source *Source
	Stmts  []Node[Stmt]
}
