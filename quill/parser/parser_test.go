package parser

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func sexp(e Expr) string {
	switch v := e.(type) {
	case *NoneExpr:
		return "none"
	case *NumberLit:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case *StringLit:
		return strconv.Quote(v.Value)
	case *CharLit:
		return strconv.QuoteRune(v.Value)
	case *BoolLit:
		return strconv.FormatBool(v.Value)
	case *NullLit:
		return "null"
	case *Ident:
		return v.Name.Value
	case *ListExpr:
		return "(list" + sexpItems(v.Items.Value) + ")"
	case *ListRepeatExpr:
		return "(repeat " + sexp(v.Item.Value) + " " + sexp(v.Count.Value) + ")"
	case *MapExpr:
		var sb strings.Builder
		sb.WriteString("(map")
		for _, entry := range v.Entries.Value {
			sb.WriteString(" (" + sexp(entry.Key.Value) + " " + sexp(entry.Value.Value) + ")")
		}
		return sb.String() + ")"
	case *CallExpr:
		return "(call " + sexp(v.Callee.Value) + sexpItems(v.Args.Value) + ")"
	case *DotExpr:
		return "(dot " + sexp(v.Target.Value) + " " + v.Name.Value + ")"
	case *IndexExpr:
		return "(index " + sexp(v.Target.Value) + " " + sexp(v.Index.Value) + ")"
	case *UnaryExpr:
		return "(" + v.Op.String() + " " + sexp(v.Operand.Value) + ")"
	case *BinaryExpr:
		return "(" + v.Op.String() + " " + sexp(v.Left.Value) + " " + sexp(v.Right.Value) + ")"
	case *AssignExpr:
		var target string
		switch lv := v.Target.Value.(type) {
		case *LocalTarget:
			target = lv.Name.Value
		case *IndexTarget:
			target = "(index " + sexp(lv.Target.Value) + " " + sexp(lv.Index.Value) + ")"
		}
		return "(" + v.Op.String() + " " + target + " " + sexp(v.Value.Value) + ")"
	case *FnExpr:
		names := make([]string, len(v.Def.Args.Value))
		for i, arg := range v.Def.Args.Value {
			names[i] = arg.Value
		}
		return "(fn (" + strings.Join(names, " ") + ") " + strconv.Itoa(len(v.Def.Body.Value)) + ")"
	}
	return "?"
}

func sexpItems(items []Node[Expr]) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(" " + sexp(item.Value))
	}
	return sb.String()
}

func sexpBlock(b Block) string {
	var sb strings.Builder
	sb.WriteString("(block")
	for _, stmt := range b {
		sb.WriteString(" " + sexpStmt(stmt.Value))
	}
	return sb.String() + ")"
}

func sexpStmt(s Stmt) string {
	switch v := s.(type) {
	case *ExprStmt:
		return "(expr " + sexp(v.Expr.Value) + ")"
	case *PrintStmt:
		return "(print " + sexp(v.Expr.Value) + ")"
	case *IfStmt:
		return "(if " + sexp(v.Cond.Value) + " " + sexpBlock(v.Then.Value) + ")"
	case *IfElseStmt:
		return "(if-else " + sexp(v.Cond.Value) + " " + sexpBlock(v.Then.Value) + " " + sexpBlock(v.Else.Value) + ")"
	case *WhileStmt:
		return "(while " + sexp(v.Cond.Value) + " " + sexpBlock(v.Body.Value) + ")"
	case *ForStmt:
		return "(for " + v.Var.Value + " " + sexp(v.Iter.Value) + " " + sexpBlock(v.Body.Value) + ")"
	case *DeclStmt:
		return "(var " + v.Name.Value + " " + sexp(v.Value.Value) + ")"
	case *ReturnStmt:
		return "(return " + sexp(v.Value.Value) + ")"
	}
	return "?"
}

func mustParseExpr(t *testing.T, input string, opts ...Option) Node[Expr] {
	t.Helper()
	expr, err := ParseExprSource(NewSource("test.ql", input), opts...)
	if err != nil {
		t.Fatalf("ParseExprSource(%q): %v", input, err)
	}
	return expr
}

func mustParse(t *testing.T, input string, opts ...Option) *Program {
	t.Helper()
	prog, err := ParseSource(NewSource("test.ql", input), opts...)
	if err != nil {
		t.Fatalf("ParseSource(%q): %v", input, err)
	}
	return prog
}

func parseError(t *testing.T, input string, opts ...Option) *Error {
	t.Helper()
	_, err := ParseSource(NewSource("test.ql", input), opts...)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("ParseSource(%q): expected *Error, got %v", input, err)
	}
	return perr
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "none"},
		{"42", "42"},
		{"3.5", "3.5"},
		{`"hi\n"`, `"hi\n"`},
		{"'c'", "'c'"},
		{"true", "true"},
		{"null", "null"},
		{"x", "x"},
		{"1 + 2 * 3", "(add 1 (mul 2 3))"},
		{"(1 + 2) * 3", "(mul (add 1 2) 3)"},
		{"1 - 2 - 3", "(sub (sub 1 2) 3)"},
		{"8 / 4 % 3", "(rem (div 8 4) 3)"},
		{"a = b = 3", "(assign a (assign b 3))"},
		{"x = y + 1", "(assign x (add y 1))"},
		{"x += 1", "(add_assign x 1)"},
		{"x %= 2", "(rem_assign x 2)"},
		{"xs[i] = 5", "(assign (index xs i) 5)"},
		{"a.b[0](1, 2)", "(call (index (dot a b) 0) 1 2)"},
		{"f(1)(2)", "(call (call f 1) 2)"},
		{"f().x", "(dot (call f) x)"},
		{"f()", "(call f)"},
		{"!x as y", "(not (as x y))"},
		{"-a.b", "(neg (dot a b))"},
		{"x as a as b", "(as (as x a) b)"},
		{"input clone x", "(input (clone x))"},
		{"clone x + 1", "(clone (add x 1))"},
		{"mirror a..b", "(mirror (range a b))"},
		{"1..n + 1", "(range 1 (add n 1))"},
		{"x < 1 == y >= 2", "(eq (less x 1) (greater_eq y 2))"},
		{"a != b", "(not_eq a b)"},
		{"a and b or c xor d", "(xor (or (and a b) c) d)"},
		{"a or b == c", "(or a (eq b c))"},
		{"[]", "(list)"},
		{"[1, 2, 3]", "(list 1 2 3)"},
		{"[1, 2,]", "(list 1 2)"},
		{"[0; 5]", "(repeat 0 5)"},
		{"[[1]; n * 2]", "(repeat (list 1) (mul n 2))"},
		{`["a": 1, "b": 2]`, `(map ("a" 1) ("b" 2))`},
		{`["a": [1, 2]]`, `(map ("a" (list 1 2)))`},
		{"[[]]", "(list (list))"},
		{"|a, b| { return a + b; }", "(fn (a b) 1)"},
		{"|| { }", "(fn () 0)"},
		{"|x| { print x; }(1)", "(call (fn (x) 1) 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := mustParseExpr(t, tt.input)
			if got := sexp(expr.Value); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBracketDisambiguation(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"[]", KindList},
		{"[1,2,3]", KindList},
		{"[x]", KindList},
		{"[0; 5]", KindListRepeat},
		{`["a":1]`, KindMap},
		{"[k: v, 1: 2,]", KindMap},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := mustParseExpr(t, tt.input)
			if got := expr.Value.Kind(); got != tt.kind {
				t.Errorf("kind = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"// nothing here\n", nil},
		{"x = 1;", []string{"(expr (assign x 1))"}},
		{"print 1 + 2;", []string{"(print (add 1 2))"}},
		{"if a { }", []string{"(if a (block))"}},
		{"if a { } else { print b; }", []string{"(if-else a (block) (block (print b)))"}},
		{"while i < 10 { i += 1; }", []string{"(while (less i 10) (block (expr (add_assign i 1))))"}},
		{"for x in 0..10 { print x; }", []string{"(for x (range 0 10) (block (print x)))"}},
		{"return f(x);", []string{"(return (call f x))"}},
		{"var f = |x| { return x * 2; };", []string{"(var f (fn (x) 1))"}},
		{
			"var x = 1; if x > 0 { print x; } else { print 0 - x; }",
			[]string{"(var x 1)", "(if-else (greater x 0) (block (print x)) (block (print (sub 0 x))))"},
		},
		{
			"if a { if b { print 1; } } print 2;",
			[]string{"(if a (block (if b (block (print 1)))))", "(print 2)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := mustParse(t, tt.input)
			if len(prog.Stmts) != len(tt.want) {
				t.Fatalf("got %d statements, want %d", len(prog.Stmts), len(tt.want))
			}
			for i, stmt := range prog.Stmts {
				if got := sexpStmt(stmt.Value); got != tt.want[i] {
					t.Errorf("statement %d: got %s, want %s", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestEndToEnd(t *testing.T) {
	prog := mustParse(t, "var x = 1; if x > 0 { print x; } else { print 0 - x; }")
	if len(prog.Stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Stmts))
	}
	if k := prog.Stmts[0].Value.Kind(); k != KindDeclStmt {
		t.Errorf("first statement is %v, want DeclStmt", k)
	}
	if k := prog.Stmts[1].Value.Kind(); k != KindIfElseStmt {
		t.Errorf("second statement is %v, want IfElseStmt", k)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input      string
		kind       ErrorKind
		message    string
		context    string
		incomplete bool
	}{
		{"[1, 2", ErrExpected, "expected ']' or ',', found end of input", "list", true},
		{"print 1", ErrExpected, "expected ';', found end of input", "print statement", true},
		{"x; }", ErrExpected, "expected statement or end of input, found '}'", "", false},
		{"if x { print 1; ", ErrExpected, "expected '}' or statement, found end of input", "if-else statement", true},
		{"var = 1;", ErrExpected, "expected identifier, found '='", "variable declaration", false},
		{"for x 1 { }", ErrExpected, "expected 'in', found number '1'", "for statement", false},
		{"x = ;", ErrExpected, "expected primary expression, found ';'", "expression statement", false},
		{"1 +;", ErrExpected, "expected primary expression, found ';'", "expression statement", false},
		{"a.;", ErrExpected, "expected identifier, found ';'", "", false},
		{"f(1 2);", ErrExpected, "expected ')' or ',', found number '2'", "", false},
		{"[1; 2", ErrExpected, "expected ']', found end of input", "list repeat", true},
		{`["a": ];`, ErrExpected, "expected primary expression, found ']'", "map", false},
		{`x = ["a": 1, "b"];`, ErrExpected, "expected ':', found ']'", "", false},
		{"|a b| { }", ErrExpected, "expected '|' or ',', found identifier 'b'", "function", false},
		{"while x { ", ErrExpected, "expected '}' or statement, found end of input", "while statement", true},
		{"f() = 1;", ErrNotAssignable, "expression is not assignable", "expression statement", false},
		{"1 = 2;", ErrNotAssignable, "expression is not assignable", "expression statement", false},
		{"a.b = 2;", ErrNotAssignable, "expression is not assignable", "expression statement", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := parseError(t, tt.input)
			if err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", err.Kind, tt.kind)
			}
			if got := err.Message(); got != tt.message {
				t.Errorf("Message = %q, want %q", got, tt.message)
			}
			if tt.context != "" && !containsString(err.Context, tt.context) {
				t.Errorf("Context = %v, want it to include %q", err.Context, tt.context)
			}
			if got := IsIncomplete(err); got != tt.incomplete {
				t.Errorf("IsIncomplete = %v, want %v", got, tt.incomplete)
			}
		})
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func TestTruncatedListPointsAtEnd(t *testing.T) {
	_, err := ParseExprSource(NewSource("", "[1, 2"))
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !perr.Span.IsEOF() {
		t.Errorf("Span = %v, want end of input", perr.Span)
	}
	want := []Item{tokenItem(TokenRBracket), tokenItem(TokenComma)}
	if len(perr.Expected) != len(want) || perr.Expected[0] != want[0] || perr.Expected[1] != want[1] {
		t.Errorf("Expected = %v, want %v", perr.Expected, want)
	}
}

func TestInvalidAssignmentTargetSpan(t *testing.T) {
	tests := []struct {
		input  string
		target string
	}{
		{"f() = 1;", "f()"},
		{"x = y; a.b(c) += 2;", "a.b(c)"},
		{"print (1 + 2) = 3;", "(1 + 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := parseError(t, tt.input)
			if err.Kind != ErrNotAssignable {
				t.Fatalf("Kind = %v (%v), want ErrNotAssignable", err.Kind, err)
			}
			start := strings.Index(tt.input, tt.target)
			if err.Span.Start.Offset != start || err.Span.End.Offset != start+len(tt.target) {
				t.Errorf("Span = %d-%d, want %d-%d", err.Span.Start.Offset, err.Span.End.Offset, start, start+len(tt.target))
			}
		})
	}
}

func TestValidAssignmentTargets(t *testing.T) {
	for _, input := range []string{"x = 1;", "xs[0] = 1;", "a.b[c] -= 1;", "m[k][j] *= 2;"} {
		t.Run(input, func(t *testing.T) {
			prog := mustParse(t, input)
			stmt := prog.Stmts[0].Value.(*ExprStmt)
			if k := stmt.Expr.Value.Kind(); k != KindAssign {
				t.Errorf("kind = %v, want Assign", k)
			}
		})
	}
}

func TestMaxDepth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []Option
	}{
		{"brackets", strings.Repeat("[", 10) + "1" + strings.Repeat("]", 10), []Option{WithMaxDepth(8)}},
		{"parens", strings.Repeat("(", 10000) + "1" + strings.Repeat(")", 10000), nil},
		{"many brackets", strings.Repeat("[", 2000) + strings.Repeat("]", 2000), nil},
		{"prefixes", strings.Repeat("clone ", 10000) + "x", nil},
		{"blocks", strings.Repeat("while x { ", 1000) + strings.Repeat("}", 1000), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource(NewSource("", tt.input), tt.opts...)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if perr.Kind != ErrTooDeep {
				t.Errorf("Kind = %v (%v), want ErrTooDeep", perr.Kind, perr)
			}
		})
	}

	// within the limit
	input := strings.Repeat("[", 5) + "1" + strings.Repeat("]", 5)
	mustParseExpr(t, input, WithMaxDepth(8))
}

func TestSpanClosure(t *testing.T) {
	inputs := []string{
		"var x = 1; if x > 0 { print x; } else { print 0 - x; }",
		"a.b[0](1, 2);",
		`var m = ["k": [1, 2], "j": [0; 3]];`,
		"for i in 0..10 { total += xs[i] * 2; }",
		"var f = |a, b| { return clone a as b; };",
		"while !done { x = input y; }",
		"print -(1 + 2);",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			prog := mustParse(t, input)
			Walk(prog, func(s Syntax) bool {
				parent := s.SourceSpan()
				for _, child := range Children(s) {
					if !parent.Contains(child.SourceSpan()) {
						t.Errorf("%s %v does not contain %s %v", Describe(s), parent, Describe(child), child.SourceSpan())
					}
				}
				return true
			})
		})
	}
}

func TestSpansAreExact(t *testing.T) {
	tests := []struct {
		input string
		text  string
	}{
		{"a.b[0](1, 2)", "a.b[0](1, 2)"},
		{"  1 + 2 * 3 ", "1 + 2 * 3"},
		{"(x)", "(x)"},
		{"-x", "-x"},
		{"[0; 5]", "[0; 5]"},
		{"|a| { }", "|a| { }"},
		{"a = b = 3", "a = b = 3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := mustParseExpr(t, tt.input)
			got := tt.input[expr.Span.Start.Offset:expr.Span.End.Offset]
			if got != tt.text {
				t.Errorf("span covers %q, want %q", got, tt.text)
			}
		})
	}

	prog := mustParse(t, "var x = 1;\nif x { print x; }")
	if got := prog.Stmts[1].Span.Start.Line; got != 2 {
		t.Errorf("if statement starts on line %d, want 2", got)
	}
	if got := prog.Stmts[0].Span.End.Offset; got != len("var x = 1;") {
		t.Errorf("declaration ends at %d, want %d", got, len("var x = 1;"))
	}
}

func TestFunctionSharesSource(t *testing.T) {
	src := NewSource("fn.ql", "var f = |x| { return x; };")
	prog, err := ParseSource(src)
	if err != nil {
		t.Fatal(err)
	}
	decl := prog.Stmts[0].Value.(*DeclStmt)
	fn := decl.Value.Value.(*FnExpr)
	if fn.Source != src {
		t.Errorf("function literal does not share the program source")
	}
	copied := *fn
	if copied.Def != fn.Def {
		t.Errorf("copying a function value copied its definition")
	}
	if len(fn.Def.Args.Value) != 1 || fn.Def.Args.Value[0].Value != "x" {
		t.Errorf("Args = %v", fn.Def.Args.Value)
	}
}

func TestParseTokens(t *testing.T) {
	src := NewSource("", "x + 1")
	tokens, err := Tokenize(src)
	if err != nil {
		t.Fatal(err)
	}
	expr, err := ParseExpr(tokens, src)
	if err != nil {
		t.Fatal(err)
	}
	if got := sexp(expr.Value); got != "(add x 1)" {
		t.Errorf("got %s", got)
	}

	if _, err := Parse(tokens, src); err == nil {
		t.Errorf("an expression without ';' should not parse as a program")
	}
}

func TestWithFile(t *testing.T) {
	err := parseError(t, "print 1 2;", WithFile("named.ql"))
	if err.Span.Start.File != "named.ql" {
		t.Errorf("File = %q, want named.ql", err.Span.Start.File)
	}
	if !strings.HasPrefix(err.Error(), "named.ql:1:9: ") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestLexErrorsSurface(t *testing.T) {
	_, err := ParseSource(NewSource("", `print "open;`))
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *LexError, got %v", err)
	}
}

func TestNodeAt(t *testing.T) {
	input := "var x = a + b;"
	prog := mustParse(t, input)

	tests := []struct {
		offset int
		want   string
	}{
		{strings.Index(input, "b"), "Name b"},
		{strings.Index(input, "+"), "Binary add"},
		{0, "DeclStmt"},
		{len(input) + 5, ""},
	}
	for _, tt := range tests {
		found := NodeAt(prog, tt.offset)
		got := ""
		if found != nil {
			got = Describe(found)
		}
		if got != tt.want {
			t.Errorf("NodeAt(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}
}
