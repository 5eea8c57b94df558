package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/quill/quill/parser"
)

func TestLoad(t *testing.T) {
	g, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, name := range []string{Start, "Statement", "Expression", "Target", "identifier", "string_lit"} {
		if _, ok := g[name]; !ok {
			t.Errorf("grammar has no production %s", name)
		}
	}
	for name := range Terminals() {
		if _, ok := g[name]; !ok {
			t.Errorf("terminal %s is not defined", name)
		}
	}
	if len(Source()) == 0 {
		t.Error("Source is empty")
	}
}

func TestRecognizerAgreesWithParser(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"", true},
		{"print 1;", true},
		{"var x = [1, 2, 3,];", true},
		{"x = y = 3;", true},
		{"a[0] += 1;", true},
		{"(a) = 1;", true},
		{"(f(x))[1] = 2;", true},
		{"if a < b { print a; } else { print b; }", true},
		{"while !done { done = step(); }", true},
		{"for i in 0..10 { print i * 2; }", true},
		{"var f = |a, b,| { return a + b; };", true},
		{`var m = ["k": 1, 'c': [1; 3]];`, true},
		{"print input clone x == mirror y;", true},
		{"print -a.b[c](d) as e;", true},
		{"print 1 and 2 or 3 xor 4;", true},
		{"print [];", true},
		{"print || {};", true},
		{"print f()();", true},
		{"print 1", false},
		{"a + b = c;", false},
		{"a.b = 1;", false},
		{"-a[0] = 1;", false},
		{"print !-x;", false},
		{"print a + input b;", false},
		{"var = 1;", false},
		{"if a { } else ;", false},
		{"print [1, 2;", false},
		{"print |,| {};", false},
		{"print a as -b;", false},
		{"for in x {}", false},
		{"print 1; }", false},
		{"x = ;", false},
		{"print (a;", false},
		{"print [a: ];", false},
		{"print [1; 2; 3];", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			src := parser.NewSource("", tt.input)
			_, perr := parser.ParseSource(src)
			gerr := Check(src)
			if (perr == nil) != tt.valid {
				t.Errorf("parser: err = %v, want valid = %v", perr, tt.valid)
			}
			if (gerr == nil) != tt.valid {
				t.Errorf("grammar: err = %v, want valid = %v", gerr, tt.valid)
			}
		})
	}
}

func TestRecognizerError(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		index    int
		prefix   string
		expected []string
	}{
		{"stray token", "print 1 2;", 2, "1:9: expected ", []string{`";"`, `"+"`, `"as"`}},
		{"end of input", "print 1", 2, "end of input: expected ", []string{`";"`}},
		{"extra brace", "print 1; }", 3, "1:10: expected ", []string{`"print"`, "end of input", "identifier"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(parser.NewSource("", tt.input))
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("expected *SyntaxError, got %v", err)
			}
			if syn.Index != tt.index {
				t.Errorf("Index = %d, want %d", syn.Index, tt.index)
			}
			if !strings.HasPrefix(syn.Error(), tt.prefix) {
				t.Errorf("Error() = %q, want prefix %q", syn.Error(), tt.prefix)
			}
			for _, want := range tt.expected {
				found := false
				for _, got := range syn.Expected {
					found = found || got == want
				}
				if !found {
					t.Errorf("Expected = %v, missing %s", syn.Expected, want)
				}
			}
		})
	}
}

func mustRecognizer(t *testing.T, src, start string) *Recognizer {
	t.Helper()
	g, err := parseAndVerify("test.ebnf", []byte(src), start)
	if err != nil {
		t.Fatalf("grammar: %v", err)
	}
	r, err := NewRecognizer(g, start, Terminals())
	if err != nil {
		t.Fatalf("NewRecognizer: %v", err)
	}
	return r
}

func TestRecognizerSmallGrammars(t *testing.T) {
	nested := mustRecognizer(t, `
		S = { A } .
		A = "(" [ S ] ")" | "[" "]" .
	`, "S")
	ambiguous := mustRecognizer(t, `
		E = E "+" E | number .
		number = "0" … "9" .
	`, "E")

	tests := []struct {
		name  string
		r     *Recognizer
		input string
		valid bool
	}{
		{"empty repetition", nested, "", true},
		{"single group", nested, "()", true},
		{"nested repetitions", nested, "(()[])[]", true},
		{"unclosed", nested, "(", false},
		{"wrong nesting", nested, "[[]]", false},
		{"left recursion", ambiguous, "1 + 2 + 3", true},
		{"single operand", ambiguous, "7", true},
		{"dangling operator", ambiguous, "1 +", false},
		{"empty", ambiguous, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := parser.Tokenize(parser.NewSource("", tt.input))
			if err != nil {
				t.Fatal(err)
			}
			if err := tt.r.Recognize(tokens); (err == nil) != tt.valid {
				t.Errorf("Recognize(%q) = %v, want valid = %v", tt.input, err, tt.valid)
			}
		})
	}
}

func TestNewRecognizerRejects(t *testing.T) {
	tests := []struct {
		name    string
		grammar string
		want    string
	}{
		{"unknown lexical production", "S = word .\nword = \"a\" .", "word is not a token"},
		{"unknown token", `S = "@" .`, `"@" is not a token`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := parseAndVerify("test.ebnf", []byte(tt.grammar), "S")
			if err != nil {
				t.Fatalf("grammar: %v", err)
			}
			_, err = NewRecognizer(g, "S", Terminals())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("NewRecognizer error = %v, want %q", err, tt.want)
			}
		})
	}
	if _, err := NewRecognizer(nil, "S", nil); err == nil {
		t.Error("expected an error for a missing start production")
	}
}
