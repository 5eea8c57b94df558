package grammar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/quill/quill/parser"
)

// symbol is one element on the right-hand side of a rule: a token kind or
// the name of a syntactic production.
type symbol struct {
	name     string
	terminal bool
	kind     parser.TokenKind
}

func (s symbol) String() string {
	if !s.terminal {
		return s.name
	}
	if s.name != "" {
		return s.name
	}
	return strconv.Quote(s.kind.String())
}

// rule is a single flattened alternative. Options, repetitions and groups
// become rules of their own under generated names.
type rule struct {
	lhs string
	rhs []symbol
}

// Recognizer decides whether a token stream derives a start production.
// It accepts any context-free grammar, ambiguous ones included, so it serves
// as an independent check on the backtracking parser.
type Recognizer struct {
	start    string
	rules    []rule
	byLHS    map[string][]int
	nullable map[string]bool
}

// NewRecognizer flattens the syntactic productions reachable from start.
// Lexical productions are only allowed where terminals names them as a
// whole token.
func NewRecognizer(g ebnf.Grammar, start string, terminals map[string]parser.TokenKind) (*Recognizer, error) {
	if prod, ok := g[start]; !ok || prod.Expr == nil {
		return nil, fmt.Errorf("production %q not found in grammar", start)
	}
	b := &builder{grammar: g, terminals: terminals, done: map[string]bool{}}
	b.require(start)
	for len(b.pending) > 0 {
		name := b.pending[0]
		b.pending = b.pending[1:]
		b.production(name, b.grammar[name].Expr)
	}
	if b.err != nil {
		return nil, b.err
	}
	r := &Recognizer{start: start, rules: b.rules, byLHS: map[string][]int{}}
	for i, rl := range r.rules {
		r.byLHS[rl.lhs] = append(r.byLHS[rl.lhs], i)
	}
	r.nullable = nullable(r.rules)
	return r, nil
}

type builder struct {
	grammar   ebnf.Grammar
	terminals map[string]parser.TokenKind
	rules     []rule
	done      map[string]bool
	pending   []string
	fresh     int
	err       error
}

func (b *builder) fail(pos ebnf.Expression, format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf("%s: %s", pos.Pos(), fmt.Sprintf(format, args...))
	}
}

func (b *builder) require(name string) {
	if b.done[name] {
		return
	}
	b.done[name] = true
	b.pending = append(b.pending, name)
}

func (b *builder) add(lhs string, rhs []symbol) {
	b.rules = append(b.rules, rule{lhs: lhs, rhs: rhs})
}

func (b *builder) newName(kind, parent string) string {
	b.fresh++
	return fmt.Sprintf("%s·%s%d", parent, kind, b.fresh)
}

func (b *builder) production(lhs string, expr ebnf.Expression) {
	for _, alt := range alternatives(expr) {
		b.add(lhs, b.sequence(lhs, alt))
	}
}

func alternatives(expr ebnf.Expression) []ebnf.Expression {
	if alt, ok := expr.(ebnf.Alternative); ok {
		return alt
	}
	return []ebnf.Expression{expr}
}

func (b *builder) sequence(lhs string, expr ebnf.Expression) []symbol {
	switch e := expr.(type) {
	case nil:
		return nil
	case ebnf.Sequence:
		out := make([]symbol, 0, len(e))
		for _, item := range e {
			out = append(out, b.symbol(lhs, item))
		}
		return out
	}
	return []symbol{b.symbol(lhs, expr)}
}

func (b *builder) symbol(lhs string, expr ebnf.Expression) symbol {
	switch e := expr.(type) {
	case *ebnf.Name:
		if !isLexical(e.String) {
			b.require(e.String)
			return symbol{name: e.String}
		}
		kind, ok := b.terminals[e.String]
		if !ok {
			b.fail(e, "lexical production %s is not a token", e.String)
		}
		return symbol{name: e.String, terminal: true, kind: kind}
	case *ebnf.Token:
		kind, ok := parser.LookupToken(e.String)
		if !ok {
			b.fail(e, "%q is not a token", e.String)
		}
		return symbol{terminal: true, kind: kind}
	case *ebnf.Group:
		name := b.newName("group", lhs)
		b.production(name, e.Body)
		return symbol{name: name}
	case *ebnf.Option:
		name := b.newName("option", lhs)
		b.add(name, nil)
		b.production(name, e.Body)
		return symbol{name: name}
	case *ebnf.Repetition:
		name := b.newName("repeat", lhs)
		b.add(name, nil)
		for _, alt := range alternatives(e.Body) {
			b.add(name, append(b.sequence(name, alt), symbol{name: name}))
		}
		return symbol{name: name}
	case ebnf.Alternative, ebnf.Sequence:
		name := b.newName("group", lhs)
		b.production(name, e)
		return symbol{name: name}
	case *ebnf.Range:
		b.fail(e, "character range outside a lexical production")
	default:
		b.fail(expr, "unsupported expression %T", expr)
	}
	return symbol{terminal: true, kind: parser.TokenError}
}

// isLexical follows x/exp/ebnf: lowercase productions are lexical.
func isLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

func nullable(rules []rule) map[string]bool {
	out := map[string]bool{}
	for changed := true; changed; {
		changed = false
		for _, rl := range rules {
			if out[rl.lhs] {
				continue
			}
			empty := true
			for _, sym := range rl.rhs {
				if sym.terminal || !out[sym.name] {
					empty = false
					break
				}
			}
			if empty {
				out[rl.lhs] = true
				changed = true
			}
		}
	}
	return out
}

// item is a rule with a dot position and the chart index it started at.
type item struct {
	rule   int
	dot    int
	origin int
}

type itemSet struct {
	items []item
	seen  map[item]bool
}

func (s *itemSet) add(it item) {
	if s.seen == nil {
		s.seen = map[item]bool{}
	}
	if s.seen[it] {
		return
	}
	s.seen[it] = true
	s.items = append(s.items, it)
}

// Recognize runs an Earley chart over tokens and reports a *SyntaxError at
// the furthest token any item reached when they do not derive the start
// production.
func (r *Recognizer) Recognize(tokens []parser.Token) error {
	n := len(tokens)
	chart := make([]itemSet, n+1)
	for _, ri := range r.byLHS[r.start] {
		chart[0].add(item{rule: ri})
	}
	furthest := 0
	for i := 0; i <= n; i++ {
		set := &chart[i]
		if len(set.items) > 0 {
			furthest = i
		}
		for j := 0; j < len(set.items); j++ {
			it := set.items[j]
			rl := r.rules[it.rule]
			if it.dot == len(rl.rhs) {
				r.complete(chart, i, it)
				continue
			}
			next := rl.rhs[it.dot]
			if next.terminal {
				if i < n && tokens[i].Kind == next.kind {
					chart[i+1].add(item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
				}
				continue
			}
			for _, ri := range r.byLHS[next.name] {
				set.add(item{rule: ri, origin: i})
			}
			if r.nullable[next.name] {
				set.add(item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
			}
		}
	}
	for _, it := range chart[n].items {
		rl := r.rules[it.rule]
		if rl.lhs == r.start && it.origin == 0 && it.dot == len(rl.rhs) {
			return nil
		}
	}
	return r.syntaxError(chart[furthest], tokens, furthest)
}

func (r *Recognizer) complete(chart []itemSet, i int, done item) {
	lhs := r.rules[done.rule].lhs
	origin := &chart[done.origin]
	for k := 0; k < len(origin.items); k++ {
		w := origin.items[k]
		rl := r.rules[w.rule]
		if w.dot < len(rl.rhs) && !rl.rhs[w.dot].terminal && rl.rhs[w.dot].name == lhs {
			chart[i].add(item{rule: w.rule, dot: w.dot + 1, origin: w.origin})
		}
	}
}

func (r *Recognizer) syntaxError(set itemSet, tokens []parser.Token, at int) *SyntaxError {
	found := parser.Token{Kind: parser.TokenEOF, Span: parser.EOFSpan()}
	if at < len(tokens) {
		found = tokens[at]
	}
	seen := map[string]bool{}
	var expected []string
	for _, it := range set.items {
		rl := r.rules[it.rule]
		if it.dot == len(rl.rhs) || !rl.rhs[it.dot].terminal {
			continue
		}
		label := rl.rhs[it.dot].String()
		if !seen[label] {
			seen[label] = true
			expected = append(expected, label)
		}
	}
	if r.acceptsAtEnd(set) {
		expected = append(expected, "end of input")
	}
	sort.Strings(expected)
	return &SyntaxError{Found: found, Index: at, Expected: expected}
}

func (r *Recognizer) acceptsAtEnd(set itemSet) bool {
	for _, it := range set.items {
		rl := r.rules[it.rule]
		if rl.lhs == r.start && it.origin == 0 && it.dot == len(rl.rhs) {
			return true
		}
	}
	return false
}

// SyntaxError reports the furthest token the grammar could not consume.
type SyntaxError struct {
	Found    parser.Token
	Index    int
	Expected []string
}

func (e *SyntaxError) Error() string {
	found := "end of input"
	where := "end of input"
	if e.Found.Kind != parser.TokenEOF {
		found = fmt.Sprintf("%s %q", e.Found.Kind, e.Found.Literal)
		where = e.Found.Span.Start.String()
	}
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s: unexpected %s", where, found)
	}
	return fmt.Sprintf("%s: expected %s, found %s", where, strings.Join(e.Expected, " or "), found)
}
