package grammar

import (
	"fmt"
	"sort"

	"golang.org/x/exp/ebnf"
)

// Matcher tests literal text against the lexical productions of a grammar.
// Matching explores every alternative, so a repetition never swallows input
// a later part of the sequence needs.
type Matcher struct {
	grammar ebnf.Grammar
}

func NewMatcher(g ebnf.Grammar) *Matcher {
	return &Matcher{grammar: g}
}

type memoKey struct {
	name   string
	offset int
}

type matchState struct {
	grammar  ebnf.Grammar
	input    []rune
	memo     map[memoKey][]int
	visiting map[memoKey]bool
}

// Match reports whether all of text derives the lexical production name.
func (m *Matcher) Match(name, text string) (bool, error) {
	st, err := m.start(name, text)
	if err != nil {
		return false, err
	}
	for _, end := range st.name(name, 0) {
		if end == len(st.input) {
			return true, nil
		}
	}
	return false, nil
}

// Longest returns the length in characters of the longest prefix of text
// that derives name, or -1 when no prefix does.
func (m *Matcher) Longest(name, text string) (int, error) {
	st, err := m.start(name, text)
	if err != nil {
		return -1, err
	}
	ends := st.name(name, 0)
	if len(ends) == 0 {
		return -1, nil
	}
	return ends[len(ends)-1], nil
}

func (m *Matcher) start(name, text string) (*matchState, error) {
	prod, ok := m.grammar[name]
	if !ok || prod.Expr == nil {
		return nil, fmt.Errorf("production %q not found in grammar", name)
	}
	if !isLexical(name) {
		return nil, fmt.Errorf("production %q is not lexical", name)
	}
	return &matchState{
		grammar:  m.grammar,
		input:    []rune(text),
		memo:     map[memoKey][]int{},
		visiting: map[memoKey]bool{},
	}, nil
}

// match returns the sorted end offsets at which expr can stop when it
// starts at offset.
func (st *matchState) match(expr ebnf.Expression, offset int) []int {
	switch e := expr.(type) {
	case nil:
		return []int{offset}
	case *ebnf.Token:
		return st.token(e.String, offset)
	case *ebnf.Range:
		return st.rangeOf(e, offset)
	case *ebnf.Name:
		return st.name(e.String, offset)
	case *ebnf.Group:
		return st.match(e.Body, offset)
	case *ebnf.Option:
		return union([]int{offset}, st.match(e.Body, offset))
	case ebnf.Sequence:
		ends := []int{offset}
		for _, item := range e {
			var next []int
			for _, pos := range ends {
				next = union(next, st.match(item, pos))
			}
			if len(next) == 0 {
				return nil
			}
			ends = next
		}
		return ends
	case ebnf.Alternative:
		var ends []int
		for _, alt := range e {
			ends = union(ends, st.match(alt, offset))
		}
		return ends
	case *ebnf.Repetition:
		ends := []int{offset}
		frontier := []int{offset}
		for len(frontier) > 0 {
			var next []int
			for _, pos := range frontier {
				for _, end := range st.match(e.Body, pos) {
					if end > pos && !contains(ends, end) {
						next = union(next, []int{end})
					}
				}
			}
			ends = union(ends, next)
			frontier = next
		}
		return ends
	}
	return nil
}

func (st *matchState) name(name string, offset int) []int {
	key := memoKey{name: name, offset: offset}
	if ends, ok := st.memo[key]; ok {
		return ends
	}
	// Left recursion contributes nothing new.
	if st.visiting[key] {
		return nil
	}
	prod, ok := st.grammar[name]
	if !ok || prod.Expr == nil {
		return nil
	}
	st.visiting[key] = true
	ends := st.match(prod.Expr, offset)
	delete(st.visiting, key)
	st.memo[key] = ends
	return ends
}

func (st *matchState) token(text string, offset int) []int {
	want := []rune(text)
	if offset+len(want) > len(st.input) {
		return nil
	}
	for i, r := range want {
		if st.input[offset+i] != r {
			return nil
		}
	}
	return []int{offset + len(want)}
}

func (st *matchState) rangeOf(r *ebnf.Range, offset int) []int {
	if offset >= len(st.input) {
		return nil
	}
	lo, hi := []rune(r.Begin.String), []rune(r.End.String)
	if len(lo) != 1 || len(hi) != 1 {
		return nil
	}
	if ch := st.input[offset]; ch >= lo[0] && ch <= hi[0] {
		return []int{offset + 1}
	}
	return nil
}

func union(a, b []int) []int {
	for _, x := range b {
		if !contains(a, x) {
			a = append(a, x)
		}
	}
	sort.Ints(a)
	return a
}

func contains(xs []int, x int) bool {
	for _, y := range xs {
		if y == x {
			return true
		}
	}
	return false
}
