package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ItemKind int

const (
	ItemToken ItemKind = iota
	ItemIdent
	ItemPrimary
	ItemStmt
	ItemAssignment
	ItemEnd
)

// Item is one side of an expectation: a literal token or a grammar
// category. Found items also carry the literal text that was seen.
type Item struct {
	Kind    ItemKind
	Token   TokenKind
	Literal string
}

func tokenItem(kind TokenKind) Item { return Item{Kind: ItemToken, Token: kind} }

func foundItem(tok Token) Item {
	if tok.Kind == TokenEOF {
		return Item{Kind: ItemEnd}
	}
	return Item{Kind: ItemToken, Token: tok.Kind, Literal: tok.Literal}
}

func (i Item) String() string {
	switch i.Kind {
	case ItemIdent:
		return "identifier"
	case ItemPrimary:
		return "primary expression"
	case ItemStmt:
		return "statement"
	case ItemAssignment:
		return "assignment"
	case ItemEnd:
		return "end of input"
	}
	switch i.Token {
	case TokenIdent:
		if i.Literal != "" {
			return fmt.Sprintf("identifier '%s'", i.Literal)
		}
		return "identifier"
	case TokenNumber:
		return fmt.Sprintf("number '%s'", i.Literal)
	case TokenString:
		return "string " + i.Literal
	case TokenChar:
		return "character " + i.Literal
	case TokenError:
		return fmt.Sprintf("invalid token '%s'", i.Literal)
	}
	return fmt.Sprintf("'%s'", i.Token)
}

func itemLess(a, b Item) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Token != b.Token {
		return a.Token < b.Token
	}
	return a.Literal < b.Literal
}

type ErrorKind int

const (
	ErrExpected ErrorKind = iota + 1
	ErrNotAssignable
	ErrTooDeep
)

// level is the specificity of an error detected at a given offset.
type level int

const (
	// levelSoft marks a probe for something optional: an operator that
	// could have continued an expression, or the leading keyword of an
	// alternative that did not apply.
	levelSoft level = iota + 1
	// levelHard marks an expectation inside a production that was
	// already committed to.
	levelHard
	levelTooDeep
	levelNotAssignable
)

// Error is a parse failure. Errors are totally ordered (see Merge) so that
// the most specific one found anywhere in the search can be reported. The
// nil *Error is the neutral element of Merge.
type Error struct {
	Kind     ErrorKind
	Span     Span
	Expected []Item
	Found    Item
	Limit    int
	Context  []string

	at    int
	level level
}

func expectedAt(lvl level, tok Token, items ...Item) *Error {
	expected := append([]Item(nil), items...)
	sort.Slice(expected, func(i, j int) bool { return itemLess(expected[i], expected[j]) })
	return &Error{
		Kind:     ErrExpected,
		Span:     tok.Span,
		Expected: expected,
		Found:    foundItem(tok),
		at:       tok.Span.depth(),
		level:    lvl,
	}
}

// notAssignable anchors the error at the rejected target while ranking it
// at the assignment operator, where the failure was detected.
func notAssignable(target Span, op Token) *Error {
	return &Error{
		Kind:  ErrNotAssignable,
		Span:  target,
		Found: foundItem(op),
		at:    op.Span.depth(),
		level: levelNotAssignable,
	}
}

func tooDeep(tok Token, limit int) *Error {
	return &Error{
		Kind:  ErrTooDeep,
		Span:  tok.Span,
		Found: foundItem(tok),
		Limit: limit,
		at:    tok.Span.depth(),
		level: levelTooDeep,
	}
}

// Message describes the error without its location or breadcrumb.
func (e *Error) Message() string {
	switch e.Kind {
	case ErrNotAssignable:
		return "expression is not assignable"
	case ErrTooDeep:
		return fmt.Sprintf("nesting exceeds the maximum depth of %d", e.Limit)
	}
	names := make([]string, len(e.Expected))
	for i, item := range e.Expected {
		names[i] = item.String()
	}
	return fmt.Sprintf("expected %s, found %s", joinAlternatives(names), e.Found)
}

func (e *Error) Error() string {
	var sb strings.Builder
	if line, col, ok := e.Span.Pos(); ok {
		if e.Span.Start.File != "" {
			fmt.Fprintf(&sb, "%s:", e.Span.Start.File)
		}
		fmt.Fprintf(&sb, "%d:%d: ", line, col)
	} else if e.Span.IsEOF() {
		sb.WriteString("end of input: ")
	}
	sb.WriteString(e.Message())
	for _, name := range e.Context {
		sb.WriteString(" (while parsing ")
		sb.WriteString(name)
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *Error) Location() Span { return e.Span }

// WithContext records that e surfaced while parsing the named production.
// The rank of the error is unchanged.
func (e *Error) WithContext(name string) *Error {
	if e == nil {
		return nil
	}
	if n := len(e.Context); n > 0 && e.Context[n-1] == name {
		return e
	}
	out := *e
	out.Context = make([]string, len(e.Context), len(e.Context)+1)
	copy(out.Context, e.Context)
	out.Context = append(out.Context, name)
	return &out
}

// Merge returns the more informative of e and o. Errors detected deeper in
// the input win; at the same offset the more specific level wins. Two
// expectations of equal rank are joined into one expecting either. Merge is
// commutative and associative, with nil as its identity.
func (e *Error) Merge(o *Error) *Error {
	if e == nil {
		return o
	}
	if o == nil {
		return e
	}
	if c := compareRank(e, o); c != 0 {
		if c > 0 {
			return e
		}
		return o
	}
	preferred := e
	if tieBreak(e, o) < 0 {
		preferred = o
	}
	if e.Kind != ErrExpected || o.Kind != ErrExpected {
		return preferred
	}
	out := *preferred
	out.Expected = unionItems(e.Expected, o.Expected)
	return &out
}

// Rank compares e and o: positive when e would win a Merge outright.
func Rank(e, o *Error) int {
	switch {
	case e == nil && o == nil:
		return 0
	case e == nil:
		return -1
	case o == nil:
		return 1
	}
	return compareRank(e, o)
}

func compareRank(e, o *Error) int {
	if e.at != o.at {
		return cmpInt(e.at, o.at)
	}
	if e.level != o.level {
		return cmpInt(int(e.level), int(o.level))
	}
	return cmpInt(int(e.Kind), int(o.Kind))
}

// tieBreak orders errors of equal rank by everything except their expected
// sets, so that the choice does not depend on merge order.
func tieBreak(e, o *Error) int {
	if len(e.Context) != len(o.Context) {
		return cmpInt(len(e.Context), len(o.Context))
	}
	if c := strings.Compare(strings.Join(o.Context, "\x00"), strings.Join(e.Context, "\x00")); c != 0 {
		return c
	}
	if e.Span.Start.Offset != o.Span.Start.Offset {
		return cmpInt(o.Span.Start.Offset, e.Span.Start.Offset)
	}
	if e.Span.End.Offset != o.Span.End.Offset {
		return cmpInt(e.Span.End.Offset, o.Span.End.Offset)
	}
	if e.Limit != o.Limit {
		return cmpInt(e.Limit, o.Limit)
	}
	if itemLess(e.Found, o.Found) {
		return -1
	}
	if itemLess(o.Found, e.Found) {
		return 1
	}
	return 0
}

func unionItems(a, b []Item) []Item {
	out := make([]Item, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var next Item
		switch {
		case j >= len(b) || (i < len(a) && itemLess(a[i], b[j])):
			next = a[i]
			i++
		case i >= len(a) || itemLess(b[j], a[i]):
			next = b[j]
			j++
		default:
			next = a[i]
			i++
			j++
		}
		if n := len(out); n > 0 && out[n-1] == next {
			continue
		}
		out = append(out, next)
	}
	return out
}

func joinAlternatives(names []string) string {
	switch len(names) {
	case 0:
		return "nothing"
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// IsIncomplete reports whether err is a parse error that ran into the end
// of the input, meaning more input could still make it parse.
func IsIncomplete(err error) bool {
	var perr *Error
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Kind == ErrExpected && perr.Span.IsEOF()
}
