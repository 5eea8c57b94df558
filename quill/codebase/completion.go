package codebase

import (
	"sort"
	"strings"

	"github.com/dhamidi/quill/quill/parser"
)

type CompletionKind int

const (
	CompletionKindVariable CompletionKind = iota
	CompletionKindParameter
	CompletionKindKeyword
)

type CompletionItem struct {
	Label  string
	Kind   CompletionKind
	Detail string
}

var completionKeywords = []string{
	"and", "as", "clone", "else", "false", "for", "if", "in", "input",
	"mirror", "null", "or", "print", "return", "true", "var", "while", "xor",
}

// CompletionsAtPoint offers the names bound anywhere in the file and the
// language keywords, filtered by the identifier prefix that ends at the
// given 1-based line and column.
func (c *Codebase) CompletionsAtPoint(path string, line, column int) []CompletionItem {
	f := c.GetFile(path)
	if f == nil {
		return nil
	}
	prefix := prefixAt(f.Source, line, column)

	seen := make(map[string]bool)
	var items []CompletionItem
	add := func(name string, kind CompletionKind, detail string) {
		if seen[name] || !strings.HasPrefix(name, prefix) {
			return
		}
		seen[name] = true
		items = append(items, CompletionItem{Label: name, Kind: kind, Detail: detail})
	}

	if f.LastGood != nil {
		parser.Walk(f.LastGood, func(s parser.Syntax) bool {
			switch n := s.(type) {
			case parser.Node[parser.Stmt]:
				switch stmt := n.Value.(type) {
				case *parser.DeclStmt:
					add(stmt.Name.Value, CompletionKindVariable, "var")
				case *parser.ForStmt:
					add(stmt.Var.Value, CompletionKindVariable, "for")
				}
			case parser.Node[parser.Args]:
				for _, arg := range n.Value {
					add(arg.Value, CompletionKindParameter, "parameter")
				}
			}
			return true
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })

	for _, kw := range completionKeywords {
		add(kw, CompletionKindKeyword, "keyword")
	}
	return items
}

// prefixAt returns the identifier characters immediately before the
// position.
func prefixAt(src *parser.Source, line, column int) string {
	text, ok := src.Line(line)
	if !ok {
		return ""
	}
	runes := []rune(text)
	end := column - 1
	if end > len(runes) {
		end = len(runes)
	}
	start := end
	for start > 0 && isIdentRune(runes[start-1]) {
		start--
	}
	if start < 0 || start > end {
		return ""
	}
	return string(runes[start:end])
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r > 127
}
