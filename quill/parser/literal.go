package parser

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errBadEscape = errors.New("invalid escape sequence")

func unescape(r rune) (rune, bool) {
	switch r {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\', '"', '\'':
		return r, true
	}
	return 0, false
}

// unquoteString decodes a double-quoted string literal.
func unquoteString(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return "", errors.New("string literal is not quoted")
	}
	body := lit[1 : len(lit)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var sb strings.Builder
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRuneInString(body[i:])
		i += size
		if r != '\\' {
			sb.WriteRune(r)
			continue
		}
		if i >= len(body) {
			return "", errBadEscape
		}
		e, size := utf8.DecodeRuneInString(body[i:])
		i += size
		out, ok := unescape(e)
		if !ok {
			return "", errBadEscape
		}
		sb.WriteRune(out)
	}
	return sb.String(), nil
}

// unquoteChar decodes a single-quoted character literal holding exactly one
// character or escape.
func unquoteChar(lit string) (rune, error) {
	if len(lit) < 3 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return 0, errors.New("character literal is empty or not quoted")
	}
	body := lit[1 : len(lit)-1]
	r, size := utf8.DecodeRuneInString(body)
	if r == utf8.RuneError && size <= 1 {
		return 0, errors.New("character literal is not valid UTF-8")
	}
	if r == '\\' {
		e, esize := utf8.DecodeRuneInString(body[size:])
		out, ok := unescape(e)
		if !ok {
			return 0, errBadEscape
		}
		size += esize
		r = out
	}
	if size != len(body) {
		return 0, errors.New("character literal holds more than one character")
	}
	return r, nil
}

func parseNumber(lit string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(lit, "_", ""), 64)
}

var escapes = map[rune]string{
	'\n': `\n`,
	'\t': `\t`,
	'\r': `\r`,
	0:    `\0`,
	'\\': `\\`,
}

// QuoteString renders s as a string literal that unquotes back to s.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		if e, ok := escapes[r]; ok {
			sb.WriteString(e)
		} else if r == '"' {
			sb.WriteString(`\"`)
		} else {
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// QuoteChar renders r as a character literal.
func QuoteChar(r rune) string {
	if e, ok := escapes[r]; ok {
		return "'" + e + "'"
	}
	if r == '\'' {
		return `'\''`
	}
	return "'" + string(r) + "'"
}

// FormatNumber renders a number literal the lexer reads back to v.
func FormatNumber(v float64) string {
	if math.IsInf(v, 1) {
		return "1e999"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
