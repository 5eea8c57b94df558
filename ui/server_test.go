package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		ok       bool
		tree     string
		astKind  string
		errorMsg string
	}{
		{
			name:    "program",
			req:     Request{Source: "var x = 1;"},
			ok:      true,
			tree:    "Program",
			astKind: "Program",
		},
		{
			name:    "expression",
			req:     Request{Source: "1 + 2", Mode: "expr"},
			ok:      true,
			tree:    "Binary add",
			astKind: "Binary",
		},
		{
			name:     "missing semicolon",
			req:      Request{Source: "print 1"},
			errorMsg: "expected ';'",
		},
		{
			name:     "lex error",
			req:      Request{Source: `print "open;`},
			errorMsg: "unterminated string literal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.req)
			if got.OK != tt.ok {
				t.Fatalf("OK = %v, want %v (diagnostic %q)", got.OK, tt.ok, got.Diagnostic)
			}
			if tt.ok {
				if !strings.HasPrefix(got.Tree, tt.tree) {
					t.Errorf("Tree = %q, want prefix %q", got.Tree, tt.tree)
				}
				if got.AST == nil || got.AST.Kind != tt.astKind {
					t.Errorf("AST = %+v, want kind %s", got.AST, tt.astKind)
				}
				return
			}
			if got.Error == nil || !strings.HasPrefix(got.Error.Message, tt.errorMsg) {
				t.Errorf("Error = %+v, want message %q", got.Error, tt.errorMsg)
			}
			if !strings.Contains(got.Diagnostic, tt.errorMsg) {
				t.Errorf("Diagnostic = %q, want it to mention %q", got.Diagnostic, tt.errorMsg)
			}
		})
	}
}

func TestParseErrorInfo(t *testing.T) {
	eof := Parse(Request{Source: "print 1"})
	if eof.Error == nil || !eof.Error.EOF || eof.Error.Line != 0 {
		t.Errorf("end of input error = %+v", eof.Error)
	}
	found := false
	for _, item := range eof.Error.Expected {
		found = found || item == "';'"
	}
	if !found {
		t.Errorf("Expected = %v, want ';'", eof.Error.Expected)
	}

	lex := Parse(Request{Source: `print "open;`})
	if lex.Error == nil || lex.Error.Line != 1 || lex.Error.Column != 7 {
		t.Errorf("lex error = %+v, want 1:7", lex.Error)
	}

	ctx := Parse(Request{Source: "print [1, 2;"})
	if ctx.Error == nil || len(ctx.Error.Context) == 0 {
		t.Errorf("list error = %+v, want a parsing context", ctx.Error)
	}
}

func TestFormat(t *testing.T) {
	got := Format(Request{Source: "var x=1;"})
	if !got.OK || got.Formatted != "var x = 1;\n" {
		t.Errorf("Format = %+v", got)
	}
	bad := Format(Request{Source: "var x="})
	if bad.OK || bad.Error == nil {
		t.Errorf("Format of invalid source = %+v", bad)
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"index", http.MethodGet, "/", http.StatusOK, "quill playground"},
		{"index shows sample tree", http.MethodGet, "/", http.StatusOK, "Syntax tree"},
		{"stylesheet", http.MethodGet, "/static/style.css", http.StatusOK, "font-family"},
		{"unknown page", http.MethodGet, "/nope", http.StatusNotFound, ""},
		{"parse needs POST", http.MethodGet, "/parse", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body does not contain %q:\n%s", tt.body, rec.Body.String())
			}
		})
	}
}

func TestServerParseJSON(t *testing.T) {
	s := newTestServer(t)
	body := strings.NewReader(`{"source": "x = ;"}`)
	req := httptest.NewRequest(http.MethodPost, "/parse", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got Result
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.OK || got.Error == nil || got.Error.Line != 1 {
		t.Errorf("Result = %+v", got)
	}
	if !strings.Contains(got.Diagnostic, "|1:") {
		t.Errorf("Diagnostic has no snippet: %q", got.Diagnostic)
	}
}

func TestServerForm(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		path   string
		form   url.Values
		status int
		body   string
	}{
		{"parse", "/parse", url.Values{"source": {"print 1;"}}, http.StatusOK, "Syntax tree"},
		{"parse expression", "/parse", url.Values{"source": {"a.b"}, "mode": {"expr"}}, http.StatusOK, "Dot"},
		{"format", "/format", url.Values{"source": {"print 1+2;"}}, http.StatusOK, "print 1 + 2;"},
		{"error", "/parse", url.Values{"source": {"print"}}, http.StatusOK, "end of input"},
		{"bad mode", "/parse", url.Values{"source": {"1"}, "mode": {"bogus"}}, http.StatusBadRequest, "unknown mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body does not contain %q:\n%s", tt.body, rec.Body.String())
			}
		})
	}
}
