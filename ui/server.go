package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/quill/format"
	"github.com/dhamidi/quill/quill/parser"
)

//go:embed static templates
var embeddedFS embed.FS

var log = commonlog.GetLogger("quill.ui")

// maxSourceBytes bounds a submitted program.
const maxSourceBytes = 1 << 20

const sampleProgram = `var greet = |name| {
    return "hello, " + name;
};

for i in 0..3 {
    print greet("quill") as string;
}
`

type Server struct {
	staticFS   fs.FS
	templateFS fs.FS
	funcMap    template.FuncMap
	mux        *http.ServeMux
	opts       []parser.Option
}

func NewServer(opts ...parser.Option) (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"join": strings.Join,
		"add": func(a, b int) int {
			return a + b
		},
	}

	// Fail at startup rather than on the first request.
	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		staticFS:   staticFS,
		templateFS: templateFS,
		funcMap:    funcMap,
		mux:        http.NewServeMux(),
		opts:       opts,
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /parse", s.handleParse)
	s.mux.HandleFunc("POST /format", s.handleFormat)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Debugf("%s %s", r.Method, r.URL.Path)
	s.mux.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
	}
}

// Request is a program submitted to the playground.
type Request struct {
	Source string `json:"source"`
	// Mode is "program" (the default) or "expr".
	Mode string `json:"mode,omitempty"`
}

// Result is the outcome of parsing a Request.
type Result struct {
	OK         bool            `json:"ok"`
	AST        *format.ASTNode `json:"ast,omitempty"`
	Tree       string          `json:"tree,omitempty"`
	Formatted  string          `json:"formatted,omitempty"`
	Diagnostic string          `json:"diagnostic,omitempty"`
	Error      *ErrorInfo      `json:"error,omitempty"`
}

// ErrorInfo is the structured form of a parse or lex error.
type ErrorInfo struct {
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	EOF      bool     `json:"eof,omitempty"`
	Context  []string `json:"context,omitempty"`
	Expected []string `json:"expected,omitempty"`
}

// Parse parses req and describes the tree or the error.
func Parse(req Request, opts ...parser.Option) Result {
	src := parser.NewSource("playground.ql", req.Source)
	var (
		node parser.Syntax
		err  error
	)
	switch req.Mode {
	case "expr":
		var expr parser.Node[parser.Expr]
		expr, err = parser.ParseExprSource(src, opts...)
		node = expr
	default:
		var prog *parser.Program
		prog, err = parser.ParseSource(src, opts...)
		node = prog
	}
	if err != nil {
		return failure(src, err)
	}

	var tree bytes.Buffer
	if err := format.NewTreeEncoder(&tree).Encode(node); err != nil {
		return failure(src, err)
	}
	return Result{OK: true, AST: format.NodeToJSON(node), Tree: tree.String()}
}

// Format pretty-prints req.Source as a program.
func Format(req Request, opts ...parser.Option) Result {
	src := parser.NewSource("playground.ql", req.Source)
	out, err := format.PrettyPrint(src, opts...)
	if err != nil {
		return failure(src, err)
	}
	return Result{OK: true, Formatted: string(out)}
}

func failure(src *parser.Source, err error) Result {
	var diag bytes.Buffer
	if encErr := format.NewDiagnosticEncoder(&diag, src).Encode(err); encErr != nil {
		diag.WriteString(err.Error())
	}
	return Result{Diagnostic: diag.String(), Error: errorInfo(err)}
}

func errorInfo(err error) *ErrorInfo {
	info := &ErrorInfo{Message: err.Error()}
	var span parser.Span
	var perr *parser.Error
	var lerr *parser.LexError
	switch {
	case errors.As(err, &perr):
		info.Message = perr.Message()
		info.Context = perr.Context
		for _, item := range perr.Expected {
			info.Expected = append(info.Expected, item.String())
		}
		span = perr.Span
	case errors.As(err, &lerr):
		info.Message = lerr.Message
		span = lerr.Span
	default:
		return info
	}
	info.EOF = span.IsEOF()
	if line, col, ok := span.Pos(); ok {
		info.Line, info.Column = line, col
	}
	return info
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	req := Request{Source: sampleProgram}
	data := struct {
		Request Request
		Result  Result
	}{
		Request: req,
		Result:  Parse(req, s.opts...),
	}
	s.render(w, "index.html", data)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, Parse)
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, Format)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, run func(Request, ...parser.Option) Result) {
	req, err := decodeRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := run(req, s.opts...)
	if !result.OK {
		log.Debugf("%s: %s", r.URL.Path, result.Error.Message)
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Errorf("encode result: %s", err)
		}
		return
	}
	s.render(w, "_result.html", result)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (Request, error) {
	var req Request
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid JSON: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("invalid form data: %w", err)
		}
		req.Source = r.FormValue("source")
		req.Mode = r.FormValue("mode")
	}
	switch req.Mode {
	case "", "program", "expr":
	default:
		return req, fmt.Errorf("unknown mode %q", req.Mode)
	}
	return req, nil
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFS serves files from primaryPath on disk when they exist, so the
// templates can be edited without rebuilding.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
