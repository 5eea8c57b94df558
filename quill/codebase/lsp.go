package codebase

import (
	"bytes"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/quill/format"
	"github.com/dhamidi/quill/quill/parser"
)

const lsName = "quill"

type LSPServer struct {
	codebase *Codebase
	handler  protocol.Handler
	server   *server.Server
	version  string
	opts     []parser.Option
}

func NewLSPServer(version string, opts ...parser.Option) *LSPServer {
	ls := &LSPServer{
		version: version,
		opts:    opts,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentHover:      ls.textDocumentHover,
		TextDocumentCompletion: ls.textDocumentCompletion,
		TextDocumentFormatting: ls.textDocumentFormatting,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.codebase = New(rootDir, ls.opts...)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.HoverProvider = true
	capabilities.DocumentFormattingProvider = true
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// initialized scans the workspace and reports every file that fails to
// parse.
func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.codebase.ScanAll(); err != nil {
		log.Errorf("scanning %s: %s", ls.codebase.RootDir(), err)
	}
	for _, path := range ls.codebase.Paths() {
		ls.publishDiagnostics(ctx, path)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.UpdateFile(path, []byte(params.TextDocument.Text))
	ls.publishDiagnostics(ctx, path)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.codebase.UpdateFile(path, []byte(textChange.Text))
			ls.publishDiagnostics(ctx, path)
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	// The editor buffer may have been discarded; fall back to the file on disk.
	if err := ls.codebase.ScanFile(path); err != nil {
		ls.codebase.RemoveFile(path)
	}
	ls.publishDiagnostics(ctx, path)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.codebase.UpdateFile(path, []byte(*params.Text))
	} else if err := ls.codebase.ScanFile(path); err != nil {
		log.Warningf("could not read %s: %s", path, err)
	}
	ls.publishDiagnostics(ctx, path)
	return nil
}

func (ls *LSPServer) publishDiagnostics(ctx *glsp.Context, path string) {
	diagnostics := []protocol.Diagnostic{}
	if d, ok := ls.codebase.FileDiagnostic(path); ok {
		diagnostics = append(diagnostics, toProtocolDiagnostic(d, ls.sourceOf(path)))
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Diagnostics: diagnostics,
	})
}

func (ls *LSPServer) sourceOf(path string) *parser.Source {
	if f := ls.codebase.GetFile(path); f != nil {
		return f.Source
	}
	return nil
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	line := int(params.Position.Line) + 1
	col := int(params.Position.Character) + 1

	node := ls.codebase.NodeAtPoint(path, line, col)
	if node == nil {
		return nil, nil
	}
	rng := spanToRange(node.SourceSpan(), ls.sourceOf(path))
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindPlainText,
			Value: hoverText(node),
		},
		Range: &rng,
	}, nil
}

// hoverText lists the node under the cursor followed by its children.
func hoverText(node parser.Syntax) string {
	var sb strings.Builder
	sb.WriteString(parser.Describe(node))
	for _, child := range parser.Children(node) {
		sb.WriteString("\n  ")
		sb.WriteString(parser.Describe(child))
	}
	return sb.String()
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}

	line := int(params.Position.Line) + 1
	col := int(params.Position.Character) + 1

	completions := ls.codebase.CompletionsAtPoint(path, line, col)
	if len(completions) == 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range completions {
		kind := toProtocolKind(c.Kind)
		detail := c.Detail
		items = append(items, protocol.CompletionItem{
			Label:  c.Label,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items, nil
}

// textDocumentFormatting replaces the whole document with its canonical
// layout. Documents that do not parse are left alone.
func (ls *LSPServer) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	f := ls.codebase.GetFile(path)
	if f == nil || f.ParseErr != nil {
		return nil, nil
	}
	formatted, err := format.PrettyPrint(f.Source, ls.opts...)
	if err != nil || bytes.Equal(formatted, []byte(f.Source.Text)) {
		return nil, nil
	}
	return []protocol.TextEdit{{
		Range:   wholeDocument(f.Source),
		NewText: string(formatted),
	}}, nil
}

func toProtocolDiagnostic(d Diagnostic, src *parser.Source) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	message := d.Message
	for _, ctx := range d.Context {
		message += " (while parsing " + ctx + ")"
	}
	return protocol.Diagnostic{
		Range:    spanToRange(d.Span, src),
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// spanToRange converts a span to a zero-based range. End of input maps to
// the position just past the last non-blank line.
func spanToRange(span parser.Span, src *parser.Source) protocol.Range {
	if _, _, ok := span.Pos(); ok {
		return protocol.Range{
			Start: protocol.Position{Line: uint32(span.Start.Line - 1), Character: uint32(span.Start.Column - 1)},
			End:   protocol.Position{Line: uint32(span.End.Line - 1), Character: uint32(span.End.Column - 1)},
		}
	}
	if span.IsEOF() {
		if text, n, ok := src.LastLine(); ok {
			pos := protocol.Position{Line: uint32(n - 1), Character: uint32(utf8.RuneCountInString(text))}
			return protocol.Range{Start: pos, End: pos}
		}
	}
	return protocol.Range{}
}

func wholeDocument(src *parser.Source) protocol.Range {
	lines := strings.Split(src.Text, "\n")
	last := lines[len(lines)-1]
	return protocol.Range{
		End: protocol.Position{Line: uint32(len(lines) - 1), Character: uint32(utf8.RuneCountInString(last))},
	}
}

func toProtocolKind(kind CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case CompletionKindVariable:
		return protocol.CompletionItemKindVariable
	case CompletionKindParameter:
		return protocol.CompletionItemKindVariable
	case CompletionKindKeyword:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindText
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) protocol.DocumentUri {
	if strings.Contains(path, "://") {
		return protocol.DocumentUri(path)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return protocol.DocumentUri(u.String())
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
