package codebase

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/quill/quill/parser"
)

// Extension is the file extension of quill sources.
const Extension = ".ql"

var log = commonlog.GetLogger("quill.codebase")

// Codebase holds the parsed state of every quill file under a root
// directory. It is safe for concurrent use.
type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	opts    []parser.Option
	files   map[string]*FileInfo
}

type FileInfo struct {
	Path     string
	Source   *parser.Source
	Program  *parser.Program
	ParseErr error

	// LastGood is the most recent program that parsed, kept while the
	// file is being edited into a broken state.
	LastGood *parser.Program
}

// Diagnostic is a parse or lex failure located in a file.
type Diagnostic struct {
	Path    string
	Span    parser.Span
	Message string
	Context []string
	Err     error
}

func New(rootDir string, opts ...parser.Option) *Codebase {
	return &Codebase{
		rootDir: rootDir,
		opts:    opts,
		files:   make(map[string]*FileInfo),
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

func (c *Codebase) ScanAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != c.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == Extension {
			if err := c.ScanFile(path); err != nil {
				log.Warningf("could not read %s: %s", path, err)
			}
		}
		return nil
	})
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.UpdateFile(path, content)
	return nil
}

// UpdateFile reparses path from content and returns the new file state.
func (c *Codebase) UpdateFile(path string, content []byte) *FileInfo {
	src := parser.NewSource(filepath.Base(path), string(content))
	prog, err := parser.ParseSource(src, c.opts...)

	c.mu.Lock()
	defer c.mu.Unlock()

	info := &FileInfo{
		Path:     path,
		Source:   src,
		Program:  prog,
		ParseErr: err,
		LastGood: prog,
	}
	if err != nil {
		if prev := c.files[path]; prev != nil {
			info.LastGood = prev.LastGood
		}
		log.Debugf("%s: %s", path, err)
	}
	c.files[path] = info
	return info
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Paths returns the tracked file paths in sorted order.
func (c *Codebase) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Diagnostics reports the failure of every file that did not parse, ordered
// by path.
func (c *Codebase) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for _, path := range c.Paths() {
		if d, ok := c.FileDiagnostic(path); ok {
			out = append(out, d)
		}
	}
	return out
}

func (c *Codebase) FileDiagnostic(path string) (Diagnostic, bool) {
	f := c.GetFile(path)
	if f == nil || f.ParseErr == nil {
		return Diagnostic{}, false
	}
	return NewDiagnostic(path, f.ParseErr), true
}

// NewDiagnostic extracts the location and message of a parse or lex error.
func NewDiagnostic(path string, err error) Diagnostic {
	d := Diagnostic{Path: path, Span: parser.EmptySpan(), Message: err.Error(), Err: err}
	switch e := err.(type) {
	case *parser.Error:
		d.Span = e.Span
		d.Message = e.Message()
		d.Context = e.Context
	case *parser.LexError:
		d.Span = e.Span
		d.Message = e.Message
	}
	return d
}

// NodeAtPoint returns the innermost node at a 1-based line and column,
// looking at the last program of path that parsed.
func (c *Codebase) NodeAtPoint(path string, line, column int) parser.Syntax {
	f := c.GetFile(path)
	if f == nil || f.LastGood == nil {
		return nil
	}
	offset, ok := offsetAt(f.LastGood.Source, line, column)
	if !ok {
		return nil
	}
	return parser.NodeAt(f.LastGood, offset)
}

// offsetAt converts a 1-based line and column (in characters) to a byte
// offset into src.
func offsetAt(src *parser.Source, line, column int) (int, bool) {
	if src == nil || line < 1 || column < 1 {
		return 0, false
	}
	offset := 0
	for n := 1; n < line; n++ {
		i := strings.IndexByte(src.Text[offset:], '\n')
		if i < 0 {
			return 0, false
		}
		offset += i + 1
	}
	col := 1
	for i, r := range src.Text[offset:] {
		if col == column {
			return offset + i, true
		}
		if r == '\n' {
			break
		}
		col++
	}
	if col == column {
		return offset + lineLength(src.Text[offset:]), true
	}
	return 0, false
}

func lineLength(s string) int {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return i
	}
	return len(s)
}
