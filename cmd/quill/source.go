package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dhamidi/quill/format"
	"github.com/dhamidi/quill/quill/codebase"
	"github.com/dhamidi/quill/quill/parser"
)

// readSource loads the file named by args, or stdin when there is none or
// it is "-".
func readSource(args []string, stdin io.Reader) (*parser.Source, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return parser.NewSource("<stdin>", string(data)), nil
	}
	filename := args[0]
	if ext := filepath.Ext(filename); ext != codebase.Extension {
		log.Warningf("%s does not have the %s extension", filename, codebase.Extension)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return parser.NewSource(filename, string(data)), nil
}

// report renders err against src on w and returns errReported so the
// command exits non-zero without printing it twice.
func report(w io.Writer, src *parser.Source, err error) error {
	if encErr := format.NewDiagnosticEncoder(w, src).Encode(err); encErr != nil {
		return fmt.Errorf("render diagnostic: %w", encErr)
	}
	return errReported
}

func parserOptions(maxDepth int) []parser.Option {
	if maxDepth <= 0 {
		return nil
	}
	return []parser.Option{parser.WithMaxDepth(maxDepth)}
}
