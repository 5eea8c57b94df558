package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/dhamidi/quill/format"
	"github.com/dhamidi/quill/quill/parser"
)

const (
	historyFile = ".quill_history"
	promptMain  = "quill> "
	promptCont  = "  ...> "
)

const replHelp = `Enter a statement or an expression to see its syntax tree.
Input continues on the next line while it is incomplete; an empty line
ends it early.

  :format tree|json|fmt   choose how results are shown
  :help                   show this help
  :quit                   leave the REPL
`

func newReplCmd() *cobra.Command {
	var outputFormat string
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively parse quill input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &repl{out: cmd.OutOrStdout(), format: outputFormat, opts: parserOptions(maxDepth)}
			if err := r.setFormat(outputFormat); err != nil {
				return err
			}
			return r.run()
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format (tree, json, fmt)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", parser.DefaultMaxDepth, "maximum nesting depth")

	return cmd
}

type repl struct {
	out    io.Writer
	format string
	opts   []parser.Option
}

func (r *repl) run() error {
	fmt.Fprintln(r.out, "quill "+version+", :help for help")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		input, ok := r.readByParseProbe(ln)
		if !ok {
			fmt.Fprintln(r.out)
			break
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := r.command(trimmed); quit {
				break
			}
			continue
		}
		r.eval(input)
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	} else {
		log.Debugf("could not save history: %s", err)
	}
	return nil
}

// readByParseProbe reads lines until the buffer parses, fails for a reason
// more input cannot fix, or an empty continuation line ends it.
func (r *repl) readByParseProbe(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C abandons the current input.
			return "", true
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if r.probe(b.String()) != probeIncomplete {
			return b.String(), true
		}
	}
}

type probeResult int

const (
	probeComplete probeResult = iota
	probeIncomplete
	probeInvalid
)

// probe classifies input as a whole program or expression, as a prefix of
// one, or as broken regardless of what follows.
func (r *repl) probe(input string) probeResult {
	if strings.HasPrefix(strings.TrimSpace(input), ":") {
		return probeComplete
	}
	src := parser.NewSource("<repl>", input)
	_, progErr := parser.ParseSource(src, r.opts...)
	if progErr == nil {
		return probeComplete
	}
	if _, exprErr := parser.ParseExprSource(src, r.opts...); exprErr == nil {
		return probeComplete
	}
	if parser.IsIncomplete(progErr) || unterminatedComment(progErr) {
		return probeIncomplete
	}
	return probeInvalid
}

func unterminatedComment(err error) bool {
	var lexErr *parser.LexError
	return errors.As(err, &lexErr) && lexErr.Message == "unterminated block comment"
}

// eval parses input as a program, or failing that as an expression, and
// prints the result in the current format.
func (r *repl) eval(input string) {
	src := parser.NewSource("<repl>", input)
	var node parser.Syntax
	prog, err := parser.ParseSource(src, r.opts...)
	if err == nil {
		node = prog
	} else if expr, exprErr := parser.ParseExprSource(src, r.opts...); exprErr == nil {
		node = expr
	} else {
		_ = format.NewDiagnosticEncoder(r.out, src).Encode(err)
		return
	}

	var encErr error
	switch r.format {
	case "json":
		encErr = format.NewASTJSONEncoder(r.out).Encode(node)
		fmt.Fprintln(r.out)
	case "fmt":
		if _, isProgram := node.(*parser.Program); !isProgram {
			encErr = format.NewTreeEncoder(r.out).Encode(node)
			break
		}
		var out []byte
		out, encErr = format.PrettyPrint(src, r.opts...)
		if encErr == nil {
			_, encErr = r.out.Write(out)
		}
	default:
		encErr = format.NewTreeEncoder(r.out).Encode(node)
	}
	if encErr != nil {
		fmt.Fprintf(r.out, "error: %s\n", encErr)
	}
}

func (r *repl) setFormat(name string) error {
	switch name {
	case "tree", "json", "fmt":
		r.format = name
		return nil
	}
	return fmt.Errorf("unknown format: %s", name)
}

// command runs a ':' command and reports whether the REPL should exit.
func (r *repl) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":q", ":quit", ":exit":
		return true
	case ":help", ":h":
		fmt.Fprint(r.out, replHelp)
	case ":format":
		if len(fields) != 2 {
			fmt.Fprintf(r.out, "format is %s\n", r.format)
			break
		}
		if err := r.setFormat(fields[1]); err != nil {
			fmt.Fprintln(r.out, err)
		}
	default:
		fmt.Fprintf(r.out, "unknown command %s, :help for help\n", fields[0])
	}
	return false
}
