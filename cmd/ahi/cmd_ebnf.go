package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/quill/grammar"
	"github.com/dhamidi/quill/quill/codebase"
	"github.com/dhamidi/quill/quill/parser"
)

func newEbnfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newEbnfCheckCmd())
	cmd.AddCommand(newEbnfConformCmd())

	return cmd
}

func newEbnfCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:           "check <file>",
		Short:         "Parse and verify an EBNF grammar file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			g, err := ebnf.Parse(filename, f)
			if err != nil {
				printErrors(cmd.OutOrStdout(), err)
				return err
			}

			if startProduction == "" {
				return nil
			}
			if err := ebnf.Verify(g, startProduction); err != nil {
				printErrors(cmd.OutOrStdout(), err)
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

// newEbnfConformCmd runs the parser and the grammar recognizer over the same
// files and reports every file on which they disagree.
func newEbnfConformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "conform [path...]",
		Short:         "Compare the parser with quill.ebnf on .ql files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			out := cmd.OutOrStdout()
			var files, mismatches int
			for _, root := range args {
				cb := codebase.New(root)
				if err := cb.ScanAll(); err != nil {
					return fmt.Errorf("scan %s: %w", root, err)
				}
				for _, path := range cb.Paths() {
					files++
					if msg, ok := conform(cb.GetFile(path)); !ok {
						mismatches++
						fmt.Fprintf(out, "%s: %s\n", filepath.ToSlash(path), msg)
					}
				}
			}
			fmt.Fprintf(out, "%d files, %d disagreements\n", files, mismatches)
			if mismatches > 0 {
				return fmt.Errorf("parser and grammar disagree on %d files", mismatches)
			}
			return nil
		},
	}
	return cmd
}

// conform reports whether the parser and the grammar agree on f. Lex errors
// and the depth limit are outside the grammar and count as agreement.
func conform(f *codebase.FileInfo) (string, bool) {
	var lexErr *parser.LexError
	if errors.As(f.ParseErr, &lexErr) {
		return "", true
	}
	var parseErr *parser.Error
	if errors.As(f.ParseErr, &parseErr) && parseErr.Kind == parser.ErrTooDeep {
		return "", true
	}
	gerr := grammar.Check(f.Source)
	switch {
	case f.ParseErr == nil && gerr != nil:
		return "parser accepts, grammar rejects: " + gerr.Error(), false
	case f.ParseErr != nil && gerr == nil:
		return "grammar accepts, parser rejects: " + f.ParseErr.Error(), false
	}
	return "", true
}

func printErrors(w io.Writer, err error) {
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(w, v.Index(i).Interface())
		}
	} else {
		fmt.Fprintln(w, err)
	}
}
