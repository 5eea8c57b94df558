package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/quill/grammar"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammar [file...]",
		Short: "Print the EBNF grammar, or check files against it",
		Long: `Without arguments, print the EBNF grammar of quill.

With files, check each one against the grammar using a general
context-free recognizer that is independent of the parser.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if _, err := grammar.Load(); err != nil {
					return err
				}
				_, err := cmd.OutOrStdout().Write(grammar.Source())
				return err
			}

			failed := false
			for _, arg := range args {
				src, err := readSource([]string{arg}, cmd.InOrStdin())
				if err != nil {
					return err
				}
				if err := grammar.Check(src); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					failed = true
				}
			}
			if failed {
				return errReported
			}
			return nil
		},
	}

	return cmd
}
