package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dhamidi/quill/format"
	"github.com/dhamidi/quill/quill/parser"
)

func newTokensCmd() *cobra.Command {
	var withComments bool

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream of a quill program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			tokens, err := parser.Tokenize(src)
			if err != nil {
				return report(cmd.ErrOrStderr(), src, err)
			}
			if withComments {
				comments, err := parser.Comments(src)
				if err != nil {
					return report(cmd.ErrOrStderr(), src, err)
				}
				tokens = append(tokens, comments...)
				sort.SliceStable(tokens, func(i, j int) bool {
					return tokens[i].Span.Start.Offset < tokens[j].Span.Start.Offset
				})
			}
			if err := format.NewLineEncoder(cmd.OutOrStdout()).Encode(tokens); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withComments, "comments", "c", false, "include comments")

	return cmd
}
