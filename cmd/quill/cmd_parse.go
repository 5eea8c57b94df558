package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/quill/format"
	"github.com/dhamidi/quill/quill/parser"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var exprMode bool
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a quill program and dump its syntax tree",
		Long: `Parse a quill program and dump its syntax tree.

If no file is provided, reads source from stdin. With --expr the input is
parsed as a single expression instead of a program.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			opts := parserOptions(maxDepth)

			var node parser.Syntax
			if exprMode {
				expr, err := parser.ParseExprSource(src, opts...)
				if err != nil {
					return report(cmd.ErrOrStderr(), src, err)
				}
				node = expr
			} else {
				prog, err := parser.ParseSource(src, opts...)
				if err != nil {
					return report(cmd.ErrOrStderr(), src, err)
				}
				node = prog
			}

			var encoder format.Encoder
			switch outputFormat {
			case "tree":
				encoder = format.NewTreeEncoder(cmd.OutOrStdout())
			case "json":
				encoder = format.NewASTJSONEncoder(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			if err := encoder.Encode(node); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if outputFormat == "json" {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format (tree, json)")
	cmd.Flags().BoolVarP(&exprMode, "expr", "e", false, "parse a single expression")
	cmd.Flags().IntVar(&maxDepth, "max-depth", parser.DefaultMaxDepth, "maximum nesting depth")

	return cmd
}
