package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/quill/quill/codebase"
	"github.com/dhamidi/quill/quill/parser"
)

func newLSPCmd() *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := codebase.NewLSPServer(version, parserOptions(maxDepth)...)
			return server.RunStdio()
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", parser.DefaultMaxDepth, "maximum nesting depth")

	return cmd
}
