package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("quill")

// errReported is returned by commands that already printed their failure.
var errReported = errors.New("errors reported")

func main() {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "Parser tools for the quill scripting language",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logFile := os.Getenv("QUILL_LOG"); logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbosity, path)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newFmtCmd())
	rootCmd.AddCommand(newReplCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newUICmd())
	rootCmd.AddCommand(newGrammarCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			os.Stderr.WriteString("quill: " + err.Error() + "\n")
		}
		os.Exit(1)
	}
}
