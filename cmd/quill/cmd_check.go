package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/quill/format"
	"github.com/dhamidi/quill/quill/codebase"
	"github.com/dhamidi/quill/quill/parser"
)

func newCheckCmd() *cobra.Command {
	var watch bool
	var interval time.Duration
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report syntax errors in quill files",
		Long: `Parse every .ql file under the given paths (default: the current
directory) and print a diagnostic for each file that fails.

With --watch the paths are polled for changes and files are checked again
whenever they are modified, until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			opts := parserOptions(maxDepth)

			var cbs []*codebase.Codebase
			for _, path := range args {
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("stat %s: %w", path, err)
				}
				cbs = append(cbs, codebase.New(path, opts...))
			}

			out := cmd.OutOrStdout()
			if watch {
				return watchCodebases(cmd, out, cbs, interval)
			}

			var files, failures int
			for _, cb := range cbs {
				if err := cb.ScanAll(); err != nil {
					return fmt.Errorf("scan %s: %w", cb.RootDir(), err)
				}
				for _, path := range cb.Paths() {
					files++
					if checkFile(out, cb, path) {
						failures++
					}
				}
			}
			log.Infof("checked %d files, %d with errors", files, failures)
			if failures > 0 {
				fmt.Fprintf(out, "%d of %d files have syntax errors\n", failures, files)
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep checking files as they change")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "poll interval for --watch")
	cmd.Flags().IntVar(&maxDepth, "max-depth", parser.DefaultMaxDepth, "maximum nesting depth")

	return cmd
}

// checkFile prints the diagnostic of path, if it has one, and reports
// whether it did.
func checkFile(w io.Writer, cb *codebase.Codebase, path string) bool {
	f := cb.GetFile(path)
	if f == nil || f.ParseErr == nil {
		return false
	}
	src := parser.NewSource(path, f.Source.Text)
	if err := format.NewDiagnosticEncoder(w, src).Encode(f.ParseErr); err != nil {
		log.Errorf("render diagnostic for %s: %s", path, err)
	}
	return true
}

func watchCodebases(cmd *cobra.Command, out io.Writer, cbs []*codebase.Codebase, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var mu sync.Mutex
	for _, cb := range cbs {
		watcher := codebase.NewFileWatcher(cb)
		watcher.SetPollInterval(interval)
		watcher.OnChange(func(path string) {
			mu.Lock()
			defer mu.Unlock()
			if cb.GetFile(path) == nil {
				fmt.Fprintf(out, "%s: removed\n", path)
				return
			}
			if !checkFile(out, cb, path) {
				fmt.Fprintf(out, "%s: ok\n", path)
			}
		})
		watcher.Start()
		defer watcher.Stop()
	}

	<-ctx.Done()
	return nil
}
