package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newCheckCmd builds the "fast feedback" counterpart to build: parse and
// type-check only, no codegen or linking, the way the teacher's own
// dedicated cmd/typecheck entry point sits alongside its full cmd/ailang
// driver.
func newCheckCmd() *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "check <entry>",
		Short: "Parse and type-check a program without generating code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := args[0]
			modules, results, err := runTypeCheck(cmd.Context(), entry, nil, parallel)
			if err != nil {
				return reportLoadError(os.Stderr, err)
			}
			errs := renderResults(os.Stderr, results, modules)
			if errs > 0 {
				return fmt.Errorf("vaisc check: %d error(s)", errs)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d module(s) checked\n", len(results))
			return nil
		},
	}
	cmd.Flags().IntVar(&parallel, "parallel", 0, "type-check dependency levels concurrently with this many workers (0 = sequential)")
	return cmd
}
