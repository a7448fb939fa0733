package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/vaislang/vais/internal/cache"
)

// newCacheCmd builds the "operate directly on internal/cache.CacheState"
// subcommand group: clear wipes the cache directory, inspect loads and
// pretty-prints it with go-spew the same way the core's own test suite
// dumps structural diffs, now put to a second, non-test use.
func newCacheCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the incremental compilation cache",
	}
	root.AddCommand(newCacheClearCmd(), newCacheInspectCmd())
	return root
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <project>",
		Short: "Remove the project's cached objects and state file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Join(args[0], cache.Dir)
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("vaisc cache clear: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", dir)
			return nil
		},
	}
}

func newCacheInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <project>",
		Short: "Print the project's loaded cache state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, ok := cache.Load(args[0], Version)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no cache state found")
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "compiler version: %s\n", state.CompilerVersion)
			fmt.Fprintf(out, "%d file(s) tracked\n\n", len(state.Files))
			spew.Fdump(out, state)
			return nil
		},
	}
}
