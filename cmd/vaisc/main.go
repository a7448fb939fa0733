// Command vaisc is the driver: the thick CLI wrapping the core compiler
// packages, the external collaborator spec.md's core treats as given but
// whose flags and wiring live in this repository, the same way the
// teacher ships cmd/ailang as a thin shell around its own core.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is set by -ldflags at release build time; "dev" otherwise,
// matching the teacher's own Version/Commit/BuildTime ldflags convention
// in cmd/ailang/main.go.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("error")+": "+err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vaisc",
		Short:        "Compiler driver for the vais toolchain",
		Version:      Version,
		SilenceUsage: true,
	}
	root.AddCommand(newBuildCmd(), newCheckCmd(), newReplCmd(), newCacheCmd())
	return root
}
