package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/vaislang/vais/internal/checker"
	"github.com/vaislang/vais/internal/diagrender"
	"github.com/vaislang/vais/internal/lexer"
	"github.com/vaislang/vais/internal/parser"
	"github.com/vaislang/vais/internal/types"
)

var (
	replPrompt = color.New(color.FgCyan, color.Bold).SprintFunc()
	replDim    = color.New(color.Faint).SprintFunc()
)

// newReplCmd builds the interactive read-eval-print loop over both
// surface grammars this core parses, generalizing the teacher's own
// cmd/ailang REPL mode (also built on peterh/liner) from one language to
// two: every submitted block is fed through internal/parser in
// recoverable mode and then checker.InferExpr, printing the resolved type
// of the last expression rather than evaluating it — this core has no
// interpreter, and spec.md's Non-goals explicitly keep it that way.
func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive type-checking session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepl(cmd.OutOrStdout())
			return nil
		},
	}
}

func runRepl(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".vaisc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(out, replDim("vaisc repl — type an expression, :quit to exit"))

	env := types.NewTypeEnv()
	for {
		text, err := line.Prompt(replPrompt("vais> "))
		if err != nil { // io.EOF on Ctrl-D, or a liner error
			break
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(text)
		if trimmed == ":quit" || trimmed == ":q" {
			break
		}

		evalLine(out, env, trimmed)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func evalLine(out io.Writer, env *types.TypeEnv, text string) {
	toks := lexer.New(text, "<repl>").Tokens()
	expr, bag := parser.ParseExprFromTokens(toks, "<repl>")
	if bag.HasErrors() {
		diagrender.RenderBag(out, bag, map[string]string{"<repl>": text})
		return
	}

	t, infBag := checker.InferExpr(expr, env)
	if infBag.HasErrors() {
		diagrender.RenderBag(out, infBag, map[string]string{"<repl>": text})
		return
	}
	fmt.Fprintf(out, "%s\n", t)
}
