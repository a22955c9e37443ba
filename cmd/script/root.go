// ==============================================================================================
// FILE: cmd/script/root.go
// ==============================================================================================
// PACKAGE: script
// PURPOSE: The cobra command tree: root command plus run/tokens/ast/repl/version
//          subcommands, wired the way the reference dwscript CLI wires its
//          own cobra tree.
// ==============================================================================================

package script

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags.
	Version = "0.1.0-dev"

	verbose bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eloquence",
	Short: "Eloquence language interpreter",
	Long: `eloquence is a tree-walking interpreter for the Eloquence scripting
language: a small dynamically-typed, imperative language with first-class
functions, lists, and strings.

Run a script file directly, or start an interactive session with no
arguments.`,
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runScript(cmd, args)
		}
		return startREPL(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log diagnostics to stderr")
	cobra.OnInitialize(initLogger)
}

// initLogger wires a text-handler slog.Logger to stderr, never to the
// program's own output sink, so diagnostics never pollute script output.
func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
