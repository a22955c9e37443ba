// ==============================================================================================
// FILE: cmd/script/repl_cmd.go
// ==============================================================================================
// PACKAGE: script
// PURPOSE: `eloquence repl` — explicit alias for interactive mode, for
//          scripts that always want to name a subcommand.
// ==============================================================================================

package script

import (
	"os"

	"eloquence/repl"

	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	RunE:  startREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func startREPL(_ *cobra.Command, _ []string) error {
	repl.Start(os.Stdin, os.Stdout)
	return nil
}
