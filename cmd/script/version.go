// ==============================================================================================
// FILE: cmd/script/version.go
// ==============================================================================================
// PACKAGE: script
// PURPOSE: `eloquence version`.
// ==============================================================================================

package script

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("eloquence version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
