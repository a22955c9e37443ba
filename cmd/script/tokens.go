// ==============================================================================================
// FILE: cmd/script/tokens.go
// ==============================================================================================
// PACKAGE: script
// PURPOSE: `eloquence tokens <file>` — dumps the token stream for lexer
//          debugging.
// ==============================================================================================

package script

import (
	"fmt"
	"io"
	"os"

	"eloquence/lexer"
	"eloquence/token"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Tokenize a script and print the resulting tokens",
	Long:  `Reads from a file if given, otherwise from stdin.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(_ *cobra.Command, args []string) error {
	input, err := readSource(args)
	if err != nil {
		return err
	}

	toks, lexErr := lexer.New(input).GetTokens()
	for _, t := range toks {
		printToken(t)
		if t.Type == token.EOFF {
			break
		}
	}
	if lexErr != nil {
		return fmt.Errorf("lex error: %w", lexErr)
	}
	return nil
}

func printToken(t token.Token) {
	if t.Literal == "" {
		fmt.Printf("%-14s @%d\n", t.Type, t.Line)
		return
	}
	fmt.Printf("%-14s %q @%d\n", t.Type, t.Literal, t.Line)
}

func readSource(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
