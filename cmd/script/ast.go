// ==============================================================================================
// FILE: cmd/script/ast.go
// ==============================================================================================
// PACKAGE: script
// PURPOSE: `eloquence ast <file>` — parses a script and prints its AST via
//          ast.Node.String(), for parser debugging.
// ==============================================================================================

package script

import (
	"fmt"

	"eloquence/lexer"
	"eloquence/parser"

	"github.com/spf13/cobra"
)

var astCmd = &cobra.Command{
	Use:   "ast [file]",
	Short: "Parse a script and print its AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAST,
}

func init() {
	rootCmd.AddCommand(astCmd)
}

func runAST(_ *cobra.Command, args []string) error {
	input, err := readSource(args)
	if err != nil {
		return err
	}

	toks, lexErr := lexer.New(input).GetTokens()
	if lexErr != nil {
		return fmt.Errorf("lex error: %w", lexErr)
	}

	block, errs := parser.ParseCode(toks)
	if len(errs) > 0 {
		fmt.Println("parse errors:")
		for _, msg := range errs {
			fmt.Printf("\t%s\n", msg)
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	fmt.Println(block.String())
	return nil
}
