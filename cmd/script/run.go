// ==============================================================================================
// FILE: cmd/script/run.go
// ==============================================================================================
// PACKAGE: script
// PURPOSE: `eloquence run <file>` and the bare-argument shorthand (`eloquence
//          <file>`) that root.go forwards here. Runs the full
//          lexer->parser->evaluator pipeline against stdout.
// ==============================================================================================

package script

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"eloquence/evaluator"
	"eloquence/lexer"
	"eloquence/object"
	"eloquence/parser"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run an Eloquence script file",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runScript(_ *cobra.Command, args []string) error {
	filename := args[0]
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	runSource(string(data), os.Stdout)
	return nil
}

// runSource drives the lex/parse/eval pipeline for program text, writing
// program output and any terminal error message — lex, parse, or runtime —
// to the same sink. Every failure category is caught here and reported the
// same way (spec §7's "outer harness" rule); none of them changes the
// process exit code (spec §9).
func runSource(input string, out *os.File) object.Value {
	toks, err := lexer.New(input).GetTokens()
	if err != nil {
		msg := fmt.Sprintf("lex error: %v", err)
		fmt.Fprintln(out, msg)
		return &object.Error{Message: msg}
	}
	logger.Debug("lexed source", "tokens", len(toks))

	block, errs := parser.ParseCode(toks)
	if len(errs) > 0 {
		var sb strings.Builder
		sb.WriteString("parse errors:")
		for _, e := range errs {
			sb.WriteString("\n\t")
			sb.WriteString(e)
		}
		fmt.Fprintln(out, sb.String())
		return &object.Error{Message: sb.String()}
	}
	logger.Debug("parsed program", "statements", len(block.Statements))

	ev := evaluator.New(out, bufio.NewReader(os.Stdin))
	start := time.Now()
	result := ev.Run(block)
	logger.Debug("evaluated program", "duration", time.Since(start))
	if object.IsError(result) {
		fmt.Fprintln(out, result.Inspect())
	}
	return result
}
