// ==============================================================================================
// FILE: repl/repl.go
// ==============================================================================================
// PACKAGE: repl
// PURPOSE: The Read-Eval-Print Loop interface.
//          It connects the user input stream to the compiler pipeline (Lexer->Parser->Evaluator)
//          and manages the persistent session state.
// ==============================================================================================

package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"eloquence/evaluator"
	"eloquence/lexer"
	"eloquence/object"
	"eloquence/parser"
	"eloquence/token"
)

// ----------------------------------------------------------------------------
// UI CONSTANTS & CONFIGURATION
// ----------------------------------------------------------------------------

const (
	PROMPT = ">> "
	LOGO   = `
┏━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┓
┃  _____ _                                           ┃
┃ | ____| | ___   __ _ _   _  ___ _ __   ___ ___     ┃
┃ |  _| | |/ _ \ / _` + "`" + ` | | | |/ _ \ '_ \ / __/ _ \    ┃
┃ | |___| | (_) | (_| | |_| |  __/ | | | (_|  __/    ┃
┃ |_____|_|\___/ \__, |\__,_|\___|_| |_|\___\___|    ┃
┃                   |_|                              ┃
┃                                                    ┃
┃ The Eloquence Language v0.1                        ┃
┗━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┛
`
)

// ANSI Color Codes for terminal output
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Gray   = "\033[37m"
	Bold   = "\033[1m"
)

// Start launches the Read-Eval-Print Loop. It listens to 'in', evaluates
// code, and writes results to 'out'. A single Evaluator (and the scope it
// owns) persists across lines so bindings accumulate across the session,
// the way a function or while body accumulates state within a run.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	ev := evaluator.New(out, bufio.NewReader(in))
	debugMode := false

	fmt.Fprint(out, LOGO)
	printHelp(out)

	for {
		fmt.Fprint(out, Cyan+PROMPT+Reset)
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			switch line {
			case ".exit":
				fmt.Fprintln(out, Yellow+"Goodbye!"+Reset)
				return
			case ".clear":
				ev = evaluator.New(out, bufio.NewReader(in))
				fmt.Fprintln(out, Green+"Environment cleared (memory reset)."+Reset)
				continue
			case ".debug":
				debugMode = !debugMode
				status := "DISABLED"
				if debugMode {
					status = "ENABLED"
				}
				fmt.Fprintf(out, Gray+"Debug mode %s\n"+Reset, status)
				continue
			case ".help":
				printHelp(out)
				continue
			default:
				fmt.Fprintf(out, Red+"Unknown command: %s. Type .help for info.\n"+Reset, line)
				continue
			}
		}

		if debugMode {
			printTokens(out, line)
		}

		toks, lexErr := lexer.New(line).GetTokens()
		if lexErr != nil {
			fmt.Fprintf(out, Red+"Lex error: %s\n"+Reset, lexErr)
			continue
		}

		block, errs := parser.ParseCode(toks)
		if len(errs) != 0 {
			printParserErrors(out, errs)
			continue
		}

		if debugMode {
			printAST(out, block)
		}

		result := ev.Eval(block)
		printEvalResult(out, result)
	}
}

// ----------------------------------------------------------------------------
// HELPER FUNCTIONS
// ----------------------------------------------------------------------------

func printHelp(out io.Writer) {
	fmt.Fprintln(out, Gray+"Commands:")
	fmt.Fprintln(out, "  .exit   Quit the REPL")
	fmt.Fprintln(out, "  .clear  Reset memory")
	fmt.Fprintln(out, "  .debug  Toggle verbose AST/Token output")
	fmt.Fprintln(out, "  .help   Show this message"+Reset)
	fmt.Fprintln(out)
}

func printTokens(out io.Writer, line string) {
	fmt.Fprintln(out, Gray+"┌── [ TOKENS ] ──────────────────────────────────────────┐"+Reset)
	toks, _ := lexer.New(line).GetTokens()
	for _, tok := range toks {
		if tok.Type == token.EOFF {
			break
		}
		fmt.Fprintf(out, "│ %-15s : %s\n", tok.Type, tok.Literal)
	}
	fmt.Fprintln(out, Gray+"└────────────────────────────────────────────────────────┘"+Reset)
}

func printAST(out io.Writer, block fmt.Stringer) {
	fmt.Fprintln(out, Gray+"┌── [ AST TREE ] ────────────────────────────────────────┐"+Reset)
	if str := block.String(); str != "" {
		fmt.Fprintf(out, "%s\n", str)
	}
	fmt.Fprintln(out, Gray+"└────────────────────────────────────────────────────────┘"+Reset)
}

func printParserErrors(out io.Writer, errors []string) {
	fmt.Fprintln(out, Red+Bold+"Whoops! Parser Errors:"+Reset)
	for _, msg := range errors {
		fmt.Fprintf(out, Red+"  x %s\n"+Reset, msg)
	}
}

// printEvalResult formats the output based on the value's runtime type. nil
// (the empty-block result) prints nothing.
func printEvalResult(out io.Writer, val object.Value) {
	if val == nil || val.Type() == object.NIL_VALUE {
		return
	}

	str := val.Inspect()

	switch v := val.(type) {
	case *object.Error:
		fmt.Fprintf(out, Red+Bold+"ERROR: "+Reset+Red+"%s\n"+Reset, v.Message)
	case *object.Number:
		fmt.Fprintf(out, Yellow+"%s\n"+Reset, str)
	case *object.Bool:
		color := Green
		if !v.Value {
			color = Red
		}
		fmt.Fprintf(out, color+"%s\n"+Reset, str)
	case *object.String:
		fmt.Fprintf(out, Green+"%s\n"+Reset, str)
	case *object.List:
		fmt.Fprintf(out, Cyan+"%s\n"+Reset, str)
	case *object.UserFn, *object.HostFn:
		fmt.Fprintf(out, Purple+"(function)\n"+Reset)
	default:
		fmt.Fprintf(out, "%s\n", str)
	}
}
