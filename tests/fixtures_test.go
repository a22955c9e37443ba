// ==============================================================================================
// FILE: tests/fixtures_test.go
// ==============================================================================================
// PURPOSE: Runs every YAML scenario under testdata/fixtures as a subtest,
//          following the glob-and-run harness shape used for declarative
//          test suites elsewhere in the pack.
// ==============================================================================================

package tests

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"eloquence/evaluator"
	"eloquence/lexer"
	"eloquence/object"
	"eloquence/parser"
)

// fixture is a single declarative scenario: a source program, the output
// it's expected to write to the sink, and whether the program must instead
// end in a runtime error (in which case the output is not compared).
type fixture struct {
	Name        string `yaml:"name"`
	Source      string `yaml:"source"`
	Output      string `yaml:"output"`
	ExpectError bool   `yaml:"expect_error"`
}

func TestFixtures(t *testing.T) {
	paths, err := filepath.Glob("../testdata/fixtures/*.yaml")
	if err != nil {
		t.Fatalf("failed to glob fixtures: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixture files found under testdata/fixtures")
	}

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading %s: %v", path, err)
			}

			var f fixture
			if err := yaml.Unmarshal(data, &f); err != nil {
				t.Fatalf("parsing %s: %v", path, err)
			}

			toks, lexErr := lexer.New(f.Source).GetTokens()
			if lexErr != nil {
				t.Fatalf("%s: lex error: %v", f.Name, lexErr)
			}
			block, errs := parser.ParseCode(toks)
			if len(errs) != 0 {
				t.Fatalf("%s: parse errors: %v", f.Name, errs)
			}

			var out strings.Builder
			ev := evaluator.New(&out, bufio.NewReader(strings.NewReader("")))
			result := ev.Run(block)

			if f.ExpectError {
				if !object.IsError(result) {
					t.Fatalf("%s: expected a runtime error, got %v", f.Name, result)
				}
				return
			}

			if object.IsError(result) {
				t.Fatalf("%s: unexpected runtime error: %s", f.Name, result.Inspect())
			}
			if out.String() != f.Output {
				t.Errorf("%s: output = %q, want %q", f.Name, out.String(), f.Output)
			}
		})
	}
}
