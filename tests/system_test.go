// ==============================================================================================
// FILE: tests/system_test.go
// ==============================================================================================
// PURPOSE: End-to-end pipeline tests driving real source through lexer,
//          parser, and evaluator together, matching the literal
//          input->output scenarios and quantified properties.
// ==============================================================================================

package tests

import (
	"bufio"
	"strings"
	"testing"

	"eloquence/evaluator"
	"eloquence/lexer"
	"eloquence/object"
	"eloquence/parser"
)

// runProgram executes src end to end and returns everything written to the
// output sink. A lex or parse failure fails the test immediately, since the
// scenarios below are all expected to run to completion.
func runProgram(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.New(src).GetTokens()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	block, errs := parser.ParseCode(toks)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	var out strings.Builder
	ev := evaluator.New(&out, bufio.NewReader(strings.NewReader("")))
	result := ev.Run(block)
	if object.IsError(result) {
		t.Fatalf("runtime error: %s\noutput so far: %s", result.Inspect(), out.String())
	}
	return out.String()
}

func TestScenarioPrecedenceArithmetic(t *testing.T) {
	got := runProgram(t, `x = 1 + 2 * 3
print(x)`)
	if got != "7" {
		t.Errorf("got %q, want %q", got, "7")
	}
}

func TestScenarioStringRepeatAndConcat(t *testing.T) {
	got := runProgram(t, `x = "2"*2
y = x + "3"*2 + "9"*2
print(y)`)
	if got != "223399" {
		t.Errorf("got %q, want %q", got, "223399")
	}
}

func TestScenarioForOverRange(t *testing.T) {
	got := runProgram(t, `for i in range(0,5,1) then print(i) end for`)
	if got != "01234" {
		t.Errorf("got %q, want %q", got, "01234")
	}
}

func TestScenarioStringDoublingWhile(t *testing.T) {
	got := runProgram(t, `s = "ITMO"
while len(s) < 12 then s = s * 2 end while
print(s)`)
	if got != "ITMOITMOITMOITMO" {
		t.Errorf("got %q, want %q", got, "ITMOITMOITMOITMO")
	}
}

func TestScenarioFibonacci(t *testing.T) {
	got := runProgram(t, `fib = function(n)
    if n <= 1 then
        return n
    end if
    return fib((n - 1)) + fib((n - 2))
end function
print(fib(10))`)
	if got != "55" {
		t.Errorf("got %q, want %q", got, "55")
	}
}

func TestScenarioFizzBuzz(t *testing.T) {
	var want strings.Builder
	for i := 1; i < 100; i++ {
		word := strings.Repeat("Fizz", boolInt(i%3 == 0)) + strings.Repeat("Buzz", boolInt(i%5 == 0))
		if word == "" {
			want.WriteString(itoa(i))
		} else {
			want.WriteString(word)
		}
	}

	got := runProgram(t, `for i in range(1, 100, 1) then
    word = "Fizz" * (i % 3 == 0) + "Buzz" * (i % 5 == 0)
    if len(word) > 0 then
        print(word)
    else
        print(to_string(i))
    end if
end for`)

	if got != want.String() {
		t.Errorf("got %q,\nwant %q", got, want.String())
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// TestRoundTripNumericFormatting pins down spec §8's round-trip property:
// parse_num(to_string(x)) == x for values the default formatter renders
// without loss.
func TestRoundTripNumericFormatting(t *testing.T) {
	values := []string{"0", "1", "-1", "3.5", "0.1", "1000000", "-2.25"}
	for _, v := range values {
		v := v
		t.Run(v, func(t *testing.T) {
			got := runProgram(t, `x = `+v+`
print((parse_num(to_string(x)) == x))`)
			if got != "true" {
				t.Errorf("round-trip(%s) == x produced %q, want %q", v, got, "true")
			}
		})
	}
}

func TestSortIdempotence(t *testing.T) {
	once := runProgram(t, `print(sort([3, 1, 2]))`)
	twice := runProgram(t, `print(sort(sort([3, 1, 2])))`)
	if once != twice {
		t.Errorf("sort(sort(L)) = %q, want it equal to sort(L) = %q", twice, once)
	}
}

func TestJoinSplitInverse(t *testing.T) {
	got := runProgram(t, `s = "a,b,c"
print(join(split(s, ","), ","))`)
	if got != "a,b,c" {
		t.Errorf("got %q, want %q", got, "a,b,c")
	}
}

func TestBreakContinueInWhile(t *testing.T) {
	got := runProgram(t, `i = 0
while i < 5 then
    i = i + 1
    if i == 2 then
        continue
    end if
    if i == 4 then
        break
    end if
    print(to_string(i))
end while`)
	// i runs 1,2(skip print),3,4(break before print) -> only 1 and 3 print.
	if got != "13" {
		t.Errorf("got %q, want %q", got, "13")
	}
}
