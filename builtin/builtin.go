// ==============================================================================================
// FILE: builtin/builtin.go
// ==============================================================================================
// PACKAGE: builtin
// PURPOSE: The host-function set (spec §4.5), registered into the root
//          scope as HostFn values at interpreter startup. Each function is
//          total over a value sequence: arity and type failures return an
//          *object.Error rather than panicking.
// ==============================================================================================

package builtin

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"eloquence/object"
)

// Register binds the full required host-function set into scope. out is the
// sink print/println write to; in is wrapped for the read builtin; stack
// reports the evaluator's current call-name stack for stacktrace.
func Register(scope *object.Scope, out io.Writer, in *bufio.Reader, stack func() []string) {
	for name, fn := range table(out, in, stack) {
		scope.Bind(name, &object.HostFn{Name: name, Fn: fn})
	}
}

func table(out io.Writer, in *bufio.Reader, stack func() []string) map[string]func([]object.Value) object.Value {
	return map[string]func([]object.Value) object.Value{
		"print":      builtinPrint(out, false),
		"println":    builtinPrint(out, true),
		"abs":        numeric1(math.Abs),
		"ceil":       numeric1(math.Ceil),
		"floor":      numeric1(math.Floor),
		"round":      numeric1(math.Round),
		"sqrt":       numeric1(math.Sqrt),
		"rnd":        builtinRnd,
		"parse_num":  builtinParseNum,
		"to_string":  builtinToString,
		"len":        builtinLen,
		"lower":      builtinLower,
		"upper":      builtinUpper,
		"split":      builtinSplit,
		"join":       builtinJoin,
		"replace":    builtinReplace,
		"range":      builtinRange,
		"push":       builtinPush,
		"pop":        builtinPop,
		"insert":     builtinInsert,
		"remove":     builtinRemove,
		"sort":       builtinSort,
		"read":       builtinRead(in),
		"stacktrace": builtinStacktrace(stack),
	}
}

func arityError(name string, want, got int) *object.Error {
	return &object.Error{Message: fmt.Sprintf("%s: wrong number of arguments, got %d, want %d", name, got, want)}
}

func typeError(name, expected string) *object.Error {
	return &object.Error{Message: fmt.Sprintf("%s: argument must be %s", name, expected)}
}

func builtinPrint(out io.Writer, newline bool) func([]object.Value) object.Value {
	return func(args []object.Value) object.Value {
		for _, a := range args {
			fmt.Fprint(out, a.Inspect())
		}
		if newline {
			fmt.Fprintln(out)
		}
		return object.NilValue
	}
}

// numeric1 lifts a float64->float64 standard-library function into a
// HostFn body shared by abs/ceil/floor/round/sqrt.
func numeric1(fn func(float64) float64) func([]object.Value) object.Value {
	return func(args []object.Value) object.Value {
		if len(args) != 1 {
			return arityError("numeric", 1, len(args))
		}
		n, ok := args[0].(*object.Number)
		if !ok {
			return typeError("numeric", "a number")
		}
		return &object.Number{Value: fn(n.Value)}
	}
}

func builtinRnd(args []object.Value) object.Value {
	if len(args) != 1 {
		return arityError("rnd", 1, len(args))
	}
	n, ok := args[0].(*object.Number)
	if !ok {
		return typeError("rnd", "a number")
	}
	bound := int(n.Value)
	if bound <= 0 {
		return &object.Error{Message: "rnd: argument must be a positive integer"}
	}
	return &object.Number{Value: float64(rand.IntN(bound))}
}

func builtinParseNum(args []object.Value) object.Value {
	if len(args) != 1 {
		return arityError("parse_num", 1, len(args))
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return typeError("parse_num", "a string")
	}
	v, err := strconv.ParseFloat(s.Value, 64)
	if err != nil {
		return object.NilValue
	}
	return &object.Number{Value: v}
}

func builtinToString(args []object.Value) object.Value {
	if len(args) != 1 {
		return arityError("to_string", 1, len(args))
	}
	n, ok := args[0].(*object.Number)
	if !ok {
		return typeError("to_string", "a number")
	}
	return &object.String{Value: n.Inspect()}
}

func builtinLen(args []object.Value) object.Value {
	if len(args) != 1 {
		return arityError("len", 1, len(args))
	}
	switch v := args[0].(type) {
	case *object.String:
		return &object.Number{Value: float64(len(v.Value))}
	case *object.List:
		return &object.Number{Value: float64(len(v.Elements))}
	default:
		return typeError("len", "a string or list")
	}
}

// asciiLower/asciiUpper fold only the ASCII range, per spec §1's "no
// Unicode handling beyond raw byte pass-through".
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

func builtinLower(args []object.Value) object.Value {
	if len(args) != 1 {
		return arityError("lower", 1, len(args))
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return typeError("lower", "a string")
	}
	return &object.String{Value: asciiLower(s.Value)}
}

func builtinUpper(args []object.Value) object.Value {
	if len(args) != 1 {
		return arityError("upper", 1, len(args))
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return typeError("upper", "a string")
	}
	return &object.String{Value: asciiUpper(s.Value)}
}

func builtinSplit(args []object.Value) object.Value {
	if len(args) != 2 {
		return arityError("split", 2, len(args))
	}
	s, ok1 := args[0].(*object.String)
	sep, ok2 := args[1].(*object.String)
	if !ok1 || !ok2 {
		return typeError("split", "(string, string)")
	}
	parts := strings.Split(s.Value, sep.Value)
	elems := make([]object.Value, len(parts))
	for i, p := range parts {
		elems[i] = &object.String{Value: p}
	}
	return &object.List{Elements: elems}
}

func builtinJoin(args []object.Value) object.Value {
	if len(args) != 2 {
		return arityError("join", 2, len(args))
	}
	list, ok1 := args[0].(*object.List)
	sep, ok2 := args[1].(*object.String)
	if !ok1 || !ok2 {
		return typeError("join", "(list, string)")
	}
	parts := make([]string, len(list.Elements))
	for i, e := range list.Elements {
		s, ok := e.(*object.String)
		if !ok {
			return typeError("join", "a list of strings")
		}
		parts[i] = s.Value
	}
	return &object.String{Value: strings.Join(parts, sep.Value)}
}

// builtinReplace replaces every occurrence of old with repl, advancing the
// scan position by len(repl) after each hit rather than len(old) — spec
// §4.5's documented behavior, preserved exactly.
func builtinReplace(args []object.Value) object.Value {
	if len(args) != 3 {
		return arityError("replace", 3, len(args))
	}
	s, ok1 := args[0].(*object.String)
	old, ok2 := args[1].(*object.String)
	repl, ok3 := args[2].(*object.String)
	if !ok1 || !ok2 || !ok3 {
		return typeError("replace", "(string, string, string)")
	}
	return &object.String{Value: replaceAdvancing(s.Value, old.Value, repl.Value)}
}

func replaceAdvancing(s, old, repl string) string {
	if old == "" {
		return s
	}
	var out strings.Builder
	i := 0
	for i <= len(s) {
		rest := s[i:]
		idx := strings.Index(rest, old)
		if idx < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:idx])
		out.WriteString(repl)
		advance := idx + len(repl)
		if advance == 0 {
			// idx == 0 and repl == "": advancing by len(repl) alone would
			// never move past the match, looping forever. Step past the
			// matched byte instead.
			advance = 1
			if idx < len(rest) {
				out.WriteByte(rest[idx])
			}
		}
		i += advance
	}
	return out.String()
}

func builtinRange(args []object.Value) object.Value {
	if len(args) != 3 {
		return arityError("range", 3, len(args))
	}
	first, ok1 := args[0].(*object.Number)
	last, ok2 := args[1].(*object.Number)
	step, ok3 := args[2].(*object.Number)
	if !ok1 || !ok2 || !ok3 {
		return typeError("range", "(number, number, number)")
	}
	if step.Value == 0 {
		return &object.Error{Message: "range: step must not be zero"}
	}
	var elems []object.Value
	if step.Value > 0 {
		for v := first.Value; v < last.Value; v += step.Value {
			elems = append(elems, &object.Number{Value: v})
		}
	} else {
		for v := first.Value; v > last.Value; v += step.Value {
			elems = append(elems, &object.Number{Value: v})
		}
	}
	return &object.List{Elements: elems}
}

func builtinPush(args []object.Value) object.Value {
	if len(args) != 2 {
		return arityError("push", 2, len(args))
	}
	list, ok := args[0].(*object.List)
	if !ok {
		return typeError("push", "(list, value)")
	}
	out := make([]object.Value, len(list.Elements)+1)
	copy(out, list.Elements)
	out[len(list.Elements)] = args[1]
	return &object.List{Elements: out}
}

func builtinPop(args []object.Value) object.Value {
	if len(args) != 1 {
		return arityError("pop", 1, len(args))
	}
	list, ok := args[0].(*object.List)
	if !ok {
		return typeError("pop", "a list")
	}
	if len(list.Elements) == 0 {
		return &object.Error{Message: "pop: list is empty"}
	}
	return list.Elements[len(list.Elements)-1]
}

func indexArg(v object.Value) (int, *object.Error) {
	n, ok := v.(*object.Number)
	if !ok {
		return 0, typeError("index", "a number")
	}
	if n.Value != math.Trunc(n.Value) {
		return 0, &object.Error{Message: "index must be a whole number"}
	}
	return int(n.Value), nil
}

func builtinInsert(args []object.Value) object.Value {
	if len(args) != 3 {
		return arityError("insert", 3, len(args))
	}
	list, ok := args[0].(*object.List)
	if !ok {
		return typeError("insert", "a list")
	}
	idx, errv := indexArg(args[1])
	if errv != nil {
		return errv
	}
	if idx < 0 || idx > len(list.Elements) {
		return &object.Error{Message: "insert: index out of range"}
	}
	out := make([]object.Value, 0, len(list.Elements)+1)
	out = append(out, list.Elements[:idx]...)
	out = append(out, args[2])
	out = append(out, list.Elements[idx:]...)
	return &object.List{Elements: out}
}

func builtinRemove(args []object.Value) object.Value {
	if len(args) != 2 {
		return arityError("remove", 2, len(args))
	}
	list, ok := args[0].(*object.List)
	if !ok {
		return typeError("remove", "a list")
	}
	idx, errv := indexArg(args[1])
	if errv != nil {
		return errv
	}
	if idx < 0 || idx >= len(list.Elements) {
		return &object.Error{Message: "remove: index out of range"}
	}
	out := make([]object.Value, 0, len(list.Elements)-1)
	out = append(out, list.Elements[:idx]...)
	out = append(out, list.Elements[idx+1:]...)
	return &object.List{Elements: out}
}

func builtinSort(args []object.Value) object.Value {
	if len(args) != 1 {
		return arityError("sort", 1, len(args))
	}
	list, ok := args[0].(*object.List)
	if !ok {
		return typeError("sort", "a list")
	}
	if len(list.Elements) == 0 {
		return &object.List{Elements: nil}
	}
	out := make([]object.Value, len(list.Elements))
	copy(out, list.Elements)

	switch out[0].(type) {
	case *object.Number:
		for _, e := range out {
			if _, ok := e.(*object.Number); !ok {
				return &object.Error{Message: "sort: all elements must share the same scalar type"}
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].(*object.Number).Value < out[j].(*object.Number).Value
		})
	case *object.String:
		for _, e := range out {
			if _, ok := e.(*object.String); !ok {
				return &object.Error{Message: "sort: all elements must share the same scalar type"}
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].(*object.String).Value < out[j].(*object.String).Value
		})
	case *object.Bool:
		for _, e := range out {
			if _, ok := e.(*object.Bool); !ok {
				return &object.Error{Message: "sort: all elements must share the same scalar type"}
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return !out[i].(*object.Bool).Value && out[j].(*object.Bool).Value
		})
	default:
		return &object.Error{Message: "sort: elements must be number, string, or bool"}
	}
	return &object.List{Elements: out}
}

func builtinRead(in *bufio.Reader) func([]object.Value) object.Value {
	return func(args []object.Value) object.Value {
		if len(args) != 0 {
			return arityError("read", 0, len(args))
		}
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return object.NilValue
		}
		return &object.String{Value: strings.TrimRight(line, "\r\n")}
	}
}

func builtinStacktrace(stack func() []string) func([]object.Value) object.Value {
	return func(args []object.Value) object.Value {
		if len(args) != 0 {
			return arityError("stacktrace", 0, len(args))
		}
		names := stack()
		elems := make([]object.Value, len(names))
		for i, n := range names {
			elems[i] = &object.String{Value: n}
		}
		return &object.List{Elements: elems}
	}
}
