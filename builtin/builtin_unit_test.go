// ==============================================================================================
// FILE: builtin/builtin_unit_test.go
// ==============================================================================================
// PURPOSE: Exercises a representative set of host functions' normal paths
//          plus two behaviors spec §4.5/§9 document: replace's
//          advance-by-replacement-length scan, and push/insert/remove
//          returning fresh lists (and pop leaving its argument unchanged)
//          rather than mutating the argument.
// ==============================================================================================

package builtin

import (
	"bufio"
	"strings"
	"testing"

	"eloquence/object"
)

func newScope() *object.Scope {
	s := object.NewScope()
	Register(s, &strings.Builder{}, bufio.NewReader(strings.NewReader("")), func() []string { return nil })
	return s
}

func call(t *testing.T, scope *object.Scope, name string, args ...object.Value) object.Value {
	t.Helper()
	v, ok := scope.LookUp(name)
	if !ok {
		t.Fatalf("builtin %q is not registered", name)
	}
	fn, ok := v.(*object.HostFn)
	if !ok {
		t.Fatalf("%q is not a HostFn", name)
	}
	return fn.Fn(args)
}

func num(v float64) *object.Number { return &object.Number{Value: v} }
func str(v string) *object.String  { return &object.String{Value: v} }

func TestLenStringAndList(t *testing.T) {
	scope := newScope()
	if got := call(t, scope, "len", str("hello")).(*object.Number).Value; got != 5 {
		t.Errorf("len(\"hello\") = %v, want 5", got)
	}
	list := &object.List{Elements: []object.Value{num(1), num(2)}}
	if got := call(t, scope, "len", list).(*object.Number).Value; got != 2 {
		t.Errorf("len(list) = %v, want 2", got)
	}
}

func TestParseNumToStringRoundTrip(t *testing.T) {
	scope := newScope()
	s := call(t, scope, "to_string", num(3.5)).(*object.String)
	if s.Value != "3.5" {
		t.Fatalf("to_string(3.5) = %q, want %q", s.Value, "3.5")
	}
	n := call(t, scope, "parse_num", s).(*object.Number)
	if n.Value != 3.5 {
		t.Errorf("parse_num round-trip = %v, want 3.5", n.Value)
	}
}

func TestParseNumFailureReturnsNil(t *testing.T) {
	scope := newScope()
	got := call(t, scope, "parse_num", str("not a number"))
	if got != object.NilValue {
		t.Errorf("parse_num(\"not a number\") = %v, want nil", got)
	}
}

func TestLowerUpperAreASCIIOnly(t *testing.T) {
	scope := newScope()
	if got := call(t, scope, "upper", str("Hello")).(*object.String).Value; got != "HELLO" {
		t.Errorf("upper = %q, want %q", got, "HELLO")
	}
	if got := call(t, scope, "lower", str("Hello")).(*object.String).Value; got != "hello" {
		t.Errorf("lower = %q, want %q", got, "hello")
	}
}

func TestSplitJoinInverse(t *testing.T) {
	scope := newScope()
	parts := call(t, scope, "split", str("a,b,c"), str(",")).(*object.List)
	if len(parts.Elements) != 3 {
		t.Fatalf("split produced %d parts, want 3", len(parts.Elements))
	}
	joined := call(t, scope, "join", parts, str(",")).(*object.String)
	if joined.Value != "a,b,c" {
		t.Errorf("join(split(s, sep), sep) = %q, want %q", joined.Value, "a,b,c")
	}
}

func TestReplaceAdvancesByReplacementLength(t *testing.T) {
	scope := newScope()
	// A naive strings.ReplaceAll would advance past each matched "aa" (2
	// bytes) and produce "aa". This implementation instead resumes the
	// scan just past the 1-byte replacement, re-matching "aa" against
	// bytes it already consumed — so it replaces more than a non-
	// overlapping pass would (spec §4.5/§9 documented behavior).
	got := call(t, scope, "replace", str("aaaa"), str("aa"), str("a")).(*object.String)
	if got.Value != "aaaa" {
		t.Errorf("replace(\"aaaa\", \"aa\", \"a\") = %q, want %q", got.Value, "aaaa")
	}
}

func TestReplaceWithEmptyReplacementDoesNotHang(t *testing.T) {
	scope := newScope()
	got := call(t, scope, "replace", str("aaa"), str("a"), str("")).(*object.String)
	if got.Value != "aaa" {
		t.Errorf("replace(\"aaa\", \"a\", \"\") = %q, want %q", got.Value, "aaa")
	}
}

func TestRangePositiveAndNegativeStep(t *testing.T) {
	scope := newScope()
	up := call(t, scope, "range", num(0), num(3), num(1)).(*object.List)
	if len(up.Elements) != 3 {
		t.Fatalf("range(0,3,1) length = %d, want 3", len(up.Elements))
	}
	down := call(t, scope, "range", num(3), num(0), num(-1)).(*object.List)
	if len(down.Elements) != 3 {
		t.Fatalf("range(3,0,-1) length = %d, want 3", len(down.Elements))
	}
}

func TestPushPopInsertRemoveAreNonMutating(t *testing.T) {
	scope := newScope()
	original := &object.List{Elements: []object.Value{num(1), num(2)}}

	pushed := call(t, scope, "push", original, num(3)).(*object.List)
	if len(original.Elements) != 2 {
		t.Fatalf("push mutated its argument: len = %d, want 2", len(original.Elements))
	}
	if len(pushed.Elements) != 3 {
		t.Fatalf("push result length = %d, want 3", len(pushed.Elements))
	}

	removed := call(t, scope, "remove", pushed, num(0)).(*object.List)
	if len(pushed.Elements) != 3 {
		t.Fatalf("remove mutated its argument: len = %d, want 3", len(pushed.Elements))
	}
	if len(removed.Elements) != 2 {
		t.Fatalf("remove result length = %d, want 2", len(removed.Elements))
	}

	inserted := call(t, scope, "insert", removed, num(0), num(9)).(*object.List)
	if len(removed.Elements) != 2 {
		t.Fatalf("insert mutated its argument: len = %d, want 2", len(removed.Elements))
	}
	if len(inserted.Elements) != 3 {
		t.Fatalf("insert result length = %d, want 3", len(inserted.Elements))
	}

	call(t, scope, "pop", inserted)
	if len(inserted.Elements) != 3 {
		t.Fatalf("pop mutated its argument: len = %d, want 3", len(inserted.Elements))
	}
}

func TestSortRequiresHomogeneousScalars(t *testing.T) {
	scope := newScope()
	mixed := &object.List{Elements: []object.Value{num(1), str("two")}}
	if got := call(t, scope, "sort", mixed); !object.IsError(got) {
		t.Errorf("sort(mixed list) = %v, want an error", got)
	}

	sorted := call(t, scope, "sort", &object.List{Elements: []object.Value{num(3), num(1), num(2)}}).(*object.List)
	want := []float64{1, 2, 3}
	for i, w := range want {
		if sorted.Elements[i].(*object.Number).Value != w {
			t.Fatalf("sorted = %v, want %v", sorted.Inspect(), want)
		}
	}
}

func TestStacktraceReflectsCallStack(t *testing.T) {
	scope := object.NewScope()
	Register(scope, &strings.Builder{}, bufio.NewReader(strings.NewReader("")), func() []string {
		return []string{"outer", "inner"}
	})
	got := call(t, scope, "stacktrace").(*object.List)
	if len(got.Elements) != 2 {
		t.Fatalf("stacktrace length = %d, want 2", len(got.Elements))
	}
	if got.Elements[0].(*object.String).Value != "outer" {
		t.Errorf("stacktrace[0] = %q, want %q", got.Elements[0].(*object.String).Value, "outer")
	}
}

func TestArityErrorsReportedAsValuesNotPanics(t *testing.T) {
	scope := newScope()
	got := call(t, scope, "len")
	if !object.IsError(got) {
		t.Errorf("len() with no args = %v, want an error value", got)
	}
}
