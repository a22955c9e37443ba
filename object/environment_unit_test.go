// ==============================================================================================
// FILE: object/environment_unit_test.go
// ==============================================================================================
// PURPOSE: Pins down Scope's deliberately surprising Assign rule (spec §4.4/
//          §9): a nested scope can mutate an existing outer binding, but a
//          brand-new name always lands in the root, never in the immediate
//          enclosing scope.
// ==============================================================================================

package object

import "testing"

func TestLookUpWalksParentChain(t *testing.T) {
	root := NewScope()
	root.Bind("x", &Number{Value: 1})
	child := NewEnclosedScope(root)

	v, ok := child.LookUp("x")
	if !ok {
		t.Fatal("expected to find x via the parent chain")
	}
	if v.(*Number).Value != 1 {
		t.Errorf("got %v, want 1", v)
	}

	if _, ok := child.LookUp("missing"); ok {
		t.Error("expected LookUp of an unbound name to fail")
	}
}

func TestAssignMutatesExistingNameInPlace(t *testing.T) {
	root := NewScope()
	root.Bind("x", &Number{Value: 1})
	child := NewEnclosedScope(root)
	child.Bind("x", &Number{Value: 2}) // shadow locally first

	child.Assign("x", &Number{Value: 99})

	v, _ := child.LookUp("x")
	if v.(*Number).Value != 99 {
		t.Errorf("local shadow not updated in place, got %v", v)
	}
	rootV, _ := root.LookUp("x")
	if rootV.(*Number).Value != 1 {
		t.Errorf("root binding should be untouched, got %v", rootV)
	}
}

func TestAssignOfNewNameFromNestedScopeLandsInRoot(t *testing.T) {
	root := NewScope()
	middle := NewEnclosedScope(root)
	leaf := NewEnclosedScope(middle)

	leaf.Assign("brandNew", &Number{Value: 7})

	if _, ok := leaf.bindings["brandNew"]; ok {
		t.Error("brandNew should not have been written into the leaf scope")
	}
	if _, ok := middle.bindings["brandNew"]; ok {
		t.Error("brandNew should not have been written into the middle scope")
	}
	v, ok := root.bindings["brandNew"]
	if !ok {
		t.Fatal("brandNew should have landed in the root scope")
	}
	if v.(*Number).Value != 7 {
		t.Errorf("got %v, want 7", v)
	}
}

func TestBindAlwaysTargetsTheCurrentScope(t *testing.T) {
	root := NewScope()
	root.Bind("x", &Number{Value: 1})
	child := NewEnclosedScope(root)

	child.Bind("x", &Number{Value: 2})

	if v := root.bindings["x"].(*Number); v.Value != 1 {
		t.Errorf("Bind leaked into the parent scope: root x = %v", v.Value)
	}
	if v := child.bindings["x"].(*Number); v.Value != 2 {
		t.Errorf("child x = %v, want 2", v.Value)
	}
}
