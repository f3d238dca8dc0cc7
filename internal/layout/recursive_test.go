package layout_test

import (
	"testing"

	"chim/internal/layout"
)

// TestEngine_RecursiveDirect tests self reference by value.
func TestEngine_RecursiveDirect(t *testing.T) {
	e := layout.NewDefault()
	e.AnalyzeStruct("Node", []layout.Field{
		{Name: "value", TypeName: "i32"},
		{Name: "next", TypeName: "Node"},
	})
	if !e.Recursive("Node") {
		t.Error("Node embeds itself and should be recursive")
	}
}

// TestEngine_RecursiveMutual tests a two-struct cycle.
func TestEngine_RecursiveMutual(t *testing.T) {
	e := layout.NewDefault()
	e.AnalyzeStruct("A", []layout.Field{{Name: "b", TypeName: "B"}})
	e.AnalyzeStruct("B", []layout.Field{{Name: "a", TypeName: "A"}})
	if !e.Recursive("A") {
		t.Error("A -> B -> A should be recursive")
	}
	if !e.Recursive("B") {
		t.Error("B -> A -> B should be recursive")
	}
}

// TestEngine_RecursiveThroughArray tests self reference through a fixed
// array element.
func TestEngine_RecursiveThroughArray(t *testing.T) {
	e := layout.NewDefault()
	e.AnalyzeStruct("Tree", []layout.Field{
		{Name: "children", TypeName: "[Tree; 2]"},
	})
	if !e.Recursive("Tree") {
		t.Error("Tree embedding [Tree; 2] should be recursive")
	}
}

// TestEngine_NotRecursiveThroughPointer tests that indirection breaks the
// cycle.
func TestEngine_NotRecursiveThroughPointer(t *testing.T) {
	e := layout.NewDefault()
	e.AnalyzeStruct("List", []layout.Field{
		{Name: "value", TypeName: "i32"},
		{Name: "next", TypeName: "ptr<struct.List>"},
	})
	if e.Recursive("List") {
		t.Error("pointer indirection should not count as recursion")
	}
}

// TestEngine_NotRecursivePlain tests ordinary structs.
func TestEngine_NotRecursivePlain(t *testing.T) {
	e := layout.NewDefault()
	e.AnalyzeStruct("Point", []layout.Field{
		{Name: "x", TypeName: "float"},
		{Name: "y", TypeName: "float"},
	})
	if e.Recursive("Point") {
		t.Error("Point should not be recursive")
	}
	if e.Recursive("NeverDeclared") {
		t.Error("unknown struct should not be recursive")
	}
}

// TestEngine_RecursiveDeepChain tests a cycle reached through an
// intermediate struct.
func TestEngine_RecursiveDeepChain(t *testing.T) {
	e := layout.NewDefault()
	e.AnalyzeStruct("X", []layout.Field{{Name: "y", TypeName: "Y"}})
	e.AnalyzeStruct("Y", []layout.Field{{Name: "z", TypeName: "Z"}})
	e.AnalyzeStruct("Z", []layout.Field{{Name: "x", TypeName: "X"}})
	if !e.Recursive("X") {
		t.Error("X -> Y -> Z -> X should be recursive")
	}

	// W points into the cycle but is not itself on it.
	e.AnalyzeStruct("W", []layout.Field{{Name: "x", TypeName: "X"}})
	if e.Recursive("W") {
		t.Error("W references the cycle but never reaches itself")
	}
}
