package ir_test

import (
	"strings"
	"testing"

	"chim/internal/ir"
)

// TestInstrStringCoversAllKinds tests that every instruction kind renders
// without falling through to the unknown marker.
func TestInstrStringCoversAllKinds(t *testing.T) {
	instrs := []ir.Instr{
		{Kind: ir.InstrAlloca, Alloca: ir.AllocaInstr{Dest: "%p", Type: ir.I32()}},
		{Kind: ir.InstrLoad, Load: ir.LoadInstr{Dest: "%v", Src: "%p"}},
		{Kind: ir.InstrStore, Store: ir.StoreInstr{Dest: "%p", Src: "%v"}},
		{Kind: ir.InstrGetPointer, GetPointer: ir.GetPointerInstr{Dest: "%q", Src: "%p", Offset: 8}},
		{Kind: ir.InstrBin, Bin: ir.BinInstr{Op: ir.BinAdd, Dest: "%d", Left: "%a", Right: "%b"}},
		{Kind: ir.InstrUn, Un: ir.UnInstr{Op: ir.UnNot, Dest: "%d", Src: "%a"}},
		{Kind: ir.InstrCall, Call: ir.CallInstr{HasDest: true, Dest: "%d", Func: "f", Args: []string{"%a", "%b"}}},
		{Kind: ir.InstrBr, Br: ir.BrInstr{Target: "end"}},
		{Kind: ir.InstrCondBr, CondBr: ir.CondBrInstr{Cond: "%c", Then: "yes", Else: "no"}},
		{Kind: ir.InstrLabel, Label: ir.LabelInstr{Name: "end"}},
		{Kind: ir.InstrReturn, Return: ir.ReturnInstr{HasValue: true, Value: "%d"}},
		{Kind: ir.InstrReturnInPlace, ReturnInPlace: ir.ReturnInPlaceInstr{Value: ".tmp0"}},
		{Kind: ir.InstrBorrow, Borrow: ir.BorrowInstr{Dest: "%r", Src: "%v", Mutable: true}},
		{Kind: ir.InstrPhi, Phi: ir.PhiInstr{Dest: "%d", Incoming: []ir.PhiEdge{{Value: "%a", Block: "bb0"}}}},
		{Kind: ir.InstrExtractValue, ExtractValue: ir.ExtractValueInstr{Dest: "%d", Src: "%s", Index: 1}},
		{Kind: ir.InstrInsertValue, InsertValue: ir.InsertValueInstr{Dest: "%d", Src: "%s", Value: "%v", Index: 1}},
		{Kind: ir.InstrGetElementPtr, GetElementPtr: ir.GetElementPtrInstr{Dest: "%d", Src: "%s", Indices: []int32{0, 1}}},
		{Kind: ir.InstrNop},
		{Kind: ir.InstrUnreachable},
	}

	seen := map[ir.InstrKind]bool{}
	for _, ins := range instrs {
		s := ins.String()
		if s == "" || strings.Contains(s, "<instr?>") {
			t.Errorf("kind %d rendered as %q", ins.Kind, s)
		}
		seen[ins.Kind] = true
	}

	// Every kind up to the last one must appear exactly once above.
	for k := ir.InstrAlloca; k <= ir.InstrUnreachable; k++ {
		if !seen[k] {
			t.Errorf("instruction kind %d has no render case in this test", k)
		}
	}
}

// TestInstrStringForms tests a few exact renderings used by reports.
func TestInstrStringForms(t *testing.T) {
	cases := []struct {
		ins  ir.Instr
		want string
	}{
		{ir.Instr{Kind: ir.InstrStore, Store: ir.StoreInstr{Dest: "%p", Src: "%v"}}, "store %v, %p"},
		{ir.Instr{Kind: ir.InstrReturn}, "return"},
		{ir.Instr{Kind: ir.InstrReturn, Return: ir.ReturnInstr{HasValue: true, Value: "%x"}}, "return %x"},
		{ir.Instr{Kind: ir.InstrReturnInPlace, ReturnInPlace: ir.ReturnInPlaceInstr{Value: ".tmp1"}}, "return_in_place .tmp1"},
		{ir.Instr{Kind: ir.InstrBin, Bin: ir.BinInstr{Op: ir.BinMul, Dest: "%d", Left: "%a", Right: "%b"}}, "%d = mul %a, %b"},
		{ir.Instr{Kind: ir.InstrCall, Call: ir.CallInstr{Func: "print", Args: []string{"%a"}}}, "call print(%a)"},
	}
	for _, tc := range cases {
		if got := tc.ins.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

// TestDumpModule tests that a module dump includes structs, globals and bodies.
func TestDumpModule(t *testing.T) {
	m := &ir.Module{Name: "demo"}
	m.AddStruct(&ir.StructDef{
		Name: "Point",
		Fields: []ir.StructField{
			{Name: "x", Type: ir.F32()},
			{Name: "y", Type: ir.F32()},
		},
	})
	m.AddGlobal(ir.Global{Name: "g", Type: ir.I32(), IsConst: true})

	f := ir.NewFunction("origin", ir.StructType("Point"))
	f.Body = append(f.Body,
		ir.Instr{Kind: ir.InstrAlloca, Alloca: ir.AllocaInstr{Dest: ".tmp0", Type: ir.StructType("Point")}},
		ir.Instr{Kind: ir.InstrReturn, Return: ir.ReturnInstr{HasValue: true, Value: ".tmp0"}},
	)
	m.AddFunction(f)

	var sb strings.Builder
	if err := ir.DumpModule(&sb, m); err != nil {
		t.Fatalf("DumpModule failed: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"module demo",
		"struct Point { x: f32, y: f32 }",
		"G0: i32 const name=g",
		"fn origin() -> struct.Point:",
		".tmp0 = alloca struct.Point",
		"return .tmp0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
