package regalloc_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"chim/internal/regalloc"
)

func TestGraph_EdgesAreSymmetric(t *testing.T) {
	g := regalloc.NewGraph()
	g.AddEdge(1, 2)
	if !g.HasEdge(1, 2) || !g.HasEdge(2, 1) {
		t.Fatalf("expected edge to exist in both directions")
	}
	if g.Degree(1) != 1 || g.Degree(2) != 1 {
		t.Fatalf("expected degree 1 on both ends, got %d and %d", g.Degree(1), g.Degree(2))
	}
	g.AddEdge(2, 1)
	if g.Degree(1) != 1 || g.Degree(2) != 1 {
		t.Fatalf("duplicate edge must not change degrees, got %d and %d", g.Degree(1), g.Degree(2))
	}
	g.AddEdge(3, 3)
	if g.Degree(3) != 0 {
		t.Fatalf("self edge must be ignored, got degree %d", g.Degree(3))
	}
	if g.Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.Len())
	}
	if got := g.Neighbors(1); !slices.Equal(got, []regalloc.VReg{2}) {
		t.Fatalf("expected neighbors [2], got %v", got)
	}
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		a, b regalloc.Interval
		want bool
	}{
		{regalloc.Interval{Start: 0, End: 5}, regalloc.Interval{Start: 5, End: 10}, true},
		{regalloc.Interval{Start: 0, End: 4}, regalloc.Interval{Start: 5, End: 9}, false},
		{regalloc.Interval{Start: 3, End: 3}, regalloc.Interval{Start: 0, End: 10}, true},
		{regalloc.Interval{Start: 10, End: 20}, regalloc.Interval{Start: 0, End: 9}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Overlaps(tt.a); got != tt.want {
			t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestAllocator_BuildInterferenceGraph(t *testing.T) {
	a := regalloc.New(2)
	v0, v1, v2 := a.NewVirtual(), a.NewVirtual(), a.NewVirtual()
	a.AddInterval(v0, 0, 10)
	a.AddInterval(v1, 5, 15)
	a.AddInterval(v2, 12, 20)

	g := a.BuildInterferenceGraph()
	if !g.HasEdge(v0, v1) {
		t.Errorf("expected v0 and v1 to interfere")
	}
	if !g.HasEdge(v1, v2) {
		t.Errorf("expected v1 and v2 to interfere")
	}
	if g.HasEdge(v0, v2) {
		t.Errorf("expected v0 and v2 not to interfere")
	}
	if g.Len() != 3 {
		t.Fatalf("expected 3 nodes in the graph, got %d", g.Len())
	}
}

func TestAllocator_ChainTwoColors(t *testing.T) {
	a := regalloc.New(2)
	v0, v1, v2 := a.NewVirtual(), a.NewVirtual(), a.NewVirtual()
	a.AddInterval(v0, 0, 10)
	a.AddInterval(v1, 5, 15)
	a.AddInterval(v2, 12, 20)

	res, err := a.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SpillCount() != 0 {
		t.Fatalf("expected no spills, got %d", res.SpillCount())
	}
	c0, ok0 := res.PhysOf(v0)
	c1, ok1 := res.PhysOf(v1)
	c2, ok2 := res.PhysOf(v2)
	if !ok0 || !ok1 || !ok2 {
		t.Fatalf("expected all registers colored, got %v %v %v", ok0, ok1, ok2)
	}
	if c0 == c1 {
		t.Errorf("v0 and v1 overlap but share register %d", c0)
	}
	if c1 == c2 {
		t.Errorf("v1 and v2 overlap but share register %d", c1)
	}
}

func TestAllocator_TriangleThreeColors(t *testing.T) {
	a := regalloc.New(3)
	v0, v1, v2 := a.NewVirtual(), a.NewVirtual(), a.NewVirtual()
	a.AddInterval(v0, 0, 10)
	a.AddInterval(v1, 2, 12)
	a.AddInterval(v2, 4, 14)

	res, err := a.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SpillCount() != 0 {
		t.Fatalf("expected no spills with three registers, got %d", res.SpillCount())
	}
	c0, _ := res.PhysOf(v0)
	c1, _ := res.PhysOf(v1)
	c2, _ := res.PhysOf(v2)
	if c0 == c1 || c1 == c2 || c0 == c2 {
		t.Fatalf("pairwise overlapping registers must get distinct colors, got %d %d %d", c0, c1, c2)
	}
}

func TestAllocator_TriangleSpillsWithTwo(t *testing.T) {
	a := regalloc.New(2)
	v0, v1, v2 := a.NewVirtual(), a.NewVirtual(), a.NewVirtual()
	a.AddInterval(v0, 0, 10)
	a.AddInterval(v1, 2, 12)
	a.AddInterval(v2, 4, 14)

	res, err := a.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SpillCount() != 1 {
		t.Fatalf("expected exactly one spill, got %d", res.SpillCount())
	}
	if !res.Spilled(v0) {
		t.Errorf("expected the lowest id register to be the spill candidate")
	}
	if slot, ok := res.SlotOf(v0); !ok || slot != 0 {
		t.Errorf("expected v0 in stack slot 0, got %d (ok=%v)", slot, ok)
	}
	c1, ok1 := res.PhysOf(v1)
	c2, ok2 := res.PhysOf(v2)
	if !ok1 || !ok2 {
		t.Fatalf("expected remaining registers colored")
	}
	if c1 == c2 {
		t.Errorf("v1 and v2 overlap but share register %d", c1)
	}
}

func TestAllocator_DisjointIntervalsShareRegister(t *testing.T) {
	a := regalloc.New(1)
	v0, v1 := a.NewVirtual(), a.NewVirtual()
	a.AddInterval(v0, 0, 5)
	a.AddInterval(v1, 10, 20)

	res, err := a.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c0, ok0 := res.PhysOf(v0)
	c1, ok1 := res.PhysOf(v1)
	if !ok0 || !ok1 {
		t.Fatalf("expected both registers colored")
	}
	if c0 != 0 || c1 != 0 {
		t.Errorf("disjoint intervals should share register 0, got %d and %d", c0, c1)
	}
}

func TestAllocator_SingleRegisterOverlapSpills(t *testing.T) {
	a := regalloc.New(1)
	v0, v1 := a.NewVirtual(), a.NewVirtual()
	a.AddInterval(v0, 0, 10)
	a.AddInterval(v1, 5, 15)

	res, err := a.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SpillCount() != 1 {
		t.Fatalf("expected one spill with a single register, got %d", res.SpillCount())
	}
	if !res.Spilled(v0) {
		t.Errorf("expected v0 spilled")
	}
	if _, ok := res.PhysOf(v1); !ok {
		t.Errorf("expected v1 colored after v0 spilled")
	}
}

func TestAllocator_EveryRegisterAssignedExactlyOnce(t *testing.T) {
	a := regalloc.New(2)
	ivs := [][2]uint32{{0, 10}, {2, 12}, {4, 14}, {20, 25}, {22, 30}}
	for i, iv := range ivs {
		a.AddInterval(regalloc.VReg(i), iv[0], iv[1]) //nolint:gosec // small fixture
	}

	res, err := a.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	regs := res.VRegs()
	if len(regs) != len(ivs) {
		t.Fatalf("expected %d allocated registers, got %d", len(ivs), len(regs))
	}
	for _, r := range regs {
		_, phys := res.PhysOf(r)
		_, slot := res.SlotOf(r)
		if phys == slot {
			t.Errorf("v%d: expected exactly one of register or slot, got phys=%v slot=%v", r, phys, slot)
		}
	}
}

func TestAllocator_SpillSlotsStrictlyIncrease(t *testing.T) {
	a := regalloc.New(1)
	v0, v1, v2 := a.NewVirtual(), a.NewVirtual(), a.NewVirtual()
	a.AddInterval(v0, 0, 10)
	a.AddInterval(v1, 1, 11)
	a.AddInterval(v2, 2, 12)

	res, err := a.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spills := res.Spills()
	if len(spills) != 2 {
		t.Fatalf("expected two spills, got %d", len(spills))
	}
	prev := -1
	for _, r := range spills {
		slot, ok := res.SlotOf(r)
		if !ok {
			t.Fatalf("spilled register v%d has no slot", r)
		}
		if int(slot) <= prev {
			t.Fatalf("slots must strictly increase in spill order, got %d after %d", slot, prev)
		}
		prev = int(slot)
	}
	if slot, _ := res.SlotOf(spills[0]); slot != 0 {
		t.Errorf("expected first spill in slot 0, got %d", slot)
	}
}

func TestAllocator_NoPhysicalRegisters(t *testing.T) {
	a := regalloc.New(0)
	v0 := a.NewVirtual()
	a.AddInterval(v0, 0, 5)

	_, err := a.Run()
	if err == nil {
		t.Fatalf("expected an error when no physical registers exist")
	}
	var allocErr *regalloc.AllocationError
	if !errors.As(err, &allocErr) {
		t.Fatalf("expected an AllocationError, got %T", err)
	}
	if !strings.Contains(allocErr.Message, "no physical registers") {
		t.Errorf("unexpected message: %q", allocErr.Message)
	}

	empty := regalloc.New(0)
	res, err := empty.Run()
	if err != nil {
		t.Fatalf("no registers to allocate should succeed, got %v", err)
	}
	if len(res.VRegs()) != 0 {
		t.Fatalf("expected an empty allocation, got %d registers", len(res.VRegs()))
	}
}

func TestAllocator_OverlappingColoredRegistersDiffer(t *testing.T) {
	ivs := [][2]uint32{{0, 4}, {2, 9}, {3, 7}, {5, 12}, {8, 14}, {10, 16}, {13, 18}, {1, 6}}
	a := regalloc.New(2)
	for i, iv := range ivs {
		a.AddInterval(regalloc.VReg(i), iv[0], iv[1]) //nolint:gosec // small fixture
	}
	res, err := a.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range ivs {
		for j := i + 1; j < len(ivs); j++ {
			ri, rj := regalloc.VReg(i), regalloc.VReg(j) //nolint:gosec // small fixture
			ci, oki := res.PhysOf(ri)
			cj, okj := res.PhysOf(rj)
			if !oki || !okj {
				continue
			}
			overlap := !(ivs[i][1] < ivs[j][0] || ivs[j][1] < ivs[i][0])
			if overlap && ci == cj {
				t.Errorf("v%d and v%d overlap but both use register %d", i, j, ci)
			}
		}
	}
}

func TestAllocator_Deterministic(t *testing.T) {
	build := func() *regalloc.Allocator {
		a := regalloc.New(2)
		ivs := [][2]uint32{{0, 4}, {2, 9}, {3, 7}, {5, 12}, {8, 14}, {10, 16}, {13, 18}, {1, 6}}
		for i, iv := range ivs {
			a.AddInterval(regalloc.VReg(i), iv[0], iv[1]) //nolint:gosec // small fixture
		}
		return a
	}

	first, err := build().Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for run := 0; run < 3; run++ {
		next, err := build().Run()
		if err != nil {
			t.Fatalf("unexpected error on run %d: %v", run, err)
		}
		if !slices.Equal(first.Spills(), next.Spills()) {
			t.Fatalf("spill order changed between runs: %v vs %v", first.Spills(), next.Spills())
		}
		for _, r := range first.VRegs() {
			p1, ok1 := first.PhysOf(r)
			p2, ok2 := next.PhysOf(r)
			if ok1 != ok2 || p1 != p2 {
				t.Fatalf("v%d: assignment changed between runs", r)
			}
			s1, ok1 := first.SlotOf(r)
			s2, ok2 := next.SlotOf(r)
			if ok1 != ok2 || s1 != s2 {
				t.Fatalf("v%d: slot changed between runs", r)
			}
		}
	}
}

func TestAllocation_ResolveSpills(t *testing.T) {
	a := regalloc.New(1)
	v0, v1 := a.NewVirtual(), a.NewVirtual()
	a.AddInterval(v0, 0, 10)
	a.AddInterval(v1, 5, 15)
	res, err := a.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := res.ResolveSpills(); err == nil {
		t.Fatalf("expected an error for an allocation with spills")
	} else if !strings.Contains(err.Error(), "spill") {
		t.Errorf("unexpected message: %q", err.Error())
	}

	clean := regalloc.New(2)
	w0, w1 := clean.NewVirtual(), clean.NewVirtual()
	clean.AddInterval(w0, 0, 10)
	clean.AddInterval(w1, 5, 15)
	res, err = clean.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := res.ResolveSpills(); err != nil {
		t.Fatalf("allocation without spills must resolve cleanly, got %v", err)
	}
}
