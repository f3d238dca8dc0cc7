package regalloc

import (
	"cmp"
	"slices"

	"chim/internal/ir"
)

// FunctionAllocation binds a function's value names to virtual
// register ids and holds the coloring result for them.
type FunctionAllocation struct {
	Names  []string // Names[v] is the value bound to VReg(v)
	Result *Allocation
}

// RegOf returns the virtual register id bound to name.
func (fa *FunctionAllocation) RegOf(name string) (VReg, bool) {
	if fa == nil {
		return 0, false
	}
	for i, n := range fa.Names {
		if n == name {
			return VReg(i), true //nolint:gosec // bounded by value count
		}
	}
	return 0, false
}

// NameOf returns the value name bound to reg.
func (fa *FunctionAllocation) NameOf(reg VReg) (string, bool) {
	if fa == nil || int(reg) >= len(fa.Names) {
		return "", false
	}
	return fa.Names[reg], true
}

// AllocateFunction computes liveness for fn, turns every named value
// into a virtual register with its live interval, and colors the
// resulting interference graph with numPhysical registers. Values are
// numbered in order of first appearance so the mapping is stable
// across runs.
func AllocateFunction(fn *ir.Function, numPhysical uint8) (*FunctionAllocation, error) {
	ranges := ComputeLiveness(fn).Ranges()

	names := make([]string, 0, len(ranges))
	for name := range ranges {
		names = append(names, name)
	}
	slices.SortFunc(names, func(x, y string) int {
		if c := cmp.Compare(ranges[x].Start, ranges[y].Start); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})

	alloc := New(numPhysical)
	for _, name := range names {
		reg := alloc.NewVirtual()
		iv := ranges[name]
		alloc.AddInterval(reg, iv.Start, iv.End)
	}
	result, err := alloc.Run()
	if err != nil {
		return nil, err
	}
	return &FunctionAllocation{Names: names, Result: result}, nil
}
