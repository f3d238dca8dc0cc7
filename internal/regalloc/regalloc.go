// Package regalloc assigns physical registers to virtual registers by
// graph coloring. Registers whose live intervals overlap interfere and
// must not share a physical register; registers the allocator cannot
// color are spilled to numbered stack slots.
package regalloc

import "slices"

// VReg identifies a virtual register.
type VReg uint32

// PReg identifies a physical register on the target machine.
type PReg uint8

// Interval is a live range over instruction positions, inclusive on
// both ends.
type Interval struct {
	Start uint32
	End   uint32
}

// Overlaps reports whether the two intervals share at least one
// position.
func (iv Interval) Overlaps(other Interval) bool {
	return !(iv.End < other.Start || other.End < iv.Start)
}

// Allocator colors an interference graph built from live intervals.
type Allocator struct {
	numPhysical int
	next        VReg
	intervals   map[VReg]Interval
	graph       *Graph
}

// New creates an allocator that colors with numPhysical registers.
func New(numPhysical uint8) *Allocator {
	return &Allocator{
		numPhysical: int(numPhysical),
		intervals:   make(map[VReg]Interval),
	}
}

// NewVirtual reserves and returns a fresh virtual register id.
func (a *Allocator) NewVirtual() VReg {
	reg := a.next
	a.next++
	return reg
}

// AddInterval records the live interval of reg, replacing any interval
// recorded for it before.
func (a *Allocator) AddInterval(reg VReg, start, end uint32) {
	if reg >= a.next {
		a.next = reg + 1
	}
	a.intervals[reg] = Interval{Start: start, End: end}
}

// Interval returns the recorded live interval of reg.
func (a *Allocator) Interval(reg VReg) (Interval, bool) {
	iv, ok := a.intervals[reg]
	return iv, ok
}

// BuildInterferenceGraph rebuilds the interference graph from the
// recorded intervals and returns it. Two registers interfere exactly
// when their intervals overlap.
func (a *Allocator) BuildInterferenceGraph() *Graph {
	g := NewGraph()
	regs := a.regs()
	for _, r := range regs {
		g.AddNode(r)
	}
	for i, r1 := range regs {
		for _, r2 := range regs[i+1:] {
			if a.intervals[r1].Overlaps(a.intervals[r2]) {
				g.AddEdge(r1, r2)
			}
		}
	}
	a.graph = g
	return g
}

// Graph returns the interference graph from the last build, or nil if
// none was built yet.
func (a *Allocator) Graph() *Graph {
	return a.graph
}

// Run colors the interference graph and produces the final assignment.
// It fails when virtual registers were recorded but the target has no
// physical registers at all.
func (a *Allocator) Run() (*Allocation, error) {
	regs := a.regs()
	if a.numPhysical == 0 && len(regs) > 0 {
		return nil, errorf("no physical registers available for %d virtual register(s)", len(regs))
	}
	g := a.BuildInterferenceGraph()

	// Phase 1: simplify. Repeatedly remove the unprocessed register
	// with the lowest remaining degree (ties go to the lowest id).
	// Registers below the color bound go onto the select stack; the
	// rest are spilled in discovery order.
	remaining := make(map[VReg]bool, len(regs))
	degree := make(map[VReg]int, len(regs))
	for _, r := range regs {
		remaining[r] = true
		degree[r] = g.Degree(r)
	}
	order := make([]VReg, 0, len(regs))
	var spilled []VReg
	for range regs {
		r := pickMinDegree(regs, remaining, degree)
		if degree[r] < a.numPhysical {
			order = append(order, r)
		} else {
			spilled = append(spilled, r)
		}
		delete(remaining, r)
		for _, nb := range g.Neighbors(r) {
			if remaining[nb] {
				degree[nb]--
			}
		}
	}

	// Phase 2: select. Assign colors in reverse removal order; each
	// register had fewer than numPhysical unprocessed neighbors when
	// it was simplified, so a free color always exists for it.
	alloc := newAllocation()
	for i := len(order) - 1; i >= 0; i-- {
		r := order[i]
		alloc.physical[r] = a.findColor(g, alloc, r)
	}

	// Phase 3: number spill slots in discovery order.
	for i, r := range spilled {
		alloc.slots[r] = uint32(i) //nolint:gosec // bounded by register count
	}
	alloc.spilled = spilled
	return alloc, nil
}

// regs returns all registers with recorded intervals, sorted by id.
func (a *Allocator) regs() []VReg {
	out := make([]VReg, 0, len(a.intervals))
	for r := range a.intervals {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// pickMinDegree returns the unprocessed register with the smallest
// remaining degree, preferring the lowest id on ties.
func pickMinDegree(regs []VReg, remaining map[VReg]bool, degree map[VReg]int) VReg {
	var best VReg
	bestDeg := -1
	for _, r := range regs {
		if !remaining[r] {
			continue
		}
		if bestDeg < 0 || degree[r] < bestDeg {
			best = r
			bestDeg = degree[r]
		}
	}
	return best
}

// findColor returns the lowest physical register not taken by an
// already colored neighbor of reg.
func (a *Allocator) findColor(g *Graph, alloc *Allocation, reg VReg) PReg {
	used := make([]bool, a.numPhysical)
	for _, nb := range g.Neighbors(reg) {
		if c, ok := alloc.physical[nb]; ok && int(c) < a.numPhysical {
			used[c] = true
		}
	}
	for c := range used {
		if !used[c] {
			return PReg(c) //nolint:gosec // bounded by numPhysical <= 255
		}
	}
	return 0
}
