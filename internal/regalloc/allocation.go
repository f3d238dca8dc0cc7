package regalloc

import "slices"

// Allocation is the result of a coloring run. Every virtual register
// ends up with either a physical register or a spill slot, never both
// and never neither.
type Allocation struct {
	physical map[VReg]PReg
	slots    map[VReg]uint32
	spilled  []VReg // in spill discovery order
}

func newAllocation() *Allocation {
	return &Allocation{
		physical: make(map[VReg]PReg),
		slots:    make(map[VReg]uint32),
	}
}

// PhysOf returns the physical register assigned to reg.
func (a *Allocation) PhysOf(reg VReg) (PReg, bool) {
	if a == nil {
		return 0, false
	}
	p, ok := a.physical[reg]
	return p, ok
}

// SlotOf returns the stack slot reg was spilled to.
func (a *Allocation) SlotOf(reg VReg) (uint32, bool) {
	if a == nil {
		return 0, false
	}
	s, ok := a.slots[reg]
	return s, ok
}

// Spilled reports whether reg was sent to the stack.
func (a *Allocation) Spilled(reg VReg) bool {
	if a == nil {
		return false
	}
	_, ok := a.slots[reg]
	return ok
}

// SpillCount returns the number of spilled registers.
func (a *Allocation) SpillCount() int {
	if a == nil {
		return 0
	}
	return len(a.spilled)
}

// Spills returns the spilled registers in the order the allocator gave
// up on them. Slot numbers follow this order.
func (a *Allocation) Spills() []VReg {
	if a == nil {
		return nil
	}
	return slices.Clone(a.spilled)
}

// VRegs returns every register covered by the allocation, sorted by id.
func (a *Allocation) VRegs() []VReg {
	if a == nil {
		return nil
	}
	out := make([]VReg, 0, len(a.physical)+len(a.slots))
	for r := range a.physical {
		out = append(out, r)
	}
	for r := range a.slots {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// ResolveSpills reports spilled registers as an allocation failure.
// Rewriting spilled values into stack load/store sequences is not
// implemented, so an allocation that spilled cannot be lowered further
// and callers must reject it instead of emitting wrong code.
func (a *Allocation) ResolveSpills() error {
	if a == nil || len(a.spilled) == 0 {
		return nil
	}
	return errorf("cannot resolve %d spilled register(s): spill code generation is not implemented", len(a.spilled))
}
