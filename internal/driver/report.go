package driver

import (
	"fmt"
	"io"
	"strings"

	"chim/internal/rvo"
	"chim/internal/storage"
)

// LayoutReport is the computed layout of one struct.
type LayoutReport struct {
	Name          string
	Size          int
	Align         int
	Padding       int
	Savings       int
	CacheAligned  bool
	Recursive     bool
	OriginalOrder []string
	FieldOrder    []string
}

// Decision is the storage strategy chosen for one variable.
type Decision struct {
	Name     string
	Context  string
	TypeName string
	Size     int
	Lifetime int
	Strategy storage.Strategy
}

// Assign is the final location of one virtual register. Name is empty
// for functions declared directly over intervals.
type Assign struct {
	Name    string
	Reg     uint32
	Spilled bool
	Phys    uint8
	Slot    uint32
}

// FuncReport is the register allocation result for one function.
type FuncReport struct {
	Name     string
	Physical uint8
	VRegs    int
	Colored  int
	Spilled  int
	Assigns  []Assign
}

// Report is the complete analysis of one unit.
type Report struct {
	Unit      string
	Layouts   []LayoutReport
	Decisions []Decision
	RVO       rvo.Stats
	Functions []FuncReport
}

// WriteText renders rep in the plain form the CLI prints.
func WriteText(w io.Writer, rep *Report) {
	if rep == nil {
		return
	}
	fmt.Fprintf(w, "unit %s\n", rep.Unit)
	for i := range rep.Layouts {
		writeLayout(w, &rep.Layouts[i])
	}
	for _, d := range rep.Decisions {
		fmt.Fprintf(w, "var %s in %s: %s (%s, %d bytes, lifetime %d)\n",
			d.Name, d.Context, d.Strategy, d.TypeName, d.Size, d.Lifetime)
	}
	if rep.RVO.Functions > 0 {
		fmt.Fprintf(w, "rvo: %d function(s) optimized, %d return(s) rewritten\n",
			rep.RVO.Functions, rep.RVO.Rewrites)
	}
	for i := range rep.Functions {
		writeFunc(w, &rep.Functions[i])
	}
}

func writeLayout(w io.Writer, l *LayoutReport) {
	fmt.Fprintf(w, "struct '%s' layout:\n", l.Name)
	fmt.Fprintf(w, "  size: %d bytes\n", l.Size)
	fmt.Fprintf(w, "  align: %d bytes\n", l.Align)
	fmt.Fprintf(w, "  padding: %d bytes\n", l.Padding)
	if l.Savings > 0 {
		fmt.Fprintf(w, "  savings: %d bytes\n", l.Savings)
	}
	if l.CacheAligned {
		fmt.Fprintln(w, "  cache aligned: yes")
	}
	if l.Recursive {
		fmt.Fprintln(w, "  recursive: yes")
	}
	if len(l.FieldOrder) > 0 && !sameOrder(l.OriginalOrder, l.FieldOrder) {
		fmt.Fprintf(w, "  field order: %s -> %s\n",
			strings.Join(l.OriginalOrder, ", "), strings.Join(l.FieldOrder, ", "))
	}
}

func writeFunc(w io.Writer, f *FuncReport) {
	fmt.Fprintf(w, "fn %s: %d vreg(s), %d colored, %d spilled (%d physical)\n",
		f.Name, f.VRegs, f.Colored, f.Spilled, f.Physical)
	for _, a := range f.Assigns {
		loc := fmt.Sprintf("r%d", a.Phys)
		if a.Spilled {
			loc = fmt.Sprintf("slot %d", a.Slot)
		}
		if a.Name != "" {
			fmt.Fprintf(w, "  v%d %s -> %s\n", a.Reg, a.Name, loc)
			continue
		}
		fmt.Fprintf(w, "  v%d -> %s\n", a.Reg, loc)
	}
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
