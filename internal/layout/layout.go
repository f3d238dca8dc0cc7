// Package layout computes struct memory layouts for a target ABI.
//
// The engine reorders fields by descending alignment so padding collapses
// toward the tail, keeps the declared order around for savings reports,
// and answers size and alignment queries for every type name the backend
// can mention. Unknown names degrade to the target pointer layout instead
// of failing, so layout queries are total.
package layout

import (
	"chim/internal/ir"
)

// Field is a struct field as declared: a name and a type name.
type Field struct {
	Name     string
	TypeName string
}

// FieldSlot is one field placed at its final offset.
type FieldSlot struct {
	Name   string
	Type   string
	Offset int
	Size   int
	Align  int
}

// Layout is the computed layout of a struct. Fields appear in optimized
// order; OriginalOrder preserves the declaration order.
type Layout struct {
	Name  string
	Size  int
	Align int

	Fields        []FieldSlot
	OriginalOrder []string

	// Padding counts the bytes the optimized placement still wastes.
	Padding int
	// CacheAligned marks structs that span a cache line or were
	// declared value types.
	CacheAligned bool
}

// FieldOffset returns the byte offset of the named field.
func (l *Layout) FieldOffset(name string) (int, bool) {
	if l == nil {
		return 0, false
	}
	for i := range l.Fields {
		if l.Fields[i].Name == name {
			return l.Fields[i].Offset, true
		}
	}
	return 0, false
}

// OptimizedOrder returns field names in placement order.
func (l *Layout) OptimizedOrder() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.Fields))
	for i := range l.Fields {
		out[i] = l.Fields[i].Name
	}
	return out
}

// Engine computes and caches struct layouts for one target.
type Engine struct {
	Target Target

	layouts    map[string]*Layout
	declared   map[string][]Field
	valueTypes map[string]bool
	simdAlign  int
}

// New creates an Engine for the given target.
func New(target Target) *Engine {
	return &Engine{
		Target:     target,
		layouts:    make(map[string]*Layout, 16),
		declared:   make(map[string][]Field, 16),
		valueTypes: make(map[string]bool, 8),
		simdAlign:  16,
	}
}

// NewDefault creates an Engine for x86_64-linux-gnu.
func NewDefault() *Engine {
	return New(X86_64LinuxGNU())
}

// AnalyzeStruct computes the optimized layout of a struct and records it
// for later lookups. Nested struct fields resolve against layouts already
// analyzed, so declarations should arrive in dependency order.
func (e *Engine) AnalyzeStruct(name string, fields []Field) *Layout {
	if e == nil {
		return nil
	}
	e.declared[name] = append([]Field(nil), fields...)

	slots := make([]FieldSlot, len(fields))
	original := make([]string, len(fields))
	for i, f := range fields {
		size, align := e.typeInfo(f.TypeName)
		slots[i] = FieldSlot{Name: f.Name, Type: f.TypeName, Size: size, Align: align}
		original[i] = f.Name
	}

	sortByAlignment(slots)

	offset := 0
	maxAlign := 1
	fieldBytes := 0
	for i := range slots {
		offset = alignUp(offset, slots[i].Align)
		slots[i].Offset = offset
		offset += slots[i].Size
		fieldBytes += slots[i].Size
		maxAlign = maxInt(maxAlign, slots[i].Align)
	}
	size := alignUp(offset, maxAlign)

	l := &Layout{
		Name:          name,
		Size:          size,
		Align:         maxAlign,
		Fields:        slots,
		OriginalOrder: original,
		Padding:       size - fieldBytes,
		CacheAligned:  size >= cacheLineBytes || e.IsValueType(name),
	}
	e.layouts[name] = l
	return l
}

// CalculateSavings reports how many bytes the optimized layout saves over
// placing fields in declaration order. Never negative.
func (e *Engine) CalculateSavings(name string, fields []Field) int {
	if e == nil {
		return 0
	}
	opt, ok := e.layouts[name]
	if !ok {
		opt = e.AnalyzeStruct(name, fields)
	}
	naive := e.naiveSize(fields)
	if naive <= opt.Size {
		return 0
	}
	return naive - opt.Size
}

// Lookup returns the layout computed for name.
func (e *Engine) Lookup(name string) (*Layout, bool) {
	if e == nil {
		return nil, false
	}
	l, ok := e.layouts[name]
	return l, ok
}

// SizeOf returns the size in bytes of a type name.
func (e *Engine) SizeOf(typeName string) int {
	size, _ := e.typeInfo(typeName)
	return size
}

// AlignOf returns the alignment in bytes of a type name.
func (e *Engine) AlignOf(typeName string) int {
	_, align := e.typeInfo(typeName)
	return align
}

// MarkValueType flags a struct as a value type. Value types are treated
// as cache aligned when analyzed afterwards.
func (e *Engine) MarkValueType(name string) {
	if e == nil {
		return
	}
	e.valueTypes[name] = true
}

// IsValueType reports whether the struct was marked as a value type.
func (e *Engine) IsValueType(name string) bool {
	if e == nil {
		return false
	}
	return e.valueTypes[name]
}

// SetSIMDAlignment overrides the vector alignment boundary. The default
// is 16 bytes.
func (e *Engine) SetSIMDAlignment(align int) {
	if e == nil || align <= 0 {
		return
	}
	e.simdAlign = align
}

// ApplySIMDAlignment grows a struct smaller than the vector boundary up
// to it so vector loads stay in bounds.
func (e *Engine) ApplySIMDAlignment(name string) {
	if e == nil {
		return
	}
	l, ok := e.layouts[name]
	if !ok {
		return
	}
	if l.Size < e.simdAlign {
		l.Padding += e.simdAlign - l.Size
		l.Size = e.simdAlign
		l.Align = e.simdAlign
	}
}

// Recursive reports whether the named struct contains itself by value,
// directly or through other structs or arrays. Indirection through
// pointers and references breaks the cycle.
func (e *Engine) Recursive(name string) bool {
	if e == nil {
		return false
	}
	if _, ok := e.declared[name]; !ok {
		return false
	}
	seen := make(map[string]struct{}, 8)
	return e.reaches(name, name, seen)
}

func (e *Engine) reaches(from, target string, seen map[string]struct{}) bool {
	if _, ok := seen[from]; ok {
		return false
	}
	seen[from] = struct{}{}
	for _, f := range e.declared[from] {
		next, ok := embeddedStructName(f.TypeName)
		if !ok {
			continue
		}
		if next == target {
			return true
		}
		if _, declared := e.declared[next]; declared && e.reaches(next, target, seen) {
			return true
		}
	}
	return false
}

// embeddedStructName resolves a field type name to the struct it embeds
// by value, unwrapping arrays. Pointer shapes embed nothing.
func embeddedStructName(typeName string) (string, bool) {
	t := ir.ParseTypeName(typeName)
	for t.Kind == ir.TypeArray {
		if t.Elem == nil {
			return "", false
		}
		t = *t.Elem
	}
	if t.Kind == ir.TypeStruct {
		// Names with primitive spellings never reach here; bare
		// unknown names parse as struct references.
		if _, prim := primitiveInfo(t.Name); prim {
			return "", false
		}
		return t.Name, true
	}
	return "", false
}
