package layout

import (
	"fmt"
	"slices"
	"strings"
)

// cacheLineBytes is the boundary used for the CacheAligned flag.
const cacheLineBytes = 64

// primitiveInfo returns the size and alignment of builtin type names.
func primitiveInfo(typeName string) (info [2]int, ok bool) {
	switch typeName {
	case "int", "i32", "u32", "uint":
		return [2]int{4, 4}, true
	case "i64", "u64":
		return [2]int{8, 8}, true
	case "float", "f32":
		return [2]int{4, 4}, true
	case "f64", "double":
		return [2]int{8, 8}, true
	case "bool", "char", "i8", "u8":
		return [2]int{1, 1}, true
	case "i16", "u16":
		return [2]int{2, 2}, true
	case "string", "str":
		// Pointer plus length.
		return [2]int{16, 8}, true
	default:
		return [2]int{}, false
	}
}

// typeInfo resolves any type name to (size, align). Analyzed structs win
// over the builtin table; arrays are dynamic handles; everything else is
// pointer sized.
func (e *Engine) typeInfo(typeName string) (size, align int) {
	if info, ok := primitiveInfo(typeName); ok {
		return info[0], info[1]
	}
	if e != nil {
		if l, ok := e.layouts[typeName]; ok {
			return l.Size, l.Align
		}
	}
	if strings.HasPrefix(typeName, "[") {
		return 16, 8
	}
	ptrSize, ptrAlign := 8, 8
	if e != nil && e.Target.PtrSize > 0 {
		ptrSize = e.Target.PtrSize
		ptrAlign = e.Target.PtrAlign
		if ptrAlign <= 0 {
			ptrAlign = ptrSize
		}
	}
	return ptrSize, ptrAlign
}

// naiveSize packs fields in declaration order and returns the padded size.
func (e *Engine) naiveSize(fields []Field) int {
	size := 0
	maxAlign := 1
	for _, f := range fields {
		fSize, fAlign := e.typeInfo(f.TypeName)
		size = alignUp(size, fAlign)
		size += fSize
		maxAlign = maxInt(maxAlign, fAlign)
	}
	return alignUp(size, maxAlign)
}

// sortByAlignment orders slots by descending alignment, then descending
// size. The sort is stable so equal fields keep declaration order.
func sortByAlignment(slots []FieldSlot) {
	slices.SortStableFunc(slots, func(a, b FieldSlot) int {
		if a.Align != b.Align {
			return b.Align - a.Align
		}
		return b.Size - a.Size
	})
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Report renders a one-struct optimization summary.
func (e *Engine) Report(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	l, ok := e.layouts[name]
	if !ok {
		return "", false
	}
	cache := "no"
	if l.CacheAligned {
		cache = "yes"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "struct '%s' layout:\n", name)
	fmt.Fprintf(&sb, "  size: %d bytes\n", l.Size)
	fmt.Fprintf(&sb, "  align: %d bytes\n", l.Align)
	fmt.Fprintf(&sb, "  padding: %d bytes\n", l.Padding)
	fmt.Fprintf(&sb, "  cache aligned: %s\n", cache)
	fmt.Fprintf(&sb, "  field order: %s -> %s",
		strings.Join(l.OriginalOrder, ", "),
		strings.Join(l.OptimizedOrder(), ", "))
	return sb.String(), true
}
