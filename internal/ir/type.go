package ir

import (
	"fmt"
	"strings"
)

// TypeKind enumerates IR type kinds.
type TypeKind uint8

const (
	// TypeVoid represents the absence of a value.
	TypeVoid TypeKind = iota
	// TypeInt32 represents a 32-bit signed integer.
	TypeInt32
	// TypeInt64 represents a 64-bit signed integer.
	TypeInt64
	// TypeFloat32 represents a 32-bit float.
	TypeFloat32
	// TypeFloat64 represents a 64-bit float.
	TypeFloat64
	// TypeBool represents a boolean.
	TypeBool
	// TypeString represents a string.
	TypeString
	// TypePtr represents a raw pointer.
	TypePtr
	// TypeRef represents a shared reference.
	TypeRef
	// TypeMutRef represents a mutable reference.
	TypeMutRef
	// TypeArray represents a fixed-length array.
	TypeArray
	// TypeStruct represents a named struct.
	TypeStruct
)

// Type represents an IR type. The zero value is void.
type Type struct {
	Kind TypeKind

	// Elem is set for Ptr, Ref, MutRef and Array.
	Elem *Type
	// Count is set for Array.
	Count int
	// Name is set for Struct.
	Name string
}

// Void returns the void type.
func Void() Type { return Type{Kind: TypeVoid} }

// I32 returns the 32-bit signed integer type.
func I32() Type { return Type{Kind: TypeInt32} }

// I64 returns the 64-bit signed integer type.
func I64() Type { return Type{Kind: TypeInt64} }

// F32 returns the 32-bit float type.
func F32() Type { return Type{Kind: TypeFloat32} }

// F64 returns the 64-bit float type.
func F64() Type { return Type{Kind: TypeFloat64} }

// Bool returns the boolean type.
func Bool() Type { return Type{Kind: TypeBool} }

// Str returns the string type.
func Str() Type { return Type{Kind: TypeString} }

// PtrTo returns a pointer type to elem.
func PtrTo(elem Type) Type {
	e := elem
	return Type{Kind: TypePtr, Elem: &e}
}

// RefTo returns a shared reference type to elem.
func RefTo(elem Type) Type {
	e := elem
	return Type{Kind: TypeRef, Elem: &e}
}

// MutRefTo returns a mutable reference type to elem.
func MutRefTo(elem Type) Type {
	e := elem
	return Type{Kind: TypeMutRef, Elem: &e}
}

// ArrayOf returns a fixed-length array type.
func ArrayOf(elem Type, count int) Type {
	e := elem
	return Type{Kind: TypeArray, Elem: &e, Count: count}
}

// StructType returns a named struct type.
func StructType(name string) Type {
	return Type{Kind: TypeStruct, Name: name}
}

// String renders the type in IR notation.
func (t Type) String() string {
	switch t.Kind {
	case TypeVoid:
		return "void"
	case TypeInt32:
		return "i32"
	case TypeInt64:
		return "i64"
	case TypeFloat32:
		return "f32"
	case TypeFloat64:
		return "f64"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypePtr:
		return fmt.Sprintf("ptr<%s>", t.elemString())
	case TypeRef:
		return fmt.Sprintf("ref<%s>", t.elemString())
	case TypeMutRef:
		return fmt.Sprintf("mut_ref<%s>", t.elemString())
	case TypeArray:
		return fmt.Sprintf("[%s; %d]", t.elemString(), t.Count)
	case TypeStruct:
		return "struct." + t.Name
	default:
		return "<type?>"
	}
}

// LayoutName returns the name the layout tables key this type by.
// Struct types resolve by their bare name, not the struct. prefix.
func (t Type) LayoutName() string {
	if t.Kind == TypeStruct {
		return t.Name
	}
	return t.String()
}

// IsAggregate reports whether the type is a struct or array.
func (t Type) IsAggregate() bool {
	return t.Kind == TypeStruct || t.Kind == TypeArray
}

// IsPointerLike reports whether values of the type are machine pointers.
func (t Type) IsPointerLike() bool {
	switch t.Kind {
	case TypePtr, TypeRef, TypeMutRef:
		return true
	default:
		return false
	}
}

// Equal reports structural type equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind || t.Count != o.Count || t.Name != o.Name {
		return false
	}
	if (t.Elem == nil) != (o.Elem == nil) {
		return false
	}
	if t.Elem != nil && !t.Elem.Equal(*o.Elem) {
		return false
	}
	return true
}

func (t Type) elemString() string {
	if t.Elem == nil {
		return "?"
	}
	return t.Elem.String()
}

// ParseTypeName parses IR type notation back into a Type. Unknown names
// become struct references so lookups stay name-driven.
func ParseTypeName(s string) Type {
	switch s {
	case "void":
		return Void()
	case "i32", "int", "u32", "uint":
		return I32()
	case "i64", "u64":
		return I64()
	case "f32", "float":
		return F32()
	case "f64", "double":
		return F64()
	case "bool":
		return Bool()
	case "string", "str":
		return Str()
	}
	if inner, ok := cutAngle(s, "ptr"); ok {
		return PtrTo(ParseTypeName(inner))
	}
	if inner, ok := cutAngle(s, "ref"); ok {
		return RefTo(ParseTypeName(inner))
	}
	if inner, ok := cutAngle(s, "mut_ref"); ok {
		return MutRefTo(ParseTypeName(inner))
	}
	if rest, ok := strings.CutPrefix(s, "struct."); ok {
		return StructType(rest)
	}
	if elem, count, ok := cutArray(s); ok {
		return ArrayOf(ParseTypeName(elem), count)
	}
	return StructType(s)
}

func cutAngle(s, head string) (string, bool) {
	rest, ok := strings.CutPrefix(s, head+"<")
	if !ok || !strings.HasSuffix(rest, ">") {
		return "", false
	}
	return strings.TrimSuffix(rest, ">"), true
}

func cutArray(s string) (elem string, count int, ok bool) {
	rest, ok := strings.CutPrefix(s, "[")
	if !ok || !strings.HasSuffix(rest, "]") {
		return "", 0, false
	}
	rest = strings.TrimSuffix(rest, "]")
	elem, countStr, ok := strings.Cut(rest, ";")
	if !ok {
		return "", 0, false
	}
	n := 0
	if _, err := fmt.Sscanf(strings.TrimSpace(countStr), "%d", &n); err != nil {
		return "", 0, false
	}
	return strings.TrimSpace(elem), n, true
}
