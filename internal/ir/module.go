package ir

// Param is a named function parameter.
type Param struct {
	Name string
	Type Type
}

// Function is a lowered function body as a flat instruction list.
type Function struct {
	Name       string
	Params     []Param
	ReturnType Type
	Body       []Instr

	IsPublic bool
	IsKernel bool
}

// NewFunction returns an empty function with the given signature.
func NewFunction(name string, ret Type) *Function {
	return &Function{Name: name, ReturnType: ret}
}

// StructField is a named struct field.
type StructField struct {
	Name string
	Type Type
}

// StructDef is a named struct declaration.
type StructDef struct {
	Name   string
	Fields []StructField
}

// ValueKind enumerates constant kinds.
type ValueKind uint8

const (
	ValueInt ValueKind = iota
	ValueFloat
	ValueBool
	ValueString
	ValueNull
)

// Value is a constant initializer for a global.
type Value struct {
	Kind ValueKind

	Int    int64
	Float  float64
	Bool   bool
	String string
}

// Global is a module-level variable.
type Global struct {
	Name    string
	Type    Type
	Value   *Value
	IsConst bool
}

// Module is a compilation unit: functions, struct declarations and globals.
type Module struct {
	Name      string
	Functions []*Function
	Structs   []*StructDef
	Globals   []Global
}

// NewModule creates an empty module with the given name.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// AddFunction appends a function to the module.
func (m *Module) AddFunction(f *Function) {
	if f == nil {
		return
	}
	m.Functions = append(m.Functions, f)
}

// AddStruct appends a struct declaration to the module.
func (m *Module) AddStruct(s *StructDef) {
	if s == nil {
		return
	}
	m.Structs = append(m.Structs, s)
}

// AddGlobal appends a global to the module.
func (m *Module) AddGlobal(g Global) {
	m.Globals = append(m.Globals, g)
}

// Function returns the named function, or nil.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f != nil && f.Name == name {
			return f
		}
	}
	return nil
}

// Struct returns the named struct declaration, or nil.
func (m *Module) Struct(name string) *StructDef {
	for _, s := range m.Structs {
		if s != nil && s.Name == name {
			return s
		}
	}
	return nil
}
