package project

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"chim/internal/ast"
	"chim/internal/escape"
	"chim/internal/ir"
	"chim/internal/layout"
	"chim/internal/project/dag"
	"chim/internal/regalloc"
	"chim/internal/storage"
)

// DefaultPhysical is the register budget used when a manifest has no
// [regalloc] section.
const DefaultPhysical uint8 = 8

// Unit is a lowered manifest: everything the analysis driver consumes.
type Unit struct {
	Name       string
	Path       string
	Root       string
	Target     layout.Target
	Thresholds storage.Config
	Physical   uint8
	Structs    []StructDecl
	Vars       []VarDecl
	Facts      *escape.Facts
	Functions  []FnDecl
}

// StructDecl is a struct declaration for the layout engine.
type StructDecl struct {
	Name      string
	Fields    []layout.Field
	ValueType bool
}

// VarDecl is a variable declaration for the storage decider. Init is
// non-nil when the manifest marked the initializer as taking an
// address.
type VarDecl struct {
	Name     string
	TypeName string
	Context  string
	Lifetime int
	Init     *ast.Expr
}

// FnDecl is a function to register-allocate: either explicit live
// intervals, or an instruction stream to synthesize liveness from.
type FnDecl struct {
	Name      string
	Intervals []IntervalDecl
	Body      []ir.Instr
}

// IntervalDecl pins one virtual register to a live interval.
type IntervalDecl struct {
	Reg   regalloc.VReg
	Start uint32
	End   uint32
}

func lower(path, name string, cfg *rawManifest, meta toml.MetaData) (*Unit, error) {
	unit := &Unit{
		Name:       name,
		Path:       path,
		Target:     layout.X86_64LinuxGNU(),
		Thresholds: storage.DefaultConfig(),
		Physical:   DefaultPhysical,
		Facts:      escape.NewFacts(),
	}

	if meta.IsDefined("target", "triple") {
		triple := normalizeName(cfg.Target.Triple)
		t, ok := layout.ByTriple(triple)
		if !ok {
			return nil, fmt.Errorf("%s: unknown target triple %q", path, triple)
		}
		unit.Target = t
	}
	if err := lowerThresholds(path, cfg, meta, &unit.Thresholds); err != nil {
		return nil, err
	}
	if meta.IsDefined("regalloc", "physical") {
		phys, err := safecast.Conv[uint8](cfg.Regalloc.Physical)
		if err != nil {
			return nil, fmt.Errorf("%s: [regalloc].physical out of range: %w", path, err)
		}
		unit.Physical = phys
	}

	if err := lowerStructs(path, cfg, unit); err != nil {
		return nil, err
	}
	if err := orderStructs(unit); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := lowerVars(path, cfg, unit); err != nil {
		return nil, err
	}
	if err := lowerFns(path, cfg, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func lowerThresholds(path string, cfg *rawManifest, meta toml.MetaData, out *storage.Config) error {
	set := func(key string, raw int64, dst *int) error {
		if !meta.IsDefined("thresholds", key) {
			return nil
		}
		if raw < 0 {
			return fmt.Errorf("%s: [thresholds].%s must not be negative, got %d", path, key, raw)
		}
		n, err := safecast.Conv[int](raw)
		if err != nil {
			return fmt.Errorf("%s: [thresholds].%s out of range: %w", path, key, err)
		}
		*dst = n
		return nil
	}
	if err := set("stack", cfg.Thresholds.Stack, &out.StackThreshold); err != nil {
		return err
	}
	if err := set("pool", cfg.Thresholds.Pool, &out.PoolThreshold); err != nil {
		return err
	}
	return set("pool_lifetime", cfg.Thresholds.PoolLifetime, &out.PoolLifetimeThreshold)
}

func lowerStructs(path string, cfg *rawManifest, unit *Unit) error {
	seen := make(map[string]bool, len(cfg.Structs))
	for i := range cfg.Structs {
		s := &cfg.Structs[i]
		sname := normalizeName(s.Name)
		if sname == "" {
			return fmt.Errorf("%s: [[struct]] %d: missing name", path, i)
		}
		if seen[sname] {
			return fmt.Errorf("%s: duplicate struct %q", path, sname)
		}
		seen[sname] = true
		decl := StructDecl{Name: sname, ValueType: s.ValueType}
		for j := range s.Fields {
			fname := normalizeName(s.Fields[j].Name)
			ftype := normalizeName(s.Fields[j].Type)
			if fname == "" || ftype == "" {
				return fmt.Errorf("%s: struct %q field %d: missing name or type", path, sname, j)
			}
			decl.Fields = append(decl.Fields, layout.Field{Name: fname, TypeName: ftype})
		}
		unit.Structs = append(unit.Structs, decl)
	}
	return nil
}

// orderStructs sorts struct declarations so every nested value type is
// analyzed before the struct embedding it. Cycle members keep their
// manifest order; the layout engine degrades their cross-references to
// pointers either way.
func orderStructs(unit *Unit) error {
	if len(unit.Structs) < 2 {
		return nil
	}
	index := make(map[string]dag.NodeID, len(unit.Structs))
	for i, s := range unit.Structs {
		id, err := safecast.Conv[dag.NodeID](i)
		if err != nil {
			return fmt.Errorf("struct index out of range: %w", err)
		}
		index[s.Name] = id
	}

	g := dag.New(len(unit.Structs))
	for i, s := range unit.Structs {
		for _, f := range s.Fields {
			dep, ok := index[f.TypeName]
			if !ok || int(dep) == i {
				continue
			}
			g.AddEdge(dep, index[s.Name])
		}
	}

	topo := g.Toposort()
	ordered := make([]StructDecl, 0, len(unit.Structs))
	for _, id := range topo.Order {
		ordered = append(ordered, unit.Structs[id])
	}
	for _, id := range topo.Cycles {
		ordered = append(ordered, unit.Structs[id])
	}
	unit.Structs = ordered
	return nil
}

func lowerVars(path string, cfg *rawManifest, unit *Unit) error {
	seen := make(map[string]bool, len(cfg.Vars))
	for i := range cfg.Vars {
		v := &cfg.Vars[i]
		vname := normalizeName(v.Name)
		vtype := normalizeName(v.Type)
		if vname == "" || vtype == "" {
			return fmt.Errorf("%s: [[var]] %d: missing name or type", path, i)
		}
		context := normalizeName(v.Context)
		if context == "" {
			context = "global"
		}
		if v.Lifetime < 0 {
			return fmt.Errorf("%s: var %q: negative lifetime %d", path, vname, v.Lifetime)
		}
		lifetime, err := safecast.Conv[int](v.Lifetime)
		if err != nil {
			return fmt.Errorf("%s: var %q: lifetime out of range: %w", path, vname, err)
		}
		key := context + "." + vname
		if seen[key] {
			return fmt.Errorf("%s: duplicate var %q in context %q", path, vname, context)
		}
		seen[key] = true

		decl := VarDecl{Name: vname, TypeName: vtype, Context: context, Lifetime: lifetime}
		if v.AddressTaken {
			decl.Init = ast.Ref(ast.Ident(vname))
		}
		if v.Escapes {
			unit.Facts.MarkEscaped(vname, context)
		}
		if v.CapturedByRef {
			unit.Facts.MarkCapturedByRef(vname, context)
		}
		unit.Vars = append(unit.Vars, decl)
	}
	return nil
}

func lowerFns(path string, cfg *rawManifest, unit *Unit) error {
	seen := make(map[string]bool, len(cfg.Fns))
	for i := range cfg.Fns {
		f := &cfg.Fns[i]
		fname := normalizeName(f.Name)
		if fname == "" {
			return fmt.Errorf("%s: [[fn]] %d: missing name", path, i)
		}
		if seen[fname] {
			return fmt.Errorf("%s: duplicate fn %q", path, fname)
		}
		seen[fname] = true
		if len(f.VRegs) > 0 && len(f.Insts) > 0 {
			return fmt.Errorf("%s: fn %q: vregs and insts are mutually exclusive", path, fname)
		}

		decl := FnDecl{Name: fname}
		for j := range f.VRegs {
			iv, err := lowerVReg(&f.VRegs[j])
			if err != nil {
				return fmt.Errorf("%s: fn %q vreg %d: %w", path, fname, j, err)
			}
			decl.Intervals = append(decl.Intervals, iv)
		}
		for j := range f.Insts {
			ins, err := lowerInst(&f.Insts[j])
			if err != nil {
				return fmt.Errorf("%s: fn %q inst %d: %w", path, fname, j, err)
			}
			decl.Body = append(decl.Body, ins)
		}
		unit.Functions = append(unit.Functions, decl)
	}
	return nil
}

func lowerVReg(raw *rawVReg) (IntervalDecl, error) {
	id, err := safecast.Conv[uint32](raw.ID)
	if err != nil {
		return IntervalDecl{}, fmt.Errorf("id out of range: %w", err)
	}
	start, err := safecast.Conv[uint32](raw.Start)
	if err != nil {
		return IntervalDecl{}, fmt.Errorf("start out of range: %w", err)
	}
	end, err := safecast.Conv[uint32](raw.End)
	if err != nil {
		return IntervalDecl{}, fmt.Errorf("end out of range: %w", err)
	}
	if end < start {
		return IntervalDecl{}, fmt.Errorf("interval end %d before start %d", end, start)
	}
	return IntervalDecl{Reg: regalloc.VReg(id), Start: start, End: end}, nil
}

func lowerInst(raw *rawInst) (ir.Instr, error) {
	op := strings.ToLower(strings.TrimSpace(raw.Op))
	dest := normalizeName(raw.Dest)
	src := normalizeName(raw.Src)
	value := normalizeName(raw.Value)

	switch op {
	case "alloca":
		typeName := normalizeName(raw.Type)
		if dest == "" || typeName == "" {
			return ir.Instr{}, fmt.Errorf("alloca needs dest and type")
		}
		return ir.Instr{Kind: ir.InstrAlloca, Alloca: ir.AllocaInstr{Dest: dest, Type: ir.ParseTypeName(typeName)}}, nil
	case "load":
		if dest == "" || src == "" {
			return ir.Instr{}, fmt.Errorf("load needs dest and src")
		}
		return ir.Instr{Kind: ir.InstrLoad, Load: ir.LoadInstr{Dest: dest, Src: src}}, nil
	case "store":
		if dest == "" || src == "" {
			return ir.Instr{}, fmt.Errorf("store needs dest and src")
		}
		return ir.Instr{Kind: ir.InstrStore, Store: ir.StoreInstr{Dest: dest, Src: src}}, nil
	case "getptr":
		if dest == "" || src == "" {
			return ir.Instr{}, fmt.Errorf("getptr needs dest and src")
		}
		offset, err := safecast.Conv[int32](raw.Offset)
		if err != nil {
			return ir.Instr{}, fmt.Errorf("getptr offset out of range: %w", err)
		}
		return ir.Instr{Kind: ir.InstrGetPointer, GetPointer: ir.GetPointerInstr{Dest: dest, Src: src, Offset: offset}}, nil
	case "call":
		callee := normalizeName(raw.Func)
		if callee == "" {
			return ir.Instr{}, fmt.Errorf("call needs func")
		}
		args := make([]string, 0, len(raw.Args))
		for _, a := range raw.Args {
			args = append(args, normalizeName(a))
		}
		return ir.Instr{Kind: ir.InstrCall, Call: ir.CallInstr{HasDest: dest != "", Dest: dest, Func: callee, Args: args}}, nil
	case "br":
		target := normalizeName(raw.Target)
		if target == "" {
			return ir.Instr{}, fmt.Errorf("br needs target")
		}
		return ir.Instr{Kind: ir.InstrBr, Br: ir.BrInstr{Target: target}}, nil
	case "condbr":
		cond := normalizeName(raw.Cond)
		then := normalizeName(raw.Then)
		els := normalizeName(raw.Else)
		if cond == "" || then == "" || els == "" {
			return ir.Instr{}, fmt.Errorf("condbr needs cond, then and else")
		}
		return ir.Instr{Kind: ir.InstrCondBr, CondBr: ir.CondBrInstr{Cond: cond, Then: then, Else: els}}, nil
	case "label":
		name := normalizeName(raw.Name)
		if name == "" {
			return ir.Instr{}, fmt.Errorf("label needs name")
		}
		return ir.Instr{Kind: ir.InstrLabel, Label: ir.LabelInstr{Name: name}}, nil
	case "ret":
		return ir.Instr{Kind: ir.InstrReturn, Return: ir.ReturnInstr{HasValue: value != "", Value: value}}, nil
	case "ret_in_place":
		if value == "" {
			return ir.Instr{}, fmt.Errorf("ret_in_place needs value")
		}
		return ir.Instr{Kind: ir.InstrReturnInPlace, ReturnInPlace: ir.ReturnInPlaceInstr{Value: value}}, nil
	case "borrow":
		if dest == "" || src == "" {
			return ir.Instr{}, fmt.Errorf("borrow needs dest and src")
		}
		return ir.Instr{Kind: ir.InstrBorrow, Borrow: ir.BorrowInstr{Dest: dest, Src: src, Mutable: raw.Mutable}}, nil
	}

	if bop, ok := ir.ParseBinOp(op); ok {
		lhs := normalizeName(raw.Left)
		rhs := normalizeName(raw.Right)
		if dest == "" || lhs == "" || rhs == "" {
			return ir.Instr{}, fmt.Errorf("%s needs dest, lhs and rhs", op)
		}
		return ir.Instr{Kind: ir.InstrBin, Bin: ir.BinInstr{Op: bop, Dest: dest, Left: lhs, Right: rhs}}, nil
	}
	if uop, ok := ir.ParseUnOp(op); ok {
		if dest == "" || src == "" {
			return ir.Instr{}, fmt.Errorf("%s needs dest and src", op)
		}
		return ir.Instr{Kind: ir.InstrUn, Un: ir.UnInstr{Op: uop, Dest: dest, Src: src}}, nil
	}
	return ir.Instr{}, fmt.Errorf("unknown instruction op %q", raw.Op)
}
