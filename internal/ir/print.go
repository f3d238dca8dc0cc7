package ir

import (
	"fmt"
	"io"
	"strings"
)

// String renders the instruction in dump notation.
func (ins Instr) String() string {
	switch ins.Kind {
	case InstrAlloca:
		return fmt.Sprintf("%s = alloca %s", ins.Alloca.Dest, ins.Alloca.Type)
	case InstrLoad:
		return fmt.Sprintf("%s = load %s", ins.Load.Dest, ins.Load.Src)
	case InstrStore:
		return fmt.Sprintf("store %s, %s", ins.Store.Src, ins.Store.Dest)
	case InstrGetPointer:
		return fmt.Sprintf("%s = getptr %s, %d", ins.GetPointer.Dest, ins.GetPointer.Src, ins.GetPointer.Offset)
	case InstrBin:
		return fmt.Sprintf("%s = %s %s, %s", ins.Bin.Dest, ins.Bin.Op, ins.Bin.Left, ins.Bin.Right)
	case InstrUn:
		return fmt.Sprintf("%s = %s %s", ins.Un.Dest, ins.Un.Op, ins.Un.Src)
	case InstrCall:
		dst := ""
		if ins.Call.HasDest {
			dst = ins.Call.Dest + " = "
		}
		return fmt.Sprintf("%scall %s(%s)", dst, ins.Call.Func, strings.Join(ins.Call.Args, ", "))
	case InstrBr:
		return fmt.Sprintf("br %s", ins.Br.Target)
	case InstrCondBr:
		return fmt.Sprintf("if %s then %s else %s", ins.CondBr.Cond, ins.CondBr.Then, ins.CondBr.Else)
	case InstrLabel:
		return ins.Label.Name + ":"
	case InstrReturn:
		if !ins.Return.HasValue {
			return "return"
		}
		return fmt.Sprintf("return %s", ins.Return.Value)
	case InstrReturnInPlace:
		return fmt.Sprintf("return_in_place %s", ins.ReturnInPlace.Value)
	case InstrBorrow:
		if ins.Borrow.Mutable {
			return fmt.Sprintf("%s = borrow_mut %s", ins.Borrow.Dest, ins.Borrow.Src)
		}
		return fmt.Sprintf("%s = borrow %s", ins.Borrow.Dest, ins.Borrow.Src)
	case InstrPhi:
		arms := make([]string, 0, len(ins.Phi.Incoming))
		for _, in := range ins.Phi.Incoming {
			arms = append(arms, fmt.Sprintf("[%s, %s]", in.Value, in.Block))
		}
		return fmt.Sprintf("%s = phi %s", ins.Phi.Dest, strings.Join(arms, ", "))
	case InstrExtractValue:
		return fmt.Sprintf("%s = extract_value %s, %d", ins.ExtractValue.Dest, ins.ExtractValue.Src, ins.ExtractValue.Index)
	case InstrInsertValue:
		return fmt.Sprintf("%s = insert_value %s, %s, %d", ins.InsertValue.Dest, ins.InsertValue.Src, ins.InsertValue.Value, ins.InsertValue.Index)
	case InstrGetElementPtr:
		idx := make([]string, 0, len(ins.GetElementPtr.Indices))
		for _, i := range ins.GetElementPtr.Indices {
			idx = append(idx, fmt.Sprintf("%d", i))
		}
		return fmt.Sprintf("%s = gep %s, %s", ins.GetElementPtr.Dest, ins.GetElementPtr.Src, strings.Join(idx, ", "))
	case InstrNop:
		return "nop"
	case InstrUnreachable:
		return "unreachable"
	default:
		return "<instr?>"
	}
}

// DumpModule writes a human-readable representation of the module.
func DumpModule(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}

	if m.Name != "" {
		if _, err := fmt.Fprintf(w, "module %s\n", m.Name); err != nil {
			return err
		}
	}

	if len(m.Structs) > 0 {
		fmt.Fprintf(w, "structs=%d\n", len(m.Structs))
		for _, s := range m.Structs {
			if s == nil {
				continue
			}
			fields := make([]string, 0, len(s.Fields))
			for _, f := range s.Fields {
				fields = append(fields, fmt.Sprintf("%s: %s", f.Name, f.Type))
			}
			fmt.Fprintf(w, "  struct %s { %s }\n", s.Name, strings.Join(fields, ", "))
		}
	}

	if len(m.Globals) > 0 {
		fmt.Fprintf(w, "globals=%d\n", len(m.Globals))
		for i, g := range m.Globals {
			flags := ""
			if g.IsConst {
				flags = " const"
			}
			fmt.Fprintf(w, "  G%d: %s%s name=%s\n", i, g.Type, flags, g.Name)
		}
	}

	fmt.Fprintf(w, "funcs=%d\n", len(m.Functions))
	for _, f := range m.Functions {
		if err := dumpFunc(w, f); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunc(w io.Writer, f *Function) error {
	if w == nil || f == nil {
		return nil
	}

	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}
	flags := ""
	if f.IsPublic {
		flags += " public"
	}
	if f.IsKernel {
		flags += " kernel"
	}
	if _, err := fmt.Fprintf(w, "\nfn %s(%s) -> %s%s:\n", f.Name, strings.Join(params, ", "), f.ReturnType, flags); err != nil {
		return err
	}

	for i := range f.Body {
		ins := &f.Body[i]
		indent := "  "
		if ins.Kind == InstrLabel {
			indent = " "
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, ins); err != nil {
			return err
		}
	}
	return nil
}
