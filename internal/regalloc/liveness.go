package regalloc

import (
	"fortio.org/safecast"

	"chim/internal/ir"
)

// Liveness records, per value name, the instruction positions where the
// value is defined and where it is used inside one function body.
type Liveness struct {
	UsePositions map[string][]uint32
	DefPositions map[string][]uint32
}

// ComputeLiveness numbers the instructions of fn from zero and collects
// definition and use positions for every named value. Parameters count
// as defined at position zero.
func ComputeLiveness(fn *ir.Function) *Liveness {
	lv := &Liveness{
		UsePositions: make(map[string][]uint32),
		DefPositions: make(map[string][]uint32),
	}
	if fn == nil {
		return lv
	}
	for i := range fn.Params {
		lv.addDef(fn.Params[i].Name, 0)
	}
	for i := range fn.Body {
		pos, err := safecast.Conv[uint32](i)
		if err != nil {
			break
		}
		scanInstr(&fn.Body[i],
			func(name string) { lv.addUse(name, pos) },
			func(name string) { lv.addDef(name, pos) })
	}
	return lv
}

func (l *Liveness) addUse(name string, pos uint32) {
	if name == "" {
		return
	}
	l.UsePositions[name] = append(l.UsePositions[name], pos)
}

func (l *Liveness) addDef(name string, pos uint32) {
	if name == "" {
		return
	}
	l.DefPositions[name] = append(l.DefPositions[name], pos)
}

// Ranges folds the recorded positions into one live interval per value,
// spanning from its first occurrence to its last across both defs and
// uses.
func (l *Liveness) Ranges() map[string]Interval {
	if l == nil {
		return nil
	}
	out := make(map[string]Interval, len(l.DefPositions))
	for name, defs := range l.DefPositions {
		if len(defs) == 0 {
			continue
		}
		out[name] = Interval{Start: defs[0], End: defs[len(defs)-1]}
	}
	for name, uses := range l.UsePositions {
		if len(uses) == 0 {
			continue
		}
		iv, ok := out[name]
		if !ok {
			out[name] = Interval{Start: uses[0], End: uses[len(uses)-1]}
			continue
		}
		if uses[0] < iv.Start {
			iv.Start = uses[0]
		}
		if uses[len(uses)-1] > iv.End {
			iv.End = uses[len(uses)-1]
		}
		out[name] = iv
	}
	return out
}

// scanInstr feeds the value names an instruction reads and writes into
// the addUse and addDef callbacks. Labels and branch targets are not
// values and are skipped.
func scanInstr(ins *ir.Instr, addUse, addDef func(string)) {
	if ins == nil {
		return
	}
	switch ins.Kind {
	case ir.InstrAlloca:
		addDef(ins.Alloca.Dest)
	case ir.InstrLoad:
		addUse(ins.Load.Src)
		addDef(ins.Load.Dest)
	case ir.InstrStore:
		addUse(ins.Store.Src)
		addDef(ins.Store.Dest)
	case ir.InstrGetPointer:
		addUse(ins.GetPointer.Src)
		addDef(ins.GetPointer.Dest)
	case ir.InstrBin:
		addUse(ins.Bin.Left)
		addUse(ins.Bin.Right)
		addDef(ins.Bin.Dest)
	case ir.InstrUn:
		addUse(ins.Un.Src)
		addDef(ins.Un.Dest)
	case ir.InstrCall:
		for _, arg := range ins.Call.Args {
			addUse(arg)
		}
		if ins.Call.HasDest {
			addDef(ins.Call.Dest)
		}
	case ir.InstrCondBr:
		addUse(ins.CondBr.Cond)
	case ir.InstrReturn:
		if ins.Return.HasValue {
			addUse(ins.Return.Value)
		}
	case ir.InstrReturnInPlace:
		addUse(ins.ReturnInPlace.Value)
	case ir.InstrBorrow:
		addUse(ins.Borrow.Src)
		addDef(ins.Borrow.Dest)
	case ir.InstrPhi:
		for i := range ins.Phi.Incoming {
			addUse(ins.Phi.Incoming[i].Value)
		}
		addDef(ins.Phi.Dest)
	case ir.InstrExtractValue:
		addUse(ins.ExtractValue.Src)
		addDef(ins.ExtractValue.Dest)
	case ir.InstrInsertValue:
		addUse(ins.InsertValue.Src)
		addUse(ins.InsertValue.Value)
		addDef(ins.InsertValue.Dest)
	case ir.InstrGetElementPtr:
		addUse(ins.GetElementPtr.Src)
		addDef(ins.GetElementPtr.Dest)
	}
}
