package ir

// InstrKind enumerates instruction kinds in the IR.
type InstrKind uint8

const (
	// InstrAlloca represents a stack slot allocation.
	InstrAlloca InstrKind = iota
	// InstrLoad represents a load through a location.
	InstrLoad
	// InstrStore represents a store to a location.
	InstrStore
	// InstrGetPointer represents pointer arithmetic from a base.
	InstrGetPointer
	// InstrBin represents a binary operation.
	InstrBin
	// InstrUn represents a unary operation.
	InstrUn
	// InstrCall represents a function call.
	InstrCall
	// InstrBr represents an unconditional branch.
	InstrBr
	// InstrCondBr represents a conditional branch.
	InstrCondBr
	// InstrLabel represents a branch target marker.
	InstrLabel
	// InstrReturn represents a function return.
	InstrReturn
	// InstrReturnInPlace represents a return constructed in the caller slot.
	InstrReturnInPlace
	// InstrBorrow represents taking a reference.
	InstrBorrow
	// InstrPhi represents an SSA phi join.
	InstrPhi
	// InstrExtractValue represents reading an aggregate element.
	InstrExtractValue
	// InstrInsertValue represents writing an aggregate element.
	InstrInsertValue
	// InstrGetElementPtr represents an aggregate element address.
	InstrGetElementPtr
	// InstrNop represents a no-op.
	InstrNop
	// InstrUnreachable represents an unreachable marker.
	InstrUnreachable
)

// BinOp enumerates binary operators.
type BinOp uint8

const (
	// BinAdd represents addition.
	BinAdd BinOp = iota
	// BinSub represents subtraction.
	BinSub
	// BinMul represents multiplication.
	BinMul
	// BinDiv represents division.
	BinDiv
	// BinMod represents remainder.
	BinMod
	// BinEq represents equality comparison.
	BinEq
	// BinNe represents inequality comparison.
	BinNe
	// BinLt represents less-than comparison.
	BinLt
	// BinLe represents less-or-equal comparison.
	BinLe
	// BinGt represents greater-than comparison.
	BinGt
	// BinGe represents greater-or-equal comparison.
	BinGe
	// BinAnd represents logical and.
	BinAnd
	// BinOr represents logical or.
	BinOr
)

// String returns the operator mnemonic.
func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "add"
	case BinSub:
		return "sub"
	case BinMul:
		return "mul"
	case BinDiv:
		return "div"
	case BinMod:
		return "mod"
	case BinEq:
		return "eq"
	case BinNe:
		return "ne"
	case BinLt:
		return "lt"
	case BinLe:
		return "le"
	case BinGt:
		return "gt"
	case BinGe:
		return "ge"
	case BinAnd:
		return "and"
	case BinOr:
		return "or"
	default:
		return "<binop?>"
	}
}

// UnOp enumerates unary operators.
type UnOp uint8

const (
	// UnNot represents logical negation.
	UnNot UnOp = iota
	// UnDeref represents reading through a reference.
	UnDeref
)

// String returns the operator mnemonic.
func (op UnOp) String() string {
	switch op {
	case UnNot:
		return "not"
	case UnDeref:
		return "deref"
	default:
		return "<unop?>"
	}
}

// ParseBinOp maps a mnemonic back to its binary operator.
func ParseBinOp(s string) (BinOp, bool) {
	for op := BinAdd; op <= BinOr; op++ {
		if op.String() == s {
			return op, true
		}
	}
	return 0, false
}

// ParseUnOp maps a mnemonic back to its unary operator.
func ParseUnOp(s string) (UnOp, bool) {
	switch s {
	case "not":
		return UnNot, true
	case "deref":
		return UnDeref, true
	default:
		return 0, false
	}
}

// Instr represents an IR instruction.
type Instr struct {
	Kind InstrKind

	Alloca        AllocaInstr
	Load          LoadInstr
	Store         StoreInstr
	GetPointer    GetPointerInstr
	Bin           BinInstr
	Un            UnInstr
	Call          CallInstr
	Br            BrInstr
	CondBr        CondBrInstr
	Label         LabelInstr
	Return        ReturnInstr
	ReturnInPlace ReturnInPlaceInstr
	Borrow        BorrowInstr
	Phi           PhiInstr
	ExtractValue  ExtractValueInstr
	InsertValue   InsertValueInstr
	GetElementPtr GetElementPtrInstr
}

// AllocaInstr represents a stack slot allocation.
type AllocaInstr struct {
	Dest string
	Type Type
}

// LoadInstr represents a load through a location.
type LoadInstr struct {
	Dest string
	Src  string
}

// StoreInstr represents a store to a location.
type StoreInstr struct {
	Dest string
	Src  string
}

// GetPointerInstr represents pointer arithmetic from a base.
type GetPointerInstr struct {
	Dest   string
	Src    string
	Offset int32
}

// BinInstr represents a binary operation.
type BinInstr struct {
	Op    BinOp
	Dest  string
	Left  string
	Right string
}

// UnInstr represents a unary operation.
type UnInstr struct {
	Op   UnOp
	Dest string
	Src  string
}

// CallInstr represents a function call.
type CallInstr struct {
	HasDest bool
	Dest    string
	Func    string
	Args    []string
}

// BrInstr represents an unconditional branch.
type BrInstr struct {
	Target string
}

// CondBrInstr represents a conditional branch.
type CondBrInstr struct {
	Cond string
	Then string
	Else string
}

// LabelInstr represents a branch target marker.
type LabelInstr struct {
	Name string
}

// ReturnInstr represents a function return.
type ReturnInstr struct {
	HasValue bool
	Value    string
}

// ReturnInPlaceInstr represents a return constructed in the caller slot.
type ReturnInPlaceInstr struct {
	Value string
}

// BorrowInstr represents taking a reference.
type BorrowInstr struct {
	Dest    string
	Src     string
	Mutable bool
}

// PhiEdge represents one phi incoming value with its predecessor label.
type PhiEdge struct {
	Value string
	Block string
}

// PhiInstr represents an SSA phi join.
type PhiInstr struct {
	Dest     string
	Incoming []PhiEdge
}

// ExtractValueInstr represents reading an aggregate element.
type ExtractValueInstr struct {
	Dest  string
	Src   string
	Index int
}

// InsertValueInstr represents writing an aggregate element.
type InsertValueInstr struct {
	Dest  string
	Src   string
	Value string
	Index int
}

// GetElementPtrInstr represents an aggregate element address.
type GetElementPtrInstr struct {
	Dest    string
	Src     string
	Indices []int32
}
