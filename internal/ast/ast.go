// Package ast holds the surface syntax shapes the backend analyses walk.
// The backend never parses source; frontends hand it these nodes already
// desugared, so only the operator set surviving lowering appears here.
package ast

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	// ExprLiteral represents a literal value.
	ExprLiteral ExprKind = iota
	// ExprIdent represents an identifier reference.
	ExprIdent
	// ExprUnary represents a unary operation.
	ExprUnary
	// ExprBinary represents a binary operation.
	ExprBinary
	// ExprCall represents a call.
	ExprCall
	// ExprIndex represents an array index.
	ExprIndex
	// ExprField represents a field access.
	ExprField
	// ExprAssign represents an assignment.
	ExprAssign
	// ExprBlock represents a statement block.
	ExprBlock
	// ExprIf represents a conditional.
	ExprIf
	// ExprStructLit represents a struct literal.
	ExprStructLit
	// ExprArrayLit represents an array literal.
	ExprArrayLit
)

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	// UnaryNot represents logical negation.
	UnaryNot UnaryOp = iota
	// UnaryNeg represents arithmetic negation.
	UnaryNeg
	// UnaryRef represents address-of.
	UnaryRef
	// UnaryDeref represents dereference.
	UnaryDeref
)

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod
	BinaryEq
	BinaryNe
	BinaryLt
	BinaryLe
	BinaryGt
	BinaryGe
	BinaryAnd
	BinaryOr
)

// LitKind enumerates literal kinds.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitString
	LitNull
)

// Literal represents a literal value.
type Literal struct {
	Kind LitKind

	Int    int64
	Float  float64
	Bool   bool
	String string
}

// Expr represents an expression.
type Expr struct {
	Kind ExprKind

	Lit    Literal
	Name   string // Ident
	Unary  UnaryExpr
	Binary BinaryExpr
	Call   CallExpr
	Index  IndexExpr
	Field  FieldExpr
	Assign AssignExpr
	Stmts  []*Stmt // Block
	If     IfExpr
	Struct StructLitExpr
	Elems  []*Expr // ArrayLit
}

// UnaryExpr represents a unary operation.
type UnaryExpr struct {
	Op      UnaryOp
	Operand *Expr
}

// BinaryExpr represents a binary operation.
type BinaryExpr struct {
	Op    BinaryOp
	Left  *Expr
	Right *Expr
}

// CallExpr represents a call.
type CallExpr struct {
	Callee *Expr
	Args   []*Expr
}

// IndexExpr represents an array index.
type IndexExpr struct {
	Array *Expr
	Index *Expr
}

// FieldExpr represents a field access.
type FieldExpr struct {
	Object *Expr
	Name   string
}

// AssignExpr represents an assignment.
type AssignExpr struct {
	Left  *Expr
	Right *Expr
}

// IfExpr represents a conditional with an optional else branch.
type IfExpr struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

// StructLitField represents one field initializer in a struct literal.
type StructLitField struct {
	Name  string
	Value *Expr
}

// StructLitExpr represents a struct literal.
type StructLitExpr struct {
	Name   string
	Fields []StructLitField
}

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtExpr represents an expression statement.
	StmtExpr StmtKind = iota
	// StmtLet represents a variable declaration.
	StmtLet
	// StmtReturn represents a return statement.
	StmtReturn
	// StmtFunction represents a function declaration.
	StmtFunction
	// StmtStruct represents a struct declaration.
	StmtStruct
)

// Stmt represents a statement.
type Stmt struct {
	Kind StmtKind

	Expr     *Expr // ExprStmt
	Let      LetStmt
	Return   ReturnStmt
	Function FunctionStmt
	Struct   StructStmt
}

// LetStmt represents a variable declaration.
type LetStmt struct {
	Mutable bool
	Name    string
	Type    string
	Value   *Expr
}

// ReturnStmt represents a return with an optional value.
type ReturnStmt struct {
	Value *Expr
}

// Param represents a function parameter.
type Param struct {
	Name string
	Type string
}

// FunctionStmt represents a function declaration.
type FunctionStmt struct {
	Name       string
	Params     []Param
	ReturnType string
	Body       *Expr
	Kernel     bool
}

// FieldDecl represents a struct field declaration.
type FieldDecl struct {
	Name string
	Type string
}

// StructStmt represents a struct declaration.
type StructStmt struct {
	Name   string
	Fields []FieldDecl
}
