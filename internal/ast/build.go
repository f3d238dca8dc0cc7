package ast

// Constructors used by manifest lowering and tests. Frontends building
// real trees go through these as well so payload fields stay consistent
// with the kind tag.

// Int returns an integer literal.
func Int(v int64) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: Literal{Kind: LitInt, Int: v}}
}

// Float returns a float literal.
func Float(v float64) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: Literal{Kind: LitFloat, Float: v}}
}

// Bool returns a boolean literal.
func Bool(v bool) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: Literal{Kind: LitBool, Bool: v}}
}

// Str returns a string literal.
func Str(v string) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: Literal{Kind: LitString, String: v}}
}

// Null returns the null literal.
func Null() *Expr {
	return &Expr{Kind: ExprLiteral, Lit: Literal{Kind: LitNull}}
}

// Ident returns an identifier reference.
func Ident(name string) *Expr {
	return &Expr{Kind: ExprIdent, Name: name}
}

// Unary returns a unary operation.
func Unary(op UnaryOp, operand *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Unary: UnaryExpr{Op: op, Operand: operand}}
}

// Ref returns an address-of expression.
func Ref(operand *Expr) *Expr { return Unary(UnaryRef, operand) }

// Deref returns a dereference expression.
func Deref(operand *Expr) *Expr { return Unary(UnaryDeref, operand) }

// Not returns a logical negation.
func Not(operand *Expr) *Expr { return Unary(UnaryNot, operand) }

// Neg returns an arithmetic negation.
func Neg(operand *Expr) *Expr { return Unary(UnaryNeg, operand) }

// Binary returns a binary operation.
func Binary(op BinaryOp, left, right *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Binary: BinaryExpr{Op: op, Left: left, Right: right}}
}

// Call returns a call expression.
func Call(callee *Expr, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Call: CallExpr{Callee: callee, Args: args}}
}

// Index returns an array index expression.
func Index(array, index *Expr) *Expr {
	return &Expr{Kind: ExprIndex, Index: IndexExpr{Array: array, Index: index}}
}

// Field returns a field access expression.
func Field(object *Expr, name string) *Expr {
	return &Expr{Kind: ExprField, Field: FieldExpr{Object: object, Name: name}}
}

// Assign returns an assignment expression.
func Assign(left, right *Expr) *Expr {
	return &Expr{Kind: ExprAssign, Assign: AssignExpr{Left: left, Right: right}}
}

// Block returns a statement block expression.
func Block(stmts ...*Stmt) *Expr {
	return &Expr{Kind: ExprBlock, Stmts: stmts}
}

// If returns a conditional expression. els may be nil.
func If(cond, then, els *Expr) *Expr {
	return &Expr{Kind: ExprIf, If: IfExpr{Cond: cond, Then: then, Else: els}}
}

// StructLit returns a struct literal expression.
func StructLit(name string, fields ...StructLitField) *Expr {
	return &Expr{Kind: ExprStructLit, Struct: StructLitExpr{Name: name, Fields: fields}}
}

// ArrayLit returns an array literal expression.
func ArrayLit(elems ...*Expr) *Expr {
	return &Expr{Kind: ExprArrayLit, Elems: elems}
}

// ExprStmt returns an expression statement.
func ExprStmt(e *Expr) *Stmt {
	return &Stmt{Kind: StmtExpr, Expr: e}
}

// Let returns a variable declaration statement.
func Let(mutable bool, name, typ string, value *Expr) *Stmt {
	return &Stmt{Kind: StmtLet, Let: LetStmt{Mutable: mutable, Name: name, Type: typ, Value: value}}
}

// Return returns a return statement. value may be nil.
func Return(value *Expr) *Stmt {
	return &Stmt{Kind: StmtReturn, Return: ReturnStmt{Value: value}}
}

// Function returns a function declaration statement.
func Function(name string, params []Param, returnType string, body *Expr) *Stmt {
	return &Stmt{Kind: StmtFunction, Function: FunctionStmt{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}}
}

// StructDecl returns a struct declaration statement.
func StructDecl(name string, fields ...FieldDecl) *Stmt {
	return &Stmt{Kind: StmtStruct, Struct: StructStmt{Name: name, Fields: fields}}
}
