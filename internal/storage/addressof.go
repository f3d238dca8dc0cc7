package storage

import "chim/internal/ast"

// hasAddressTaken reports whether an address-of operation appears
// anywhere in the initializer tree.
func hasAddressTaken(e *ast.Expr) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ast.ExprUnary:
		if e.Unary.Op == ast.UnaryRef {
			return true
		}
		return hasAddressTaken(e.Unary.Operand)
	case ast.ExprBinary:
		return hasAddressTaken(e.Binary.Left) || hasAddressTaken(e.Binary.Right)
	case ast.ExprBlock:
		for _, s := range e.Stmts {
			if stmtTakesAddress(s) {
				return true
			}
		}
		return false
	case ast.ExprCall:
		if hasAddressTaken(e.Call.Callee) {
			return true
		}
		for _, a := range e.Call.Args {
			if hasAddressTaken(a) {
				return true
			}
		}
		return false
	case ast.ExprIndex:
		return hasAddressTaken(e.Index.Array) || hasAddressTaken(e.Index.Index)
	case ast.ExprField:
		return hasAddressTaken(e.Field.Object)
	case ast.ExprAssign:
		return hasAddressTaken(e.Assign.Left) || hasAddressTaken(e.Assign.Right)
	case ast.ExprIf:
		return hasAddressTaken(e.If.Cond) || hasAddressTaken(e.If.Then) || hasAddressTaken(e.If.Else)
	case ast.ExprStructLit:
		for _, f := range e.Struct.Fields {
			if hasAddressTaken(f.Value) {
				return true
			}
		}
		return false
	case ast.ExprArrayLit:
		for _, el := range e.Elems {
			if hasAddressTaken(el) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func stmtTakesAddress(s *ast.Stmt) bool {
	if s == nil {
		return false
	}
	switch s.Kind {
	case ast.StmtExpr:
		return hasAddressTaken(s.Expr)
	case ast.StmtLet:
		return hasAddressTaken(s.Let.Value)
	case ast.StmtReturn:
		return hasAddressTaken(s.Return.Value)
	default:
		return false
	}
}
