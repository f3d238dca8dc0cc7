// Package rvo implements return value optimization. Functions that
// return a freshly built temporary get the copy out of the temporary
// rewritten into construction directly in the caller's frame.
package rvo

import (
	"strings"

	"chim/internal/ast"
	"chim/internal/ir"
)

// tmpPrefix marks compiler-generated temporaries in lowered bodies.
const tmpPrefix = ".tmp"

// Stats summarizes one optimization pass over a module.
type Stats struct {
	Functions int // functions with at least one rewrite
	Rewrites  int // individual returns rewritten
}

// CanOptimize reports whether a function declaration is a candidate:
// its body is a bare struct literal, or a block whose last statement
// returns a struct literal. The check is advisory; the rewrite itself
// runs on lowered bodies.
func CanOptimize(stmt *ast.Stmt) bool {
	if stmt == nil || stmt.Kind != ast.StmtFunction {
		return false
	}
	return hasDirectReturn(stmt.Function.Body)
}

func hasDirectReturn(body *ast.Expr) bool {
	if body == nil {
		return false
	}
	switch body.Kind {
	case ast.ExprStructLit:
		return true
	case ast.ExprBlock:
		if len(body.Stmts) == 0 {
			return false
		}
		last := body.Stmts[len(body.Stmts)-1]
		if last == nil || last.Kind != ast.StmtReturn || last.Return.Value == nil {
			return false
		}
		return last.Return.Value.Kind == ast.ExprStructLit
	default:
		return false
	}
}

// OptimizeFunction rewrites every return of a generated temporary in
// fn into an in-place return and reports whether anything changed.
func OptimizeFunction(fn *ir.Function) bool {
	return optimize(fn) > 0
}

// OptimizeModule runs the rewrite over every function in m and returns
// the pass statistics.
func OptimizeModule(m *ir.Module) Stats {
	var st Stats
	if m == nil {
		return st
	}
	for _, fn := range m.Functions {
		if n := optimize(fn); n > 0 {
			st.Functions++
			st.Rewrites += n
		}
	}
	return st
}

func optimize(fn *ir.Function) int {
	if fn == nil {
		return 0
	}
	rewrites := 0
	for i := range fn.Body {
		ins := &fn.Body[i]
		if ins.Kind != ir.InstrReturn || !ins.Return.HasValue {
			continue
		}
		value := ins.Return.Value
		if !strings.HasPrefix(value, tmpPrefix) {
			continue
		}
		*ins = ir.Instr{
			Kind:          ir.InstrReturnInPlace,
			ReturnInPlace: ir.ReturnInPlaceInstr{Value: value},
		}
		rewrites++
	}
	return rewrites
}
