package lower

import (
	"fmt"

	"github.com/tmpl-lang/tmplc/internal/ir"
)

// lowerExpr flattens an expression into single-assignment statements
// and returns the variable holding its value. Calls to may-raise
// functions come back through newVarForCheckedExpr so every such call
// site carries the full (value, error) dispatch.
func (b *blockWriter) lowerExpr(expr ir.Expr) *ir.VarRef {
	switch e := expr.(type) {
	case *ir.VarRef:
		return e
	case *ir.BoolLiteral, *ir.IntLiteral, *ir.TypeLiteral:
		return b.newVarForExpr(e)
	case *ir.Call:
		return b.lowerCall(e)
	case *ir.NotExpr:
		return b.newVarForExpr(&ir.NotExpr{Inner: b.lowerExpr(e.Inner)})
	case *ir.EqualExpr:
		return b.newVarForExpr(&ir.EqualExpr{LHS: b.lowerExpr(e.LHS), RHS: b.lowerExpr(e.RHS)})
	case *ir.FieldAccess:
		return b.newVarForExpr(&ir.FieldAccess{
			Receiver: b.lowerExpr(e.Receiver),
			Field:    e.Field,
			Type:     e.Type,
		})
	case *ir.ListExpr:
		elems := make([]ir.Expr, len(e.Elems))
		for i, elem := range e.Elems {
			elems[i] = b.lowerExpr(elem)
		}
		return b.newVarForExpr(&ir.ListExpr{Elem: e.Elem, Elems: elems})
	case *ir.MatchExpr:
		return b.lowerMatch(e)
	case *ir.Comprehension:
		return b.lowerComprehension(e)
	default:
		// InstanceOf and UncheckedCast exist only in lowered trees.
		panic(fmt.Sprintf("lower: unexpected expression %T in source tree", expr))
	}
}

// lowerCall lowers a call, inserting the error dispatch only when the
// callee may raise. When the throwability analyzer has already marked
// the callee as never raising, no error machinery is emitted at all.
func (b *blockWriter) lowerCall(call *ir.Call) *ir.VarRef {
	fnVar := b.lowerExpr(call.Fn)
	args := make([]ir.Expr, len(call.Args))
	for i, arg := range call.Args {
		args[i] = b.lowerExpr(arg)
	}
	if fnVar.MayRaise {
		return b.newVarForCheckedExpr(&ir.Call{Fn: fnVar, Args: args, MayRaise: true})
	}
	return b.newVarForExpr(&ir.Call{Fn: fnVar, Args: args})
}
