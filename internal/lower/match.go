package lower

import (
	"fmt"

	"github.com/tmpl-lang/tmplc/internal/ir"
)

// lowerMatch turns every match case into its own synthesized
// continuation, parameterized by the free variables of its result
// expression, and rebuilds the match as an ordered dispatch over
// (pattern, continuation call) pairs. The match value itself is read
// through the checked path so an error raised inside any case routes
// through the handlers active at the match site.
func (b *blockWriter) lowerMatch(m *ir.MatchExpr) *ir.VarRef {
	scrutinees := make([]ir.Expr, len(m.Scrutinees))
	for i, s := range m.Scrutinees {
		scrutinees[i] = b.lowerExpr(s)
	}

	// Handler continuations return the enclosing function's type; a
	// case continuation can only forward into them when it returns the
	// same type. Otherwise the case body reaches the handlers through
	// the error channel of the dispatch below.
	caseHandlers := b.handlers
	if b.returnType == nil || !m.Type.Equal(b.returnType) {
		caseHandlers = nil
	}

	cases := make([]*ir.MatchCase, len(m.Cases))
	for i, c := range m.Cases {
		caseWriter := newBlockWriter(b.mod, b.funcName, b.funcParams, m.Type, caseHandlers)
		result := caseWriter.lowerExpr(c.Result)
		caseWriter.write(&ir.ReturnStmt{Value: result})

		forwarded := ir.FreeVarsInStmts(caseWriter.stmts)
		if len(forwarded) == 0 {
			forwarded = []*ir.VarRef{b.arbitraryForwardedArg()}
		}

		caseFn := &ir.Function{
			Name:        b.mod.newName(),
			Description: fmt.Sprintf("continuation for a match case in %s", b.funcName),
			Params:      paramsForVars(forwarded),
			Body:        caseWriter.stmts,
			Returns:     m.Type,
			MayRaise:    true,
		}
		b.mod.writeFunction(caseFn)

		caseRef := &ir.VarRef{
			Name:             caseFn.Name,
			Type:             caseFn.FuncType(),
			IsGlobalFunction: true,
			MayRaise:         true,
		}
		cases[i] = &ir.MatchCase{
			Patterns:   c.Patterns,
			BoundNames: c.BoundNames,
			Result:     &ir.Call{Fn: caseRef, Args: varsAsExprs(forwarded), MayRaise: true},
		}
	}

	return b.newVarForCheckedExpr(&ir.MatchExpr{Scrutinees: scrutinees, Cases: cases, Type: m.Type})
}

// lowerComprehension wraps the per-element result expression in its own
// synthesized continuation over the loop variable plus whatever else it
// uses, invoked once per element by the backend's iteration construct.
// Handler contexts are not forwarded into the continuation: its return
// type is the element type, not the enclosing function's, so a raise
// inside it surfaces through the error channel at the comprehension
// site instead.
func (b *blockWriter) lowerComprehension(c *ir.Comprehension) *ir.VarRef {
	source := b.lowerExpr(c.Source)

	elemWriter := newBlockWriter(b.mod, b.funcName, b.funcParams, c.Result.ExprType(), nil)
	result := elemWriter.lowerExpr(c.Result)
	elemWriter.write(&ir.ReturnStmt{Value: result})

	forwarded := ir.FreeVarsInStmts(elemWriter.stmts)
	if len(forwarded) == 0 {
		forwarded = []*ir.VarRef{b.arbitraryForwardedArg()}
	}

	elemFn := &ir.Function{
		Name:        b.mod.newName(),
		Description: fmt.Sprintf("continuation for a comprehension body in %s", b.funcName),
		Params:      paramsForVars(forwarded),
		Body:        elemWriter.stmts,
		Returns:     c.Result.ExprType(),
		MayRaise:    true,
	}
	b.mod.writeFunction(elemFn)

	elemRef := &ir.VarRef{
		Name:             elemFn.Name,
		Type:             elemFn.FuncType(),
		IsGlobalFunction: true,
		MayRaise:         true,
	}
	elemCall := &ir.Call{Fn: elemRef, Args: varsAsExprs(forwarded), MayRaise: true}

	return b.newVarForCheckedExpr(&ir.Comprehension{
		Source:  source,
		LoopVar: c.LoopVar,
		Result:  elemCall,
	})
}
