package lower

import (
	"fmt"

	"github.com/tmpl-lang/tmplc/internal/ir"
)

// lowerStmts lowers a statement list. A TryExcept swallows the
// statements that follow it lexically (they become the "then"
// continuation), so it is always the last statement this loop sees.
func (b *blockWriter) lowerStmts(stmts []ir.Stmt) {
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *ir.Assignment:
			b.lowerAssignment(s)
		case *ir.ReturnStmt:
			b.lowerReturn(s)
		case *ir.IfStmt:
			b.lowerIf(s)
		case *ir.RaiseStmt:
			b.lowerRaise(s)
		case *ir.TryExcept:
			b.lowerTryExcept(s, stmts[i+1:])
			return
		case *ir.AssertStmt:
			b.write(&ir.AssertStmt{Cond: b.lowerExpr(s.Cond), Message: s.Message})
		case *ir.PassStmt:
			b.write(&ir.PassStmt{})
		default:
			panic(fmt.Sprintf("lower: unexpected statement %T in source tree", stmt))
		}
	}
}

func (b *blockWriter) lowerAssignment(s *ir.Assignment) {
	if s.ErrTarget != nil {
		panic("lower: source assignment already carries an error target")
	}
	b.write(&ir.Assignment{Target: s.Target, RHS: b.lowerExpr(s.RHS)})
}

func (b *blockWriter) lowerReturn(s *ir.ReturnStmt) {
	if s.Err != nil {
		panic("lower: source return already carries an error slot")
	}
	b.write(&ir.ReturnStmt{Value: b.lowerExpr(s.Value)})
}

func (b *blockWriter) lowerIf(s *ir.IfStmt) {
	cond := b.lowerExpr(s.Cond)

	thenWriter := b.child()
	thenWriter.lowerStmts(s.Then)
	elseWriter := b.child()
	elseWriter.lowerStmts(s.Else)

	b.write(&ir.IfStmt{Cond: cond, Then: thenWriter.stmts, Else: elseWriter.stmts})
}

// lowerRaise resolves the raise statically against the active handler
// stack, nearest enclosing handler first. A matching handler turns the
// raise into a direct forwarding call into its continuation:
//
//	e = <exception value>
//	res, err = handler(e, ...)
//	return res, err
//
// With no matching handler the raise becomes a terminal return with
// only the error channel populated. There is never a dynamic type
// search at the point of raising.
func (b *blockWriter) lowerRaise(s *ir.RaiseStmt) {
	excType, ok := s.Exc.ExprType().(*ir.RecordType)
	if !ok || !excType.IsException {
		panic(fmt.Sprintf("lower: raise of non-exception type %s", s.Exc.ExprType()))
	}
	excVar := b.lowerExpr(s.Exc)

	for i := len(b.handlers) - 1; i >= 0; i-- {
		ctx := b.handlers[i]
		if !ctx.caughtType.Equal(excType) {
			continue
		}
		b.write(&ir.Assignment{
			Target: &ir.VarRef{Name: ctx.caughtName, Type: ctx.caughtType},
			RHS:    excVar,
		})
		res := b.mod.newVar(ctx.handlerCall.ExprType())
		herr := b.mod.newVar(ir.ErrorOrVoidType{})
		b.write(&ir.Assignment{Target: res, ErrTarget: herr, RHS: ctx.handlerCall})
		b.write(&ir.ReturnStmt{Value: res, Err: herr})
		return
	}

	b.write(&ir.ReturnStmt{Err: excVar})
}

// lowerTryExcept splits a try/except into at most two synthesized
// continuations:
//
//	try:               def then_fun(<free vars of rest>): ...rest...
//	  ...body...       def except_fun(e, <free vars>): ...handler...
//	except E as e:
//	  ...handler...    <body, lowered with the handler context active>
//	...rest...         res, err = then_fun(...); return res, err
//
// The "then" continuation exists only when statements follow the
// try/except. Both the try body and the handler body fall through into
// it unless they already always return.
func (b *blockWriter) lowerTryExcept(s *ir.TryExcept, rest []ir.Stmt) {
	var thenCall *ir.Call
	if len(rest) > 0 {
		thenWriter := b.child()
		thenWriter.lowerStmts(rest)

		forwarded := ir.FreeVarsInStmts(thenWriter.stmts)
		if len(forwarded) == 0 {
			forwarded = []*ir.VarRef{b.arbitraryForwardedArg()}
		}

		thenFn := &ir.Function{
			Name:        b.mod.newName(),
			Description: fmt.Sprintf("continuation for the statements after a try/except in %s", b.funcName),
			Params:      paramsForVars(forwarded),
			Body:        thenWriter.stmts,
			Returns:     b.returnType,
			MayRaise:    true,
		}
		b.mod.writeFunction(thenFn)

		thenRef := &ir.VarRef{
			Name:             thenFn.Name,
			Type:             thenFn.FuncType(),
			IsGlobalFunction: true,
			MayRaise:         true,
		}
		thenCall = &ir.Call{Fn: thenRef, Args: varsAsExprs(forwarded), MayRaise: true}
	}

	handlerWriter := b.child()
	handlerWriter.lowerStmts(s.Handler)
	if thenCall != nil && !ir.BlockAlwaysReturns(s.Handler) {
		result := handlerWriter.newVarForCheckedExpr(thenCall)
		handlerWriter.write(&ir.ReturnStmt{Value: result})
	}

	// The bound exception is always the handler's first parameter, even
	// when its body never reads it; the remaining parameters are the
	// body's free variables.
	caught := &ir.VarRef{Name: s.CaughtName, Type: s.CaughtType}
	var forwarded []*ir.VarRef
	for _, v := range ir.FreeVarsInStmts(handlerWriter.stmts) {
		if v.Name != s.CaughtName {
			forwarded = append(forwarded, v)
		}
	}

	handlerFn := &ir.Function{
		Name:        b.mod.newName(),
		Description: fmt.Sprintf("continuation for an except %s block in %s", s.CaughtType.Name, b.funcName),
		Params:      append([]ir.Param{{Name: s.CaughtName, Type: s.CaughtType}}, paramsForVars(forwarded)...),
		Body:        handlerWriter.stmts,
		Returns:     b.returnType,
		MayRaise:    true,
	}
	b.mod.writeFunction(handlerFn)

	handlerRef := &ir.VarRef{
		Name:             handlerFn.Name,
		Type:             handlerFn.FuncType(),
		IsGlobalFunction: true,
		MayRaise:         true,
	}
	handlerCall := &ir.Call{
		Fn:       handlerRef,
		Args:     append([]ir.Expr{caught}, varsAsExprs(forwarded)...),
		MayRaise: true,
	}

	b.pushHandler(handlerContext{
		caughtType:  s.CaughtType,
		caughtName:  s.CaughtName,
		handlerCall: handlerCall,
	})
	b.lowerStmts(s.Body)
	b.popHandler()

	if thenCall != nil && !ir.BlockAlwaysReturns(s.Body) {
		result := b.newVarForCheckedExpr(thenCall)
		b.write(&ir.ReturnStmt{Value: result})
	}
}
