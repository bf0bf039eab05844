package ir

import "fmt"

// WalkExprs calls fn for every expression reachable from expr,
// including expr itself, in depth-first pre-order. Return false from fn
// to skip the subtree.
func WalkExprs(expr Expr, fn func(Expr) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	switch e := expr.(type) {
	case *VarRef, *BoolLiteral, *IntLiteral, *TypeLiteral:
		// leaves
	case *Call:
		WalkExprs(e.Fn, fn)
		for _, arg := range e.Args {
			WalkExprs(arg, fn)
		}
	case *NotExpr:
		WalkExprs(e.Inner, fn)
	case *EqualExpr:
		WalkExprs(e.LHS, fn)
		WalkExprs(e.RHS, fn)
	case *FieldAccess:
		WalkExprs(e.Receiver, fn)
	case *ListExpr:
		for _, elem := range e.Elems {
			WalkExprs(elem, fn)
		}
	case *MatchExpr:
		for _, s := range e.Scrutinees {
			WalkExprs(s, fn)
		}
		for _, c := range e.Cases {
			WalkExprs(c.Result, fn)
		}
	case *Comprehension:
		WalkExprs(e.Source, fn)
		WalkExprs(e.Result, fn)
	case *InstanceOf:
		WalkExprs(e.Value, fn)
	case *UncheckedCast:
		WalkExprs(e.Value, fn)
	default:
		panic(fmt.Sprintf("ir: unknown expression %T", expr))
	}
}

// WalkStmts calls fn for every statement in stmts and their nested
// blocks, and exprFn for every expression they contain. Either callback
// may be nil.
func WalkStmts(stmts []Stmt, fn func(Stmt) bool, exprFn func(Expr) bool) {
	visitExpr := func(e Expr) {
		if e != nil && exprFn != nil {
			WalkExprs(e, exprFn)
		}
	}
	for _, stmt := range stmts {
		if fn != nil && !fn(stmt) {
			continue
		}
		switch s := stmt.(type) {
		case *Assignment:
			visitExpr(s.RHS)
		case *ReturnStmt:
			visitExpr(s.Value)
			visitExpr(s.Err)
		case *IfStmt:
			visitExpr(s.Cond)
			WalkStmts(s.Then, fn, exprFn)
			WalkStmts(s.Else, fn, exprFn)
		case *RaiseStmt:
			visitExpr(s.Exc)
		case *TryExcept:
			WalkStmts(s.Body, fn, exprFn)
			WalkStmts(s.Handler, fn, exprFn)
		case *AssertStmt:
			visitExpr(s.Cond)
		case *PassStmt:
			// no children
		case *ErrorCheckStmt:
			if s.Var != nil {
				visitExpr(s.Var)
			}
		default:
			panic(fmt.Sprintf("ir: unknown statement %T", stmt))
		}
	}
}

// Rewriter rebuilds trees bottom-up. Each hook receives an already
// rebuilt node and returns its replacement; the default hooks are
// identity, so a Rewriter with only RewriteVarRef set rewrites
// variable references everywhere and leaves the rest untouched.
type Rewriter struct {
	RewriteVarRef func(*VarRef) *VarRef
	RewriteCall   func(*Call) Expr
	RewriteStmt   func(Stmt) Stmt
}

// RewriteExpr rebuilds an expression, applying the hooks to every node.
func (r *Rewriter) RewriteExpr(expr Expr) Expr {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *VarRef:
		if r.RewriteVarRef != nil {
			return r.RewriteVarRef(e)
		}
		return e
	case *BoolLiteral, *IntLiteral, *TypeLiteral:
		return e
	case *Call:
		out := &Call{
			Fn:       r.RewriteExpr(e.Fn),
			Args:     r.rewriteExprs(e.Args),
			MayRaise: e.MayRaise,
		}
		if r.RewriteCall != nil {
			return r.RewriteCall(out)
		}
		return out
	case *NotExpr:
		return &NotExpr{Inner: r.RewriteExpr(e.Inner)}
	case *EqualExpr:
		return &EqualExpr{LHS: r.RewriteExpr(e.LHS), RHS: r.RewriteExpr(e.RHS)}
	case *FieldAccess:
		return &FieldAccess{Receiver: r.RewriteExpr(e.Receiver), Field: e.Field, Type: e.Type}
	case *ListExpr:
		return &ListExpr{Elem: e.Elem, Elems: r.rewriteExprs(e.Elems)}
	case *MatchExpr:
		cases := make([]*MatchCase, len(e.Cases))
		for i, c := range e.Cases {
			cases[i] = &MatchCase{
				Patterns:   c.Patterns,
				Result:     r.RewriteExpr(c.Result),
				BoundNames: c.BoundNames,
			}
		}
		return &MatchExpr{Scrutinees: r.rewriteExprs(e.Scrutinees), Cases: cases, Type: e.Type}
	case *Comprehension:
		loopVar := e.LoopVar
		if r.RewriteVarRef != nil {
			loopVar = r.RewriteVarRef(loopVar)
		}
		return &Comprehension{
			Source:  r.RewriteExpr(e.Source),
			LoopVar: loopVar,
			Result:  r.RewriteExpr(e.Result),
		}
	case *InstanceOf:
		return &InstanceOf{Value: r.RewriteExpr(e.Value), Target: e.Target}
	case *UncheckedCast:
		return &UncheckedCast{Value: r.RewriteExpr(e.Value), Target: e.Target}
	default:
		panic(fmt.Sprintf("ir: unknown expression %T", expr))
	}
}

func (r *Rewriter) rewriteExprs(exprs []Expr) []Expr {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = r.RewriteExpr(e)
	}
	return out
}

func (r *Rewriter) rewriteVarRef(v *VarRef) *VarRef {
	if v == nil {
		return nil
	}
	if r.RewriteVarRef != nil {
		return r.RewriteVarRef(v)
	}
	return v
}

// RewriteStmts rebuilds a statement list.
func (r *Rewriter) RewriteStmts(stmts []Stmt) []Stmt {
	out := make([]Stmt, len(stmts))
	for i, stmt := range stmts {
		out[i] = r.rewriteStmt(stmt)
	}
	return out
}

func (r *Rewriter) rewriteStmt(stmt Stmt) Stmt {
	var rebuilt Stmt
	switch s := stmt.(type) {
	case *Assignment:
		rebuilt = &Assignment{
			Target:    r.rewriteVarRef(s.Target),
			ErrTarget: r.rewriteVarRef(s.ErrTarget),
			RHS:       r.RewriteExpr(s.RHS),
		}
	case *ReturnStmt:
		rebuilt = &ReturnStmt{Value: r.RewriteExpr(s.Value), Err: r.RewriteExpr(s.Err)}
	case *IfStmt:
		rebuilt = &IfStmt{
			Cond: r.RewriteExpr(s.Cond),
			Then: r.RewriteStmts(s.Then),
			Else: r.RewriteStmts(s.Else),
		}
	case *RaiseStmt:
		rebuilt = &RaiseStmt{Exc: r.RewriteExpr(s.Exc)}
	case *TryExcept:
		rebuilt = &TryExcept{
			Body:       r.RewriteStmts(s.Body),
			CaughtType: s.CaughtType,
			CaughtName: s.CaughtName,
			Handler:    r.RewriteStmts(s.Handler),
		}
	case *AssertStmt:
		rebuilt = &AssertStmt{Cond: r.RewriteExpr(s.Cond), Message: s.Message}
	case *PassStmt:
		rebuilt = &PassStmt{}
	case *ErrorCheckStmt:
		rebuilt = &ErrorCheckStmt{Var: r.rewriteVarRef(s.Var)}
	default:
		panic(fmt.Sprintf("ir: unknown statement %T", stmt))
	}
	if r.RewriteStmt != nil {
		return r.RewriteStmt(rebuilt)
	}
	return rebuilt
}

// RewriteFunction rebuilds a function definition.
func (r *Rewriter) RewriteFunction(fn *Function) *Function {
	return &Function{
		Name:        fn.Name,
		Description: fn.Description,
		Params:      fn.Params,
		Body:        r.RewriteStmts(fn.Body),
		Returns:     fn.Returns,
		MayRaise:    fn.MayRaise,
	}
}

// RewriteModule rebuilds a module.
func (r *Rewriter) RewriteModule(mod *Module) *Module {
	funcs := make([]*Function, len(mod.Functions))
	for i, fn := range mod.Functions {
		funcs[i] = r.RewriteFunction(fn)
	}
	return &Module{
		Records:   mod.Records,
		Functions: funcs,
		TopLevel:  r.RewriteStmts(mod.TopLevel),
		Public:    mod.Public,
	}
}
