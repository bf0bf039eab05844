package ir

import "sort"

type freeVarCollector struct {
	bound  map[string]int
	byName map[string]*VarRef
	order  []string
}

func newFreeVarCollector() *freeVarCollector {
	return &freeVarCollector{
		bound:  make(map[string]int),
		byName: make(map[string]*VarRef),
	}
}

func (c *freeVarCollector) push(names ...string) {
	for _, n := range names {
		c.bound[n]++
	}
}

func (c *freeVarCollector) pop(names ...string) {
	for _, n := range names {
		c.bound[n]--
	}
}

func (c *freeVarCollector) record(v *VarRef) {
	if v.IsGlobalFunction || c.bound[v.Name] > 0 {
		return
	}
	if _, seen := c.byName[v.Name]; !seen {
		c.byName[v.Name] = v
		c.order = append(c.order, v.Name)
	}
}

func (c *freeVarCollector) expr(expr Expr) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *VarRef:
		c.record(e)
	case *BoolLiteral, *IntLiteral, *TypeLiteral:
	case *Call:
		c.expr(e.Fn)
		for _, arg := range e.Args {
			c.expr(arg)
		}
	case *NotExpr:
		c.expr(e.Inner)
	case *EqualExpr:
		c.expr(e.LHS)
		c.expr(e.RHS)
	case *FieldAccess:
		c.expr(e.Receiver)
	case *ListExpr:
		for _, elem := range e.Elems {
			c.expr(elem)
		}
	case *MatchExpr:
		for _, s := range e.Scrutinees {
			c.expr(s)
		}
		for _, mc := range e.Cases {
			c.push(mc.BoundNames...)
			c.expr(mc.Result)
			c.pop(mc.BoundNames...)
		}
	case *Comprehension:
		c.expr(e.Source)
		c.push(e.LoopVar.Name)
		c.expr(e.Result)
		c.pop(e.LoopVar.Name)
	case *InstanceOf:
		c.expr(e.Value)
	case *UncheckedCast:
		c.expr(e.Value)
	}
}

func (c *freeVarCollector) stmts(stmts []Stmt) {
	// Assignment targets bind the statements that follow them, so the
	// walk is sequential rather than a plain tree traversal.
	var introduced []string
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *Assignment:
			c.expr(s.RHS)
			c.push(s.Target.Name)
			introduced = append(introduced, s.Target.Name)
			if s.ErrTarget != nil {
				c.push(s.ErrTarget.Name)
				introduced = append(introduced, s.ErrTarget.Name)
			}
		case *ReturnStmt:
			c.expr(s.Value)
			c.expr(s.Err)
		case *IfStmt:
			c.expr(s.Cond)
			c.stmts(s.Then)
			c.stmts(s.Else)
		case *RaiseStmt:
			c.expr(s.Exc)
		case *TryExcept:
			c.stmts(s.Body)
			c.push(s.CaughtName)
			c.stmts(s.Handler)
			c.pop(s.CaughtName)
		case *AssertStmt:
			c.expr(s.Cond)
		case *PassStmt:
		case *ErrorCheckStmt:
			if s.Var != nil {
				c.record(s.Var)
			}
		}
	}
	c.pop(introduced...)
}

// FreeVarsInStmts returns the variables read by stmts before any
// statement in the list assigns them. Global function references are
// not variables for this purpose. The result is deduplicated and
// sorted by name so that synthesized parameter lists are reproducible.
func FreeVarsInStmts(stmts []Stmt) []*VarRef {
	c := newFreeVarCollector()
	c.stmts(stmts)
	return c.sorted()
}

// FreeVarsInExpr is FreeVarsInStmts for a single expression.
func FreeVarsInExpr(expr Expr) []*VarRef {
	c := newFreeVarCollector()
	c.expr(expr)
	return c.sorted()
}

func (c *freeVarCollector) sorted() []*VarRef {
	names := append([]string(nil), c.order...)
	sort.Strings(names)
	out := make([]*VarRef, len(names))
	for i, n := range names {
		out[i] = c.byName[n]
	}
	return out
}
