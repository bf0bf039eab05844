// Package analyzer computes which functions of a module can ever
// populate the error channel of their dual-channel return. The answer
// cannot be decided function by function when recursion is mutual: two
// functions calling only each other must share one answer, decided
// together. The analyzer therefore condenses the call graph into
// strongly-connected components and runs a fixed point over the
// condensation, callees before callers.
package analyzer

import (
	"sort"

	"github.com/tmpl-lang/tmplc/internal/ir"
)

// ExternalMayRaise maps symbols imported from other already-compiled
// units to their known throwability. Keys are qualified as
// "unit.symbol"; unqualified symbol names are accepted too for
// single-unit compilations.
type ExternalMayRaise map[string]bool

// Lookup resolves a symbol, preferring the qualified form.
func (e ExternalMayRaise) Lookup(unit, symbol string) (bool, bool) {
	if unit != "" {
		if v, ok := e[unit+"."+symbol]; ok {
			return v, true
		}
	}
	v, ok := e[symbol]
	return v, ok
}

// RecomputeThrowability returns a rewritten module in which every
// function, function-typed reference and call site carries a correct
// fixed-point may-raise flag. The input is not modified. Applying the
// analysis to its own output changes nothing.
func RecomputeThrowability(mod *ir.Module, external ExternalMayRaise) *ir.Module {
	if len(mod.Functions) == 0 {
		return mod
	}

	byName := make(map[string]*ir.Function, len(mod.Functions))
	for _, fn := range mod.Functions {
		byName[fn.Name] = fn
	}

	graph := NewCallGraph()
	for _, fn := range mod.Functions {
		graph.AddNode(fn.Name)
		for _, callee := range referencedGlobals(fn) {
			if _, ok := byName[callee]; ok {
				graph.AddEdge(fn.Name, callee)
			}
		}
	}

	// Components arrive callees-first, so by the time a component is
	// processed every component it calls into already has its value.
	mayRaise := make(map[string]bool, len(mod.Functions))
	for _, comp := range graph.Condensation() {
		value := false
		for _, member := range comp.Members {
			fn := byName[member]
			if containsRaise(fn) || referencesRaisingExternal(fn, byName, external) {
				value = true
				break
			}
		}
		if !value {
		search:
			for _, member := range comp.Members {
				for _, callee := range graph.Successors(member) {
					if mayRaise[callee] {
						value = true
						break search
					}
				}
			}
		}
		for _, member := range comp.Members {
			mayRaise[member] = value
		}
	}

	return applyThrowability(mod, byName, mayRaise, external)
}

// referencedGlobals returns the names of global functions referenced
// anywhere in fn's body, deduplicated and sorted.
func referencedGlobals(fn *ir.Function) []string {
	seen := make(map[string]struct{})
	ir.WalkStmts(fn.Body, func(ir.Stmt) bool { return true }, func(e ir.Expr) bool {
		if v, ok := e.(*ir.VarRef); ok && v.IsGlobalFunction {
			seen[v.Name] = struct{}{}
		}
		return true
	})
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// containsRaise reports whether the function body itself can populate
// the error channel: a raise statement in a source tree, or a return
// with the error slot populated in a lowered one.
func containsRaise(fn *ir.Function) bool {
	found := false
	ir.WalkStmts(fn.Body, func(s ir.Stmt) bool {
		switch st := s.(type) {
		case *ir.RaiseStmt:
			found = true
		case *ir.ReturnStmt:
			if st.Err != nil {
				found = true
			}
		}
		return !found
	}, nil)
	return found
}

// referencesRaisingExternal reports whether fn references a symbol
// outside the module that the external table marks as may-raise.
func referencesRaisingExternal(fn *ir.Function, byName map[string]*ir.Function, external ExternalMayRaise) bool {
	found := false
	ir.WalkStmts(fn.Body, func(ir.Stmt) bool { return !found }, func(e ir.Expr) bool {
		v, ok := e.(*ir.VarRef)
		if !ok || !v.IsGlobalFunction {
			return true
		}
		if _, local := byName[v.Name]; local {
			return true
		}
		if raises, known := external.Lookup("", v.Name); known && raises {
			found = true
		}
		return !found
	})
	return found
}

// applyThrowability is the second, simple rewrite pass: it stamps the
// computed component values onto every function, every global
// function reference, and every call site.
func applyThrowability(mod *ir.Module, byName map[string]*ir.Function, mayRaise map[string]bool, external ExternalMayRaise) *ir.Module {
	refValue := func(name string, current bool) bool {
		if v, ok := mayRaise[name]; ok {
			return v
		}
		if v, ok := external.Lookup("", name); ok {
			return v
		}
		// Unknown external reference: keep the checker's flag.
		return current
	}

	rw := &ir.Rewriter{
		RewriteVarRef: func(v *ir.VarRef) *ir.VarRef {
			if !v.IsGlobalFunction {
				return v
			}
			value := refValue(v.Name, v.MayRaise)
			if value == v.MayRaise {
				return v
			}
			out := *v
			out.MayRaise = value
			return &out
		},
		RewriteCall: func(c *ir.Call) ir.Expr {
			if fn, ok := c.Fn.(*ir.VarRef); ok && fn.IsGlobalFunction {
				c.MayRaise = fn.MayRaise
			}
			return c
		},
	}

	out := rw.RewriteModule(mod)
	for _, fn := range out.Functions {
		if v, ok := mayRaise[fn.Name]; ok {
			fn.MayRaise = v
		}
	}
	return out
}
