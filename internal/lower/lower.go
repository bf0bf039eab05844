// Package lower eliminates structured control flow from typed source
// trees. Exceptions, try/except, match expressions and comprehensions
// are rewritten into continuation functions with explicit dual-channel
// (value, error) results, a form the template-pattern backend can emit
// directly: it has no mutable state, no stack unwinding and no early
// return, only recursive pattern-dispatched computation.
//
// Lowering is pure tree transformation. Its only side effects are
// drawing fresh names from the identifier sequence and appending
// synthesized functions to the writer's sink. Internal invariant
// violations panic: they signal a bug in an upstream stage, never a
// user error.
package lower

import (
	"github.com/tmpl-lang/tmplc/internal/ir"
)

// LowerFunction lowers one function and returns it together with the
// continuations synthesized along the way (including the shared
// isError helper when any call site needed an error dispatch).
func LowerFunction(fn *ir.Function, names *ir.NameSequence) (*ir.Function, []*ir.Function) {
	w := NewModuleWriter(names)
	lowered := lowerFunction(w, fn)
	return lowered, w.Functions()
}

// LowerModule lowers every function of a module plus its top-level
// statements. Synthesized continuations precede the function they were
// cut from; the shared isError helper is emitted at most once per
// module. Records and the public name list pass through unchanged.
func LowerModule(mod *ir.Module, names *ir.NameSequence) *ir.Module {
	w := NewModuleWriter(names)

	for _, fn := range mod.Functions {
		w.writeFunction(lowerFunction(w, fn))
	}

	topLevel := newBlockWriter(w, "", nil, nil, nil)
	topLevel.lowerStmts(mod.TopLevel)

	return &ir.Module{
		Records:   mod.Records,
		Functions: w.Functions(),
		TopLevel:  topLevel.stmts,
		Public:    mod.Public,
	}
}

func lowerFunction(w *ModuleWriter, fn *ir.Function) *ir.Function {
	bw := newBlockWriter(w, fn.Name, fn.Params, fn.Returns, nil)
	bw.lowerStmts(fn.Body)
	return &ir.Function{
		Name:        fn.Name,
		Description: fn.Description,
		Params:      fn.Params,
		Body:        bw.stmts,
		Returns:     fn.Returns,
		MayRaise:    fn.MayRaise,
	}
}
