package analyzer

import (
	"testing"

	"github.com/tmpl-lang/tmplc/internal/ir"
)

var testExc = &ir.RecordType{Name: "Failure", IsException: true, Message: "failed"}

// fnCalling builds `def name(): return callee()` with the reference
// flag set the way an upstream checker would leave it.
func fnCalling(name, callee string, refMayRaise bool) *ir.Function {
	ref := &ir.VarRef{
		Name:             callee,
		Type:             ir.FunctionType{Returns: ir.IntType{}},
		IsGlobalFunction: true,
		MayRaise:         refMayRaise,
	}
	return &ir.Function{
		Name:    name,
		Returns: ir.IntType{},
		Body: []ir.Stmt{
			&ir.ReturnStmt{Value: &ir.Call{Fn: ref, MayRaise: refMayRaise}},
		},
	}
}

func fnRaising(name string) *ir.Function {
	return &ir.Function{
		Name:    name,
		Returns: ir.IntType{},
		Body: []ir.Stmt{
			&ir.RaiseStmt{Exc: &ir.Call{Fn: &ir.VarRef{
				Name:             "Failure",
				Type:             ir.FunctionType{Returns: testExc},
				IsGlobalFunction: true,
			}}},
		},
	}
}

func fnReturning(name string) *ir.Function {
	return &ir.Function{
		Name:    name,
		Returns: ir.IntType{},
		Body:    []ir.Stmt{&ir.ReturnStmt{Value: &ir.IntLiteral{Value: 0}}},
	}
}

func mayRaiseByName(mod *ir.Module) map[string]bool {
	out := make(map[string]bool, len(mod.Functions))
	for _, fn := range mod.Functions {
		out[fn.Name] = fn.MayRaise
	}
	return out
}

func TestThrowability_RaisePropagatesToCallers(t *testing.T) {
	mod := &ir.Module{
		Records: []*ir.RecordType{testExc},
		Functions: []*ir.Function{
			fnRaising("boom"),
			fnCalling("caller", "boom", false),
			fnCalling("outer", "caller", false),
			fnReturning("quiet"),
		},
	}

	out := RecomputeThrowability(mod, nil)
	flags := mayRaiseByName(out)

	for _, name := range []string{"boom", "caller", "outer"} {
		if !flags[name] {
			t.Errorf("expected %s to be flagged may-raise", name)
		}
	}
	if flags["quiet"] {
		t.Error("quiet never raises and calls nothing, must stay clean")
	}
}

func TestThrowability_RewritesReferencesAndCallSites(t *testing.T) {
	mod := &ir.Module{
		Records: []*ir.RecordType{testExc},
		Functions: []*ir.Function{
			fnRaising("boom"),
			// the checker handed over a stale false on the reference
			fnCalling("caller", "boom", false),
		},
	}

	out := RecomputeThrowability(mod, nil)

	call := out.FunctionByName("caller").Body[0].(*ir.ReturnStmt).Value.(*ir.Call)
	if !call.Fn.(*ir.VarRef).MayRaise {
		t.Error("the reference to boom must carry the recomputed flag")
	}
	if !call.MayRaise {
		t.Error("the call site must mirror the callee's flag")
	}
	// the input trees are not touched
	staleCall := mod.FunctionByName("caller").Body[0].(*ir.ReturnStmt).Value.(*ir.Call)
	if staleCall.Fn.(*ir.VarRef).MayRaise {
		t.Error("recompute must not mutate its input")
	}
}

func TestThrowability_MutualRecursionSharesOneAnswer(t *testing.T) {
	even := fnCalling("isEven", "isOdd", false)
	odd := &ir.Function{
		Name:    "isOdd",
		Returns: ir.IntType{},
		Body: []ir.Stmt{
			&ir.RaiseStmt{Exc: &ir.VarRef{Name: "e", Type: testExc}},
			&ir.ReturnStmt{Value: &ir.Call{Fn: &ir.VarRef{
				Name:             "isEven",
				Type:             ir.FunctionType{Returns: ir.IntType{}},
				IsGlobalFunction: true,
			}}},
		},
	}
	mod := &ir.Module{Records: []*ir.RecordType{testExc}, Functions: []*ir.Function{even, odd}}

	flags := mayRaiseByName(RecomputeThrowability(mod, nil))
	if !flags["isEven"] || !flags["isOdd"] {
		t.Fatalf("a raise anywhere in the cycle flags every member, got %v", flags)
	}
}

func TestThrowability_CleanCycleStaysClean(t *testing.T) {
	mod := &ir.Module{
		Functions: []*ir.Function{
			fnCalling("ping", "pong", true), // stale flags from the checker
			fnCalling("pong", "ping", true),
		},
	}

	flags := mayRaiseByName(RecomputeThrowability(mod, nil))
	if flags["ping"] || flags["pong"] {
		t.Fatalf("a cycle with no raise anywhere is clean, got %v", flags)
	}
}

func TestThrowability_Idempotent(t *testing.T) {
	// A lowered tree: the raise has become a return with the error
	// channel populated. Running the analysis again must not lose the
	// flag.
	lowered := &ir.Function{
		Name:    "boom",
		Returns: ir.IntType{},
		Body: []ir.Stmt{
			&ir.ReturnStmt{Err: &ir.VarRef{Name: "e", Type: ir.ErrorOrVoidType{}}},
		},
	}
	mod := &ir.Module{Functions: []*ir.Function{lowered, fnCalling("caller", "boom", false)}}

	once := RecomputeThrowability(mod, nil)
	twice := RecomputeThrowability(once, nil)

	first := mayRaiseByName(once)
	second := mayRaiseByName(twice)
	for name, v := range first {
		if second[name] != v {
			t.Errorf("flag for %s changed on the second run: %v -> %v", name, v, second[name])
		}
	}
	if !second["boom"] || !second["caller"] {
		t.Fatalf("expected boom and caller flagged, got %v", second)
	}
}

func TestThrowability_ExternalSymbols(t *testing.T) {
	mod := &ir.Module{
		Functions: []*ir.Function{
			fnCalling("usesRaising", "extBoom", false),
			fnCalling("usesClean", "extQuiet", true),
		},
	}
	external := ExternalMayRaise{"extBoom": true, "extQuiet": false}

	flags := mayRaiseByName(RecomputeThrowability(mod, external))
	if !flags["usesRaising"] {
		t.Error("calling a raising external symbol flags the caller")
	}
	if flags["usesClean"] {
		t.Error("a known-clean external symbol clears the stale flag")
	}

	out := RecomputeThrowability(mod, external)
	cleanCall := out.FunctionByName("usesClean").Body[0].(*ir.ReturnStmt).Value.(*ir.Call)
	if cleanCall.Fn.(*ir.VarRef).MayRaise || cleanCall.MayRaise {
		t.Error("references to known-clean externals are rewritten to false")
	}
}

func TestThrowability_UnknownExternalKeepsCheckerFlag(t *testing.T) {
	mod := &ir.Module{
		Functions: []*ir.Function{fnCalling("caller", "mystery", true)},
	}

	out := RecomputeThrowability(mod, nil)
	ref := out.FunctionByName("caller").Body[0].(*ir.ReturnStmt).Value.(*ir.Call).Fn.(*ir.VarRef)
	if !ref.MayRaise {
		t.Error("with no information about mystery the checker's flag stands")
	}
}

func TestExternalMayRaise_Lookup(t *testing.T) {
	table := ExternalMayRaise{"util.helper": true, "helper": false}

	if v, ok := table.Lookup("util", "helper"); !ok || !v {
		t.Error("qualified lookup must win")
	}
	if v, ok := table.Lookup("", "helper"); !ok || v {
		t.Error("bare lookup falls back to the unqualified key")
	}
	if _, ok := table.Lookup("other", "missing"); ok {
		t.Error("unknown symbols are reported as unknown")
	}
}
