package lower

import (
	"fmt"

	"github.com/tmpl-lang/tmplc/internal/ir"
)

// ModuleWriter accumulates the functions produced while lowering one
// module: lowered source functions, synthesized continuations, and the
// shared isError helper. It also owns the fresh-name sequence.
type ModuleWriter struct {
	names      *ir.NameSequence
	funcs      []*ir.Function
	isErrorRef *ir.VarRef
}

// NewModuleWriter creates a writer drawing names from the given
// sequence.
func NewModuleWriter(names *ir.NameSequence) *ModuleWriter {
	return &ModuleWriter{names: names}
}

// Functions returns everything written so far, in emission order.
func (w *ModuleWriter) Functions() []*ir.Function { return w.funcs }

func (w *ModuleWriter) newName() string { return w.names.Next() }

// newVar returns a fresh local variable of the given type.
func (w *ModuleWriter) newVar(t ir.Type) *ir.VarRef {
	return &ir.VarRef{Name: w.newName(), Type: t, MayRaise: ir.IsFunctionType(t)}
}

func (w *ModuleWriter) writeFunction(fn *ir.Function) {
	w.funcs = append(w.funcs, fn)
}

// isErrorFn returns a reference to the shared isError helper,
// synthesizing it on first use:
//
//	def isError(x):
//	  v = Type('void')
//	  b = (x == v)
//	  b2 = not b
//	  return b2
//
// The error channel carries 'void' when no error occurred, so a
// populated error slot is anything that is not 'void'.
func (w *ModuleWriter) isErrorFn() *ir.VarRef {
	if w.isErrorRef == nil {
		x := w.newVar(ir.ErrorOrVoidType{})
		bw := &blockWriter{
			mod:        w,
			funcName:   "",
			funcParams: []ir.Param{{Name: x.Name, Type: x.Type}},
			returnType: ir.BoolType{},
		}
		v := bw.newVarForExpr(&ir.TypeLiteral{Spelling: "void"})
		b := bw.newVarForExpr(&ir.EqualExpr{LHS: x, RHS: v})
		b2 := bw.newVarForExpr(&ir.NotExpr{Inner: b})
		bw.write(&ir.ReturnStmt{Value: b2})

		name := w.newName()
		w.writeFunction(&ir.Function{
			Name:        name,
			Description: "error-channel probe shared by all dual-channel call sites",
			Params:      bw.funcParams,
			Body:        bw.stmts,
			Returns:     ir.BoolType{},
		})
		w.isErrorRef = &ir.VarRef{
			Name:             name,
			Type:             ir.FunctionType{Args: []ir.Type{ir.ErrorOrVoidType{}}, Returns: ir.BoolType{}},
			IsGlobalFunction: true,
		}
	}
	return w.isErrorRef
}

// handlerContext records one active enclosing try/except handler while
// its try body is being lowered: the caught type, the name the handler
// binds it under, and the pre-built call into the handler continuation.
type handlerContext struct {
	caughtType  *ir.RecordType
	caughtName  string
	handlerCall *ir.Call
}

// blockWriter lowers one statement list. Nested blocks get child
// writers sharing the enclosing function's context; the handler stack
// is the only mutable state pushed and popped during a descent.
type blockWriter struct {
	mod        *ModuleWriter
	funcName   string
	funcParams []ir.Param
	// returnType is nil only at module top level, where an escaping
	// error has no function to return from.
	returnType ir.Type
	handlers   []handlerContext
	stmts      []ir.Stmt
}

func newBlockWriter(mod *ModuleWriter, funcName string, params []ir.Param, returnType ir.Type, handlers []handlerContext) *blockWriter {
	return &blockWriter{
		mod:        mod,
		funcName:   funcName,
		funcParams: params,
		returnType: returnType,
		handlers:   append([]handlerContext(nil), handlers...),
	}
}

// child returns a writer for a nested block in the same function
// context, with the same active handlers.
func (b *blockWriter) child() *blockWriter {
	return newBlockWriter(b.mod, b.funcName, b.funcParams, b.returnType, b.handlers)
}

func (b *blockWriter) write(s ir.Stmt) {
	b.stmts = append(b.stmts, s)
}

func (b *blockWriter) pushHandler(ctx handlerContext) {
	if b.returnType != nil && !ctx.handlerCall.ExprType().Equal(b.returnType) {
		panic(fmt.Sprintf("lower: handler continuation for %s returns %s, enclosing function returns %s",
			ctx.caughtType.Name, ctx.handlerCall.ExprType(), b.returnType))
	}
	b.handlers = append(b.handlers, ctx)
}

func (b *blockWriter) popHandler() {
	b.handlers = b.handlers[:len(b.handlers)-1]
}

// newVarForExpr assigns expr to a fresh variable and returns it.
func (b *blockWriter) newVarForExpr(expr ir.Expr) *ir.VarRef {
	v := b.mod.newVar(expr.ExprType())
	b.write(&ir.Assignment{Target: v, RHS: expr})
	return v
}

// newVarForCheckedExpr assigns a may-raise expression to a fresh
// (value, error) pair and emits the error dispatch:
//
//	x, err = <expr>
//	b = isError(err)
//	if b:
//	  if err is E_innermost: e = err; res, herr = handler(...); return res, herr
//	  ...
//	  if err is E_outermost: ...
//	  return None, err
//
// Handlers are tried nearest enclosing first. At module top level the
// dispatch degenerates to a terminal error check.
func (b *blockWriter) newVarForCheckedExpr(expr ir.Expr) *ir.VarRef {
	x := b.mod.newVar(expr.ExprType())
	errVar := b.mod.newVar(ir.ErrorOrVoidType{})
	b.write(&ir.Assignment{Target: x, ErrTarget: errVar, RHS: expr})

	if b.returnType == nil {
		b.write(&ir.ErrorCheckStmt{Var: errVar})
		return x
	}

	isErr := b.newVarForExpr(&ir.Call{Fn: b.mod.isErrorFn(), Args: []ir.Expr{errVar}})

	dispatch := b.child()
	for i := len(b.handlers) - 1; i >= 0; i-- {
		ctx := b.handlers[i]
		branch := dispatch.child()
		branch.write(&ir.Assignment{
			Target: &ir.VarRef{Name: ctx.caughtName, Type: ctx.caughtType},
			RHS:    &ir.UncheckedCast{Value: errVar, Target: ctx.caughtType},
		})
		res := b.mod.newVar(ctx.handlerCall.ExprType())
		herr := b.mod.newVar(ir.ErrorOrVoidType{})
		branch.write(&ir.Assignment{Target: res, ErrTarget: herr, RHS: ctx.handlerCall})
		branch.write(&ir.ReturnStmt{Value: res, Err: herr})

		matches := dispatch.newVarForExpr(&ir.InstanceOf{Value: errVar, Target: ctx.caughtType})
		dispatch.write(&ir.IfStmt{Cond: matches, Then: branch.stmts, Else: []ir.Stmt{}})
	}
	dispatch.write(&ir.ReturnStmt{Err: errVar})

	b.write(&ir.IfStmt{Cond: isErr, Then: dispatch.stmts, Else: []ir.Stmt{}})
	return x
}

// arbitraryForwardedArg picks a deterministic stand-in parameter for
// continuations whose body has no free variables, since the backend
// cannot express a reusable zero-parameter template unit. Non-function
// parameters are preferred; at module top level, where there are no
// parameters, a fresh 'void' literal is materialized instead.
func (b *blockWriter) arbitraryForwardedArg() *ir.VarRef {
	if len(b.funcParams) == 0 {
		return b.newVarForExpr(&ir.TypeLiteral{Spelling: "void"})
	}
	selected := b.funcParams[0]
	for _, p := range b.funcParams {
		if !ir.IsFunctionType(p.Type) {
			selected = p
			break
		}
	}
	return &ir.VarRef{Name: selected.Name, Type: selected.Type, MayRaise: ir.IsFunctionType(selected.Type)}
}

func paramsForVars(vars []*ir.VarRef) []ir.Param {
	params := make([]ir.Param, len(vars))
	for i, v := range vars {
		params[i] = ir.Param{Name: v.Name, Type: v.Type}
	}
	return params
}

func varsAsExprs(vars []*ir.VarRef) []ir.Expr {
	exprs := make([]ir.Expr, len(vars))
	for i, v := range vars {
		exprs[i] = v
	}
	return exprs
}
