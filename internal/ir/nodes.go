package ir

import "fmt"

// Expr is an expression in the typed tree. The variant set is closed.
type Expr interface {
	// ExprType returns the semantic type of the expression.
	ExprType() Type
	isExpr()
}

// VarRef is a reference to a variable or to a global function.
type VarRef struct {
	Name string
	Type Type
	// IsGlobalFunction marks references to module-level functions.
	IsGlobalFunction bool
	// MayRaise is meaningful only for function-typed references. It is
	// recomputed by the throwability analyzer.
	MayRaise bool
}

func (v *VarRef) ExprType() Type { return v.Type }
func (*VarRef) isExpr()          {}

// BoolLiteral is a boolean constant.
type BoolLiteral struct {
	Value bool
}

func (*BoolLiteral) ExprType() Type { return BoolType{} }
func (*BoolLiteral) isExpr()        {}

// IntLiteral is an integer constant.
type IntLiteral struct {
	Value int64
}

func (*IntLiteral) ExprType() Type { return IntType{} }
func (*IntLiteral) isExpr()        {}

// TypeLiteral denotes a target-language type by its spelling,
// e.g. TypeLiteral{Spelling: "void"}.
type TypeLiteral struct {
	Spelling string
}

func (*TypeLiteral) ExprType() Type { return MetaType{} }
func (*TypeLiteral) isExpr()        {}

// Call is a function call. MayRaise mirrors the callee's flag and is
// recomputed by the throwability analyzer.
type Call struct {
	Fn       Expr
	Args     []Expr
	MayRaise bool
}

func (c *Call) ExprType() Type {
	if ft, ok := c.Fn.ExprType().(FunctionType); ok {
		return ft.Returns
	}
	return BottomType{}
}
func (*Call) isExpr() {}

// NotExpr is boolean negation.
type NotExpr struct {
	Inner Expr
}

func (*NotExpr) ExprType() Type { return BoolType{} }
func (*NotExpr) isExpr()        {}

// EqualExpr compares two values of the same type.
type EqualExpr struct {
	LHS Expr
	RHS Expr
}

func (*EqualExpr) ExprType() Type { return BoolType{} }
func (*EqualExpr) isExpr()        {}

// FieldAccess reads a named field of a record value.
type FieldAccess struct {
	Receiver Expr
	Field    string
	Type     Type
}

func (f *FieldAccess) ExprType() Type { return f.Type }
func (*FieldAccess) isExpr()          {}

// ListExpr constructs a list from element expressions.
type ListExpr struct {
	Elem  Type
	Elems []Expr
}

func (l *ListExpr) ExprType() Type { return ListType{Elem: l.Elem} }
func (*ListExpr) isExpr()          {}

// Pattern is a shape constraint in a match case. The variant set is
// closed: a pattern either binds unconditionally, matches a literal
// type spelling, or matches a template instantiation structurally.
type Pattern interface {
	isPattern()
	// Binds reports whether the pattern is a pure capture.
	Binds() bool
}

// BindPattern captures the scrutinee under Name without constraining it.
type BindPattern struct {
	Name string
	Type Type
}

func (*BindPattern) isPattern()  {}
func (*BindPattern) Binds() bool { return true }

// LiteralPattern matches one exact type spelling.
type LiteralPattern struct {
	Spelling string
}

func (*LiteralPattern) isPattern()  {}
func (*LiteralPattern) Binds() bool { return false }

// InstantiationPattern matches a template instantiation and recurses
// into its argument patterns.
type InstantiationPattern struct {
	Template string
	Args     []Pattern
}

func (*InstantiationPattern) isPattern()  {}
func (*InstantiationPattern) Binds() bool { return false }

// MatchCase pairs one pattern per scrutinee with a result expression.
// BoundNames is the set of pattern-bound variable names referenced by
// the result, as computed by the upstream type checker.
type MatchCase struct {
	Patterns   []Pattern
	Result     Expr
	BoundNames []string
}

// IsCatchAll reports whether every pattern of the case is a pure
// capture. At most one case per match may be a catch-all and it must be
// ordered last; that property is validated upstream.
func (c *MatchCase) IsCatchAll() bool {
	for _, p := range c.Patterns {
		if !p.Binds() {
			return false
		}
	}
	return true
}

// MatchExpr dispatches over one or more scrutinees through an ordered
// case list. After lowering, every case result is a call into a
// synthesized continuation function.
type MatchExpr struct {
	Scrutinees []Expr
	Cases      []*MatchCase
	Type       Type
}

func (m *MatchExpr) ExprType() Type { return m.Type }
func (*MatchExpr) isExpr()          {}

// Comprehension maps Result over the elements of Source, binding each
// element to LoopVar in turn.
type Comprehension struct {
	Source  Expr
	LoopVar *VarRef
	Result  Expr
}

func (c *Comprehension) ExprType() Type { return ListType{Elem: c.Result.ExprType()} }
func (*Comprehension) isExpr()          {}

// InstanceOf tests whether an error-channel value is of a concrete
// exception type. Lowered trees only.
type InstanceOf struct {
	Value  Expr
	Target *RecordType
}

func (*InstanceOf) ExprType() Type { return BoolType{} }
func (*InstanceOf) isExpr()        {}

// UncheckedCast reinterprets an error-channel value as its concrete
// exception type. The narrowing is trusted: lowering only emits it
// after the matching handler has been selected statically. Lowered
// trees only.
type UncheckedCast struct {
	Value  Expr
	Target Type
}

func (u *UncheckedCast) ExprType() Type { return u.Target }
func (*UncheckedCast) isExpr()          {}

// Stmt is a statement in a function body. The variant set is closed.
type Stmt interface {
	isStmt()
	// AlwaysReturns reports whether control can never flow past the
	// statement.
	AlwaysReturns() bool
}

// Assignment binds the result of RHS to Target. ErrTarget, when
// non-nil, receives the error channel of a dual-channel call; it only
// appears in lowered trees.
type Assignment struct {
	Target    *VarRef
	ErrTarget *VarRef
	RHS       Expr
}

func (*Assignment) isStmt()             {}
func (*Assignment) AlwaysReturns() bool { return false }

// ReturnStmt terminates the function. In a lowered tree at most one of
// Value and Err is populated per dynamic execution; a reachable source
// return always populates Value.
type ReturnStmt struct {
	Value Expr
	Err   Expr
}

func (*ReturnStmt) isStmt()             {}
func (*ReturnStmt) AlwaysReturns() bool { return true }

// IfStmt branches on a boolean condition. Both branches are always
// present, possibly empty.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (*IfStmt) isStmt() {}
func (s *IfStmt) AlwaysReturns() bool {
	return BlockAlwaysReturns(s.Then) && BlockAlwaysReturns(s.Else)
}

// RaiseStmt raises an exception value. Absent from lowered trees.
type RaiseStmt struct {
	Exc Expr
}

func (*RaiseStmt) isStmt()             {}
func (*RaiseStmt) AlwaysReturns() bool { return true }

// TryExcept guards Body with a single handler for one exception type.
// Absent from lowered trees.
type TryExcept struct {
	Body       []Stmt
	CaughtType *RecordType
	CaughtName string
	Handler    []Stmt
}

func (*TryExcept) isStmt()             {}
func (*TryExcept) AlwaysReturns() bool { return false }

// AssertStmt checks a boolean condition at compile time of the
// generated program.
type AssertStmt struct {
	Cond    Expr
	Message string
}

func (*AssertStmt) isStmt()             {}
func (*AssertStmt) AlwaysReturns() bool { return false }

// PassStmt is a structural no-op kept for source position bookkeeping.
type PassStmt struct{}

func (*PassStmt) isStmt()             {}
func (*PassStmt) AlwaysReturns() bool { return false }

// ErrorCheckStmt surfaces an error-channel value at module top level,
// where there is no enclosing function to return from. Lowered trees
// only.
type ErrorCheckStmt struct {
	Var *VarRef
}

func (*ErrorCheckStmt) isStmt()             {}
func (*ErrorCheckStmt) AlwaysReturns() bool { return false }

// BlockAlwaysReturns reports whether a statement list always returns,
// i.e. whether its last statement (if any) always returns.
func BlockAlwaysReturns(stmts []Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	return stmts[len(stmts)-1].AlwaysReturns()
}

// Param is one function parameter.
type Param struct {
	Name string
	Type Type
}

// Function is a module-level function definition. MayRaise is the only
// field mutated after construction; the throwability analyzer owns it.
type Function struct {
	Name string
	// Description records what synthesized functions stand for; empty
	// for source functions.
	Description string
	Params      []Param
	Body        []Stmt
	Returns     Type
	MayRaise    bool
}

// FuncType returns the function's type as seen by references to it.
func (f *Function) FuncType() FunctionType {
	args := make([]Type, len(f.Params))
	for i, p := range f.Params {
		args[i] = p.Type
	}
	return FunctionType{Args: args, Returns: f.Returns}
}

func (f *Function) String() string {
	return fmt.Sprintf("func %s(%d params) -> %s", f.Name, len(f.Params), f.Returns)
}

// Module is one compilation unit's tree.
type Module struct {
	Records []*RecordType
	// Functions holds source functions and, after lowering, the
	// synthesized continuations appended behind them.
	Functions []*Function
	// TopLevel holds module-level statements (assertions before
	// lowering, plus their error checks after).
	TopLevel []Stmt
	// Public lists the names exported to other units.
	Public []string
}

// FunctionByName returns the named function, or nil.
func (m *Module) FunctionByName(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}
