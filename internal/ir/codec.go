package ir

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// The YAML unit format is the on-disk exchange form between pipeline
// stages: the external type checker writes typed trees, this core
// reads them, lowers them, and writes them back for the emitter.
// Nodes are kind-tagged maps; record types are referenced by name and
// resolved against the module's record table on decode.

type typeDTO struct {
	Kind    string     `yaml:"kind"`
	Elem    *typeDTO   `yaml:"elem,omitempty"`
	Args    []*typeDTO `yaml:"args,omitempty"`
	Returns *typeDTO   `yaml:"returns,omitempty"`
	Name    string     `yaml:"name,omitempty"`
}

type fieldDTO struct {
	Name string   `yaml:"name"`
	Type *typeDTO `yaml:"type"`
}

type recordDTO struct {
	Name      string     `yaml:"name"`
	Fields    []fieldDTO `yaml:"fields,omitempty"`
	Exception bool       `yaml:"exception,omitempty"`
	Message   string     `yaml:"message,omitempty"`
}

type patternDTO struct {
	Kind     string        `yaml:"kind"`
	Name     string        `yaml:"name,omitempty"`
	Type     *typeDTO      `yaml:"type,omitempty"`
	Spelling string        `yaml:"spelling,omitempty"`
	Template string        `yaml:"template,omitempty"`
	Args     []*patternDTO `yaml:"args,omitempty"`
}

type caseDTO struct {
	Patterns []*patternDTO `yaml:"patterns"`
	Result   *exprDTO      `yaml:"result"`
	Bound    []string      `yaml:"bound,omitempty"`
}

type exprDTO struct {
	Kind       string     `yaml:"kind"`
	Name       string     `yaml:"name,omitempty"`
	Type       *typeDTO   `yaml:"type,omitempty"`
	Global     bool       `yaml:"global,omitempty"`
	MayRaise   bool       `yaml:"mayRaise,omitempty"`
	Bool       bool       `yaml:"bool,omitempty"`
	Int        int64      `yaml:"int,omitempty"`
	Spelling   string     `yaml:"spelling,omitempty"`
	Fn         *exprDTO   `yaml:"fn,omitempty"`
	Args       []*exprDTO `yaml:"args,omitempty"`
	Inner      *exprDTO   `yaml:"inner,omitempty"`
	LHS        *exprDTO   `yaml:"lhs,omitempty"`
	RHS        *exprDTO   `yaml:"rhs,omitempty"`
	Receiver   *exprDTO   `yaml:"receiver,omitempty"`
	Field      string     `yaml:"field,omitempty"`
	Elem       *typeDTO   `yaml:"elem,omitempty"`
	Elems      []*exprDTO `yaml:"elems,omitempty"`
	Scrutinees []*exprDTO `yaml:"scrutinees,omitempty"`
	Cases      []*caseDTO `yaml:"cases,omitempty"`
	Source     *exprDTO   `yaml:"source,omitempty"`
	LoopVar    *exprDTO   `yaml:"loopVar,omitempty"`
	Result     *exprDTO   `yaml:"result,omitempty"`
	Value      *exprDTO   `yaml:"value,omitempty"`
	Target     *typeDTO   `yaml:"target,omitempty"`
}

type stmtDTO struct {
	Kind       string     `yaml:"kind"`
	Target     *exprDTO   `yaml:"target,omitempty"`
	ErrTarget  *exprDTO   `yaml:"errTarget,omitempty"`
	RHS        *exprDTO   `yaml:"rhs,omitempty"`
	Value      *exprDTO   `yaml:"value,omitempty"`
	Err        *exprDTO   `yaml:"err,omitempty"`
	Cond       *exprDTO   `yaml:"cond,omitempty"`
	Then       []*stmtDTO `yaml:"then,omitempty"`
	Else       []*stmtDTO `yaml:"else,omitempty"`
	Exc        *exprDTO   `yaml:"exc,omitempty"`
	Body       []*stmtDTO `yaml:"body,omitempty"`
	Handler    []*stmtDTO `yaml:"handler,omitempty"`
	Caught     string     `yaml:"caught,omitempty"`
	CaughtName string     `yaml:"caughtName,omitempty"`
	Message    string     `yaml:"message,omitempty"`
	Var        *exprDTO   `yaml:"var,omitempty"`
}

type funcDTO struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Params      []fieldDTO `yaml:"params,omitempty"`
	Returns     *typeDTO   `yaml:"returns"`
	MayRaise    bool       `yaml:"mayRaise,omitempty"`
	Body        []*stmtDTO `yaml:"body"`
}

type moduleDTO struct {
	Records   []recordDTO `yaml:"records,omitempty"`
	Functions []*funcDTO  `yaml:"functions,omitempty"`
	TopLevel  []*stmtDTO  `yaml:"topLevel,omitempty"`
	Public    []string    `yaml:"public,omitempty"`
}

// EncodeModule serializes a module to YAML.
func EncodeModule(mod *Module) ([]byte, error) {
	enc := &encoder{}
	dto := enc.module(mod)
	return yaml.Marshal(dto)
}

// DecodeModule parses a YAML unit back into a module.
func DecodeModule(data []byte) (*Module, error) {
	var dto moduleDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("parsing unit: %w", err)
	}
	dec := &decoder{records: make(map[string]*RecordType)}
	return dec.module(&dto)
}

type encoder struct{}

func (e *encoder) module(mod *Module) *moduleDTO {
	dto := &moduleDTO{Public: mod.Public}
	for _, r := range mod.Records {
		rd := recordDTO{Name: r.Name, Exception: r.IsException, Message: r.Message}
		for _, f := range r.Fields {
			rd.Fields = append(rd.Fields, fieldDTO{Name: f.Name, Type: e.typ(f.Type)})
		}
		dto.Records = append(dto.Records, rd)
	}
	for _, fn := range mod.Functions {
		dto.Functions = append(dto.Functions, e.function(fn))
	}
	dto.TopLevel = e.stmts(mod.TopLevel)
	return dto
}

func (e *encoder) function(fn *Function) *funcDTO {
	dto := &funcDTO{
		Name:        fn.Name,
		Description: fn.Description,
		Returns:     e.typ(fn.Returns),
		MayRaise:    fn.MayRaise,
		Body:        e.stmts(fn.Body),
	}
	for _, p := range fn.Params {
		dto.Params = append(dto.Params, fieldDTO{Name: p.Name, Type: e.typ(p.Type)})
	}
	return dto
}

func (e *encoder) typ(t Type) *typeDTO {
	switch tt := t.(type) {
	case nil:
		return nil
	case BoolType:
		return &typeDTO{Kind: "bool"}
	case IntType:
		return &typeDTO{Kind: "int"}
	case MetaType:
		return &typeDTO{Kind: "meta"}
	case BottomType:
		return &typeDTO{Kind: "bottom"}
	case ErrorOrVoidType:
		return &typeDTO{Kind: "error"}
	case ListType:
		return &typeDTO{Kind: "list", Elem: e.typ(tt.Elem)}
	case FunctionType:
		dto := &typeDTO{Kind: "func", Returns: e.typ(tt.Returns)}
		for _, a := range tt.Args {
			dto.Args = append(dto.Args, e.typ(a))
		}
		return dto
	case *RecordType:
		return &typeDTO{Kind: "record", Name: tt.Name}
	default:
		panic(fmt.Sprintf("ir: unknown type %T", t))
	}
}

func (e *encoder) stmts(stmts []Stmt) []*stmtDTO {
	out := make([]*stmtDTO, len(stmts))
	for i, s := range stmts {
		out[i] = e.stmt(s)
	}
	return out
}

func (e *encoder) stmt(stmt Stmt) *stmtDTO {
	switch s := stmt.(type) {
	case *Assignment:
		return &stmtDTO{Kind: "assign", Target: e.expr(s.Target), ErrTarget: e.expr(s.ErrTarget), RHS: e.expr(s.RHS)}
	case *ReturnStmt:
		return &stmtDTO{Kind: "return", Value: e.expr(s.Value), Err: e.expr(s.Err)}
	case *IfStmt:
		return &stmtDTO{Kind: "if", Cond: e.expr(s.Cond), Then: e.stmts(s.Then), Else: e.stmts(s.Else)}
	case *RaiseStmt:
		return &stmtDTO{Kind: "raise", Exc: e.expr(s.Exc)}
	case *TryExcept:
		return &stmtDTO{Kind: "try", Body: e.stmts(s.Body), Caught: s.CaughtType.Name, CaughtName: s.CaughtName, Handler: e.stmts(s.Handler)}
	case *AssertStmt:
		return &stmtDTO{Kind: "assert", Cond: e.expr(s.Cond), Message: s.Message}
	case *PassStmt:
		return &stmtDTO{Kind: "pass"}
	case *ErrorCheckStmt:
		return &stmtDTO{Kind: "errorCheck", Var: e.expr(s.Var)}
	default:
		panic(fmt.Sprintf("ir: unknown statement %T", stmt))
	}
}

func (e *encoder) expr(expr Expr) *exprDTO {
	switch x := expr.(type) {
	case nil:
		return nil
	case *VarRef:
		if x == nil {
			return nil
		}
		return &exprDTO{Kind: "var", Name: x.Name, Type: e.typ(x.Type), Global: x.IsGlobalFunction, MayRaise: x.MayRaise}
	case *BoolLiteral:
		return &exprDTO{Kind: "boolLit", Bool: x.Value}
	case *IntLiteral:
		return &exprDTO{Kind: "intLit", Int: x.Value}
	case *TypeLiteral:
		return &exprDTO{Kind: "typeLit", Spelling: x.Spelling}
	case *Call:
		dto := &exprDTO{Kind: "call", Fn: e.expr(x.Fn), MayRaise: x.MayRaise}
		for _, a := range x.Args {
			dto.Args = append(dto.Args, e.expr(a))
		}
		return dto
	case *NotExpr:
		return &exprDTO{Kind: "not", Inner: e.expr(x.Inner)}
	case *EqualExpr:
		return &exprDTO{Kind: "equal", LHS: e.expr(x.LHS), RHS: e.expr(x.RHS)}
	case *FieldAccess:
		return &exprDTO{Kind: "field", Receiver: e.expr(x.Receiver), Field: x.Field, Type: e.typ(x.Type)}
	case *ListExpr:
		dto := &exprDTO{Kind: "list", Elem: e.typ(x.Elem)}
		for _, el := range x.Elems {
			dto.Elems = append(dto.Elems, e.expr(el))
		}
		return dto
	case *MatchExpr:
		dto := &exprDTO{Kind: "match", Type: e.typ(x.Type)}
		for _, s := range x.Scrutinees {
			dto.Scrutinees = append(dto.Scrutinees, e.expr(s))
		}
		for _, c := range x.Cases {
			cd := &caseDTO{Result: e.expr(c.Result), Bound: c.BoundNames}
			for _, p := range c.Patterns {
				cd.Patterns = append(cd.Patterns, e.pattern(p))
			}
			dto.Cases = append(dto.Cases, cd)
		}
		return dto
	case *Comprehension:
		return &exprDTO{Kind: "comprehension", Source: e.expr(x.Source), LoopVar: e.expr(x.LoopVar), Result: e.expr(x.Result)}
	case *InstanceOf:
		return &exprDTO{Kind: "instanceOf", Value: e.expr(x.Value), Target: e.typ(x.Target)}
	case *UncheckedCast:
		return &exprDTO{Kind: "cast", Value: e.expr(x.Value), Target: e.typ(x.Target)}
	default:
		panic(fmt.Sprintf("ir: unknown expression %T", expr))
	}
}

func (e *encoder) pattern(p Pattern) *patternDTO {
	switch pt := p.(type) {
	case *BindPattern:
		return &patternDTO{Kind: "bind", Name: pt.Name, Type: e.typ(pt.Type)}
	case *LiteralPattern:
		return &patternDTO{Kind: "literal", Spelling: pt.Spelling}
	case *InstantiationPattern:
		dto := &patternDTO{Kind: "instantiation", Template: pt.Template}
		for _, a := range pt.Args {
			dto.Args = append(dto.Args, e.pattern(a))
		}
		return dto
	default:
		panic(fmt.Sprintf("ir: unknown pattern %T", p))
	}
}

type decoder struct {
	records map[string]*RecordType
}

func (d *decoder) module(dto *moduleDTO) (*Module, error) {
	mod := &Module{Public: dto.Public}
	// Two passes over records so fields may reference other records.
	for _, rd := range dto.Records {
		rec := &RecordType{Name: rd.Name, IsException: rd.Exception, Message: rd.Message}
		d.records[rd.Name] = rec
		mod.Records = append(mod.Records, rec)
	}
	for i, rd := range dto.Records {
		for _, f := range rd.Fields {
			ft, err := d.typ(f.Type)
			if err != nil {
				return nil, err
			}
			mod.Records[i].Fields = append(mod.Records[i].Fields, RecordField{Name: f.Name, Type: ft})
		}
	}
	for _, fd := range dto.Functions {
		fn, err := d.function(fd)
		if err != nil {
			return nil, err
		}
		mod.Functions = append(mod.Functions, fn)
	}
	topLevel, err := d.stmts(dto.TopLevel)
	if err != nil {
		return nil, err
	}
	mod.TopLevel = topLevel
	return mod, nil
}

func (d *decoder) function(dto *funcDTO) (*Function, error) {
	if dto == nil {
		return nil, fmt.Errorf("missing function")
	}
	returns, err := d.typ(dto.Returns)
	if err != nil {
		return nil, err
	}
	fn := &Function{
		Name:        dto.Name,
		Description: dto.Description,
		Returns:     returns,
		MayRaise:    dto.MayRaise,
	}
	for _, p := range dto.Params {
		pt, err := d.typ(p.Type)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, Param{Name: p.Name, Type: pt})
	}
	fn.Body, err = d.stmts(dto.Body)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (d *decoder) typ(dto *typeDTO) (Type, error) {
	if dto == nil {
		return nil, nil
	}
	switch dto.Kind {
	case "bool":
		return BoolType{}, nil
	case "int":
		return IntType{}, nil
	case "meta":
		return MetaType{}, nil
	case "bottom":
		return BottomType{}, nil
	case "error":
		return ErrorOrVoidType{}, nil
	case "list":
		elem, err := d.typ(dto.Elem)
		if err != nil {
			return nil, err
		}
		return ListType{Elem: elem}, nil
	case "func":
		ft := FunctionType{}
		for _, a := range dto.Args {
			at, err := d.typ(a)
			if err != nil {
				return nil, err
			}
			ft.Args = append(ft.Args, at)
		}
		ret, err := d.typ(dto.Returns)
		if err != nil {
			return nil, err
		}
		ft.Returns = ret
		return ft, nil
	case "record":
		return d.record(dto.Name)
	default:
		return nil, fmt.Errorf("unknown type kind %q", dto.Kind)
	}
}

func (d *decoder) record(name string) (*RecordType, error) {
	rec, ok := d.records[name]
	if !ok {
		return nil, fmt.Errorf("reference to undefined record type %q", name)
	}
	return rec, nil
}

func (d *decoder) stmts(dtos []*stmtDTO) ([]Stmt, error) {
	out := make([]Stmt, len(dtos))
	for i, dto := range dtos {
		s, err := d.stmt(dto)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (d *decoder) stmt(dto *stmtDTO) (Stmt, error) {
	if dto == nil {
		return nil, fmt.Errorf("missing statement")
	}
	switch dto.Kind {
	case "assign":
		target, err := d.varRef(dto.Target)
		if err != nil {
			return nil, err
		}
		var errTarget *VarRef
		if dto.ErrTarget != nil {
			if errTarget, err = d.varRef(dto.ErrTarget); err != nil {
				return nil, err
			}
		}
		rhs, err := d.expr(dto.RHS)
		if err != nil {
			return nil, err
		}
		return &Assignment{Target: target, ErrTarget: errTarget, RHS: rhs}, nil
	case "return":
		value, err := d.expr(dto.Value)
		if err != nil {
			return nil, err
		}
		errExpr, err := d.expr(dto.Err)
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: value, Err: errExpr}, nil
	case "if":
		cond, err := d.expr(dto.Cond)
		if err != nil {
			return nil, err
		}
		thenStmts, err := d.stmts(dto.Then)
		if err != nil {
			return nil, err
		}
		elseStmts, err := d.stmts(dto.Else)
		if err != nil {
			return nil, err
		}
		return &IfStmt{Cond: cond, Then: thenStmts, Else: elseStmts}, nil
	case "raise":
		exc, err := d.expr(dto.Exc)
		if err != nil {
			return nil, err
		}
		return &RaiseStmt{Exc: exc}, nil
	case "try":
		body, err := d.stmts(dto.Body)
		if err != nil {
			return nil, err
		}
		caught, err := d.record(dto.Caught)
		if err != nil {
			return nil, err
		}
		handler, err := d.stmts(dto.Handler)
		if err != nil {
			return nil, err
		}
		return &TryExcept{Body: body, CaughtType: caught, CaughtName: dto.CaughtName, Handler: handler}, nil
	case "assert":
		cond, err := d.expr(dto.Cond)
		if err != nil {
			return nil, err
		}
		return &AssertStmt{Cond: cond, Message: dto.Message}, nil
	case "pass":
		return &PassStmt{}, nil
	case "errorCheck":
		v, err := d.varRef(dto.Var)
		if err != nil {
			return nil, err
		}
		return &ErrorCheckStmt{Var: v}, nil
	default:
		return nil, fmt.Errorf("unknown statement kind %q", dto.Kind)
	}
}

func (d *decoder) varRef(dto *exprDTO) (*VarRef, error) {
	if dto == nil {
		return nil, fmt.Errorf("missing variable reference")
	}
	e, err := d.expr(dto)
	if err != nil {
		return nil, err
	}
	v, ok := e.(*VarRef)
	if !ok {
		return nil, fmt.Errorf("expected variable reference, got kind %q", dto.Kind)
	}
	return v, nil
}

func (d *decoder) exprs(dtos []*exprDTO) ([]Expr, error) {
	out := make([]Expr, len(dtos))
	for i, dto := range dtos {
		e, err := d.expr(dto)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (d *decoder) expr(dto *exprDTO) (Expr, error) {
	if dto == nil {
		return nil, nil
	}
	switch dto.Kind {
	case "var":
		t, err := d.typ(dto.Type)
		if err != nil {
			return nil, err
		}
		return &VarRef{Name: dto.Name, Type: t, IsGlobalFunction: dto.Global, MayRaise: dto.MayRaise}, nil
	case "boolLit":
		return &BoolLiteral{Value: dto.Bool}, nil
	case "intLit":
		return &IntLiteral{Value: dto.Int}, nil
	case "typeLit":
		return &TypeLiteral{Spelling: dto.Spelling}, nil
	case "call":
		fn, err := d.expr(dto.Fn)
		if err != nil {
			return nil, err
		}
		args, err := d.exprs(dto.Args)
		if err != nil {
			return nil, err
		}
		return &Call{Fn: fn, Args: args, MayRaise: dto.MayRaise}, nil
	case "not":
		inner, err := d.expr(dto.Inner)
		if err != nil {
			return nil, err
		}
		return &NotExpr{Inner: inner}, nil
	case "equal":
		lhs, err := d.expr(dto.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := d.expr(dto.RHS)
		if err != nil {
			return nil, err
		}
		return &EqualExpr{LHS: lhs, RHS: rhs}, nil
	case "field":
		recv, err := d.expr(dto.Receiver)
		if err != nil {
			return nil, err
		}
		t, err := d.typ(dto.Type)
		if err != nil {
			return nil, err
		}
		return &FieldAccess{Receiver: recv, Field: dto.Field, Type: t}, nil
	case "list":
		elem, err := d.typ(dto.Elem)
		if err != nil {
			return nil, err
		}
		elems, err := d.exprs(dto.Elems)
		if err != nil {
			return nil, err
		}
		return &ListExpr{Elem: elem, Elems: elems}, nil
	case "match":
		t, err := d.typ(dto.Type)
		if err != nil {
			return nil, err
		}
		scrutinees, err := d.exprs(dto.Scrutinees)
		if err != nil {
			return nil, err
		}
		m := &MatchExpr{Scrutinees: scrutinees, Type: t}
		for _, cd := range dto.Cases {
			if cd == nil {
				return nil, fmt.Errorf("missing match case")
			}
			mc := &MatchCase{BoundNames: cd.Bound}
			for _, pd := range cd.Patterns {
				p, err := d.pattern(pd)
				if err != nil {
					return nil, err
				}
				mc.Patterns = append(mc.Patterns, p)
			}
			if mc.Result, err = d.expr(cd.Result); err != nil {
				return nil, err
			}
			m.Cases = append(m.Cases, mc)
		}
		return m, nil
	case "comprehension":
		source, err := d.expr(dto.Source)
		if err != nil {
			return nil, err
		}
		loopVar, err := d.varRef(dto.LoopVar)
		if err != nil {
			return nil, err
		}
		result, err := d.expr(dto.Result)
		if err != nil {
			return nil, err
		}
		return &Comprehension{Source: source, LoopVar: loopVar, Result: result}, nil
	case "instanceOf":
		value, err := d.expr(dto.Value)
		if err != nil {
			return nil, err
		}
		if dto.Target == nil {
			return nil, fmt.Errorf("instanceOf requires a record target")
		}
		target, err := d.record(dto.Target.Name)
		if err != nil {
			return nil, err
		}
		return &InstanceOf{Value: value, Target: target}, nil
	case "cast":
		value, err := d.expr(dto.Value)
		if err != nil {
			return nil, err
		}
		target, err := d.typ(dto.Target)
		if err != nil {
			return nil, err
		}
		return &UncheckedCast{Value: value, Target: target}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", dto.Kind)
	}
}

func (d *decoder) pattern(dto *patternDTO) (Pattern, error) {
	if dto == nil {
		return nil, fmt.Errorf("missing pattern")
	}
	switch dto.Kind {
	case "bind":
		t, err := d.typ(dto.Type)
		if err != nil {
			return nil, err
		}
		return &BindPattern{Name: dto.Name, Type: t}, nil
	case "literal":
		return &LiteralPattern{Spelling: dto.Spelling}, nil
	case "instantiation":
		p := &InstantiationPattern{Template: dto.Template}
		for _, ad := range dto.Args {
			a, err := d.pattern(ad)
			if err != nil {
				return nil, err
			}
			p.Args = append(p.Args, a)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown pattern kind %q", dto.Kind)
	}
}
