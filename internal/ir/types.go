package ir

import (
	"fmt"
	"strings"
)

// Type represents the semantic type of an expression in the typed tree.
// The set of types is closed; identity is structural.
type Type interface {
	String() string
	Equal(other Type) bool
}

// BoolType is the type of boolean values.
type BoolType struct{}

func (BoolType) String() string { return "bool" }
func (BoolType) Equal(other Type) bool {
	_, ok := other.(BoolType)
	return ok
}

// IntType is the type of integer values.
type IntType struct{}

func (IntType) String() string { return "int" }
func (IntType) Equal(other Type) bool {
	_, ok := other.(IntType)
	return ok
}

// MetaType is the type of values that denote a target-language type.
type MetaType struct{}

func (MetaType) String() string { return "Type" }
func (MetaType) Equal(other Type) bool {
	_, ok := other.(MetaType)
	return ok
}

// BottomType is the type of expressions that never produce a value
// (e.g. the body of a function that always raises).
type BottomType struct{}

func (BottomType) String() string { return "bottom" }
func (BottomType) Equal(other Type) bool {
	_, ok := other.(BottomType)
	return ok
}

// ErrorOrVoidType is the type of the error channel in a dual-channel
// return. It only appears in lowered trees.
type ErrorOrVoidType struct{}

func (ErrorOrVoidType) String() string { return "ErrorOrVoid" }
func (ErrorOrVoidType) Equal(other Type) bool {
	_, ok := other.(ErrorOrVoidType)
	return ok
}

// ListType is the type of homogeneous lists.
type ListType struct {
	Elem Type
}

func (t ListType) String() string { return fmt.Sprintf("List[%s]", t.Elem) }
func (t ListType) Equal(other Type) bool {
	o, ok := other.(ListType)
	return ok && t.Elem.Equal(o.Elem)
}

// FunctionType is the type of function values.
type FunctionType struct {
	Args    []Type
	Returns Type
}

func (t FunctionType) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(args, ", "), t.Returns)
}

func (t FunctionType) Equal(other Type) bool {
	o, ok := other.(FunctionType)
	if !ok || len(t.Args) != len(o.Args) || !t.Returns.Equal(o.Returns) {
		return false
	}
	for i, a := range t.Args {
		if !a.Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// RecordField is one named, typed field of a record type.
type RecordField struct {
	Name string
	Type Type
}

// RecordType is a user-defined record type. Exception types are records
// with IsException set; a Raise and its matching except clause always
// refer to exactly one such type.
type RecordType struct {
	Name        string
	Fields      []RecordField
	IsException bool
	// Message is the diagnostic text emitted when an exception of this
	// type escapes to the top level. Empty for plain records.
	Message string
}

func (t *RecordType) String() string { return t.Name }

// Equal compares record types by name. The upstream type checker
// guarantees one definition per name within a compilation.
func (t *RecordType) Equal(other Type) bool {
	o, ok := other.(*RecordType)
	return ok && t.Name == o.Name
}

// IsFunctionType reports whether t is a function type.
func IsFunctionType(t Type) bool {
	_, ok := t.(FunctionType)
	return ok
}
