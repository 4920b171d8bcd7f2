package ast

import "fmt"

// Type is the sum type of all type expressions in the language (spec §3).
type Type interface {
	typeNode()
	String() string
}

type IntType struct {
	Width  int // 8, 32, 64
	Signed bool
}

func (IntType) typeNode() {}
func (t IntType) String() string {
	prefix := "u"
	if t.Signed {
		prefix = "i"
	}
	return fmt.Sprintf("%s%d", prefix, t.Width)
}

type FloatType struct{ Width int } // 32, 64

func (FloatType) typeNode() {}
func (t FloatType) String() string { return fmt.Sprintf("f%d", t.Width) }

type BoolType struct{}

func (BoolType) typeNode()       {}
func (BoolType) String() string  { return "bool" }

type CharType struct{}

func (CharType) typeNode()      {}
func (CharType) String() string { return "char" }

type StringType struct{}

func (StringType) typeNode()      {}
func (StringType) String() string { return "string" }

type VoidType struct{}

func (VoidType) typeNode()      {}
func (VoidType) String() string { return "void" }

// NeverType is the type of expressions that never produce a value
// (e.g. a function body ending in `return` on every path).
type NeverType struct{}

func (NeverType) typeNode()      {}
func (NeverType) String() string { return "never" }

// UnknownType stands in for a type the analyser could not determine;
// it is lax-compatible with everything (spec §4.4) but not strict-compatible
// with anything.
type UnknownType struct{}

func (UnknownType) typeNode()      {}
func (UnknownType) String() string { return "unknown" }

type VecType struct{ Elem Type }

func (VecType) typeNode()      {}
func (t VecType) String() string { return fmt.Sprintf("Vec<%s>", t.Elem) }

type ArrayType struct {
	Elem Type
	Size int
}

func (ArrayType) typeNode()      {}
func (t ArrayType) String() string { return fmt.Sprintf("Array<%s; %d>", t.Elem, t.Size) }

// ObjectType is a structural record type: field name -> field type.
type ObjectType struct {
	Fields map[string]Type
	// Order preserves declaration order for deterministic printing/emission.
	Order []string
}

func (ObjectType) typeNode() {}
func (t ObjectType) String() string {
	s := "{"
	for i, name := range t.Order {
		if i > 0 {
			s += ", "
		}
		s += name + ": " + t.Fields[name].String()
	}
	return s + "}"
}

// NamedType is a nominal struct or enum type, resolved by name.
type NamedType struct{ Name string }

func (NamedType) typeNode()      {}
func (t NamedType) String() string { return t.Name }

type ReferenceType struct {
	Lifetime string // "" if unnamed
	Mutable  bool
	Inner    Type
}

func (ReferenceType) typeNode() {}
func (t ReferenceType) String() string {
	mut := ""
	if t.Mutable {
		mut = "mut "
	}
	lt := ""
	if t.Lifetime != "" {
		lt = "'" + t.Lifetime + " "
	}
	return fmt.Sprintf("&%s%s%s", lt, mut, t.Inner)
}

type LifetimeAnnotated struct {
	Lifetime string
	Inner    Type
}

func (LifetimeAnnotated) typeNode()      {}
func (t LifetimeAnnotated) String() string { return fmt.Sprintf("'%s %s", t.Lifetime, t.Inner) }

type SelfType struct{}

func (SelfType) typeNode()      {}
func (SelfType) String() string { return "Self" }

type InferredType struct{}

func (InferredType) typeNode()      {}
func (InferredType) String() string { return "_" }
