// Package value is the VM's runtime representation: a small sum type
// for Copy scalars plus heap-id handles for every Reference-classified
// type (spec §4.10's "refcounted heap" design), mirroring the
// Copy/Reference split internal/typesys already computes at compile
// time.
package value

import "fmt"

// Value is the sum type of every runtime value the VM's stack, scopes,
// and heap slots hold.
type Value interface {
	valueNode()
	TypeName() string
}

type Int struct {
	Width  int
	Signed bool
	V      int64
}

func (Int) valueNode() {}
func (v Int) TypeName() string {
	prefix := "u"
	if v.Signed {
		prefix = "i"
	}
	return fmt.Sprintf("%s%d", prefix, v.Width)
}

type Float struct {
	Width int
	V     float64
}

func (Float) valueNode()         {}
func (v Float) TypeName() string { return fmt.Sprintf("f%d", v.Width) }

type Bool struct{ V bool }

func (Bool) valueNode()         {}
func (Bool) TypeName() string { return "bool" }

type Char struct{ V rune }

func (Char) valueNode()         {}
func (Char) TypeName() string { return "char" }

type Void struct{}

func (Void) valueNode()         {}
func (Void) TypeName() string { return "void" }

// Str, Vec, Arr, Obj, and Closure are heap handles: the payload lives
// in a Heap slot addressed by ID, so copying the Value copies the
// handle, not the data (spec §4.10: "the heap is used for all
// reference types").
type Str struct{ ID int }

func (Str) valueNode()         {}
func (Str) TypeName() string { return "string" }

type Vec struct {
	ID   int
	Elem string // element type display name, for type_of / empty-vec typing
}

func (Vec) valueNode()       {}
func (v Vec) TypeName() string { return "Vec<" + nonEmpty(v.Elem) + ">" }

func nonEmpty(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

type Arr struct {
	ID   int
	Elem string
	Size int
}

func (Arr) valueNode()         {}
func (a Arr) TypeName() string { return fmt.Sprintf("Array<%s; %d>", nonEmpty(a.Elem), a.Size) }

// Obj backs struct instances, enum instances, and plain object literals
// alike: the compiler lowers all three to MakeObject with an implicit
// "_type" field (spec §4.9), so the runtime doesn't need separate
// struct/enum value kinds.
type Obj struct{ ID int }

func (Obj) valueNode()         {}
func (Obj) TypeName() string { return "object" }

// Closure is a reference to a compiled function with no captured
// environment: spec §4.9's closure lowering registers the body as an
// ordinary function and emits MakeClosure{func_name, param_count} with
// no capture instruction, so calling a closure behaves exactly like
// calling that synthesized function by name.
type Closure struct {
	ID         int
	FuncName   string
	ParamCount int
}

func (Closure) valueNode()         {}
func (Closure) TypeName() string { return "closure" }

// Ref is the runtime form of `&e` / `&mut e`. It snapshots the target
// Value at creation time rather than aliasing the source binding
// live — the instruction set's Move/BorrowShared/BorrowMut/Drop/
// EndBorrow hints are informational for this VM (spec §4.10), so
// heap-backed targets already share identity through their handle's
// ID and scalar targets behave like an immutable copy-out.
type Ref struct {
	Mutable bool
	Target  Value
}

func (Ref) valueNode()         {}
func (r Ref) TypeName() string { return "&" + r.Target.TypeName() }

// StrConst is a compile-time placeholder for a string constant: the
// compiler can't heap-allocate at compile time, so LoadConst carries
// one of these and the VM allocates a real Str handle the moment it is
// loaded (spec §4.9's "(LoadConst field_name, compile value)" pairs and
// every plain string literal go through this).
type StrConst struct{ S string }

func (StrConst) valueNode()         {}
func (StrConst) TypeName() string { return "string" }

// HeapID reports the heap slot id backing v, if v is a heap-handle kind.
func HeapID(v Value) (int, bool) {
	switch x := v.(type) {
	case Str:
		return x.ID, true
	case Vec:
		return x.ID, true
	case Arr:
		return x.ID, true
	case Obj:
		return x.ID, true
	case Closure:
		return x.ID, true
	}
	return 0, false
}

// Truthy reports the boolean value of v for JumpIfFalse/And/Or. Every
// condition the compiler emits has already been type-checked to bool
// by the semantic analyser, so a non-bool here signals a VM bug rather
// than a user error.
func Truthy(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return b.V, ok
}

// ObjectData is the heap payload for an Obj handle: an ordered field
// map, matching the compiler's (LoadConst field_name, compile value)
// pair emission order (spec §4.9).
type ObjectData struct {
	Fields map[string]Value
	Order  []string
}

func (d *ObjectData) Get(name string) (Value, bool) {
	v, ok := d.Fields[name]
	return v, ok
}

func (d *ObjectData) Set(name string, v Value) {
	if _, exists := d.Fields[name]; !exists {
		d.Order = append(d.Order, name)
	}
	d.Fields[name] = v
}
