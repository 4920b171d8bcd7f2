package typesys

import "github.com/zephyrlang/zr/internal/ast"

// widensTo reports whether numeric type a may implicitly convert to
// numeric type b under lax compatibility — widening or narrowing, in
// either direction, as long as both sides are numeric of the same
// signed-ness family (spec §4.4 permits both directions; narrowing may
// warn, but this analyser accepts it silently, matching the resolved
// Open Question recorded in DESIGN.md).
func widensTo(a, b ast.Type) bool {
	ai, aok := a.(ast.IntType)
	bi, bok := b.(ast.IntType)
	if aok && bok {
		return ai.Signed == bi.Signed
	}
	af, aok := a.(ast.FloatType)
	bf, bok := b.(ast.FloatType)
	if aok && bok {
		_ = af
		_ = bf
		return true
	}
	return false
}

// LaxCompatible is the relation used for assignment and argument
// passing (spec §4.4).
func LaxCompatible(a, b ast.Type) bool {
	if a == nil || b == nil {
		return true
	}
	if _, ok := a.(ast.UnknownType); ok {
		return true
	}
	if _, ok := b.(ast.UnknownType); ok {
		return true
	}
	if _, ok := a.(ast.VoidType); ok {
		return true
	}

	if IsNumeric(a) && IsNumeric(b) {
		return widensTo(a, b) || widensTo(b, a)
	}

	switch at := a.(type) {
	case ast.BoolType:
		_, ok := b.(ast.BoolType)
		return ok
	case ast.CharType:
		_, ok := b.(ast.CharType)
		return ok
	case ast.StringType:
		_, ok := b.(ast.StringType)
		return ok
	case ast.VecType:
		bt, ok := b.(ast.VecType)
		return ok && LaxCompatible(at.Elem, bt.Elem)
	case ast.ArrayType:
		bt, ok := b.(ast.ArrayType)
		return ok && at.Size == bt.Size && LaxCompatible(at.Elem, bt.Elem)
	case ast.ReferenceType:
		bt, ok := b.(ast.ReferenceType)
		return ok && LaxCompatible(at.Inner, bt.Inner)
	case ast.ObjectType:
		bt, ok := b.(ast.ObjectType)
		if !ok {
			return false
		}
		if len(at.Fields) == 0 || len(bt.Fields) == 0 {
			return true
		}
		for key, fieldB := range bt.Fields {
			fieldA, ok := at.Fields[key]
			if !ok || !LaxCompatible(fieldA, fieldB) {
				return false
			}
		}
		return true
	case ast.NamedType:
		bt, ok := b.(ast.NamedType)
		return ok && at.Name == bt.Name
	default:
		return false
	}
}

// StrictCompatible is the relation used for reference-typed return
// positions and branch joining (spec §4.4): Unknown is never
// compatible, reference mutability and lifetimes must agree, and
// array sizes must match exactly.
func StrictCompatible(a, b ast.Type) bool {
	if a == nil || b == nil {
		return false
	}
	if _, ok := a.(ast.UnknownType); ok {
		return false
	}
	if _, ok := b.(ast.UnknownType); ok {
		return false
	}

	switch at := a.(type) {
	case ast.IntType:
		bt, ok := b.(ast.IntType)
		return ok && at == bt
	case ast.FloatType:
		bt, ok := b.(ast.FloatType)
		return ok && at == bt
	case ast.BoolType:
		_, ok := b.(ast.BoolType)
		return ok
	case ast.CharType:
		_, ok := b.(ast.CharType)
		return ok
	case ast.StringType:
		_, ok := b.(ast.StringType)
		return ok
	case ast.VoidType:
		_, ok := b.(ast.VoidType)
		return ok
	case ast.VecType:
		bt, ok := b.(ast.VecType)
		return ok && StrictCompatible(at.Elem, bt.Elem)
	case ast.ArrayType:
		bt, ok := b.(ast.ArrayType)
		return ok && at.Size == bt.Size && StrictCompatible(at.Elem, bt.Elem)
	case ast.ReferenceType:
		bt, ok := b.(ast.ReferenceType)
		if !ok {
			return false
		}
		// &mut T -> &T is accepted; the reverse is not.
		mutOK := at.Mutable == bt.Mutable || (at.Mutable && !bt.Mutable)
		ltOK := at.Lifetime == "" || bt.Lifetime == "" || at.Lifetime == bt.Lifetime
		return mutOK && ltOK && StrictCompatible(at.Inner, bt.Inner)
	case ast.NamedType:
		bt, ok := b.(ast.NamedType)
		return ok && at.Name == bt.Name
	default:
		return false
	}
}
