// Package typesys implements the type-compatibility relations the
// semantic analyser consults when checking assignments, arguments,
// branch joins, and `as` casts (spec §4.4). It operates directly over
// ast.Type rather than introducing a parallel type representation: the
// parser's type sum already closes over every shape the language
// surfaces, so a second enum would only duplicate it.
package typesys

import "github.com/zephyrlang/zr/internal/ast"

// DefaultIntType is the type an un-annotated integer literal gets
// (spec §4.8: "Integer literals default to the 32-bit signed type").
var DefaultIntType = ast.IntType{Width: 32, Signed: true}

// DefaultFloatType is the type an un-annotated float literal gets.
var DefaultFloatType = ast.FloatType{Width: 32}

// IsNumeric reports whether t is one of the integer or float widths.
func IsNumeric(t ast.Type) bool {
	switch t.(type) {
	case ast.IntType, ast.FloatType:
		return true
	default:
		return false
	}
}

// IsInteger reports whether t is one of the integer widths.
func IsInteger(t ast.Type) bool {
	_, ok := t.(ast.IntType)
	return ok
}

// IsFloat reports whether t is one of the float widths.
func IsFloat(t ast.Type) bool {
	_, ok := t.(ast.FloatType)
	return ok
}

// Name resolves a bare identifier used as a type name (e.g. from a
// `Named` production) to its ast.Type, following the same rules the
// parser's own parseType uses for primitives and defaulting everything
// else to a nominal NamedType. Exposed so the analyser's type registry
// can resolve type names found outside of parsed type annotations
// (for instance struct field types stored as strings during an earlier
// pass).
func Name(name string) ast.Type {
	switch name {
	case "i8":
		return ast.IntType{Width: 8, Signed: true}
	case "i32":
		return ast.IntType{Width: 32, Signed: true}
	case "i64":
		return ast.IntType{Width: 64, Signed: true}
	case "u8":
		return ast.IntType{Width: 8, Signed: false}
	case "u32":
		return ast.IntType{Width: 32, Signed: false}
	case "u64":
		return ast.IntType{Width: 64, Signed: false}
	case "f32":
		return ast.FloatType{Width: 32}
	case "f64":
		return ast.FloatType{Width: 64}
	case "bool":
		return ast.BoolType{}
	case "char":
		return ast.CharType{}
	case "string":
		return ast.StringType{}
	case "void":
		return ast.VoidType{}
	case "never":
		return ast.NeverType{}
	default:
		return ast.NamedType{Name: name}
	}
}

// DisplayName renders a type the way diagnostics quote it in error
// messages. ast.Type already implements Stringer in the shapes the
// parser produces; DisplayName exists so callers outside ast have one
// place to go for it and so nil types (a type the analyser never
// resolved) render as "unknown" instead of panicking.
func DisplayName(t ast.Type) string {
	if t == nil {
		return "unknown"
	}
	return t.String()
}
