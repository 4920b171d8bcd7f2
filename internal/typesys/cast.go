package typesys

import "github.com/zephyrlang/zr/internal/ast"

// Castable implements the `as` cast relation (spec §4.4): any numeric
// to any numeric, char to/from numeric, bool to numeric, and same-name
// nominal to same-name nominal. Everything else is rejected.
func Castable(from, to ast.Type) bool {
	if from == nil || to == nil {
		return true
	}
	if _, ok := from.(ast.UnknownType); ok {
		return true
	}
	if _, ok := to.(ast.UnknownType); ok {
		return true
	}
	if sameType(from, to) {
		return true
	}
	if IsNumeric(from) && IsNumeric(to) {
		return true
	}
	if _, ok := from.(ast.CharType); ok && IsNumeric(to) {
		return true
	}
	if _, ok := to.(ast.CharType); ok && IsNumeric(from) {
		return true
	}
	if _, ok := from.(ast.BoolType); ok && IsNumeric(to) {
		return true
	}
	ft, fok := from.(ast.NamedType)
	tt, tok := to.(ast.NamedType)
	if fok && tok {
		return ft.Name == tt.Name
	}
	return false
}

func sameType(a, b ast.Type) bool {
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
	case ast.NeverType:
		_, ok := b.(ast.NeverType)
		return ok
	case ast.NamedType:
		bt, ok := b.(ast.NamedType)
		return ok && at.Name == bt.Name
	default:
		return false
	}
}
