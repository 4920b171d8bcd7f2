package typesys

import "github.com/zephyrlang/zr/internal/ast"

// IsCopy reports whether a value of type t is Copy-classified (spec
// §4.4): integer widths, float widths, bool, char, void, and never.
// Argument passing for a Copy value never moves it; every other type
// is Reference-classified and a bare-identifier argument of that type
// moves ownership unless the parameter itself is a reference type.
func IsCopy(t ast.Type) bool {
	switch t.(type) {
	case ast.IntType, ast.FloatType, ast.BoolType, ast.CharType, ast.VoidType, ast.NeverType:
		return true
	default:
		return false
	}
}
