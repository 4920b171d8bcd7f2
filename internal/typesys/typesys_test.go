package typesys

import (
	"testing"

	"github.com/zephyrlang/zr/internal/ast"
)

func TestLaxCompatibleWidensAndNarrows(t *testing.T) {
	i8 := ast.IntType{Width: 8, Signed: true}
	i32 := ast.IntType{Width: 32, Signed: true}
	if !LaxCompatible(i8, i32) {
		t.Error("expected i8 -> i32 widening to be lax-compatible")
	}
	if !LaxCompatible(i32, i8) {
		t.Error("expected i32 -> i8 narrowing to be accepted under lax compatibility")
	}
}

func TestLaxCompatibleUnknownIsUniversal(t *testing.T) {
	if !LaxCompatible(ast.UnknownType{}, ast.BoolType{}) {
		t.Error("expected Unknown to be lax-compatible with anything")
	}
}

func TestStrictCompatibleRejectsUnknown(t *testing.T) {
	if StrictCompatible(ast.UnknownType{}, ast.BoolType{}) {
		t.Error("expected Unknown to never be strict-compatible")
	}
}

func TestStrictCompatibleReferenceMutability(t *testing.T) {
	mutRef := ast.ReferenceType{Mutable: true, Inner: ast.IntType{Width: 32, Signed: true}}
	sharedRef := ast.ReferenceType{Mutable: false, Inner: ast.IntType{Width: 32, Signed: true}}
	if !StrictCompatible(mutRef, sharedRef) {
		t.Error("expected &mut T -> &T to be accepted")
	}
	if StrictCompatible(sharedRef, mutRef) {
		t.Error("expected &T -> &mut T to be rejected")
	}
}

func TestStrictCompatibleArraySizesMustMatch(t *testing.T) {
	a := ast.ArrayType{Elem: ast.IntType{Width: 32, Signed: true}, Size: 3}
	b := ast.ArrayType{Elem: ast.IntType{Width: 32, Signed: true}, Size: 4}
	if StrictCompatible(a, b) {
		t.Error("expected mismatched array sizes to be strict-incompatible")
	}
}

func TestCastableNumericCrossFamily(t *testing.T) {
	if !Castable(ast.IntType{Width: 32, Signed: true}, ast.FloatType{Width: 64}) {
		t.Error("expected i32 -> f64 to be castable")
	}
	if !Castable(ast.CharType{}, ast.IntType{Width: 32, Signed: true}) {
		t.Error("expected char -> i32 to be castable")
	}
	if !Castable(ast.BoolType{}, ast.IntType{Width: 8, Signed: true}) {
		t.Error("expected bool -> i8 to be castable")
	}
}

func TestCastableRejectsUnrelatedNominal(t *testing.T) {
	if Castable(ast.NamedType{Name: "Point"}, ast.NamedType{Name: "Vector"}) {
		t.Error("expected differently named struct types to not be castable")
	}
	if !Castable(ast.NamedType{Name: "Point"}, ast.NamedType{Name: "Point"}) {
		t.Error("expected a type to be castable to itself")
	}
}

func TestIsCopyClassification(t *testing.T) {
	copyTypes := []ast.Type{
		ast.IntType{Width: 32, Signed: true},
		ast.FloatType{Width: 64},
		ast.BoolType{},
		ast.CharType{},
		ast.VoidType{},
		ast.NeverType{},
	}
	for _, ty := range copyTypes {
		if !IsCopy(ty) {
			t.Errorf("expected %v to be Copy-classified", ty)
		}
	}
	referenceTypes := []ast.Type{
		ast.StringType{},
		ast.VecType{Elem: ast.IntType{Width: 32, Signed: true}},
		ast.NamedType{Name: "Point"},
	}
	for _, ty := range referenceTypes {
		if IsCopy(ty) {
			t.Errorf("expected %v to be Reference-classified", ty)
		}
	}
}
