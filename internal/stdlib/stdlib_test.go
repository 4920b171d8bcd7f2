package stdlib

import (
	"testing"

	"github.com/zephyrlang/zr/internal/value"
)

func i32(v int64) value.Value   { return value.Int{Width: 32, Signed: true, V: v} }
func f32(v float64) value.Value { return value.Float{Width: 32, V: v} }

func TestDispatchMathSqrtAndPow(t *testing.T) {
	out, err := Dispatch("sqrt", []value.Value{f32(9)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.(value.Float).V != 3 {
		t.Fatalf("sqrt(9) = %v, want 3", out)
	}

	out, err = Dispatch("pow", []value.Value{f32(2), f32(10)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.(value.Float).V != 1024 {
		t.Fatalf("pow(2, 10) = %v, want 1024", out)
	}
}

func TestDispatchMathClamp(t *testing.T) {
	out, err := Dispatch("clamp", []value.Value{f32(15), f32(0), f32(10)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.(value.Float).V != 10 {
		t.Fatalf("clamp(15, 0, 10) = %v, want 10", out)
	}
}

func TestDispatchStringRoundTrip(t *testing.T) {
	h := value.NewHeap()
	s := newStr(h, "  Hello World  ")

	out, err := Dispatch("trim", []value.Value{s}, h)
	if err != nil {
		t.Fatal(err)
	}
	trimmed, _ := asStr(out, h)
	if trimmed != "Hello World" {
		t.Fatalf("trim = %q, want %q", trimmed, "Hello World")
	}

	out, err = Dispatch("to_upper", []value.Value{out}, h)
	if err != nil {
		t.Fatal(err)
	}
	upper, _ := asStr(out, h)
	if upper != "HELLO WORLD" {
		t.Fatalf("to_upper = %q, want %q", upper, "HELLO WORLD")
	}
}

func TestDispatchStringParseIntError(t *testing.T) {
	h := value.NewHeap()
	s := newStr(h, "not a number")
	if _, err := Dispatch("parse_int", []value.Value{s}, h); err == nil {
		t.Fatal("expected an error parsing a non-numeric string")
	}
}

func TestDispatchCoreAssertFailureCarriesMessage(t *testing.T) {
	h := value.NewHeap()
	msg := newStr(h, "boom")
	_, err := Dispatch("assert", []value.Value{value.Bool{V: false}, msg}, h)
	if err == nil {
		t.Fatal("expected assert(false, ...) to fail")
	}
	if err.Error() == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestDispatchCoreTypeOf(t *testing.T) {
	h := value.NewHeap()
	out, err := Dispatch("type_of", []value.Value{i32(1)}, h)
	if err != nil {
		t.Fatal(err)
	}
	name, _ := asStr(out, h)
	if name != "i32" {
		t.Fatalf("type_of(1) = %q, want %q", name, "i32")
	}
}

func TestDisplayFormatsScalarsAndCollections(t *testing.T) {
	h := value.NewHeap()
	if got := Display(i32(42), h); got != "42" {
		t.Fatalf("Display(i32 42) = %q, want %q", got, "42")
	}
	if got := Display(value.Bool{V: true}, h); got != "true" {
		t.Fatalf("Display(bool true) = %q, want %q", got, "true")
	}

	elems := []value.Value{i32(1), i32(2), i32(3)}
	listID := h.Alloc(elems)
	if got := Display(value.Vec{ID: listID}, h); got != "[1, 2, 3]" {
		t.Fatalf("Display(vec) = %q, want %q", got, "[1, 2, 3]")
	}
}

func TestIsStdlibFunctionAndModuleOf(t *testing.T) {
	if !IsStdlibFunction("sqrt") {
		t.Fatal("expected sqrt to be a recognised stdlib function")
	}
	if ModuleOf["sqrt"] != "math" {
		t.Fatalf("ModuleOf[sqrt] = %q, want %q", ModuleOf["sqrt"], "math")
	}
	if IsStdlibFunction("not_a_real_function") {
		t.Fatal("expected an unknown name to not be recognised")
	}
	if !AlwaysAvailable["print"] {
		t.Fatal("expected print to be always available without an import")
	}
}

func TestDispatchUnknownModuleFunction(t *testing.T) {
	if _, err := Dispatch("totally_unknown", nil, value.NewHeap()); err == nil {
		t.Fatal("expected an error dispatching an unrecognised stdlib name")
	}
}
