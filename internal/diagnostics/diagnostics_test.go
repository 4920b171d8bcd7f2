package diagnostics

import (
	"strings"
	"testing"
)

func TestRenderIncludesKindAndMessage(t *testing.T) {
	d := New(KindOwnership, "variable '%s' was moved", "s")
	out := d.Render()
	if !strings.Contains(out, "error[OwnershipError]:") {
		t.Errorf("expected a kind header, got %q", out)
	}
	if !strings.Contains(out, "variable 's' was moved") {
		t.Errorf("expected the formatted message, got %q", out)
	}
}

func TestRenderIncludesLocationAndCaret(t *testing.T) {
	d := New(KindSyntax, "unexpected token").At("main.zr", 3, 5).WithSnippet("let x = ;")
	out := d.Render()
	if !strings.Contains(out, "main.zr:3:5") {
		t.Errorf("expected file:line:column, got %q", out)
	}
	if !strings.Contains(out, "let x = ;") {
		t.Errorf("expected the source snippet, got %q", out)
	}
}

func TestRenderIncludesSuggestion(t *testing.T) {
	d := New(KindImport, "sqrt requires import std::math").WithSuggestion("add 'import std::math;'")
	out := d.Render()
	if !strings.Contains(out, "suggestion: add 'import std::math;'") {
		t.Errorf("expected the suggestion line, got %q", out)
	}
}

func TestDiagnosticImplementsError(t *testing.T) {
	var err error = New(KindRuntime, "division by zero")
	if err.Error() == "" {
		t.Fatal("expected a non-empty error string")
	}
}
