package cmd

import (
	"testing"

	"github.com/zephyrlang/zr/internal/diagnostics"
)

func TestCheckExtensionAcceptsKnownExtensionsCaseInsensitively(t *testing.T) {
	for _, path := range []string{"main.zr", "main.ZR", "game.zy", "game.ZA"} {
		if err := checkExtension(path); err != nil {
			t.Errorf("checkExtension(%q) = %v, want nil", path, err)
		}
	}
}

func TestCheckExtensionRejectsUnknownExtension(t *testing.T) {
	err := checkExtension("main.txt")
	if err == nil {
		t.Fatal("expected an error for an unrecognised extension")
	}
	d, ok := err.(*diagnostics.Diagnostic)
	if !ok {
		t.Fatalf("expected a *diagnostics.Diagnostic, got %T", err)
	}
	if d.Kind != diagnostics.KindInvalidExt {
		t.Fatalf("Kind = %v, want %v", d.Kind, diagnostics.KindInvalidExt)
	}
}
