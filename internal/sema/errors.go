package sema

import "github.com/zephyrlang/zr/internal/diagnostics"

func typeError(format string, args ...any) error {
	return diagnostics.New(diagnostics.KindType, format, args...)
}

func nameError(format string, args ...any) error {
	return diagnostics.New(diagnostics.KindName, format, args...)
}

func importError(format string, args ...any) error {
	return diagnostics.New(diagnostics.KindImport, format, args...)
}
