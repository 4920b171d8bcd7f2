package compiler

import "github.com/zephyrlang/zr/internal/diagnostics"

func compileError(format string, args ...any) error {
	return diagnostics.New(diagnostics.KindType, format, args...)
}
