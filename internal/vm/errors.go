package vm

import "github.com/zephyrlang/zr/internal/diagnostics"

func vmError(format string, args ...any) error {
	return diagnostics.New(diagnostics.KindRuntime, format, args...)
}
