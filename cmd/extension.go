package cmd

import (
	"path/filepath"
	"strings"

	"github.com/zephyrlang/zr/internal/diagnostics"
)

// validExtensions are the source extensions spec §6 accepts, compared
// case-insensitively. Anything else is rejected with InvalidExtension
// before the file is even opened.
var validExtensions = map[string]bool{".zr": true, ".zy": true, ".za": true}

func checkExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !validExtensions[ext] {
		return diagnostics.New(diagnostics.KindInvalidExt,
			"%q has extension %q, expected one of .zr, .zy, .za", path, ext)
	}
	return nil
}
