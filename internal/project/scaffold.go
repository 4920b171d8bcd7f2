package project

import (
	"os"
	"path/filepath"

	"github.com/zephyrlang/zr/internal/diagnostics"
)

// stubMain is the starter source `zr init` writes into a fresh
// project, mirroring the one-liner-program habit of the teacher's own
// example scripts.
const stubMain = "func main() {\n  println(\"hello from zr\");\n}\n"

// Scaffold creates dir (if needed), writes a starter main.zr, and
// writes a zephyr.toml naming name as the project and main.zr as its
// entry point (spec §6's `init [name]`). It refuses to overwrite an
// existing main.zr.
func Scaffold(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return diagnostics.New(diagnostics.KindInit, "failed to create %s: %v", dir, err)
	}

	mainPath := filepath.Join(dir, "main.zr")
	if _, err := os.Stat(mainPath); err == nil {
		return diagnostics.New(diagnostics.KindInit, "%s already exists", mainPath)
	}
	if err := os.WriteFile(mainPath, []byte(stubMain), 0o644); err != nil {
		return diagnostics.New(diagnostics.KindInit, "failed to write %s: %v", mainPath, err)
	}

	cfg := &Config{Project: ProjectSection{Name: name, Entry: "main.zr"}}
	return Write(dir, cfg)
}
