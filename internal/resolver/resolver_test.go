package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zephyrlang/zr/internal/ast"
	"github.com/zephyrlang/zr/internal/lexer"
	"github.com/zephyrlang/zr/internal/parser"
)

func parseString(t *testing.T, file, src string) []ast.Stmt {
	t.Helper()
	toks, err := lexer.New(file, src).Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, errs := parser.New(file, toks).Parse()
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return stmts
}

func TestResolveNamespacesImportedFunctions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ball.zr"), []byte(`
func spawn() -> i32 { 1 }
struct Ball { x: i32 }
`), 0o644); err != nil {
		t.Fatal(err)
	}

	entry := parseString(t, "main.zr", `import src::ball; let b = src::ball::spawn();`)
	// the entry file lives at dir/main.zr for path resolution purposes
	r := New(dir)
	// fix up the import path to point at "ball" directly under dir, matching
	// resolvePath's join of baseDir + path segments with a .zr suffix
	entry[0].(*ast.Import).Path = []string{"ball"}

	resolved, err := r.Resolve(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 4 {
		t.Fatalf("expected 2 prepended decls + 2 original stmts (the import and the let), got %d", len(resolved))
	}
	fn, ok := resolved[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected *ast.Function first, got %T", resolved[0])
	}
	if fn.Name != "ball::spawn" {
		t.Errorf("expected namespaced name 'ball::spawn', got %q", fn.Name)
	}
	st, ok := resolved[1].(*ast.Struct)
	if !ok {
		t.Fatalf("expected *ast.Struct second, got %T", resolved[1])
	}
	if st.Name != "ball::Ball" {
		t.Errorf("expected namespaced name 'ball::Ball', got %q", st.Name)
	}
}

func TestResolveRejectsImportingMain(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.zr"), []byte(`func entry() {}`), 0o644); err != nil {
		t.Fatal(err)
	}
	// the parser already rejects `import ...::main`, so the import is
	// parsed under another name and pointed at "main" afterwards.
	entry := parseString(t, "other.zr", `import src::entry;`)
	entry[0].(*ast.Import).Path = []string{"main"}

	r := New(dir)
	if _, err := r.Resolve(entry); err == nil {
		t.Fatal("expected an error importing 'main'")
	}
}

func TestResolvePassesThroughStdlibImports(t *testing.T) {
	entry := parseString(t, "main.zr", `import std::math::{sqrt};`)
	r := New(t.TempDir())
	resolved, err := r.Resolve(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected the stdlib import left untouched, got %d stmts", len(resolved))
	}
	imp, ok := resolved[0].(*ast.Import)
	if !ok || !imp.IsStdlib {
		t.Fatalf("expected an unchanged stdlib *ast.Import, got %+v", resolved[0])
	}
}

func TestModuleIsLoadedOnce(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "util.zr"), []byte(`func helper() {}`), 0o644); err != nil {
		t.Fatal(err)
	}
	r := New(dir)
	first, err := r.loadModule([]string{"util"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.loadModule([]string{"util"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected a single cached function decl, got %d/%d", len(first), len(second))
	}
}
