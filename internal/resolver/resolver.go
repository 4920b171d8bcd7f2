// Package resolver loads `import`-ed modules relative to a program's base
// directory, namespace-prefixes their declarations, and prepends them to
// the importing program's statement list so the rest of the pipeline sees
// one flat, fully-resolved statement slice.
//
// zr has no separate link step: a program is a single entry file plus
// the modules it imports directly (a module's own local imports are not
// followed), so resolution happens once, eagerly,
// right after the entry file is parsed — mirroring the teacher's
// run/repl commands, which also go straight from parse to the next phase
// with no intermediate module graph.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zephyrlang/zr/internal/ast"
	"github.com/zephyrlang/zr/internal/lexer"
	"github.com/zephyrlang/zr/internal/parser"
)

// Resolver loads and caches imported modules relative to baseDir.
type Resolver struct {
	baseDir string
	loaded  map[string][]ast.Stmt
}

// New creates a resolver that resolves `import a::b` against baseDir/a/b.zr.
func New(baseDir string) *Resolver {
	return &Resolver{
		baseDir: baseDir,
		loaded:  make(map[string][]ast.Stmt),
	}
}

// IsStdlibImport reports whether an import path's first segment is "std".
func IsStdlibImport(path []string) bool {
	return len(path) > 0 && path[0] == "std"
}

// resolvePath maps an import path to the .zr file it names, e.g.
// ["src", "ball"] -> "<baseDir>/src/ball.zr".
func (r *Resolver) resolvePath(path []string) string {
	parts := append([]string{r.baseDir}, path...)
	joined := filepath.Join(parts...)
	return joined + ".zr"
}

// loadModule parses the file backing a non-stdlib import path, caching by
// the "::"-joined module key so a module imported from multiple places is
// only read and parsed once.
func (r *Resolver) loadModule(path []string) ([]ast.Stmt, error) {
	key := moduleKey(path)
	if cached, ok := r.loaded[key]; ok {
		return cached, nil
	}

	file := r.resolvePath(path)
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("module not found: '%s' (looking for %s)", key, file)
	}

	toks, err := lexer.New(file, string(data)).Scan()
	if err != nil {
		return nil, fmt.Errorf("could not lex module '%s': %w", key, err)
	}
	stmts, errs := parser.New(file, toks).Parse()
	if len(errs) > 0 {
		return nil, fmt.Errorf("could not parse module '%s': %w", key, errs[0])
	}

	r.loaded[key] = stmts
	return stmts, nil
}

// Resolve walks program's top-level imports, loads and namespace-prefixes
// each imported module's declarations, and prepends them to program so
// they're defined before the code that uses them. Stdlib imports are left
// in place for the semantic analyser and VM to handle directly.
func (r *Resolver) Resolve(program []ast.Stmt) ([]ast.Stmt, error) {
	var prelude []ast.Stmt

	for _, stmt := range program {
		imp, ok := stmt.(*ast.Import)
		if !ok || imp.IsStdlib {
			continue
		}

		moduleName := ""
		if len(imp.Path) > 0 {
			moduleName = imp.Path[len(imp.Path)-1]
		}
		if moduleName == "main" {
			return nil, fmt.Errorf("cannot import 'main' - it is the entry point and cannot be imported")
		}

		moduleStmts, err := r.loadModule(imp.Path)
		if err != nil {
			return nil, err
		}

		for _, ms := range moduleStmts {
			if modImp, ok := ms.(*ast.Import); ok {
				// Re-export only stdlib imports: the analyzer needs to see
				// them. A module's own local imports are dropped here and
				// are not resolved; loadModule only parses the module.
				if modImp.IsStdlib {
					prelude = append(prelude, modImp)
				}
				continue
			}
			prelude = append(prelude, namespacePrefixed(moduleName, ms))
		}
	}

	return append(prelude, program...), nil
}

func moduleKey(path []string) string {
	key := ""
	for i, seg := range path {
		if i > 0 {
			key += "::"
		}
		key += seg
	}
	return key
}

// namespacePrefixed renames a function/struct/enum declaration to
// "<module>::<name>" so sibling modules importing the same module don't
// collide, and so call sites written as `module::name(...)` resolve
// without a separate symbol-table indirection.
func namespacePrefixed(moduleName string, stmt ast.Stmt) ast.Stmt {
	switch s := stmt.(type) {
	case *ast.Function:
		s.Name = moduleName + "::" + s.Name
		return s
	case *ast.Struct:
		s.Name = moduleName + "::" + s.Name
		return s
	case *ast.Enum:
		s.Name = moduleName + "::" + s.Name
		return s
	default:
		return stmt
	}
}
