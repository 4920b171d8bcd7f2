package cmd

import (
	"path/filepath"

	"github.com/zephyrlang/zr/internal/ast"
	"github.com/zephyrlang/zr/internal/compiler"
	"github.com/zephyrlang/zr/internal/lexer"
	"github.com/zephyrlang/zr/internal/parser"
	"github.com/zephyrlang/zr/internal/resolver"
	"github.com/zephyrlang/zr/internal/sema"
	"github.com/zephyrlang/zr/internal/token"
)

// lexParse runs the first two pipeline phases shared by every
// subcommand (run/check/compile/repl all start here). Grounded on the
// teacher's cmd_run.go/cmd_emit_bytecode.go, which each inline this
// same lex-then-parse pair rather than share a helper — kept as one
// small helper here only because further stages (resolve, analyse,
// and for run/compile/repl also compile) follow it in its callers.
func lexParse(file, src string) ([]token.Token, []ast.Stmt, error) {
	lex := lexer.New(file, src)
	tokens, err := lex.Scan()
	if err != nil {
		return nil, nil, err
	}
	p := parser.New(file, tokens)
	stmts, errs := p.Parse()
	if len(errs) > 0 {
		return tokens, nil, errs[0]
	}
	return tokens, stmts, nil
}

// resolveAndAnalyze runs module resolution followed by semantic
// analysis, returning the fully resolved statement list and the
// analyzer (whose Functions/Structs/Enums/Cache the compiler needs).
func resolveAndAnalyze(file string, stmts []ast.Stmt) ([]ast.Stmt, *sema.Analyzer, error) {
	res := resolver.New(filepath.Dir(file))
	resolved, err := res.Resolve(stmts)
	if err != nil {
		return nil, nil, err
	}
	analyzer := sema.New()
	if err := analyzer.Analyze(resolved); err != nil {
		return nil, nil, err
	}
	return resolved, analyzer, nil
}

// compileProgram runs resolution, analysis, and bytecode emission in
// sequence, the shared tail of `run` and `compile`.
func compileProgram(file string, stmts []ast.Stmt) (*compiler.Bytecode, error) {
	resolved, analyzer, err := resolveAndAnalyze(file, stmts)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(resolved, analyzer)
}
