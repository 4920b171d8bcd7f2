package compiler

import "github.com/zephyrlang/zr/internal/ast"

// freshClosureName hands out the synthetic function-table name under
// which a closure literal's body is compiled, so the VM can Call it by
// name like any other function (spec §4.9's "closures lower to named
// functions plus an OpMakeClosure value" rule).
func (c *Compiler) freshClosureName() string {
	c.closureN++
	return "__closure_" + itoa(c.closureN)
}

// compileClosureBody is compileFunction's closure-flavored twin: a
// closure's body is a single Expr (an ordinary expression, or the
// parser's wrappedBlockExpr IIFE-block for a block-bodied match arm),
// not a Block of statements.
func (c *Compiler) compileClosureBody(name string, params []ast.ClosureParam, body ast.Expr) error {
	start := c.bc.len()
	c.bc.emit(Instruction{Op: OpEnterScope})
	for _, p := range params {
		c.bc.emit(Instruction{Op: OpStoreVar, Name: p.Name})
	}
	if err := c.compileExpr(body); err != nil {
		return err
	}
	c.bc.emit(Instruction{Op: OpReturn})
	end := c.bc.len()
	c.bc.Functions[name] = FuncRange{Start: start, End: end}
	return nil
}

// compileClosureLiteral emits a closure's body out-of-line (jumping
// over it from the point of definition) and returns the synthetic name
// it was registered under, shared by both call sites that lower a
// closure literal: an immediately-called one (VisitCall's *ast.Closure
// case) and one captured as a first-class value (VisitClosure).
func (c *Compiler) compileClosureLiteral(params []ast.ClosureParam, body ast.Expr) (string, error) {
	name := c.freshClosureName()
	jumpOver := c.emitPlaceholderJump(OpJump)
	if err := c.compileClosureBody(name, params, body); err != nil {
		return "", err
	}
	c.patchJump(jumpOver, c.bc.len())
	return name, nil
}
