package sema

import "github.com/zephyrlang/zr/internal/ast"

// ExprTypeCache remembers the resolved type of every expression the
// body pass visits, keyed by node identity. The bytecode compiler
// consults it later to resolve method receivers to their nominal type
// for mangling (spec §2's one specified back-edge in the pipeline).
type ExprTypeCache struct {
	types map[ast.Expr]ast.Type
}

func NewExprTypeCache() *ExprTypeCache {
	return &ExprTypeCache{types: make(map[ast.Expr]ast.Type)}
}

func (c *ExprTypeCache) Set(e ast.Expr, t ast.Type) {
	c.types[e] = t
}

func (c *ExprTypeCache) Get(e ast.Expr) (ast.Type, bool) {
	t, ok := c.types[e]
	return t, ok
}
