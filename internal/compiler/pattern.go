package compiler

import (
	"github.com/zephyrlang/zr/internal/ast"
	"github.com/zephyrlang/zr/internal/value"
)

// loader emits code that pushes the value currently under test onto
// the stack. VisitMatch starts every arm from the same "reload the
// scrutinee temp" loader; patternCheck/patternBind wrap it in further
// GetField/GetIndex steps as they descend into nested sub-patterns, so
// neither function ever needs a fixed stack slot for "the current
// value" at a given nesting depth.
type loader func(c *Compiler) error

// VisitMatch lowers a match expression per spec §4.9: the scrutinee is
// evaluated once into a temp binding, then each arm's pattern is
// structurally checked, its guard (if any) evaluated with the
// pattern's bindings already in scope, and on success its body
// compiled and control jumped past the remaining arms. A match with no
// arm left standing falls through to Void, since this value model has
// no dedicated Option/Result runtime kind to signal "no match" with.
func (c *Compiler) VisitMatch(ex *ast.Match) (any, error) {
	if err := c.compileExpr(ex.Scrutinee); err != nil {
		return nil, err
	}
	c.tempSeq++
	tmp := "__match_" + itoa(c.tempSeq)
	c.bc.emit(Instruction{Op: OpStoreVar, Name: tmp})
	load := func(c *Compiler) error {
		c.bc.emit(Instruction{Op: OpLoadVar, Name: tmp})
		return nil
	}

	enumHint := ""
	if t, ok := c.cache.Get(ex.Scrutinee); ok {
		if named, ok2 := t.(ast.NamedType); ok2 {
			enumHint = named.Name
		}
	}

	var armEndJumps []int
	nextArmPatch := -1
	for _, arm := range ex.Arms {
		if nextArmPatch >= 0 {
			c.patchJump(nextArmPatch, c.bc.len())
		}
		if err := c.patternCheck(arm.Pattern, load, enumHint); err != nil {
			return nil, err
		}
		failJump := c.emitPlaceholderJump(OpJumpIfFalse)

		if arm.Guard != nil {
			if err := c.patternBind(arm.Pattern, load); err != nil {
				return nil, err
			}
			if err := c.compileExpr(arm.Guard); err != nil {
				return nil, err
			}
			guardFail := c.emitPlaceholderJump(OpJumpIfFalse)
			if err := c.compileExpr(arm.Body); err != nil {
				return nil, err
			}
			armEndJumps = append(armEndJumps, c.emitPlaceholderJump(OpJump))
			c.patchJump(guardFail, c.bc.len())
		} else {
			if err := c.patternBind(arm.Pattern, load); err != nil {
				return nil, err
			}
			if err := c.compileExpr(arm.Body); err != nil {
				return nil, err
			}
			armEndJumps = append(armEndJumps, c.emitPlaceholderJump(OpJump))
		}
		nextArmPatch = failJump
	}
	if nextArmPatch >= 0 {
		c.patchJump(nextArmPatch, c.bc.len())
	}
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Void{}})
	end := c.bc.len()
	for _, j := range armEndJumps {
		c.patchJump(j, end)
	}
	return nil, nil
}

// patternCheck emits code leaving a single bool on the stack: whether
// the value load produces structurally matches p. Every composite case
// short-circuits through andAll so a failed structural check (wrong
// _type, wrong tuple arity) never lets a later GetField/GetIndex run
// against a value shaped for a different pattern.
func (c *Compiler) patternCheck(p ast.Pattern, load loader, enumHint string) error {
	switch pat := p.(type) {
	case ast.WildcardPattern:
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Bool{V: true}})
		return nil
	case ast.IdentPattern:
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Bool{V: true}})
		return nil
	case ast.RefPattern:
		return c.patternCheck(pat.Inner, load, enumHint)
	case ast.LiteralPattern:
		if err := load(c); err != nil {
			return err
		}
		c.emitLiteralConst(pat.Value)
		c.bc.emit(Instruction{Op: OpEq})
		return nil
	case ast.TuplePattern:
		checks := make([]func() error, len(pat.Elements))
		for i, el := range pat.Elements {
			i, el := i, el
			idxLoad := c.indexLoader(load, i)
			checks[i] = func() error { return c.patternCheck(el, idxLoad, enumHint) }
		}
		return c.andAll(checks)
	case ast.StructPattern:
		var checks []func() error
		if pat.TypeName != "" {
			checks = append(checks, func() error { return c.checkTag(load, pat.TypeName) })
		}
		for _, fp := range pat.Fields {
			fp := fp
			fieldLoad := c.fieldLoader(load, fp.Name)
			checks = append(checks, func() error { return c.patternCheck(fp.Sub, fieldLoad, enumHint) })
		}
		return c.andAll(checks)
	case ast.VariantPattern:
		name := pat.EnumName
		if name == "" {
			name = enumHint
		}
		tagCheck := func() error { return c.checkTag(load, name+"::"+pat.Variant) }
		if pat.Inner == nil {
			return c.andAll([]func() error{tagCheck})
		}
		dataLoad := c.fieldLoader(load, "_data")
		innerCheck := func() error { return c.patternCheck(pat.Inner, dataLoad, enumHint) }
		return c.andAll([]func() error{tagCheck, innerCheck})
	default:
		return compileError("unsupported pattern kind in match arm")
	}
}

// patternBind recursively defines every identifier a pattern
// introduces, mirroring sema's bindPattern (internal/sema/expressions.go)
// so the analyzer's scoping and the compiler's variable stores agree on
// exactly which names a pattern binds.
func (c *Compiler) patternBind(p ast.Pattern, load loader) error {
	switch pat := p.(type) {
	case ast.WildcardPattern, ast.LiteralPattern:
		return nil
	case ast.IdentPattern:
		if err := load(c); err != nil {
			return err
		}
		c.bc.emit(Instruction{Op: OpStoreVar, Name: pat.Name})
		return nil
	case ast.RefPattern:
		return c.patternBind(pat.Inner, load)
	case ast.TuplePattern:
		for i, el := range pat.Elements {
			if err := c.patternBind(el, c.indexLoader(load, i)); err != nil {
				return err
			}
		}
		return nil
	case ast.StructPattern:
		for _, fp := range pat.Fields {
			if err := c.patternBind(fp.Sub, c.fieldLoader(load, fp.Name)); err != nil {
				return err
			}
		}
		return nil
	case ast.VariantPattern:
		if pat.Inner == nil {
			return nil
		}
		return c.patternBind(pat.Inner, c.fieldLoader(load, "_data"))
	default:
		return nil
	}
}

func (c *Compiler) indexLoader(load loader, idx int) loader {
	return func(c *Compiler) error {
		if err := load(c); err != nil {
			return err
		}
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Int{Width: 32, Signed: true, V: int64(idx)}})
		c.bc.emit(Instruction{Op: OpGetIndex})
		return nil
	}
}

func (c *Compiler) fieldLoader(load loader, name string) loader {
	return func(c *Compiler) error {
		if err := load(c); err != nil {
			return err
		}
		c.bc.emit(Instruction{Op: OpGetField, Name: name})
		return nil
	}
}

func (c *Compiler) checkTag(load loader, tag string) error {
	if err := load(c); err != nil {
		return err
	}
	c.bc.emit(Instruction{Op: OpGetField, Name: "_type"})
	c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: tag}})
	c.bc.emit(Instruction{Op: OpEq})
	return nil
}

// andAll short-circuit-ANDs a sequence of check thunks into a single
// bool, the same Dup/JumpIfFalse technique VisitBinary's compileAnd
// uses for `&&`, generalized to N terms via right-recursion.
func (c *Compiler) andAll(checks []func() error) error {
	if len(checks) == 0 {
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Bool{V: true}})
		return nil
	}
	return c.andAllFrom(checks, 0)
}

func (c *Compiler) andAllFrom(checks []func() error, i int) error {
	if err := checks[i](); err != nil {
		return err
	}
	if i == len(checks)-1 {
		return nil
	}
	c.bc.emit(Instruction{Op: OpDup})
	falseJump := c.emitPlaceholderJump(OpJumpIfFalse)
	c.bc.emit(Instruction{Op: OpPop})
	if err := c.andAllFrom(checks, i+1); err != nil {
		return err
	}
	end := c.emitPlaceholderJump(OpJump)
	c.patchJump(falseJump, c.bc.len())
	c.patchJump(end, c.bc.len())
	return nil
}

func (c *Compiler) emitLiteralConst(v any) {
	switch val := v.(type) {
	case int64:
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Int{Width: 32, Signed: true, V: val}})
	case int:
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Int{Width: 32, Signed: true, V: int64(val)}})
	case float64:
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Float{Width: 32, V: val}})
	case bool:
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Bool{V: val}})
	case rune:
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Char{V: val}})
	case string:
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.StrConst{S: val}})
	default:
		c.bc.emit(Instruction{Op: OpLoadConst, Const: value.Void{}})
	}
}
