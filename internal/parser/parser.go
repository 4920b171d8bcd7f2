// Package parser turns a token stream into the ast package's node tree.
//
// The parser is recursive descent with precedence climbing for
// expressions, in the same shape as the teacher's parser: a position
// cursor over a flat token slice, `peek`/`previous`/`advance`/`isMatch`/
// `consume` primitives, and one method per grammar rule. It is extended
// well past the teacher's four statement forms to cover the full
// grammar: functions, structs, enums, impls, traits, match, closures,
// references, ranges, casts, for-loops, and the block/expression-form
// and struct-literal/block ambiguities described below.
package parser

import (
	"strconv"
	"strings"

	"github.com/zephyrlang/zr/internal/ast"
	"github.com/zephyrlang/zr/internal/lexer"
	"github.com/zephyrlang/zr/internal/token"
)

// Parser holds the token stream and the cursor's current position.
// Its position is always one unit ahead of the token last consumed.
// A bare `Name { ... }` is ambiguous with a block following an if/while
// condition or match scrutinee. The parser resolves it the same way
// throughout: Name is a struct literal only when it starts with an
// uppercase letter (see isUpper and identifierOrPath), so a condition
// must be parenthesised if it happens to be a capitalised variable
// immediately followed by a brace-opened body.
type Parser struct {
	tokens   []token.Token
	position int
	file     string
}

// New builds a Parser over tokens produced for the named source file.
func New(file string, tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, file: file}
}

// Parse parses the entire token stream into top-level statements,
// collecting as many errors as possible rather than stopping at the
// first one.
func (p *Parser) Parse() ([]ast.Stmt, []error) {
	var statements []ast.Stmt
	var errs []error

	for !p.isFinished() {
		stmt, err := p.declaration()
		if err != nil {
			errs = append(errs, err)
			p.synchronize()
			continue
		}
		statements = append(statements, stmt)
	}
	return statements, errs
}

// synchronize discards tokens until a likely statement boundary, so a
// single malformed statement doesn't cascade into spurious errors.
func (p *Parser) synchronize() {
	for !p.isFinished() {
		if p.previous().Kind == token.SEMI || p.previous().Kind == token.RBRACE {
			return
		}
		switch p.peek().Kind {
		case token.LET, token.CONST, token.FUNC, token.STRUCT, token.ENUM,
			token.IMPL, token.TRAIT, token.IMPORT, token.IF, token.WHILE,
			token.FOR, token.RETURN:
			return
		}
		p.advance()
	}
}

// --- token cursor primitives, mirroring the teacher's parser exactly ---

func (p *Parser) peek() token.Token { return p.tokens[p.position] }

func (p *Parser) previous() token.Token { return p.tokens[p.position-1] }

func (p *Parser) advance() token.Token {
	if !p.isFinished() {
		p.position++
	}
	return p.previous()
}

func (p *Parser) isFinished() bool { return p.peek().Kind == token.EOF }

func (p *Parser) check(k token.Kind) bool {
	if p.isFinished() {
		return k == token.EOF
	}
	return p.peek().Kind == k
}

func (p *Parser) isMatch(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(k token.Kind, format string, args ...any) (token.Token, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	cur := p.peek()
	return token.Token{}, p.errorAt(cur, format, args...)
}

func (p *Parser) errorAt(tok token.Token, format string, args ...any) error {
	return newSyntaxError(tok.Span.Line, tok.Span.Column, format, args...)
}

func spanBetween(start, end token.Token) ast.Span {
	return ast.Span{ByteStart: start.Span.ByteStart, ByteEnd: end.Span.ByteEnd, Line: start.Span.Line, Column: start.Span.Column}
}

func (p *Parser) spanFrom(start token.Token) ast.Span {
	return spanBetween(start, p.previous())
}

// --- declarations ---

func (p *Parser) declaration() (ast.Stmt, error) {
	switch {
	case p.check(token.IMPORT):
		return p.importDecl()
	case p.check(token.STRUCT):
		return p.structDecl()
	case p.check(token.ENUM):
		return p.enumDecl()
	case p.check(token.IMPL):
		return p.implDecl()
	case p.check(token.TRAIT):
		return p.traitDecl()
	case p.check(token.FUNC):
		return p.functionDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) importDecl() (ast.Stmt, error) {
	start := p.advance() // `import`
	isStdlib := false
	var path []string
	var items []string

	first, err := p.consume(token.IDENT, "expected a module name after 'import'")
	if err != nil {
		return nil, err
	}
	if first.Lexeme == "std" {
		isStdlib = true
	}
	path = append(path, first.Lexeme)

	for p.isMatch(token.COLONCOLON) {
		if p.isMatch(token.LBRACE) {
			for {
				name, err := p.consume(token.IDENT, "expected an imported item name")
				if err != nil {
					return nil, err
				}
				items = append(items, name.Lexeme)
				if !p.isMatch(token.COMMA) {
					break
				}
			}
			if _, err := p.consume(token.RBRACE, "expected '}' to close import list"); err != nil {
				return nil, err
			}
			break
		}
		seg, err := p.consume(token.IDENT, "expected a path segment after '::'")
		if err != nil {
			return nil, err
		}
		path = append(path, seg.Lexeme)
	}

	if len(path) > 0 && path[len(path)-1] == "main" {
		return nil, p.errorAt(start, "cannot import 'main'")
	}

	if _, err := p.consume(token.SEMI, "expected ';' after import"); err != nil {
		return nil, err
	}
	return &ast.Import{Path: path, Items: items, IsStdlib: isStdlib, Span: p.spanFrom(start)}, nil
}

func (p *Parser) structDecl() (ast.Stmt, error) {
	start := p.advance() // `struct`
	name, err := p.consume(token.IDENT, "expected a struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' after struct name"); err != nil {
		return nil, err
	}
	var fields []ast.FieldDecl
	for !p.check(token.RBRACE) && !p.isFinished() {
		fname, err := p.consume(token.IDENT, "expected a field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.COLON, "expected ':' after field name"); err != nil {
			return nil, err
		}
		ftype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.FieldDecl{Name: fname.Lexeme, Type: ftype})
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close struct"); err != nil {
		return nil, err
	}
	return &ast.Struct{Name: name.Lexeme, Fields: fields, Span: p.spanFrom(start)}, nil
}

func (p *Parser) enumDecl() (ast.Stmt, error) {
	start := p.advance() // `enum`
	name, err := p.consume(token.IDENT, "expected an enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' after enum name"); err != nil {
		return nil, err
	}
	var variants []ast.EnumVariantDecl
	for !p.check(token.RBRACE) && !p.isFinished() {
		vname, err := p.consume(token.IDENT, "expected a variant name")
		if err != nil {
			return nil, err
		}
		v := ast.EnumVariantDecl{Name: vname.Lexeme}
		if p.isMatch(token.LPAREN) {
			dt, err := p.parseType()
			if err != nil {
				return nil, err
			}
			v.HasData = true
			v.DataType = dt
			if _, err := p.consume(token.RPAREN, "expected ')' after variant payload type"); err != nil {
				return nil, err
			}
		}
		variants = append(variants, v)
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close enum"); err != nil {
		return nil, err
	}
	return &ast.Enum{Name: name.Lexeme, Variants: variants, Span: p.spanFrom(start)}, nil
}

func (p *Parser) implDecl() (ast.Stmt, error) {
	start := p.advance() // `impl`
	firstName, err := p.consume(token.IDENT, "expected a type or trait name after 'impl'")
	if err != nil {
		return nil, err
	}
	impl := &ast.Impl{TargetType: firstName.Lexeme}
	if p.isMatch(token.FOR) {
		impl.TraitName = firstName.Lexeme
		targetTok, err := p.consume(token.IDENT, "expected a type name after 'for'")
		if err != nil {
			return nil, err
		}
		impl.TargetType = targetTok.Lexeme
	}
	if _, err := p.consume(token.LBRACE, "expected '{' to open impl body"); err != nil {
		return nil, err
	}
	for !p.check(token.RBRACE) && !p.isFinished() {
		stmt, err := p.functionDecl()
		if err != nil {
			return nil, err
		}
		fn, ok := stmt.(*ast.Function)
		if !ok {
			return nil, p.errorAt(p.peek(), "only methods are allowed inside an impl block")
		}
		impl.Methods = append(impl.Methods, fn)
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close impl"); err != nil {
		return nil, err
	}
	impl.Span = p.spanFrom(start)
	return impl, nil
}

func (p *Parser) traitDecl() (ast.Stmt, error) {
	start := p.advance() // `trait`
	name, err := p.consume(token.IDENT, "expected a trait name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' to open trait body"); err != nil {
		return nil, err
	}
	trait := &ast.Trait{Name: name.Lexeme}
	for !p.check(token.RBRACE) && !p.isFinished() {
		fn, err := p.functionSignatureOrDecl()
		if err != nil {
			return nil, err
		}
		trait.Methods = append(trait.Methods, fn)
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close trait"); err != nil {
		return nil, err
	}
	trait.Span = p.spanFrom(start)
	return trait, nil
}

// functionSignatureOrDecl parses `func name(...) -> T;` (trait method
// declaration, no body) or a full function with a body (default impl).
func (p *Parser) functionSignatureOrDecl() (*ast.Function, error) {
	stmt, err := p.functionDecl()
	if err != nil {
		return nil, err
	}
	return stmt.(*ast.Function), nil
}

func (p *Parser) functionDecl() (ast.Stmt, error) {
	start, err := p.consume(token.FUNC, "expected 'func'")
	if err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENT, "expected a function name")
	if err != nil {
		return nil, err
	}
	fn := &ast.Function{Name: name.Lexeme}

	if p.isMatch(token.LT) {
		for {
			lt, err := p.consume(token.LIFETIME, "expected a lifetime parameter")
			if err != nil {
				return nil, err
			}
			fn.Lifetimes = append(fn.Lifetimes, lt.Lexeme)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
		if _, err := p.consume(token.GT, "expected '>' to close lifetime parameter list"); err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.LPAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}
	for !p.check(token.RPAREN) && !p.isFinished() {
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, param)
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after parameter list"); err != nil {
		return nil, err
	}

	fn.ReturnType = ast.VoidType{}
	if p.isMatch(token.ARROW) {
		rt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.ReturnType = rt
	}

	if p.isMatch(token.SEMI) {
		// bodiless trait-method signature
		fn.Span = p.spanFrom(start)
		return fn, nil
	}

	if _, err := p.consume(token.LBRACE, "expected '{' to open function body"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	fn.Span = p.spanFrom(start)
	return fn, nil
}

func (p *Parser) parseParam() (ast.Param, error) {
	if p.check(token.AMP) {
		save := p.position
		p.advance()
		mut := p.isMatch(token.MUT)
		if p.check(token.SELF) {
			p.advance()
			return ast.Param{Name: "self", IsSelf: true, SelfRef: true, SelfMut: mut}, nil
		}
		p.position = save
	}
	if p.check(token.SELF) {
		p.advance()
		return ast.Param{Name: "self", IsSelf: true}, nil
	}

	mutable := p.isMatch(token.MUT)
	name, err := p.consume(token.IDENT, "expected a parameter name")
	if err != nil {
		return ast.Param{}, err
	}
	if _, err := p.consume(token.COLON, "expected ':' after parameter name"); err != nil {
		return ast.Param{}, err
	}
	ptype, err := p.parseType()
	if err != nil {
		return ast.Param{}, err
	}
	return ast.Param{Name: name.Lexeme, Type: ptype, Mutable: mutable}, nil
}

// --- types ---

func (p *Parser) parseType() (ast.Type, error) {
	if p.isMatch(token.AMP) {
		lifetime := ""
		if p.check(token.LIFETIME) {
			lifetime = p.advance().Lexeme
		}
		mut := p.isMatch(token.MUT)
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return ast.ReferenceType{Lifetime: lifetime, Mutable: mut, Inner: inner}, nil
	}
	if p.check(token.LIFETIME) {
		lt := p.advance().Lexeme
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return ast.LifetimeAnnotated{Lifetime: lt, Inner: inner}, nil
	}
	if p.isMatch(token.SELF_TYPE) {
		return ast.SelfType{}, nil
	}

	name, err := p.consume(token.IDENT, "expected a type")
	if err != nil {
		return nil, err
	}

	switch name.Lexeme {
	case "i8":
		return ast.IntType{Width: 8, Signed: true}, nil
	case "i32":
		return ast.IntType{Width: 32, Signed: true}, nil
	case "i64":
		return ast.IntType{Width: 64, Signed: true}, nil
	case "u8":
		return ast.IntType{Width: 8, Signed: false}, nil
	case "u32":
		return ast.IntType{Width: 32, Signed: false}, nil
	case "u64":
		return ast.IntType{Width: 64, Signed: false}, nil
	case "f32":
		return ast.FloatType{Width: 32}, nil
	case "f64":
		return ast.FloatType{Width: 64}, nil
	case "bool":
		return ast.BoolType{}, nil
	case "char":
		return ast.CharType{}, nil
	case "string":
		return ast.StringType{}, nil
	case "void":
		return ast.VoidType{}, nil
	case "Vec":
		if _, err := p.consume(token.LT, "expected '<' after 'Vec'"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.GT, "expected '>' to close 'Vec<...>'"); err != nil {
			return nil, err
		}
		return ast.VecType{Elem: elem}, nil
	case "Array":
		if _, err := p.consume(token.LT, "expected '<' after 'Array'"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.SEMI, "expected ';' between element type and size"); err != nil {
			return nil, err
		}
		sizeTok, err := p.consume(token.INT, "expected an array size")
		if err != nil {
			return nil, err
		}
		size, _ := strconv.Atoi(sizeTok.Lexeme)
		if _, err := p.consume(token.GT, "expected '>' to close 'Array<...>'"); err != nil {
			return nil, err
		}
		return ast.ArrayType{Elem: elem, Size: size}, nil
	default:
		return ast.NamedType{Name: name.Lexeme}, nil
	}
}

// --- statements ---

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.check(token.LET) || p.check(token.CONST):
		return p.letDecl()
	case p.check(token.RETURN):
		return p.returnStmt()
	case p.check(token.IF):
		ifStmt, err := p.ifStmt()
		if err != nil {
			return nil, err
		}
		return ifStmt, nil
	case p.check(token.WHILE):
		return p.whileStmt()
	case p.check(token.FOR):
		return p.forStmt()
	case p.check(token.BREAK):
		tok := p.advance()
		if _, err := p.consume(token.SEMI, "expected ';' after 'break'"); err != nil {
			return nil, err
		}
		return &ast.Break{Span: p.spanFrom(tok)}, nil
	case p.check(token.CONTINUE):
		tok := p.advance()
		if _, err := p.consume(token.SEMI, "expected ';' after 'continue'"); err != nil {
			return nil, err
		}
		return &ast.Continue{Span: p.spanFrom(tok)}, nil
	case p.check(token.LBRACE):
		start := p.advance()
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		block.Span = p.spanFrom(start)
		return block, nil
	default:
		start := p.peek()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.SEMI, "expected ';' after expression"); err != nil {
			return nil, err
		}
		return &ast.ExpressionStmt{Expression: expr, Span: p.spanFrom(start)}, nil
	}
}

func (p *Parser) letDecl() (ast.Stmt, error) {
	start := p.advance() // `let` or `const`
	mutable := p.isMatch(token.MUT)
	name, err := p.consume(token.IDENT, "expected a variable name")
	if err != nil {
		return nil, err
	}
	var annotation ast.Type = ast.InferredType{}
	if p.isMatch(token.COLON) {
		annotation, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	var init ast.Expr
	if p.isMatch(token.ASSIGN) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMI, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return &ast.Let{Name: name.Lexeme, Mutable: mutable, Annotation: annotation, Initializer: init, Span: p.spanFrom(start)}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	start := p.advance()
	var value ast.Expr
	if !p.check(token.SEMI) {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMI, "expected ';' after return value"); err != nil {
		return nil, err
	}
	return &ast.Return{Value: value, Span: p.spanFrom(start)}, nil
}

// ifStmt parses a full if/else-if/else chain as a statement. Callers in
// expression position wrap the result in an ast.IfExpr (see ifStmtToExpr).
func (p *Parser) ifStmt() (*ast.If, error) {
	start := p.advance() // `if`
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' after if condition"); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elseStmt ast.Stmt
	if p.isMatch(token.ELSE) {
		if p.check(token.IF) {
			elseStmt, err = p.ifStmt()
			if err != nil {
				return nil, err
			}
		} else {
			if _, err := p.consume(token.LBRACE, "expected '{' after 'else'"); err != nil {
				return nil, err
			}
			elseStmt, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return &ast.If{Condition: cond, Then: thenBlock, Else: elseStmt, Span: p.spanFrom(start)}, nil
}

func ifStmtToExpr(s *ast.If) *ast.IfExpr {
	return &ast.IfExpr{Condition: s.Condition, Then: s.Then.(*ast.Block), Else: s.Else, Span: s.Span}
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	start := p.advance() // `while`
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' after while condition"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Condition: cond, Body: body, Span: p.spanFrom(start)}, nil
}

func (p *Parser) forStmt() (ast.Stmt, error) {
	start := p.advance() // `for`
	varName, err := p.consume(token.IDENT, "expected a loop variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.IN, "expected 'in' after loop variable"); err != nil {
		return nil, err
	}
	// for-loops spell their own range with the bare `start..end` bounds,
	// so the start bound is parsed below rangeExpr to avoid it greedily
	// consuming the `..` itself.
	rangeStart, err := p.or()
	if err != nil {
		return nil, err
	}
	var rangeEnd ast.Expr
	inclusive := false
	if p.isMatch(token.DOTDOT) || p.isMatch(token.DOTDOTEQ) {
		inclusive = p.previous().Kind == token.DOTDOTEQ
		rangeEnd, err = p.or()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.LBRACE, "expected '{' after for-loop range"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Var: varName.Lexeme, Start: rangeStart, End: rangeEnd, Inclusive: inclusive, Body: body, Span: p.spanFrom(start)}, nil
}

// parseBlock parses statements up to (and consuming) the closing '}'.
// The opening '{' must already have been consumed by the caller.
//
// A leading keyword dispatches to a statement production directly. An
// `if` in tail position (immediately followed by '}', with no trailing
// ';') is promoted to the block's trailing expression instead of being
// appended as a statement (spec §4.2); a nested `{ ... }` block is always
// appended as a statement, even in tail position. Anything else
// is parsed as an expression: a following ';' makes it a statement, a
// following '}' makes it the block's value, anything else is an error.
func (p *Parser) parseBlock() (*ast.Block, error) {
	block := &ast.Block{}
blockLoop:
	for !p.check(token.RBRACE) && !p.isFinished() {
		switch {
		case p.check(token.LET), p.check(token.CONST), p.check(token.RETURN),
			p.check(token.WHILE), p.check(token.FOR), p.check(token.BREAK),
			p.check(token.CONTINUE), p.check(token.FUNC), p.check(token.STRUCT),
			p.check(token.ENUM), p.check(token.IMPL), p.check(token.TRAIT),
			p.check(token.IMPORT):
			stmt, err := p.declaration()
			if err != nil {
				return nil, err
			}
			block.Statements = append(block.Statements, stmt)

		case p.check(token.IF):
			ifStmt, err := p.ifStmt()
			if err != nil {
				return nil, err
			}
			if p.check(token.RBRACE) {
				block.Trailing = ifStmtToExpr(ifStmt)
				break blockLoop
			}
			block.Statements = append(block.Statements, ifStmt)

		case p.check(token.LBRACE):
			start := p.advance()
			nested, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			nested.Span = p.spanFrom(start)
			block.Statements = append(block.Statements, nested)

		default:
			start := p.peek()
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			if p.isMatch(token.SEMI) {
				block.Statements = append(block.Statements, &ast.ExpressionStmt{Expression: expr, Span: p.spanFrom(start)})
				continue
			}
			if p.check(token.RBRACE) {
				block.Trailing = expr
				break blockLoop
			}
			return nil, p.errorAt(p.peek(), "expected ';' or '}' after expression")
		}
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close block"); err != nil {
		return nil, err
	}
	return block, nil
}

// --- expressions ---

func (p *Parser) expression() (ast.Expr, error) { return p.assignment() }

var compoundOps = map[token.Kind]token.Kind{
	token.PLUSEQ:  token.PLUS,
	token.MINUSEQ: token.MINUS,
	token.STAREQ:  token.STAR,
	token.SLASHEQ: token.SLASH,
}

func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.rangeExpr()
	if err != nil {
		return nil, err
	}

	if p.isMatch(token.ASSIGN) {
		eq := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		if !isAssignTarget(expr) {
			return nil, p.errorAt(eq, "invalid assignment target")
		}
		return &ast.Assign{Target: expr, Value: value, Span: spanBetween(tokenOf(expr, eq), eq)}, nil
	}

	for op, base := range compoundOps {
		if p.check(op) {
			opTok := p.advance()
			value, err := p.assignment()
			if err != nil {
				return nil, err
			}
			if !isAssignTarget(expr) {
				return nil, p.errorAt(opTok, "invalid assignment target")
			}
			desugared := token.Make(base, base.String(), opTok.Span)
			rhs := &ast.Binary{Left: expr, Operator: desugared, Right: value, Span: spanBetween(opTok, opTok)}
			return &ast.Assign{Target: expr, Value: rhs, Span: spanBetween(opTok, opTok)}, nil
		}
	}

	return expr, nil
}

func isAssignTarget(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.FieldAccess, *ast.Index, *ast.Dereference:
		return true
	}
	return false
}

// tokenOf fabricates a start-of-span token from an expression's span;
// used only to build the enclosing Assign span without re-walking tokens.
func tokenOf(e ast.Expr, fallback token.Token) token.Token {
	sp := e.SpanOf()
	return token.Token{Span: token.Span{ByteStart: sp.ByteStart, Line: sp.Line, Column: sp.Column}, Lexeme: fallback.Lexeme}
}

func (p *Parser) rangeExpr() (ast.Expr, error) {
	start := p.peek()
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.check(token.DOTDOT) || p.check(token.DOTDOTEQ) {
		inclusive := p.peek().Kind == token.DOTDOTEQ
		p.advance()
		var end ast.Expr
		if !p.check(token.SEMI) && !p.check(token.RBRACE) && !p.check(token.RPAREN) && !p.check(token.RBRACKET) && !p.check(token.LBRACE) {
			end, err = p.or()
			if err != nil {
				return nil, err
			}
		}
		return &ast.Range{Start: expr, End: end, Inclusive: inclusive, Span: p.spanFrom(start)}, nil
	}
	return expr, nil
}

func (p *Parser) or() (ast.Expr, error) {
	expr, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.check(token.PIPEPIPE) || p.check(token.OR) {
		op := p.advance()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right, Span: spanBetween(op, op)}
	}
	return expr, nil
}

func (p *Parser) and() (ast.Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.check(token.AMPAMP) || p.check(token.AND) {
		op := p.advance()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right, Span: spanBetween(op, op)}
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expr, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.check(token.EQ) || p.check(token.NEQ) {
		op := p.advance()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right, Span: spanBetween(op, op)}
	}
	return expr, nil
}

func (p *Parser) comparison() (ast.Expr, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.check(token.LT) || p.check(token.LTE) || p.check(token.GT) || p.check(token.GTE) {
		op := p.advance()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right, Span: spanBetween(op, op)}
	}
	return expr, nil
}

func (p *Parser) term() (ast.Expr, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right, Span: spanBetween(op, op)}
	}
	return expr, nil
}

func (p *Parser) factor() (ast.Expr, error) {
	expr, err := p.castExpr()
	if err != nil {
		return nil, err
	}
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.advance()
		right, err := p.castExpr()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right, Span: spanBetween(op, op)}
	}
	return expr, nil
}

func (p *Parser) castExpr() (ast.Expr, error) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isMatch(token.AS) {
		target, err := p.parseType()
		if err != nil {
			return nil, err
		}
		expr = &ast.Cast{Operand: expr, Target: target, Span: expr.SpanOf()}
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	switch {
	case p.check(token.BANG), p.check(token.MINUS):
		op := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: op, Operand: operand, Span: spanBetween(op, op)}, nil
	case p.check(token.STAR):
		op := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Dereference{Operand: operand, Span: spanBetween(op, op)}, nil
	case p.check(token.AMP):
		op := p.advance()
		mut := p.isMatch(token.MUT)
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Reference{Mutable: mut, Operand: operand, Span: spanBetween(op, op)}, nil
	default:
		return p.postfix()
	}
}

func (p *Parser) postfix() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isMatch(token.LPAREN):
			args, err := p.argumentList()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Callee: expr, Args: args, Span: expr.SpanOf()}
		case p.isMatch(token.DOT):
			name, err := p.consume(token.IDENT, "expected a field or method name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.FieldAccess{Object: expr, Field: name.Lexeme, Span: expr.SpanOf()}
		case p.isMatch(token.LBRACKET):
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACKET, "expected ']' after index"); err != nil {
				return nil, err
			}
			expr = &ast.Index{Object: expr, Idx: idx, Span: expr.SpanOf()}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) argumentList() ([]ast.Expr, error) {
	var args []ast.Expr
	for !p.check(token.RPAREN) && !p.isFinished() {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after argument list"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()
	switch {
	case p.isMatch(token.TRUE):
		return &ast.BoolLiteral{Value: true, Span: spanBetween(tok, tok)}, nil
	case p.isMatch(token.FALSE):
		return &ast.BoolLiteral{Value: false, Span: spanBetween(tok, tok)}, nil
	case p.isMatch(token.INT):
		v, _ := p.previous().Literal.(int64)
		return &ast.IntLiteral{Value: v, Width: 32, Span: spanBetween(tok, tok)}, nil
	case p.isMatch(token.FLOAT):
		v, _ := p.previous().Literal.(float64)
		return &ast.FloatLiteral{Value: v, Width: 32, Span: spanBetween(tok, tok)}, nil
	case p.isMatch(token.CHAR):
		v, _ := p.previous().Literal.(rune)
		return &ast.CharLiteral{Value: v, Span: spanBetween(tok, tok)}, nil
	case p.isMatch(token.STRING):
		v, _ := p.previous().Literal.(string)
		return &ast.StringLiteral{Value: v, Span: spanBetween(tok, tok)}, nil
	case p.isMatch(token.INTERP_STRING):
		return p.buildInterpString(p.previous())
	case p.isMatch(token.LIFETIME):
		return nil, p.errorAt(tok, "a lifetime cannot appear in expression position")
	case p.isMatch(token.IF):
		p.position--
		ifStmt, err := p.ifStmt()
		if err != nil {
			return nil, err
		}
		return ifStmtToExpr(ifStmt), nil
	case p.isMatch(token.MATCH):
		return p.matchExpr(tok)
	case p.isMatch(token.MOVE):
		return p.closureExpr(tok, true)
	case p.check(token.PIPE), p.check(token.PIPEPIPE):
		return p.closureExpr(tok, false)
	case p.isMatch(token.LPAREN):
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN, "expected ')' to close grouping"); err != nil {
			return nil, err
		}
		return &ast.Grouping{Inner: inner, Span: p.spanFrom(tok)}, nil
	case p.isMatch(token.LBRACKET):
		return p.listOrVecLiteral(tok, false)
	case p.isMatch(token.IDENT):
		return p.identifierOrPath(tok)
	case p.isMatch(token.SELF):
		return &ast.Identifier{Name: "self", Span: spanBetween(tok, tok)}, nil
	default:
		return nil, p.errorAt(tok, "unexpected token %s", tok.Kind)
	}
}

func (p *Parser) buildInterpString(tok token.Token) (ast.Expr, error) {
	segs := make([]ast.InterpStringSegment, 0, len(tok.Segments))
	for _, raw := range tok.Segments {
		if !raw.IsExpression {
			segs = append(segs, ast.InterpStringSegment{IsExpression: false, Text: raw.Content})
			continue
		}
		subTokens, err := lexer.New(p.file, raw.Content).Scan()
		if err != nil {
			return nil, err
		}
		sub := New(p.file, subTokens)
		expr, err := sub.expression()
		if err != nil {
			return nil, err
		}
		segs = append(segs, ast.InterpStringSegment{IsExpression: true, Expression: expr})
	}
	return &ast.InterpString{Segments: segs, Span: spanBetween(tok, tok)}, nil
}

func (p *Parser) listOrVecLiteral(start token.Token, _ bool) (ast.Expr, error) {
	var elems []ast.Expr
	for !p.check(token.RBRACKET) && !p.isFinished() {
		elem, err := p.expression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RBRACKET, "expected ']' to close list literal"); err != nil {
		return nil, err
	}
	return &ast.ListLiteral{Elements: elems, Span: p.spanFrom(start)}, nil
}

// identifierOrPath parses a bare identifier, a `Name { ... }` struct
// literal (when Name is capitalised), or a `::`-separated path. A
// two-segment path whose first segment is capitalised is an enum variant
// construction; any other path (e.g. a qualified module call) stays a
// single `::`-joined identifier for the compiler to resolve.
func (p *Parser) identifierOrPath(tok token.Token) (ast.Expr, error) {
	if p.check(token.COLONCOLON) {
		segments := []string{tok.Lexeme}
		for p.isMatch(token.COLONCOLON) {
			seg, err := p.consume(token.IDENT, "expected a path segment after '::'")
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg.Lexeme)
		}
		if len(segments) == 2 && isUpper(segments[0]) {
			variant := &ast.EnumVariant{EnumName: segments[0], Variant: segments[1], Span: p.spanFrom(tok)}
			if p.isMatch(token.LPAREN) {
				args, err := p.argumentList()
				if err != nil {
					return nil, err
				}
				if len(args) == 1 {
					variant.Data = args[0]
				}
			}
			return variant, nil
		}
		return &ast.Identifier{Name: strings.Join(segments, "::"), Span: p.spanFrom(tok)}, nil
	}

	if isUpper(tok.Lexeme) && p.check(token.LBRACE) {
		return p.structInit(tok)
	}
	return &ast.Identifier{Name: tok.Lexeme, Span: spanBetween(tok, tok)}, nil
}

func isUpper(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) structInit(name token.Token) (ast.Expr, error) {
	p.advance() // `{`
	var fields []ast.ObjectField
	for !p.check(token.RBRACE) && !p.isFinished() {
		fname, err := p.consume(token.IDENT, "expected a field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.COLON, "expected ':' after field name"); err != nil {
			return nil, err
		}
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.ObjectField{Name: fname.Lexeme, Value: val})
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close struct literal"); err != nil {
		return nil, err
	}
	return &ast.StructInit{TypeName: name.Lexeme, Fields: fields, Span: p.spanFrom(name)}, nil
}

func (p *Parser) matchExpr(start token.Token) (ast.Expr, error) {
	scrutinee, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' after match scrutinee"); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for !p.check(token.RBRACE) && !p.isFinished() {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if p.isMatch(token.IF) {
			guard, err = p.expression()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.consume(token.FATARROW, "expected '=>' after match pattern"); err != nil {
			return nil, err
		}
		body, err := p.matchArmBody()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		p.isMatch(token.COMMA) // block-bodied arms may omit the trailing comma
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close match"); err != nil {
		return nil, err
	}
	return &ast.Match{Scrutinee: scrutinee, Arms: arms, Span: p.spanFrom(start)}, nil
}

// matchArmBody parses a match arm's body. A bare expression is used
// directly; a `{ ... }` block with statements is lowered to an
// immediately-invoked zero-argument closure so the arm's statements
// still run even though MatchArm.Body only holds a single Expr. A block
// with no statements is replaced by its trailing expression, and a
// block with no trailing expression gets `false` as its value.
func (p *Parser) matchArmBody() (ast.Expr, error) {
	if p.check(token.LBRACE) {
		start := p.advance()
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		block.Span = p.spanFrom(start)
		if block.Trailing == nil {
			block.Trailing = &ast.BoolLiteral{Value: false, Span: block.Span}
		}
		if len(block.Statements) == 0 {
			return block.Trailing, nil
		}
		closure := &ast.Closure{Body: &wrappedBlockExpr{block: block}, Span: block.Span}
		return &ast.Call{Callee: closure, Args: nil, Span: block.Span}, nil
	}
	return p.expression()
}

// wrappedBlockExpr adapts a Block (statements + trailing expr) into an
// Expr so it can serve as a closure body. It is produced only here, by
// matchArmBody lowering a block-bodied arm.
type wrappedBlockExpr struct {
	block *ast.Block
}

func (w *wrappedBlockExpr) Accept(v ast.ExprVisitor) (any, error) {
	return v.VisitBlockExpr(w.block)
}
func (w *wrappedBlockExpr) SpanOf() ast.Span { return w.block.Span }

func (p *Parser) parsePattern() (ast.Pattern, error) {
	tok := p.peek()
	switch {
	case p.isMatch(token.IDENT):
		if tok.Lexeme == "_" {
			return ast.WildcardPattern{Span: spanBetween(tok, tok)}, nil
		}
		if p.check(token.COLONCOLON) {
			p.advance()
			variant, err := p.consume(token.IDENT, "expected a variant name")
			if err != nil {
				return nil, err
			}
			vp := ast.VariantPattern{EnumName: tok.Lexeme, Variant: variant.Lexeme, Span: p.spanFrom(tok)}
			if p.isMatch(token.LPAREN) {
				inner, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				vp.Inner = inner
				if _, err := p.consume(token.RPAREN, "expected ')' after variant pattern payload"); err != nil {
					return nil, err
				}
			}
			return vp, nil
		}
		if isUpper(tok.Lexeme) && p.check(token.LBRACE) {
			p.advance()
			var fields []ast.FieldPattern
			for !p.check(token.RBRACE) && !p.isFinished() {
				fname, err := p.consume(token.IDENT, "expected a field name")
				if err != nil {
					return nil, err
				}
				fp := ast.FieldPattern{Name: fname.Lexeme, Sub: ast.IdentPattern{Name: fname.Lexeme, Span: spanBetween(fname, fname)}}
				if p.isMatch(token.COLON) {
					sub, err := p.parsePattern()
					if err != nil {
						return nil, err
					}
					fp.Sub = sub
				}
				fields = append(fields, fp)
				if !p.isMatch(token.COMMA) {
					break
				}
			}
			if _, err := p.consume(token.RBRACE, "expected '}' to close struct pattern"); err != nil {
				return nil, err
			}
			return ast.StructPattern{TypeName: tok.Lexeme, Fields: fields, Span: p.spanFrom(tok)}, nil
		}
		return ast.IdentPattern{Name: tok.Lexeme, Span: spanBetween(tok, tok)}, nil
	case p.isMatch(token.AMP):
		inner, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		return ast.RefPattern{Inner: inner, Span: p.spanFrom(tok)}, nil
	case p.isMatch(token.LPAREN):
		var elems []ast.Pattern
		for !p.check(token.RPAREN) && !p.isFinished() {
			sub, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			elems = append(elems, sub)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
		if _, err := p.consume(token.RPAREN, "expected ')' to close tuple pattern"); err != nil {
			return nil, err
		}
		return ast.TuplePattern{Elements: elems, Span: p.spanFrom(tok)}, nil
	case p.isMatch(token.INT), p.isMatch(token.FLOAT), p.isMatch(token.STRING), p.isMatch(token.CHAR), p.isMatch(token.TRUE), p.isMatch(token.FALSE):
		return ast.LiteralPattern{Value: literalPatternValue(p.previous()), Span: spanBetween(tok, tok)}, nil
	default:
		return nil, p.errorAt(tok, "expected a pattern")
	}
}

func literalPatternValue(tok token.Token) any {
	switch tok.Kind {
	case token.TRUE:
		return true
	case token.FALSE:
		return false
	default:
		return tok.Literal
	}
}

func (p *Parser) closureExpr(start token.Token, move bool) (ast.Expr, error) {
	var params []ast.ClosureParam
	if p.isMatch(token.PIPEPIPE) {
		// no parameters
	} else {
		if _, err := p.consume(token.PIPE, "expected '|' to open closure parameters"); err != nil {
			return nil, err
		}
		for !p.check(token.PIPE) && !p.isFinished() {
			name, err := p.consume(token.IDENT, "expected a closure parameter name")
			if err != nil {
				return nil, err
			}
			cp := ast.ClosureParam{Name: name.Lexeme, Type: ast.InferredType{}}
			if p.isMatch(token.COLON) {
				t, err := p.parseType()
				if err != nil {
					return nil, err
				}
				cp.Type = t
			}
			params = append(params, cp)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
		if _, err := p.consume(token.PIPE, "expected '|' to close closure parameters"); err != nil {
			return nil, err
		}
	}
	body, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ast.Closure{Move: move, Params: params, Body: body, Span: p.spanFrom(start)}, nil
}
