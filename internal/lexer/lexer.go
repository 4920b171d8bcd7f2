// Package lexer turns source text into a token stream.
//
// The scanner is a single forward pass with one rune of lookahead (plus a
// second peek for two/three-character operators). It mirrors the shape of
// a classic hand-written recursive lexer: readChar/peek/peekAt/match,
// extended with string interpolation and lifetime-vs-char disambiguation.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zephyrlang/zr/internal/token"
)

func isLetter(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentPart(r rune) bool {
	return isLetter(r) || isDigit(r)
}

// Lexer scans a source file into tokens.
type Lexer struct {
	file       string
	src        []rune
	pos        int // index of currentChar
	readPos    int // index of the next unread char
	currentCh  rune
	line       int
	col        int
	lineStarts []int
}

// New creates a Lexer over src, attributing diagnostics to file.
func New(file, src string) *Lexer {
	l := &Lexer{
		file: file,
		src:  []rune(src),
		line: 1,
		col:  0,
	}
	l.readChar()
	return l
}

func (l *Lexer) isAtEnd() bool { return l.readPos > len(l.src) }

func (l *Lexer) readChar() {
	if l.readPos >= len(l.src) {
		l.currentCh = 0
	} else {
		l.currentCh = l.src[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

func (l *Lexer) peek() rune {
	if l.readPos >= len(l.src) {
		return 0
	}
	return l.src[l.readPos]
}

func (l *Lexer) peekAt(n int) rune {
	idx := l.readPos + n
	if idx >= len(l.src) || idx < 0 {
		return 0
	}
	return l.src[idx]
}

func (l *Lexer) match(expected rune) bool {
	if l.currentCh != expected {
		return false
	}
	l.readChar()
	return true
}

func (l *Lexer) newline() {
	l.line++
	l.col = 0
}

func (l *Lexer) span(start, startLine, startCol int) token.Span {
	return token.Span{ByteStart: start, ByteEnd: l.pos, Line: startLine, Column: startCol}
}

func (l *Lexer) errorf(line, col int, format string, args ...any) error {
	return Error{
		File:    l.file,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
		Snippet: l.snippetForLine(line),
	}
}

func (l *Lexer) snippetForLine(line int) string {
	cur := 1
	start := 0
	for i, r := range l.src {
		if r == '\n' {
			if cur == line {
				return string(l.src[start:i])
			}
			cur++
			start = i + 1
		}
	}
	if cur == line {
		return string(l.src[start:])
	}
	return ""
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.currentCh {
		case ' ', '\t', '\r':
			l.readChar()
		case '\n':
			l.newline()
			l.readChar()
		case '/':
			if l.peek() == '/' {
				for l.currentCh != '\n' && l.currentCh != 0 {
					l.readChar()
				}
				continue
			}
			if l.peek() == '*' {
				l.readChar()
				l.readChar()
				depth := 1
				for depth > 0 && l.currentCh != 0 {
					if l.currentCh == '/' && l.peek() == '*' {
						depth++
						l.readChar()
						l.readChar()
						continue
					}
					if l.currentCh == '*' && l.peek() == '/' {
						depth--
						l.readChar()
						l.readChar()
						continue
					}
					if l.currentCh == '\n' {
						l.newline()
					}
					l.readChar()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

// Scan tokenizes the entire input, stopping at the first error.
func (l *Lexer) Scan() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) next() (token.Token, error) {
	l.skipWhitespaceAndComments()

	startLine, startCol, start := l.line, l.col, l.pos

	if l.currentCh == 0 {
		return token.Make(token.EOF, "", l.span(start, startLine, startCol)), nil
	}

	ch := l.currentCh

	switch {
	case isLetter(ch):
		return l.readIdentifier(start, startLine, startCol), nil
	case isDigit(ch):
		return l.readNumber(start, startLine, startCol)
	}

	switch ch {
	case '"':
		return l.readString(start, startLine, startCol)
	case '\'':
		return l.readCharOrLifetime(start, startLine, startCol)
	case '(':
		l.readChar()
		return token.Make(token.LPAREN, "(", l.span(start, startLine, startCol)), nil
	case ')':
		l.readChar()
		return token.Make(token.RPAREN, ")", l.span(start, startLine, startCol)), nil
	case '{':
		l.readChar()
		return token.Make(token.LBRACE, "{", l.span(start, startLine, startCol)), nil
	case '}':
		l.readChar()
		return token.Make(token.RBRACE, "}", l.span(start, startLine, startCol)), nil
	case '[':
		l.readChar()
		return token.Make(token.LBRACKET, "[", l.span(start, startLine, startCol)), nil
	case ']':
		l.readChar()
		return token.Make(token.RBRACKET, "]", l.span(start, startLine, startCol)), nil
	case ',':
		l.readChar()
		return token.Make(token.COMMA, ",", l.span(start, startLine, startCol)), nil
	case ';':
		l.readChar()
		return token.Make(token.SEMI, ";", l.span(start, startLine, startCol)), nil
	case ':':
		l.readChar()
		if l.match(':') {
			return token.Make(token.COLONCOLON, "::", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.COLON, ":", l.span(start, startLine, startCol)), nil
	case '.':
		l.readChar()
		if l.match('.') {
			if l.match('=') {
				return token.Make(token.DOTDOTEQ, "..=", l.span(start, startLine, startCol)), nil
			}
			return token.Make(token.DOTDOT, "..", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.DOT, ".", l.span(start, startLine, startCol)), nil
	case '&':
		l.readChar()
		if l.match('&') {
			return token.Make(token.AMPAMP, "&&", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.AMP, "&", l.span(start, startLine, startCol)), nil
	case '|':
		l.readChar()
		if l.match('|') {
			return token.Make(token.PIPEPIPE, "||", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.PIPE, "|", l.span(start, startLine, startCol)), nil
	case '?':
		l.readChar()
		return token.Make(token.QUESTION, "?", l.span(start, startLine, startCol)), nil
	case '=':
		l.readChar()
		if l.match('=') {
			return token.Make(token.EQ, "==", l.span(start, startLine, startCol)), nil
		}
		if l.match('>') {
			return token.Make(token.FATARROW, "=>", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.ASSIGN, "=", l.span(start, startLine, startCol)), nil
	case '!':
		l.readChar()
		if l.match('=') {
			return token.Make(token.NEQ, "!=", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.BANG, "!", l.span(start, startLine, startCol)), nil
	case '<':
		l.readChar()
		if l.match('=') {
			return token.Make(token.LTE, "<=", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.LT, "<", l.span(start, startLine, startCol)), nil
	case '>':
		l.readChar()
		if l.match('=') {
			return token.Make(token.GTE, ">=", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.GT, ">", l.span(start, startLine, startCol)), nil
	case '+':
		l.readChar()
		if l.match('=') {
			return token.Make(token.PLUSEQ, "+=", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.PLUS, "+", l.span(start, startLine, startCol)), nil
	case '-':
		l.readChar()
		if l.match('=') {
			return token.Make(token.MINUSEQ, "-=", l.span(start, startLine, startCol)), nil
		}
		if l.match('>') {
			return token.Make(token.ARROW, "->", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.MINUS, "-", l.span(start, startLine, startCol)), nil
	case '*':
		l.readChar()
		if l.match('=') {
			return token.Make(token.STAREQ, "*=", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.STAR, "*", l.span(start, startLine, startCol)), nil
	case '/':
		l.readChar()
		if l.match('=') {
			return token.Make(token.SLASHEQ, "/=", l.span(start, startLine, startCol)), nil
		}
		return token.Make(token.SLASH, "/", l.span(start, startLine, startCol)), nil
	case '%':
		l.readChar()
		return token.Make(token.PERCENT, "%", l.span(start, startLine, startCol)), nil
	}

	illegal := string(ch)
	l.readChar()
	return token.Token{}, l.errorf(startLine, startCol, "unexpected character: %q", illegal)
}

func (l *Lexer) readIdentifier(start, startLine, startCol int) token.Token {
	for isIdentPart(l.currentCh) {
		l.readChar()
	}
	lexeme := string(l.src[start:l.pos])
	kind := token.IDENT
	if kw, ok := token.Keywords[lexeme]; ok {
		kind = kw
	}
	return token.Make(kind, lexeme, l.span(start, startLine, startCol))
}

func (l *Lexer) readNumber(start, startLine, startCol int) (token.Token, error) {
	isFloat := false
	for isDigit(l.currentCh) {
		l.readChar()
	}
	if l.currentCh == '.' && isDigit(l.peek()) {
		isFloat = true
		l.readChar()
		for isDigit(l.currentCh) {
			l.readChar()
		}
	} else if l.currentCh == '.' && !isIdentPart(l.peek()) && l.peek() != '.' {
		// trailing '.' with no following digit, e.g. "1." — malformed.
		l.readChar()
		lexeme := string(l.src[start:l.pos])
		return token.Token{}, l.errorf(startLine, startCol, "malformed number: %q", lexeme)
	}

	lexeme := string(l.src[start:l.pos])
	sp := l.span(start, startLine, startCol)
	if isFloat {
		v, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return token.Token{}, l.errorf(startLine, startCol, "malformed number: %q", lexeme)
		}
		return token.MakeLiteral(token.FLOAT, lexeme, v, sp), nil
	}
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return token.Token{}, l.errorf(startLine, startCol, "malformed number: %q", lexeme)
	}
	return token.MakeLiteral(token.INT, lexeme, v, sp), nil
}

// readCharOrLifetime disambiguates `'a` (lifetime) from `'a'` (char literal)
// per spec §4.1: scan one (possibly escaped) character; if a closing quote
// follows, it's a char literal, otherwise the first character must start an
// identifier and the rest is a lifetime name.
func (l *Lexer) readCharOrLifetime(start, startLine, startCol int) (token.Token, error) {
	l.readChar() // consume opening '

	if l.currentCh == 0 {
		return token.Token{}, l.errorf(startLine, startCol, "unterminated character literal")
	}

	first := l.currentCh
	var decoded rune
	escaped := false
	if first == '\\' {
		escaped = true
		l.readChar()
		var err error
		decoded, err = decodeEscape(l.currentCh)
		if err != nil {
			return token.Token{}, l.errorf(startLine, startCol, "%s", err.Error())
		}
		l.readChar()
	} else {
		decoded = first
		l.readChar()
	}

	if l.currentCh == '\'' {
		l.readChar()
		lexeme := string(l.src[start:l.pos])
		return token.MakeLiteral(token.CHAR, lexeme, decoded, l.span(start, startLine, startCol)), nil
	}

	if escaped || !isLetter(first) {
		return token.Token{}, l.errorf(startLine, startCol, "malformed character literal or lifetime")
	}

	// lifetime: first char already consumed above, continue scanning [A-Za-z0-9_]*
	for isIdentPart(l.currentCh) {
		l.readChar()
	}
	lexeme := string(l.src[start+1 : l.pos]) // drop the leading '
	return token.Make(token.LIFETIME, lexeme, l.span(start, startLine, startCol)), nil
}

func decodeEscape(r rune) (rune, error) {
	switch r {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '\\':
		return '\\', nil
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	case '0':
		return 0, nil
	case '$':
		return '$', nil
	default:
		return 0, fmt.Errorf("unknown escape sequence: \\%c", r)
	}
}

// readString scans a double-quoted string literal. If it contains `${ ... }`
// segments, the token is returned as INTERP_STRING with Segments populated;
// otherwise it is a plain STRING token.
func (l *Lexer) readString(start, startLine, startCol int) (token.Token, error) {
	l.readChar() // consume opening "

	var segments []token.StringSegment
	var text strings.Builder
	hasExpr := false

	flush := func() {
		if text.Len() > 0 || len(segments) == 0 {
			segments = append(segments, token.StringSegment{IsExpression: false, Content: text.String()})
			text.Reset()
		}
	}

	for {
		if l.currentCh == 0 {
			return token.Token{}, l.errorf(startLine, startCol, "unterminated string literal")
		}
		if l.currentCh == '"' {
			l.readChar()
			break
		}
		if l.currentCh == '\\' {
			l.readChar()
			decoded, err := decodeEscape(l.currentCh)
			if err != nil {
				return token.Token{}, l.errorf(l.line, l.col, "%s", err.Error())
			}
			text.WriteRune(decoded)
			l.readChar()
			continue
		}
		if l.currentCh == '$' && l.peek() == '{' {
			hasExpr = true
			if text.Len() > 0 {
				flush()
			}
			l.readChar() // $
			l.readChar() // {
			exprStart := l.pos
			depth := 1
			for depth > 0 {
				if l.currentCh == 0 {
					return token.Token{}, l.errorf(startLine, startCol, "unterminated interpolation expression")
				}
				if l.currentCh == '"' {
					// nested string literal: consume transparently so its
					// braces don't affect our depth count.
					if err := l.skipNestedString(); err != nil {
						return token.Token{}, err
					}
					continue
				}
				if l.currentCh == '{' {
					depth++
				} else if l.currentCh == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				if l.currentCh == '\n' {
					l.newline()
				}
				l.readChar()
			}
			exprText := string(l.src[exprStart:l.pos])
			segments = append(segments, token.StringSegment{IsExpression: true, Content: exprText})
			l.readChar() // consume closing }
			continue
		}
		if l.currentCh == '\n' {
			l.newline()
		}
		text.WriteRune(l.currentCh)
		l.readChar()
	}
	flush()

	lexeme := string(l.src[start:l.pos])
	sp := l.span(start, startLine, startCol)
	if !hasExpr {
		plain := segments[0].Content
		return token.MakeLiteral(token.STRING, lexeme, plain, sp), nil
	}
	tok := token.Make(token.INTERP_STRING, lexeme, sp)
	tok.Segments = segments
	return tok, nil
}

// skipNestedString advances past a string literal found inside an
// interpolation expression, honoring escapes, without emitting a token.
func (l *Lexer) skipNestedString() error {
	startLine, startCol := l.line, l.col
	l.readChar() // consume opening "
	for {
		if l.currentCh == 0 {
			return l.errorf(startLine, startCol, "unterminated string literal")
		}
		if l.currentCh == '"' {
			l.readChar()
			return nil
		}
		if l.currentCh == '\\' {
			l.readChar()
			l.readChar()
			continue
		}
		if l.currentCh == '\n' {
			l.newline()
		}
		l.readChar()
	}
}
