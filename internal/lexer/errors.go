package lexer

import "fmt"

// Error is a lexical error with enough context to render the
// `error[SyntaxError]: ...` style diagnostic described in spec §7.
type Error struct {
	File    string
	Line    int
	Column  int
	Message string
	Snippet string
}

func (e Error) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s\n%s", e.File, e.Line, e.Column, e.Message, e.Snippet)
}
