// Package diagnostics renders the one shared error shape every phase of
// the pipeline reports through (spec §7): a kind, a message, an
// optional source location, and an optional suggestion. Where the
// teacher formats each phase's errors with its own Error() string
// (parser.SyntaxError, interpreter.RuntimeError, compiler.SemanticError),
// here the analyser, compiler, VM, stdlib and project packages all
// report through this one type, so the rendering is centralised here
// instead of re-implemented per package. The lexer, parser and module
// resolver keep their own error values.
package diagnostics

import (
	"fmt"
	"strings"
)

// Kind is the taxonomy of error categories spec §7 enumerates.
type Kind string

const (
	KindSyntax          Kind = "SyntaxError"
	KindType            Kind = "TypeError"
	KindName            Kind = "NameError"
	KindOwnership       Kind = "OwnershipError"
	KindImport          Kind = "ImportError"
	KindRuntime         Kind = "RuntimeError"
	KindFile            Kind = "FileError"
	KindInit            Kind = "InitError"
	KindInvalidExt      Kind = "InvalidExtension"
)

// Location pinpoints a diagnostic in a source file.
type Location struct {
	File    string
	Line    int
	Column  int
	Snippet string // the offending source line, if available
}

// Diagnostic is the shared error value every phase constructs.
type Diagnostic struct {
	Kind       Kind
	Message    string
	Location   *Location // nil if the error has no source position
	Suggestion string    // "" if there is none
}

func New(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (d *Diagnostic) At(file string, line, column int) *Diagnostic {
	d.Location = &Location{File: file, Line: line, Column: column}
	return d
}

func (d *Diagnostic) WithSnippet(snippet string) *Diagnostic {
	if d.Location != nil {
		d.Location.Snippet = snippet
	}
	return d
}

func (d *Diagnostic) WithSuggestion(s string) *Diagnostic {
	d.Suggestion = s
	return d
}

// Error implements the error interface so a *Diagnostic can be returned
// and propagated anywhere an `error` is expected (spec §7's propagation
// policy: each phase returns at the first error).
func (d *Diagnostic) Error() string {
	return d.Render()
}

// Render produces the user-visible failure text: the error header, the
// file:line:column, the offending source line with a caret under the
// column, and the suggestion if any (spec §7).
func (d *Diagnostic) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error[%s]: %s", d.Kind, d.Message)
	if d.Location != nil {
		loc := d.Location
		fmt.Fprintf(&b, "\n  --> %s:%d:%d", loc.File, loc.Line, loc.Column)
		if loc.Snippet != "" {
			fmt.Fprintf(&b, "\n%s\n%s^", loc.Snippet, strings.Repeat(" ", max(loc.Column-1, 0)))
		}
	}
	if d.Suggestion != "" {
		fmt.Fprintf(&b, "\nsuggestion: %s", d.Suggestion)
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
