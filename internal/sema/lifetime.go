package sema

import "github.com/zephyrlang/zr/internal/diagnostics"

// Lifetime is a named lifetime parameter, scoped to the depth at which
// it was declared. Grounded on
// original_source/src/semantic/lifetime.rs's Lifetime.
type Lifetime struct {
	Name    string
	ScopeID int
}

// ReferenceOrigin classifies where a reference's underlying storage
// lives, which the escape check (spec §4.7) needs to tell a dangling
// local/temporary apart from a parameter or global that may safely
// outlive the current function.
type ReferenceOrigin int

const (
	OriginLocal ReferenceOrigin = iota
	OriginTemporary
	OriginParameter
	OriginGlobal
)

// ReferenceInfo tracks one reference binding's lifetime and the
// variable (if any) it borrows from.
type ReferenceInfo struct {
	Lifetime       Lifetime
	SourceVariable string
	HasSource      bool
	Origin         ReferenceOrigin
	Mutable        bool
	DefinedAt      int
}

// LifetimeChecker implements the named-lifetime stack and elision
// rules of spec §4.7, grounded on
// original_source/src/semantic/lifetime.rs's LifetimeChecker.
type LifetimeChecker struct {
	lifetimes  map[string]Lifetime
	references map[string]ReferenceInfo
	scopeDepth int
}

func NewLifetimeChecker() *LifetimeChecker {
	c := &LifetimeChecker{
		lifetimes:  make(map[string]Lifetime),
		references: make(map[string]ReferenceInfo),
	}
	c.lifetimes["static"] = Lifetime{Name: "static", ScopeID: 0}
	return c
}

func (c *LifetimeChecker) EnterScope() { c.scopeDepth++ }

func (c *LifetimeChecker) ExitScope() {
	depth := c.scopeDepth
	for name, ref := range c.references {
		if ref.Lifetime.ScopeID >= depth {
			delete(c.references, name)
		}
	}
	for name, lt := range c.lifetimes {
		if lt.ScopeID >= depth {
			delete(c.lifetimes, name)
		}
	}
	c.scopeDepth--
}

// DeclareLifetime registers a named lifetime parameter for the current
// scope (a function's `<'a>` list).
func (c *LifetimeChecker) DeclareLifetime(name string) {
	c.lifetimes[name] = Lifetime{Name: name, ScopeID: c.scopeDepth}
}

// TrackReference records a newly created reference binding.
func (c *LifetimeChecker) TrackReference(refName, sourceVar string, hasSource bool, origin ReferenceOrigin, mutable bool, line int) {
	c.references[refName] = ReferenceInfo{
		Lifetime:       Lifetime{Name: anonymousLifetimeName(c.scopeDepth), ScopeID: c.scopeDepth},
		SourceVariable: sourceVar,
		HasSource:      hasSource,
		Origin:         origin,
		Mutable:        mutable,
		DefinedAt:      line,
	}
}

func anonymousLifetimeName(scopeID int) string {
	if scopeID == 0 {
		return "'_0"
	}
	return "'_" + string(rune('0'+scopeID%10))
}

// InferOutputLifetime applies the elision rules of spec §4.7 in order:
// fresh-per-input, single-input-binds-output, &self-binds-output,
// explicit-annotation-required (returns false when none apply).
func InferOutputLifetime(inputLifetimes []string, hasSelf bool) (string, bool) {
	if hasSelf {
		return "self", true
	}
	var explicit []string
	for _, lt := range inputLifetimes {
		if lt != "" {
			explicit = append(explicit, lt)
		}
	}
	if len(explicit) == 1 {
		return explicit[0], true
	}
	if len(explicit) == 0 && len(inputLifetimes) == 1 {
		return "'_", true
	}
	return "", false
}

// CheckEscape implements the escape check (spec §4.7) for a reference
// binding tracked under refName (e.g. `let r = &x;` then `r` used in
// return/trailing position): a reference whose source has origin Local
// or Temporary must not be returned from the function whose scope
// encloses that source. Unknown names (not a tracked reference
// binding) are not an escape and return nil.
func (c *LifetimeChecker) CheckEscape(refName string, line int) error {
	ref, ok := c.references[refName]
	if !ok {
		return nil
	}
	return c.escapeError(ref.Origin, ref.SourceVariable, ref.HasSource, line)
}

// escapeError is the origin-classification logic shared by CheckEscape
// (a named, tracked reference binding) and the analyser's check of a
// bare `&x` literal in return/trailing position, which has no tracked
// binding to look up.
func (c *LifetimeChecker) escapeError(origin ReferenceOrigin, sourceVar string, hasSource bool, line int) error {
	if origin != OriginLocal && origin != OriginTemporary {
		return nil
	}
	if hasSource {
		return diagnostics.New(diagnostics.KindOwnership,
			"reference to local '%s' cannot be returned from its enclosing function (line %d)",
			sourceVar, line)
	}
	return diagnostics.New(diagnostics.KindOwnership,
		"reference to a temporary value cannot be returned from its enclosing function (line %d)", line)
}
