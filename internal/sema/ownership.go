package sema

import "github.com/zephyrlang/zr/internal/diagnostics"

// OwnershipStateKind enumerates the per-binding state machine of
// spec §4.5: a binding is Owned until it is moved or borrowed, and
// returns to Owned once the corresponding scope exits.
type OwnershipStateKind int

const (
	Owned OwnershipStateKind = iota
	Moved
	Borrowed
	MutablyBorrowed
)

// OwnershipState is the per-binding state, grounded on
// original_source/src/semantic/ownership.rs's OwnershipState enum.
type OwnershipState struct {
	Kind OwnershipStateKind

	// valid when Kind == Moved
	MovedTo string
	MovedAt int

	// valid when Kind == Borrowed
	Borrowers []string

	// valid when Kind == MutablyBorrowed
	MutableBorrower string
}

// Binding is a tracked variable: its mutability, current ownership
// state, and the scope depth it was declared at.
type Binding struct {
	Name       string
	Mutable    bool
	Ownership  OwnershipState
	DefinedAt  int
	ScopeDepth int
}

// OwnershipChecker drives the state machine described in spec §4.5,
// grounded on original_source/src/semantic/ownership.rs's
// OwnershipChecker (define/use/move_value/assign/borrow/borrow_mut/
// enter_scope/exit_scope).
type OwnershipChecker struct {
	bindings   map[string]*Binding
	scopeDepth int
}

func NewOwnershipChecker() *OwnershipChecker {
	return &OwnershipChecker{bindings: make(map[string]*Binding)}
}

func (c *OwnershipChecker) EnterScope() { c.scopeDepth++ }

// ExitScope drops every binding declared at the scope being exited and
// returns their names, so the VM-facing compiler/analyser can emit
// corresponding Drop hints.
func (c *OwnershipChecker) ExitScope() []string {
	var dropped []string
	gone := make(map[string]bool)
	for name, b := range c.bindings {
		if b.ScopeDepth == c.scopeDepth {
			dropped = append(dropped, name)
			gone[name] = true
			delete(c.bindings, name)
		}
	}
	// a binding whose borrowers all went out of scope is Owned again
	for name, b := range c.bindings {
		kept := b.Ownership.Borrowers[:0]
		for _, br := range b.Ownership.Borrowers {
			if !gone[br] {
				kept = append(kept, br)
			}
		}
		b.Ownership.Borrowers = kept
		if (b.Ownership.Kind == Borrowed && len(kept) == 0) ||
			(b.Ownership.Kind == MutablyBorrowed && gone[b.Ownership.MutableBorrower]) {
			c.Release(name)
		}
	}
	c.scopeDepth--
	return dropped
}

func (c *OwnershipChecker) Define(name string, mutable bool, line int) error {
	if existing, ok := c.bindings[name]; ok && existing.ScopeDepth == c.scopeDepth {
		return diagnostics.New(diagnostics.KindOwnership,
			"variable '%s' is already defined at line %d (duplicate at line %d)",
			name, existing.DefinedAt, line)
	}
	c.bindings[name] = &Binding{
		Name:       name,
		Mutable:    mutable,
		Ownership:  OwnershipState{Kind: Owned},
		DefinedAt:  line,
		ScopeDepth: c.scopeDepth,
	}
	return nil
}

func (c *OwnershipChecker) Use(name string, line int) (*Binding, error) {
	b, ok := c.bindings[name]
	if !ok {
		return nil, diagnostics.New(diagnostics.KindName, "variable '%s' is not defined", name)
	}
	if b.Ownership.Kind == Moved {
		return nil, diagnostics.New(diagnostics.KindOwnership,
			"variable '%s' was moved at line %d and cannot be used at line %d",
			name, b.Ownership.MovedAt, line)
	}
	return b, nil
}

func (c *OwnershipChecker) MoveValue(from, to string, line int) error {
	b, err := c.Use(from, line)
	if err != nil {
		return err
	}
	if b.Ownership.Kind == Borrowed || b.Ownership.Kind == MutablyBorrowed {
		return diagnostics.New(diagnostics.KindOwnership,
			"cannot move '%s' while it is borrowed (at line %d)", from, line)
	}
	b.Ownership = OwnershipState{Kind: Moved, MovedTo: to, MovedAt: line}
	return nil
}

func (c *OwnershipChecker) Assign(name string, line int) error {
	b, ok := c.bindings[name]
	if !ok {
		return diagnostics.New(diagnostics.KindName, "variable '%s' is not defined", name)
	}
	if !b.Mutable {
		return diagnostics.New(diagnostics.KindOwnership,
			"cannot assign to immutable variable '%s' at line %d (defined at line %d); consider declaring with 'let mut'",
			name, line, b.DefinedAt)
	}
	if b.Ownership.Kind == Borrowed || b.Ownership.Kind == MutablyBorrowed {
		return diagnostics.New(diagnostics.KindOwnership,
			"cannot assign to '%s' while it is borrowed (at line %d)", name, line)
	}
	return nil
}

func (c *OwnershipChecker) Borrow(name, borrower string, line int) error {
	b, ok := c.bindings[name]
	if !ok {
		return diagnostics.New(diagnostics.KindName, "variable '%s' is not defined", name)
	}
	switch b.Ownership.Kind {
	case Owned:
		b.Ownership = OwnershipState{Kind: Borrowed, Borrowers: []string{borrower}}
	case Borrowed:
		b.Ownership.Borrowers = append(b.Ownership.Borrowers, borrower)
	case MutablyBorrowed:
		return diagnostics.New(diagnostics.KindOwnership,
			"cannot borrow '%s' while it is mutably borrowed (at line %d)", name, line)
	case Moved:
		return diagnostics.New(diagnostics.KindOwnership,
			"variable '%s' was moved at line %d and cannot be used at line %d", name, b.Ownership.MovedAt, line)
	}
	return nil
}

func (c *OwnershipChecker) BorrowMut(name, borrower string, line int) error {
	b, ok := c.bindings[name]
	if !ok {
		return diagnostics.New(diagnostics.KindName, "variable '%s' is not defined", name)
	}
	if !b.Mutable {
		return diagnostics.New(diagnostics.KindOwnership,
			"cannot mutably borrow immutable variable '%s' (at line %d); consider declaring with 'let mut'", name, line)
	}
	switch b.Ownership.Kind {
	case Owned:
		b.Ownership = OwnershipState{Kind: MutablyBorrowed, MutableBorrower: borrower}
		return nil
	case Borrowed:
		return diagnostics.New(diagnostics.KindOwnership,
			"cannot mutably borrow '%s' while it is already borrowed (at line %d)", name, line)
	case MutablyBorrowed:
		return diagnostics.New(diagnostics.KindOwnership,
			"cannot mutably borrow '%s' while it is already mutably borrowed (at line %d)", name, line)
	default: // Moved
		return diagnostics.New(diagnostics.KindOwnership,
			"variable '%s' was moved at line %d and cannot be used at line %d", name, b.Ownership.MovedAt, line)
	}
}

// Release returns a borrowed/mutably-borrowed binding to Owned — called
// by ExitScope when the references holding the borrow go out of scope,
// and by the analyser once a `&mut self` call's borrow of its receiver
// ends.
func (c *OwnershipChecker) Release(name string) {
	if b, ok := c.bindings[name]; ok {
		b.Ownership = OwnershipState{Kind: Owned}
	}
}

func (c *OwnershipChecker) Get(name string) (*Binding, bool) {
	b, ok := c.bindings[name]
	return b, ok
}
