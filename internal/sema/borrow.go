package sema

import "github.com/zephyrlang/zr/internal/diagnostics"

// BorrowKind distinguishes a shared borrow (&T) from a mutable borrow
// (&mut T).
type BorrowKind int

const (
	Shared BorrowKind = iota
	Mutable
)

func (k BorrowKind) adverb() string {
	if k == Mutable {
		return "mutably"
	}
	return "immutably"
}

// ActiveBorrow records one outstanding borrow of a source variable.
// Grounded on original_source/src/semantic/borrow.rs's ActiveBorrow.
type ActiveBorrow struct {
	Source     string
	Kind       BorrowKind
	Borrower   string
	CreatedAt  int
	ScopeDepth int
}

type movedInfo struct {
	movedTo string
	atLine  int
}

// BorrowChecker is auxiliary to OwnershipChecker: it is keyed by
// *source variable* rather than per-binding (spec §4.6), so it can
// answer "does x have any active borrows" independent of what state
// the ownership checker's own binding for x is in.
type BorrowChecker struct {
	borrows    map[string][]ActiveBorrow
	moved      map[string]movedInfo
	scopeDepth int
}

func NewBorrowChecker() *BorrowChecker {
	return &BorrowChecker{
		borrows: make(map[string][]ActiveBorrow),
		moved:   make(map[string]movedInfo),
	}
}

func (c *BorrowChecker) EnterScope() { c.scopeDepth++ }

// ExitScope removes every borrow whose ScopeDepth equals the exiting
// scope's depth (spec §4.6) and returns the sources that lost a borrow.
func (c *BorrowChecker) ExitScope() []string {
	depth := c.scopeDepth
	var ended []string
	for source, active := range c.borrows {
		kept := active[:0]
		lost := false
		for _, b := range active {
			if b.ScopeDepth < depth {
				kept = append(kept, b)
			} else {
				lost = true
			}
		}
		if lost {
			ended = append(ended, source)
		}
		if len(kept) == 0 {
			delete(c.borrows, source)
		} else {
			c.borrows[source] = kept
		}
	}
	c.scopeDepth--
	return ended
}

func (c *BorrowChecker) RecordMove(from, to string, line int) error {
	if active := c.borrows[from]; len(active) > 0 {
		return diagnostics.New(diagnostics.KindOwnership,
			"cannot move '%s' while borrowed by '%s' (line %d)", from, active[0].Borrower, line)
	}
	if info, ok := c.moved[from]; ok {
		return diagnostics.New(diagnostics.KindOwnership,
			"use of moved value: '%s' was moved to '%s' at line %d, cannot use at line %d",
			from, info.movedTo, info.atLine, line)
	}
	c.moved[from] = movedInfo{movedTo: to, atLine: line}
	return nil
}

func (c *BorrowChecker) checkNotMoved(name string, line int) error {
	if info, ok := c.moved[name]; ok {
		return diagnostics.New(diagnostics.KindOwnership,
			"use of moved value: '%s' was moved to '%s' at line %d, cannot use at line %d",
			name, info.movedTo, info.atLine, line)
	}
	return nil
}

func (c *BorrowChecker) BorrowShared(source, borrower string, line int) error {
	if err := c.checkNotMoved(source, line); err != nil {
		return err
	}
	for _, b := range c.borrows[source] {
		if b.Kind == Mutable {
			return diagnostics.New(diagnostics.KindOwnership,
				"cannot create immutable borrow of '%s': already borrowed mutably by '%s' (line %d)",
				source, b.Borrower, line)
		}
	}
	c.borrows[source] = append(c.borrows[source], ActiveBorrow{
		Source: source, Kind: Shared, Borrower: borrower, CreatedAt: line, ScopeDepth: c.scopeDepth,
	})
	return nil
}

func (c *BorrowChecker) BorrowMutable(source, borrower string, line int) error {
	if err := c.checkNotMoved(source, line); err != nil {
		return err
	}
	if active := c.borrows[source]; len(active) > 0 {
		existing := active[0]
		return diagnostics.New(diagnostics.KindOwnership,
			"cannot create mutable borrow of '%s': already borrowed %s by '%s' (line %d)",
			source, existing.Kind.adverb(), existing.Borrower, line)
	}
	c.borrows[source] = append(c.borrows[source], ActiveBorrow{
		Source: source, Kind: Mutable, Borrower: borrower, CreatedAt: line, ScopeDepth: c.scopeDepth,
	})
	return nil
}

func (c *BorrowChecker) CanUse(name string, line int) error {
	return c.checkNotMoved(name, line)
}

func (c *BorrowChecker) CanMutate(name string, line int) error {
	if err := c.checkNotMoved(name, line); err != nil {
		return err
	}
	if active := c.borrows[name]; len(active) > 0 {
		b := active[0]
		return diagnostics.New(diagnostics.KindOwnership,
			"cannot mutate '%s' while %s borrowed by '%s' (line %d)", name, b.Kind.adverb(), b.Borrower, line)
	}
	return nil
}

// EndBorrow releases every active borrow held by borrower, e.g. when
// the reference variable holding it goes out of scope early.
func (c *BorrowChecker) EndBorrow(borrower string) {
	for source, active := range c.borrows {
		kept := active[:0]
		for _, b := range active {
			if b.Borrower != borrower {
				kept = append(kept, b)
			}
		}
		if len(kept) == 0 {
			delete(c.borrows, source)
		} else {
			c.borrows[source] = kept
		}
	}
}

// HasActiveBorrow reports whether source currently has any outstanding
// borrow, used by the &mut self call-site check (spec §4.6).
func (c *BorrowChecker) HasActiveBorrow(source string) bool {
	return len(c.borrows[source]) > 0
}
