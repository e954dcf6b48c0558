// Package symtab implements the two-level symbol table: a class scope
// (static, field) and a subroutine scope (argument, local). Subroutine
// scope shadows class scope on lookup.
package symtab

import (
	"fmt"

	"github.com/jacktools/jackc/internal/jackerr"
)

// Kind is the source-level classification of a declared identifier.
type Kind string

const (
	Static   Kind = "static"
	Field    Kind = "field"
	Argument Kind = "argument"
	Local    Kind = "local"
)

// entry is one symbol table row.
type entry struct {
	typ   string
	kind  Kind
	index int
}

// Table is a per-class symbol table. Create one with New; the zero value
// has no scope maps, and Define on it panics.
type Table struct {
	class      map[string]entry
	subroutine map[string]entry
}

// New returns an empty table, ready for one class's worth of
// declarations.
func New() *Table {
	return &Table{
		class:      make(map[string]entry),
		subroutine: make(map[string]entry),
	}
}

// StartSubroutine clears the subroutine scope only; class scope
// (static/field declarations already seen) survives across every
// subroutine of the class.
func (t *Table) StartSubroutine() {
	t.subroutine = make(map[string]entry)
}

func scopeFor(t *Table, kind Kind) map[string]entry {
	switch kind {
	case Static, Field:
		return t.class
	default:
		return t.subroutine
	}
}

// Define inserts name into the scope implied by kind, assigning it the
// next dense index for that (scope, kind) pair. Redefining an
// already-declared name in the same scope is undefined behavior — the
// new entry silently replaces the old one.
func (t *Table) Define(name, typ string, kind Kind) {
	scope := scopeFor(t, kind)
	scope[name] = entry{typ: typ, kind: kind, index: t.Count(kind)}
}

// Count returns the number of entries of kind currently declared in its
// scope.
func (t *Table) Count(kind Kind) int {
	scope := scopeFor(t, kind)
	n := 0
	for _, e := range scope {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func (t *Table) lookup(name string) (entry, bool) {
	if e, ok := t.subroutine[name]; ok {
		return e, true
	}
	if e, ok := t.class[name]; ok {
		return e, true
	}
	return entry{}, false
}

// TypeOf returns the declared type of name and whether it was found.
// Absence is not an error here: an unresolved name is information the
// parser uses to decide whether an identifier names a class or a
// subroutine rather than a variable.
func (t *Table) TypeOf(name string) (string, bool) {
	e, ok := t.lookup(name)
	if !ok {
		return "", false
	}
	return e.typ, true
}

// KindOf returns the kind of name and whether it was found.
func (t *Table) KindOf(name string) (Kind, bool) {
	e, ok := t.lookup(name)
	if !ok {
		return "", false
	}
	return e.kind, true
}

// IndexOf returns the dense index assigned to name. Unlike TypeOf/KindOf,
// a caller asking for IndexOf is always in a context where the name must
// resolve to a variable (an array base, a let-target, a method
// receiver) — so absence is a jackerr.ErrResolution, not a quiet zero
// value.
func (t *Table) IndexOf(name string) (int, error) {
	e, ok := t.lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: unknown identifier %q", jackerr.ErrResolution, name)
	}
	return e.index, nil
}
