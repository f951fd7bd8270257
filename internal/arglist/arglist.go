// Package arglist holds the analyzed argument list of one call-site attempt.
//
// Names and ref kinds are either absent or parallel to the arguments. Every
// mutation re-checks that invariant and panics when it is broken.
package arglist

import (
	"fmt"

	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// List is an analyzed argument list.
type List struct {
	args     []bound.Expr
	names    []string
	refKinds []symbols.RefKind

	// HasErrors is set when an argument is structurally invalid.
	HasErrors bool
	released  bool
}

// New returns an empty list.
func New() *List { return &List{} }

// Add appends an argument. An empty name and RefNone are recorded only once
// some argument has a name or ref kind.
func (l *List) Add(e bound.Expr, name string, rk symbols.RefKind) {
	l.Insert(l.Len(), e, name, rk)
}

// Insert places an argument at i, shifting the rest right.
func (l *List) Insert(i int, e bound.Expr, name string, rk symbols.RefKind) {
	l.live()
	if i < 0 || i > len(l.args) {
		panic(fmt.Sprintf("arglist: insert at %d of %d", i, len(l.args)))
	}
	if name != "" && l.names == nil {
		l.names = make([]string, len(l.args))
	}
	if rk != symbols.RefNone && l.refKinds == nil {
		l.refKinds = make([]symbols.RefKind, len(l.args))
	}
	l.args = insert(l.args, i, e)
	if l.names != nil {
		l.names = insert(l.names, i, name)
	}
	if l.refKinds != nil {
		l.refKinds = insert(l.refKinds, i, rk)
	}
	l.check()
}

// RemoveAt deletes the argument at i.
func (l *List) RemoveAt(i int) {
	l.live()
	if i < 0 || i >= len(l.args) {
		panic(fmt.Sprintf("arglist: remove at %d of %d", i, len(l.args)))
	}
	l.args = append(l.args[:i], l.args[i+1:]...)
	if l.names != nil {
		l.names = append(l.names[:i], l.names[i+1:]...)
	}
	if l.refKinds != nil {
		l.refKinds = append(l.refKinds[:i], l.refKinds[i+1:]...)
	}
	l.check()
}

// Set replaces the argument at i, keeping its name and ref kind.
func (l *List) Set(i int, e bound.Expr) {
	l.live()
	l.args[i] = e
	l.check()
}

// Len returns the number of arguments.
func (l *List) Len() int {
	l.live()
	return len(l.args)
}

// Arg returns the argument at i.
func (l *List) Arg(i int) bound.Expr {
	l.live()
	return l.args[i]
}

// Args returns the arguments. The slice must not be modified.
func (l *List) Args() []bound.Expr {
	l.live()
	return l.args
}

// Name returns the name of argument i, "" if it is positional.
func (l *List) Name(i int) string {
	l.live()
	if l.names == nil {
		return ""
	}
	return l.names[i]
}

// Names returns the names, nil when no argument is named.
func (l *List) Names() []string {
	l.live()
	return l.names
}

// RefKind returns the passing mode of argument i.
func (l *List) RefKind(i int) symbols.RefKind {
	l.live()
	if l.refKinds == nil {
		return symbols.RefNone
	}
	return l.refKinds[i]
}

// RefKinds returns the passing modes, nil when every argument is by value.
func (l *List) RefKinds() []symbols.RefKind {
	l.live()
	return l.refKinds
}

// HasNames reports whether any argument is named.
func (l *List) HasNames() bool { return l.Names() != nil }

// HasDynamic reports whether any argument has the dynamic type.
func (l *List) HasDynamic() bool {
	for _, a := range l.Args() {
		if symbols.IsDynamic(a.Type()) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (l *List) Clone() *List {
	l.live()
	c := &List{HasErrors: l.HasErrors}
	c.args = append([]bound.Expr(nil), l.args...)
	if l.names != nil {
		c.names = append([]string(nil), l.names...)
	}
	if l.refKinds != nil {
		c.refKinds = append([]symbols.RefKind(nil), l.refKinds...)
	}
	return c
}

// Release ends the list's lifetime. Any later use panics.
func (l *List) Release() {
	l.args, l.names, l.refKinds = nil, nil, nil
	l.released = true
}

func (l *List) live() {
	if l.released {
		panic("arglist: use of released list")
	}
}

func (l *List) check() {
	if l.names != nil && len(l.names) != len(l.args) {
		panic(fmt.Sprintf("arglist: %d names for %d arguments", len(l.names), len(l.args)))
	}
	if l.refKinds != nil && len(l.refKinds) != len(l.args) {
		panic(fmt.Sprintf("arglist: %d ref kinds for %d arguments", len(l.refKinds), len(l.args)))
	}
}

func insert[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
