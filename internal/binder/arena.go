package binder

import "martianoff/callbind/internal/arglist"

// arena owns the argument lists of one binding attempt. Everything it hands
// out is released together when the attempt ends.
type arena struct {
	lists    []*arglist.List
	released bool
}

func newArena() *arena { return &arena{} }

func (a *arena) newList() *arglist.List {
	if a.released {
		panic("binder: arena used after release")
	}
	l := arglist.New()
	a.lists = append(a.lists, l)
	return l
}

func (a *arena) clone(l *arglist.List) *arglist.List {
	if a.released {
		panic("binder: arena used after release")
	}
	c := l.Clone()
	a.lists = append(a.lists, c)
	return c
}

func (a *arena) release() {
	for _, l := range a.lists {
		l.Release()
	}
	a.lists = nil
	a.released = true
}
