// Package state provides the shared state container handed to every handler and middleware
// of a router. It holds exactly one value of any type and hands it back only to callers that
// ask for that exact type.
package state

import (
	"sync/atomic"
)

// State holds one type-erased, shared value. The zero value is an empty container.
// A State is meant to be filled during setup and then only read.
type State struct {
	value atomic.Pointer[box]
}

// box keeps the held value. ptr is always a *T for the T passed to Set.
type box struct {
	ptr any
}

// New creates an empty State.
func New() *State {
	return &State{}
}

// Set replaces the held value with v. It does not merge with the previous value.
// This is a standalone function because Go methods cannot have type parameters.
func Set[T any](s *State, v T) {
	p := new(T)
	*p = v
	s.value.Store(&box{ptr: p})
}

// Get returns the held value if it was stored with type T.
// Every successful call returns the same pointer, so handlers share one object.
// A type mismatch or an empty container returns nil and false; it never panics.
func Get[T any](s *State) (*T, bool) {
	if s == nil {
		return nil, false
	}
	b := s.value.Load()
	if b == nil {
		return nil, false
	}
	p, ok := b.ptr.(*T)
	return p, ok
}

// MustGet is like Get but panics when the held value is not a T.
// Use it only where a missing state is a programming error.
func MustGet[T any](s *State) *T {
	p, ok := Get[T](s)
	if !ok {
		panic("state: held value is not of the requested type")
	}
	return p
}

// IsEmpty reports whether no value has been set.
func (s *State) IsEmpty() bool {
	return s == nil || s.value.Load() == nil
}
