// Package records implements an ordered, mutex-guarded collection of
// keyed records. It is the in-memory core behind the memory storage
// driver: records stay in insertion order, lookups scan linearly, and
// every read hands out a copy so callers never alias stored state.
package records

import (
	"errors"
	"slices"
	"sync"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record key")
)

// Keyed is implemented by every record type the store can hold.
type Keyed[K comparable] interface {
	Key() K
}

// Cloner is implemented by record types that hold pointers. The store
// clones such records on the way in and out.
type Cloner[R any] interface {
	Clone() R
}

func clone[R any](r R) R {
	if c, ok := any(r).(Cloner[R]); ok {
		return c.Clone()
	}
	return r
}

// Option configures a Store.
type Option func(*options)

type options struct {
	unique bool
}

// WithUniqueKeys makes Insert reject a record whose key is already stored.
func WithUniqueKeys() Option {
	return func(o *options) { o.unique = true }
}

// Store is an ordered collection of records of type R keyed by K.
// The zero value is not usable; construct with New.
type Store[K comparable, R Keyed[K]] struct {
	mu     sync.RWMutex
	items  []R
	unique bool
}

// New returns an empty store, optionally seeded with records in order.
// Seed records bypass the uniqueness check.
func New[K comparable, R Keyed[K]](seed []R, opts ...Option) *Store[K, R] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	items := make([]R, len(seed))
	for i, r := range seed {
		items[i] = clone(r)
	}
	return &Store[K, R]{
		items:  items,
		unique: o.unique,
	}
}

// Insert appends r to the end of the collection.
func (s *Store[K, R]) Insert(r R) (R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unique && s.indexOf(r.Key()) >= 0 {
		var zero R
		return zero, ErrDuplicate
	}
	s.items = append(s.items, clone(r))
	return r, nil
}

// List returns a copy of all records in insertion order.
func (s *Store[K, R]) List() []R {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]R, len(s.items))
	for i, r := range s.items {
		out[i] = clone(r)
	}
	return out
}

// Get returns the first record whose key equals k.
func (s *Store[K, R]) Get(k K) (R, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(k)
	if i < 0 {
		var zero R
		return zero, ErrNotFound
	}
	return clone(s.items[i]), nil
}

// Update replaces the first record whose key equals k with r.
// Callers are responsible for r carrying the key k.
func (s *Store[K, R]) Update(k K, r R) (R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(k)
	if i < 0 {
		var zero R
		return zero, ErrNotFound
	}
	s.items[i] = clone(r)
	return r, nil
}

// Delete removes the first record whose key equals k and returns it.
// Later records shift down and keep their relative order.
func (s *Store[K, R]) Delete(k K) (R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(k)
	if i < 0 {
		var zero R
		return zero, ErrNotFound
	}
	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	return removed, nil
}

// Filter returns, in insertion order, the records for which keep is true.
// keep runs under the read lock and must not call back into the store.
func (s *Store[K, R]) Filter(keep func(R) bool) []R {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]R, 0)
	for _, r := range s.items {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	return out
}

// Len returns the number of stored records.
func (s *Store[K, R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// indexOf must be called with s.mu held.
func (s *Store[K, R]) indexOf(k K) int {
	return slices.IndexFunc(s.items, func(r R) bool { return r.Key() == k })
}
