// Package inmemory implements a heap-backed shuffle store.
package inmemory

import "github.com/thunder-project/thunder/distributed/shuffle"

// Store keeps groups in a builtin map. It is the default shuffle store.
type Store[K comparable, V any] struct {
	groups map[K][]V
	order  []K
}

func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		groups: make(map[K][]V),
	}
}

// Factory returns a shuffle.Factory producing fresh in-memory stores.
func Factory[K comparable, V any]() shuffle.Factory[K, V] {
	return func() (shuffle.Store[K, V], error) {
		return New[K, V](), nil
	}
}

func (s *Store[K, V]) Append(key K, value V) error {
	if _, seen := s.groups[key]; !seen {
		s.order = append(s.order, key)
	}
	s.groups[key] = append(s.groups[key], value)
	return nil
}

func (s *Store[K, V]) Groups(fn func(key K, values []V) error) error {
	for _, key := range s.order {
		if err := fn(key, s.groups[key]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store[K, V]) Close() error {
	s.groups = nil
	s.order = nil
	return nil
}
