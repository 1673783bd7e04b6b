// Package shuffle provides intermediate group storage for the partitioned
// dataset backend. During a group-by-key each partition appends its records
// into its own store, then drains the accumulated groups.
package shuffle

// Store accumulates the intermediate key groups of a single partition.
// Implementations need not be safe for concurrent use; the backend gives
// each partition its own store.
type Store[K comparable, V any] interface {
	// Append adds a value to key's group. Append order is preserved
	// within a group.
	Append(key K, value V) error

	// Groups calls fn once per distinct key with every value appended
	// for it, in append order. Key order is unspecified. An error from
	// fn stops the iteration and is returned.
	Groups(fn func(key K, values []V) error) error

	// Close releases the store's resources. A store is not usable after
	// Close.
	Close() error
}

// Factory produces a fresh store. The backend calls it once per partition
// per operation.
type Factory[K comparable, V any] func() (Store[K, V], error)
