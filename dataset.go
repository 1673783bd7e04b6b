package thunder

import "context"

// Record is an immutable key-value pair. Records are always copied between
// datasets, never shared.
type Record[K comparable, V any] struct {
	Key   K
	Value V
}

// MapFunc transforms a single value. It must be pure: it may not observe
// other records or retain state between calls.
type MapFunc[V, V2 any] func(V) (V2, error)

// FilterFunc decides whether a record is retained. It must be side-effect
// free and return the same answer for the same record.
type FilterFunc[K comparable, V any] func(K, V) (bool, error)

// CombineFunc folds two values into one. Reduce and ReduceByKey require the
// function to be associative and commutative; no combination order is
// guaranteed and the engine does not verify either property.
type CombineFunc[V any] func(V, V) (V, error)

// Dataset is the capability surface shared by every backend: the local
// in-memory engine, the partitioned stand-in and the pebble-backed variant.
// Callers that depend only on Dataset can swap backends without changing
// call-site semantics, which is what makes cross-backend benchmarking
// meaningful.
//
// Every operation returns fresh state and leaves the receiver untouched, so
// the same dataset can be driven through the same operation repeatedly.
// Go interfaces cannot carry method-level type parameters, so the interface
// keeps the value type fixed; type-changing maps are free functions on the
// concrete engines (see collection.Map).
type Dataset[K comparable, V any] interface {
	// MapValues applies f independently to each value, preserving length
	// and key sequence.
	MapValues(ctx context.Context, f MapFunc[V, V]) (Dataset[K, V], error)

	// Filter retains exactly the records for which p returns true,
	// preserving their relative order.
	Filter(ctx context.Context, p FilterFunc[K, V]) (Dataset[K, V], error)

	// Reduce folds all values into one, ignoring keys. It fails with
	// ErrEmptyDataset when the dataset has no records.
	Reduce(ctx context.Context, f CombineFunc[V]) (V, error)

	// GroupByKey maps each distinct key to the values that carried it,
	// preserving first-seen value order within a group. Key order in the
	// result is unspecified.
	GroupByKey(ctx context.Context) (map[K][]V, error)

	// ReduceByKey folds each key's values into a single record per
	// distinct key. Result order is unspecified.
	ReduceByKey(ctx context.Context, f CombineFunc[V]) (Dataset[K, V], error)

	// Count reports the number of records.
	Count(ctx context.Context) (int, error)

	// Collect returns a snapshot of all values in dataset order, keys
	// discarded. Mutating the result does not affect the dataset.
	Collect(ctx context.Context) ([]V, error)
}
