package collection

import (
	"context"
	"fmt"

	"github.com/thunder-project/thunder"
)

// Collection is the local in-memory engine: an owned, ordered sequence of
// key-value records evaluated synchronously on the calling goroutine. It
// implements thunder.Dataset.
//
// Insertion order is preserved on construction but carries no guarantee
// through operations beyond what each operation states, matching the
// semantics of a partitioned backend where physical record order is an
// artifact of partitioning.
type Collection[K comparable, V any] struct {
	records []thunder.Record[K, V]
}

// From builds a collection from parallel key and value sequences. The input
// order defines the collection's initial order. Both slices are copied.
func From[K comparable, V any](keys []K, values []V) (*Collection[K, V], error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("%w: %d keys, %d values", thunder.ErrLengthMismatch, len(keys), len(values))
	}

	records := make([]thunder.Record[K, V], len(keys))
	for i := range keys {
		records[i] = thunder.Record[K, V]{Key: keys[i], Value: values[i]}
	}
	return &Collection[K, V]{records: records}, nil
}

// FromPairs builds a collection from ready-made records.
func FromPairs[K comparable, V any](records ...thunder.Record[K, V]) *Collection[K, V] {
	return &Collection[K, V]{records: append([]thunder.Record[K, V](nil), records...)}
}

// FromFunc builds a collection of n records produced by gen, called with
// indexes 0 through n-1 in order.
func FromFunc[K comparable, V any](n int, gen func(i int) thunder.Record[K, V]) *Collection[K, V] {
	records := make([]thunder.Record[K, V], n)
	for i := range records {
		records[i] = gen(i)
	}
	return &Collection[K, V]{records: records}
}

// Records returns a copy of the collection's records in order.
func (c *Collection[K, V]) Records() []thunder.Record[K, V] {
	return append([]thunder.Record[K, V](nil), c.records...)
}

// MapValues applies f independently to each value, producing a new
// collection with the same length and key sequence. The first error from f
// aborts the whole operation.
func (c *Collection[K, V]) MapValues(_ context.Context, f thunder.MapFunc[V, V]) (thunder.Dataset[K, V], error) {
	out, err := mapRecords(c, f)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Filter returns a new collection containing exactly the records for which
// p is true, preserving their relative order.
func (c *Collection[K, V]) Filter(_ context.Context, p thunder.FilterFunc[K, V]) (thunder.Dataset[K, V], error) {
	out := make([]thunder.Record[K, V], 0, len(c.records))
	for _, r := range c.records {
		keep, err := p(r.Key, r.Value)
		if err != nil {
			return nil, &thunder.OperationError{Op: "filter", Err: err}
		}
		if keep {
			out = append(out, r)
		}
	}
	return &Collection[K, V]{records: out}, nil
}

// Reduce folds all values into one with f, ignoring keys. f must be
// associative and commutative; any combination order is valid. Reducing an
// empty collection fails with thunder.ErrEmptyDataset.
func (c *Collection[K, V]) Reduce(_ context.Context, f thunder.CombineFunc[V]) (V, error) {
	var zero V
	if len(c.records) == 0 {
		return zero, thunder.ErrEmptyDataset
	}

	acc := c.records[0].Value
	for _, r := range c.records[1:] {
		next, err := f(acc, r.Value)
		if err != nil {
			return zero, &thunder.OperationError{Op: "reduce", Err: err}
		}
		acc = next
	}
	return acc, nil
}

// GroupByKey maps each distinct key to the ordered sequence of values that
// carried it, preserving first-seen relative order of values within a group.
// Iteration order over the returned map is unspecified, as it would be after
// a distributed shuffle.
func (c *Collection[K, V]) GroupByKey(_ context.Context) (map[K][]V, error) {
	groups := make(map[K][]V)
	for _, r := range c.records {
		groups[r.Key] = append(groups[r.Key], r.Value)
	}
	return groups, nil
}

// ReduceByKey folds each key's values with f, producing one record per
// distinct key in first-seen key order. The fold is applied incrementally;
// the full grouping is never materialized.
func (c *Collection[K, V]) ReduceByKey(_ context.Context, f thunder.CombineFunc[V]) (thunder.Dataset[K, V], error) {
	index := make(map[K]int, len(c.records))
	out := make([]thunder.Record[K, V], 0)
	for _, r := range c.records {
		i, seen := index[r.Key]
		if !seen {
			index[r.Key] = len(out)
			out = append(out, r)
			continue
		}

		combined, err := f(out[i].Value, r.Value)
		if err != nil {
			return nil, &thunder.OperationError{Op: "reduceByKey", Err: err}
		}
		out[i].Value = combined
	}
	return &Collection[K, V]{records: out}, nil
}

// Count reports the number of records. It is O(1).
func (c *Collection[K, V]) Count(_ context.Context) (int, error) {
	return len(c.records), nil
}

// Collect returns a snapshot of all values in collection order, keys
// discarded. Mutating the result does not affect the collection.
func (c *Collection[K, V]) Collect(_ context.Context) ([]V, error) {
	values := make([]V, len(c.records))
	for i, r := range c.records {
		values[i] = r.Value
	}
	return values, nil
}
