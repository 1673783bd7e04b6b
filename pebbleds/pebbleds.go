package pebbleds

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"github.com/thunder-project/thunder"
	"github.com/thunder-project/thunder/codec"
	"github.com/thunder-project/thunder/collection"
)

// Dataset is a pebble-backed implementation of thunder.Dataset. Records are
// stored under their 8-byte big-endian position, so iteration order is
// dataset order. Every operation streams the store; transforms write their
// result into a fresh pebble database under the same root directory.
type Dataset[K comparable, V any] struct {
	db     *pebble.DB
	root   string
	length int
	codec  codec.Codec[thunder.Record[K, V]]
	opts   options

	// gen numbers derived databases; shared by every dataset descended
	// from the same From call.
	gen *atomic.Uint64

	mu       sync.Mutex
	children []*Dataset[K, V]
	closed   bool
}

// From builds a pebble-backed dataset under dir from parallel key and value
// sequences. It fails with thunder.ErrLengthMismatch when the lengths
// differ. Close releases the dataset and everything derived from it.
func From[K comparable, V any](dir string, keys []K, values []V, opts ...Option) (*Dataset[K, V], error) {
	c, err := collection.From(keys, values)
	if err != nil {
		return nil, err
	}
	return FromCollection(dir, c, opts...)
}

// FromCollection copies a local collection into a pebble-backed dataset
// under dir.
func FromCollection[K comparable, V any](dir string, c *collection.Collection[K, V], opts ...Option) (*Dataset[K, V], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d, err := open[K, V](dir, filepath.Join(dir, "gen-0"), o)
	if err != nil {
		return nil, err
	}

	records := c.Records()
	if err := d.write(func(emit func(seq uint64, rec thunder.Record[K, V]) error) error {
		for i, r := range records {
			if err := emit(uint64(i), r); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = d.Close()
		return nil, err
	}
	d.length = len(records)
	return d, nil
}

func open[K comparable, V any](root, path string, o options) (*Dataset[K, V], error) {
	pebbleOpts := &pebble.Options{
		MaxOpenFiles: o.maxOpenFiles,
	}
	if o.cacheSize > 0 {
		cache := pebble.NewCache(o.cacheSize)
		defer cache.Unref()
		pebbleOpts.Cache = cache
	}

	db, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("pebbleds: open %s: %w", path, err)
	}

	return &Dataset[K, V]{
		db:    db,
		root:  root,
		codec: codec.Gob[thunder.Record[K, V]](),
		opts:  o,
		gen:   &atomic.Uint64{},
	}, nil
}

// derive opens a fresh database for an operation's result and registers it
// for closure with the parent.
func (d *Dataset[K, V]) derive() (*Dataset[K, V], error) {
	path := filepath.Join(d.root, fmt.Sprintf("gen-%d", d.gen.Add(1)))
	child, err := open[K, V](d.root, path, d.opts)
	if err != nil {
		return nil, err
	}
	child.gen = d.gen

	d.mu.Lock()
	d.children = append(d.children, child)
	d.mu.Unlock()
	return child, nil
}

// write streams records through emit into the database in batches.
func (d *Dataset[K, V]) write(fill func(emit func(seq uint64, rec thunder.Record[K, V]) error) error) error {
	batch := d.db.NewBatch()
	// batch is reassigned on rotation; close whichever is current.
	defer func() { _ = batch.Close() }()

	emit := func(seq uint64, rec thunder.Record[K, V]) error {
		data, err := d.codec.Encode(rec)
		if err != nil {
			return err
		}
		if err := batch.Set(seqKey(seq), data, nil); err != nil {
			return fmt.Errorf("pebbleds: batch set: %w", err)
		}

		if int(batch.Count()) >= d.opts.batchSize {
			if err := batch.Commit(pebble.Sync); err != nil {
				return fmt.Errorf("pebbleds: commit batch: %w", err)
			}
			if err := batch.Close(); err != nil {
				return err
			}
			batch = d.db.NewBatch()
		}
		return nil
	}

	if err := fill(emit); err != nil {
		return err
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebbleds: commit batch: %w", err)
	}
	return nil
}

// scan streams every record in dataset order.
func (d *Dataset[K, V]) scan(fn func(seq uint64, rec thunder.Record[K, V]) error) error {
	iter, err := d.db.NewIter(nil)
	if err != nil {
		return fmt.Errorf("pebbleds: iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := d.codec.Decode(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(binary.BigEndian.Uint64(iter.Key()), rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// MapValues streams the store through f into a fresh database, preserving
// positions.
func (d *Dataset[K, V]) MapValues(ctx context.Context, f thunder.MapFunc[V, V]) (thunder.Dataset[K, V], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := d.derive()
	if err != nil {
		return nil, err
	}

	err = out.write(func(emit func(uint64, thunder.Record[K, V]) error) error {
		return d.scan(func(seq uint64, rec thunder.Record[K, V]) error {
			mapped, err := f(rec.Value)
			if err != nil {
				return &thunder.OperationError{Op: "mapValues", Err: err}
			}
			return emit(seq, thunder.Record[K, V]{Key: rec.Key, Value: mapped})
		})
	})
	if err != nil {
		return nil, err
	}
	out.length = d.length
	return out, nil
}

// Filter streams the store through p into a fresh database, keeping
// positions of retained records.
func (d *Dataset[K, V]) Filter(ctx context.Context, pred thunder.FilterFunc[K, V]) (thunder.Dataset[K, V], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := d.derive()
	if err != nil {
		return nil, err
	}

	kept := 0
	err = out.write(func(emit func(uint64, thunder.Record[K, V]) error) error {
		return d.scan(func(seq uint64, rec thunder.Record[K, V]) error {
			keep, err := pred(rec.Key, rec.Value)
			if err != nil {
				return &thunder.OperationError{Op: "filter", Err: err}
			}
			if !keep {
				return nil
			}
			kept++
			return emit(seq, rec)
		})
	})
	if err != nil {
		return nil, err
	}
	out.length = kept
	return out, nil
}

// Reduce folds all values in a single streaming pass.
func (d *Dataset[K, V]) Reduce(ctx context.Context, f thunder.CombineFunc[V]) (V, error) {
	var (
		acc    V
		merged bool
	)
	if err := ctx.Err(); err != nil {
		return acc, err
	}

	err := d.scan(func(_ uint64, rec thunder.Record[K, V]) error {
		if !merged {
			acc, merged = rec.Value, true
			return nil
		}
		next, err := f(acc, rec.Value)
		if err != nil {
			return &thunder.OperationError{Op: "reduce", Err: err}
		}
		acc = next
		return nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	if !merged {
		var zero V
		return zero, thunder.ErrEmptyDataset
	}
	return acc, nil
}

// GroupByKey streams the store into an in-memory grouping.
func (d *Dataset[K, V]) GroupByKey(ctx context.Context) (map[K][]V, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := make(map[K][]V)
	err := d.scan(func(_ uint64, rec thunder.Record[K, V]) error {
		groups[rec.Key] = append(groups[rec.Key], rec.Value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ReduceByKey folds each key's values incrementally, then writes one record
// per distinct key into a fresh database in first-seen key order.
func (d *Dataset[K, V]) ReduceByKey(ctx context.Context, f thunder.CombineFunc[V]) (thunder.Dataset[K, V], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := make(map[K]int)
	folded := make([]thunder.Record[K, V], 0)
	err := d.scan(func(_ uint64, rec thunder.Record[K, V]) error {
		i, seen := index[rec.Key]
		if !seen {
			index[rec.Key] = len(folded)
			folded = append(folded, rec)
			return nil
		}
		combined, err := f(folded[i].Value, rec.Value)
		if err != nil {
			return &thunder.OperationError{Op: "reduceByKey", Err: err}
		}
		folded[i].Value = combined
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err := d.derive()
	if err != nil {
		return nil, err
	}
	err = out.write(func(emit func(uint64, thunder.Record[K, V]) error) error {
		for i, rec := range folded {
			if err := emit(uint64(i), rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.length = len(folded)
	return out, nil
}

// Count reports the number of records, tracked on construction.
func (d *Dataset[K, V]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return d.length, nil
}

// Collect streams all values in dataset order.
func (d *Dataset[K, V]) Collect(ctx context.Context) ([]V, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := make([]V, 0, d.length)
	err := d.scan(func(_ uint64, rec thunder.Record[K, V]) error {
		values = append(values, rec.Value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// Close closes this dataset's database and every dataset derived from it.
func (d *Dataset[K, V]) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	children := d.children
	d.children = nil
	d.mu.Unlock()

	var firstErr error
	for _, child := range children {
		if err := child.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := d.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
