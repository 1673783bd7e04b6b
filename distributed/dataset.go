package distributed

import (
	"context"
	"errors"
	"iter"
	"math"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/spaolacci/murmur3"
	"go.uber.org/zap"

	"github.com/thunder-project/thunder"
	"github.com/thunder-project/thunder/collection"
	"github.com/thunder-project/thunder/loser"
)

var ErrInvalidPartitions = errors.New("distributed: partitions must be greater than 0")

// entry pairs a record with its position in the original dataset order. The
// position survives scattering so Collect can restore the original order.
type entry[K comparable, V any] struct {
	seq int64
	rec thunder.Record[K, V]
}

// Dataset is an in-process partitioned implementation of thunder.Dataset.
// Records are hash-scattered over partitions by key; narrow operations run
// per partition on their own goroutines and wide operations combine per
// partition before merging across partitions, the way a distributed backend
// evaluates them. It exists to make the local engine's substitutability
// testable and to expose the coordination overhead the local engine avoids.
type Dataset[K comparable, V any] struct {
	// parts holds one seq-ascending run of entries per partition.
	parts  [][]entry[K, V]
	length int
	opts   options[K, V]
}

// Distribute scatters a local collection over hash partitions.
func Distribute[K comparable, V any](ctx context.Context, c *collection.Collection[K, V], opts ...Option[K, V]) (*Dataset[K, V], error) {
	return scatter(ctx, c.Records(), opts...)
}

// From builds a partitioned dataset from parallel key and value sequences.
// It fails with thunder.ErrLengthMismatch when the lengths differ.
func From[K comparable, V any](ctx context.Context, keys []K, values []V, opts ...Option[K, V]) (*Dataset[K, V], error) {
	c, err := collection.From(keys, values)
	if err != nil {
		return nil, err
	}
	return scatter(ctx, c.Records(), opts...)
}

func scatter[K comparable, V any](ctx context.Context, records []thunder.Record[K, V], opts ...Option[K, V]) (*Dataset[K, V], error) {
	o := defaultOptions[K, V]()
	for _, opt := range opts {
		opt(&o)
	}
	if o.partitions <= 0 {
		return nil, ErrInvalidPartitions
	}

	// One collector per partition. Sender stripes run concurrently, so a
	// partition sees its entries in nondeterministic arrival order; the
	// btree keeps each run seq-sorted regardless.
	trees := make([]*btree.BTreeG[entry[K, V]], o.partitions)
	chans := make([]chan entry[K, V], o.partitions)
	var collectWg sync.WaitGroup
	for p := range trees {
		trees[p] = btree.NewG(2, func(a, b entry[K, V]) bool {
			return a.seq < b.seq
		})
		chans[p] = make(chan entry[K, V], 64)

		collectWg.Add(1)
		go func(tree *btree.BTreeG[entry[K, V]], ch <-chan entry[K, V]) {
			defer collectWg.Done()
			for e := range ch {
				tree.ReplaceOrInsert(e)
			}
		}(trees[p], chans[p])
	}

	var (
		sendWg     sync.WaitGroup
		errOnce    sync.Once
		scatterErr error
	)

	stripes := o.partitions
	stripeLen := (len(records) + stripes - 1) / stripes
	for w := 0; w < stripes; w++ {
		lo := w * stripeLen
		hi := min(lo+stripeLen, len(records))
		if lo >= hi {
			continue
		}

		sendWg.Add(1)
		go func(lo, hi int) {
			defer sendWg.Done()
			for i := lo; i < hi; i++ {
				r := records[i]
				p := int(murmur3.Sum64(o.keyBytes(r.Key)) % uint64(o.partitions))
				select {
				case chans[p] <- entry[K, V]{seq: int64(i), rec: r}:
				case <-ctx.Done():
					errOnce.Do(func() { scatterErr = ctx.Err() })
					return
				}
			}
		}(lo, hi)
	}

	sendWg.Wait()
	for _, ch := range chans {
		close(ch)
	}
	collectWg.Wait()

	if scatterErr != nil {
		return nil, scatterErr
	}

	parts := make([][]entry[K, V], o.partitions)
	total := 0
	for p, tree := range trees {
		run := make([]entry[K, V], 0, tree.Len())
		tree.Ascend(func(e entry[K, V]) bool {
			run = append(run, e)
			return true
		})
		parts[p] = run
		total += len(run)
	}

	o.logger.Debug("distributed: scattered records",
		zap.Int("records", total),
		zap.Int("partitions", o.partitions))

	return &Dataset[K, V]{parts: parts, length: total, opts: o}, nil
}

// MapValues applies f to every value, partition by partition, preserving
// length and key sequence.
func (d *Dataset[K, V]) MapValues(ctx context.Context, f thunder.MapFunc[V, V]) (thunder.Dataset[K, V], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer d.logOp("mapValues", time.Now())

	out := make([][]entry[K, V], len(d.parts))
	err := d.eachPart(func(p int, run []entry[K, V]) error {
		mapped := make([]entry[K, V], len(run))
		for i, e := range run {
			v, err := f(e.rec.Value)
			if err != nil {
				return &thunder.OperationError{Op: "mapValues", Err: err}
			}
			mapped[i] = entry[K, V]{seq: e.seq, rec: thunder.Record[K, V]{Key: e.rec.Key, Value: v}}
		}
		out[p] = mapped
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Dataset[K, V]{parts: out, length: d.length, opts: d.opts}, nil
}

// Filter retains the records for which p is true, preserving relative order
// within and across partitions.
func (d *Dataset[K, V]) Filter(ctx context.Context, pred thunder.FilterFunc[K, V]) (thunder.Dataset[K, V], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer d.logOp("filter", time.Now())

	out := make([][]entry[K, V], len(d.parts))
	err := d.eachPart(func(p int, run []entry[K, V]) error {
		kept := make([]entry[K, V], 0, len(run))
		for _, e := range run {
			keep, err := pred(e.rec.Key, e.rec.Value)
			if err != nil {
				return &thunder.OperationError{Op: "filter", Err: err}
			}
			if keep {
				kept = append(kept, e)
			}
		}
		out[p] = kept
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, run := range out {
		total += len(run)
	}
	return &Dataset[K, V]{parts: out, length: total, opts: d.opts}, nil
}

// Reduce folds each partition's values, then merges the partial results
// across partitions. The combination order differs from the local engine's,
// which is why f must be associative and commutative.
func (d *Dataset[K, V]) Reduce(ctx context.Context, f thunder.CombineFunc[V]) (V, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	defer d.logOp("reduce", time.Now())

	if d.length == 0 {
		return zero, thunder.ErrEmptyDataset
	}

	type partial struct {
		value V
		ok    bool
	}
	partials := make([]partial, len(d.parts))

	err := d.eachPart(func(p int, run []entry[K, V]) error {
		if len(run) == 0 {
			return nil
		}
		acc := run[0].rec.Value
		for _, e := range run[1:] {
			next, err := f(acc, e.rec.Value)
			if err != nil {
				return &thunder.OperationError{Op: "reduce", Err: err}
			}
			acc = next
		}
		partials[p] = partial{value: acc, ok: true}
		return nil
	})
	if err != nil {
		return zero, err
	}

	var (
		acc    V
		merged bool
	)
	for _, part := range partials {
		if !part.ok {
			continue
		}
		if !merged {
			acc, merged = part.value, true
			continue
		}
		next, err := f(acc, part.value)
		if err != nil {
			return zero, &thunder.OperationError{Op: "reduce", Err: err}
		}
		acc = next
	}
	return acc, nil
}

// GroupByKey groups each partition's records through its shuffle store. Hash
// partitioning sends every occurrence of a key to the same partition, so the
// per-partition groups are disjoint and union into the final result.
func (d *Dataset[K, V]) GroupByKey(ctx context.Context) (map[K][]V, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer d.logOp("groupByKey", time.Now())

	var mu sync.Mutex
	groups := make(map[K][]V)

	err := d.eachPart(func(p int, run []entry[K, V]) error {
		store, err := d.opts.store()
		if err != nil {
			return err
		}
		defer store.Close()

		for _, e := range run {
			if err := store.Append(e.rec.Key, e.rec.Value); err != nil {
				return err
			}
		}

		return store.Groups(func(key K, values []V) error {
			mu.Lock()
			groups[key] = append([]V(nil), values...)
			mu.Unlock()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ReduceByKey folds each key's values within its partition, then renumbers
// the folded records into a new dataset, one record per distinct key.
func (d *Dataset[K, V]) ReduceByKey(ctx context.Context, f thunder.CombineFunc[V]) (thunder.Dataset[K, V], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer d.logOp("reduceByKey", time.Now())

	folded := make([][]thunder.Record[K, V], len(d.parts))
	err := d.eachPart(func(p int, run []entry[K, V]) error {
		index := make(map[K]int)
		recs := make([]thunder.Record[K, V], 0)
		for _, e := range run {
			i, seen := index[e.rec.Key]
			if !seen {
				index[e.rec.Key] = len(recs)
				recs = append(recs, e.rec)
				continue
			}
			combined, err := f(recs[i].Value, e.rec.Value)
			if err != nil {
				return &thunder.OperationError{Op: "reduceByKey", Err: err}
			}
			recs[i].Value = combined
		}
		folded[p] = recs
		return nil
	})
	if err != nil {
		return nil, err
	}

	parts := make([][]entry[K, V], len(d.parts))
	seq := int64(0)
	total := 0
	for p, recs := range folded {
		run := make([]entry[K, V], len(recs))
		for i, r := range recs {
			run[i] = entry[K, V]{seq: seq, rec: r}
			seq++
		}
		parts[p] = run
		total += len(run)
	}
	return &Dataset[K, V]{parts: parts, length: total, opts: d.opts}, nil
}

// Count reports the number of records. Partition sizes are tracked on
// construction, so no pass over the data is needed.
func (d *Dataset[K, V]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return d.length, nil
}

// Collect merges the seq-sorted partition runs back into the original
// dataset order and returns the values.
func (d *Dataset[K, V]) Collect(ctx context.Context) ([]V, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer d.logOp("collect", time.Now())

	seqs := make([]iter.Seq[entry[K, V]], len(d.parts))
	for p, run := range d.parts {
		seqs[p] = func(yield func(entry[K, V]) bool) {
			for _, e := range run {
				if !yield(e) {
					return
				}
			}
		}
	}

	values := make([]V, 0, d.length)
	merged := loser.Merge(seqs, entry[K, V]{seq: math.MaxInt64}, func(a, b entry[K, V]) bool {
		return a.seq < b.seq
	})
	for e := range merged {
		values = append(values, e.rec.Value)
	}
	return values, nil
}

// eachPart runs fn once per partition, each on its own goroutine, and waits
// for all of them. The first error wins.
func (d *Dataset[K, V]) eachPart(fn func(p int, run []entry[K, V]) error) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for p, run := range d.parts {
		wg.Add(1)
		go func(p int, run []entry[K, V]) {
			defer wg.Done()
			if err := fn(p, run); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(p, run)
	}
	wg.Wait()
	return firstErr
}

func (d *Dataset[K, V]) logOp(op string, start time.Time) {
	d.opts.logger.Debug("distributed: operation complete",
		zap.String("op", op),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("partitions", len(d.parts)))
}
