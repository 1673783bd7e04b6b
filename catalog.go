package thunder

import (
	"context"

	"github.com/thunder-project/thunder/bench"
)

// Operations builds the standard benchmark catalog for a dataset backend.
// The same catalog value drives any Dataset implementation through the bench
// runner, so timings taken against different backends measure the same work.
//
// Every backend operation is eager, so invoking it forces full evaluation;
// results are discarded because the harness measures cost, not output.
func Operations[K comparable, V any](sum, maxOf CombineFunc[V], mapFn MapFunc[V, V], pred FilterFunc[K, V]) bench.Catalog[Dataset[K, V]] {
	return bench.Catalog[Dataset[K, V]]{
		"count": func(ctx context.Context, d Dataset[K, V]) error {
			_, err := d.Count(ctx)
			return err
		},
		"collect": func(ctx context.Context, d Dataset[K, V]) error {
			_, err := d.Collect(ctx)
			return err
		},
		"map": func(ctx context.Context, d Dataset[K, V]) error {
			_, err := d.MapValues(ctx, mapFn)
			return err
		},
		"filter": func(ctx context.Context, d Dataset[K, V]) error {
			_, err := d.Filter(ctx, pred)
			return err
		},
		"sum": func(ctx context.Context, d Dataset[K, V]) error {
			_, err := d.Reduce(ctx, sum)
			return err
		},
		"max": func(ctx context.Context, d Dataset[K, V]) error {
			_, err := d.Reduce(ctx, maxOf)
			return err
		},
		"groupByKey": func(ctx context.Context, d Dataset[K, V]) error {
			_, err := d.GroupByKey(ctx)
			return err
		},
		"reduceByKey": func(ctx context.Context, d Dataset[K, V]) error {
			_, err := d.ReduceByKey(ctx, sum)
			return err
		},
	}
}
