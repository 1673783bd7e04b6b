package distributed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunder-project/thunder"
	"github.com/thunder-project/thunder/codec"
	"github.com/thunder-project/thunder/collection"
	"github.com/thunder-project/thunder/collection/aggregate"
	"github.com/thunder-project/thunder/distributed"
	"github.com/thunder-project/thunder/distributed/shuffle/bolt"
)

func fakeCollection(t *testing.T, n int) *collection.Collection[string, int] {
	t.Helper()
	faker := gofakeit.New(42)
	return collection.FromFunc(n, func(int) thunder.Record[string, int] {
		return thunder.Record[string, int]{
			Key:   faker.Noun(),
			Value: faker.Number(-1000, 1000),
		}
	})
}

func distribute(t *testing.T, c *collection.Collection[string, int], opts ...distributed.Option[string, int]) *distributed.Dataset[string, int] {
	t.Helper()
	d, err := distributed.Distribute(context.Background(), c, opts...)
	require.NoError(t, err)
	return d
}

func TestDistribute_invalidPartitions(t *testing.T) {
	c := fakeCollection(t, 10)
	_, err := distributed.Distribute(context.Background(), c,
		distributed.WithPartitions[string, int](0))
	assert.ErrorIs(t, err, distributed.ErrInvalidPartitions)
}

func TestFrom_lengthMismatch(t *testing.T) {
	_, err := distributed.From(context.Background(), []string{"a"}, []int{1, 2})
	assert.ErrorIs(t, err, thunder.ErrLengthMismatch)
}

// TestMatchesLocalEngine drives the local engine and the partitioned
// stand-in through every operation and requires observably identical
// results, modulo the orderings the contract leaves unspecified.
func TestMatchesLocalEngine(t *testing.T) {
	tests := []struct {
		name string
		opts []distributed.Option[string, int]
	}{
		{
			name: "default store, 4 partitions",
		},
		{
			name: "single partition",
			opts: []distributed.Option[string, int]{
				distributed.WithPartitions[string, int](1),
			},
		},
		{
			name: "more partitions than keys",
			opts: []distributed.Option[string, int]{
				distributed.WithPartitions[string, int](64),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			local := fakeCollection(t, 2000)
			dist := distribute(t, local, tt.opts...)

			t.Run("count", func(t *testing.T) {
				want, err := local.Count(ctx)
				require.NoError(t, err)
				got, err := dist.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})

			t.Run("collect preserves original order", func(t *testing.T) {
				want, err := local.Collect(ctx)
				require.NoError(t, err)
				got, err := dist.Collect(ctx)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})

			t.Run("mapValues", func(t *testing.T) {
				double := func(v int) (int, error) { return v * 2, nil }
				lm, err := local.MapValues(ctx, double)
				require.NoError(t, err)
				dm, err := dist.MapValues(ctx, double)
				require.NoError(t, err)

				want, err := lm.Collect(ctx)
				require.NoError(t, err)
				got, err := dm.Collect(ctx)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})

			t.Run("filter", func(t *testing.T) {
				pos := func(_ string, v int) (bool, error) { return v > 0, nil }
				lf, err := local.Filter(ctx, pos)
				require.NoError(t, err)
				df, err := dist.Filter(ctx, pos)
				require.NoError(t, err)

				want, err := lf.Collect(ctx)
				require.NoError(t, err)
				got, err := df.Collect(ctx)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})

			t.Run("reduce", func(t *testing.T) {
				want, err := local.Reduce(ctx, aggregate.Sum[int])
				require.NoError(t, err)
				got, err := dist.Reduce(ctx, aggregate.Sum[int])
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})

			t.Run("groupByKey", func(t *testing.T) {
				want, err := local.GroupByKey(ctx)
				require.NoError(t, err)
				got, err := dist.GroupByKey(ctx)
				require.NoError(t, err)
				assert.Empty(t, cmp.Diff(want, got))
			})

			t.Run("reduceByKey", func(t *testing.T) {
				lr, err := local.ReduceByKey(ctx, aggregate.Sum[int])
				require.NoError(t, err)
				dr, err := dist.ReduceByKey(ctx, aggregate.Sum[int])
				require.NoError(t, err)

				// Record order is unspecified; compare as groupings.
				want, err := lr.GroupByKey(ctx)
				require.NoError(t, err)
				got, err := dr.GroupByKey(ctx)
				require.NoError(t, err)
				assert.Empty(t, cmp.Diff(want, got))
			})
		})
	}
}

func TestGroupByKey_boltStore(t *testing.T) {
	ctx := context.Background()
	local := fakeCollection(t, 300)
	dist := distribute(t, local,
		distributed.WithStore(bolt.Factory(t.TempDir(), codec.Gob[string](), codec.Gob[int]())),
	)

	want, err := local.GroupByKey(ctx)
	require.NoError(t, err)
	got, err := dist.GroupByKey(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))
}

func TestReduce_empty(t *testing.T) {
	d, err := distributed.From(context.Background(), []string{}, []int{})
	require.NoError(t, err)

	_, err = d.Reduce(context.Background(), aggregate.Sum[int])
	assert.ErrorIs(t, err, thunder.ErrEmptyDataset)
}

func TestOperationErrorPropagation(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	dist := distribute(t, fakeCollection(t, 50))

	_, err := dist.MapValues(ctx, func(int) (int, error) { return 0, boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var opErr *thunder.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "mapValues", opErr.Op)
}

func TestReferentialTransparency(t *testing.T) {
	ctx := context.Background()
	dist := distribute(t, fakeCollection(t, 500))

	before, err := dist.Collect(ctx)
	require.NoError(t, err)

	_, err = dist.ReduceByKey(ctx, aggregate.Sum[int])
	require.NoError(t, err)
	_, err = dist.Filter(ctx, func(_ string, v int) (bool, error) { return v > 0, nil })
	require.NoError(t, err)

	after, err := dist.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestContextCancellation(t *testing.T) {
	dist := distribute(t, fakeCollection(t, 50))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dist.Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImplementsDataset(t *testing.T) {
	var _ thunder.Dataset[string, int] = &distributed.Dataset[string, int]{}
}
