package thunder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunder-project/thunder"
	"github.com/thunder-project/thunder/bench"
	"github.com/thunder-project/thunder/collection"
	"github.com/thunder-project/thunder/collection/aggregate"
	"github.com/thunder-project/thunder/distributed"
)

func standardCatalog() bench.Catalog[thunder.Dataset[int, int]] {
	return thunder.Operations[int, int](
		aggregate.Sum[int],
		aggregate.Max[int],
		func(v int) (int, error) { return v * 2, nil },
		func(k, _ int) (bool, error) { return k > 1, nil },
	)
}

func TestOperations_names(t *testing.T) {
	catalog := standardCatalog()

	want := []string{"count", "collect", "map", "filter", "sum", "max", "groupByKey", "reduceByKey"}
	assert.Len(t, catalog, len(want))
	for _, name := range want {
		assert.Contains(t, catalog, name)
	}
}

// TestCatalogDrivesBothBackends runs the identical catalog and runner
// against the local engine and the partitioned stand-in; this is the
// substitutability contract in action.
func TestCatalogDrivesBothBackends(t *testing.T) {
	ctx := context.Background()
	local, err := collection.From([]int{1, 1, 2, 2}, []int{10, 20, 30, 40})
	require.NoError(t, err)
	dist, err := distributed.Distribute(ctx, local)
	require.NoError(t, err)

	runner := bench.NewRunner(standardCatalog(),
		bench.WithRepetitions(2),
		bench.WithInnerLoops(2),
	)

	for name, backend := range map[string]thunder.Dataset[int, int]{
		"local":       local,
		"distributed": dist,
	} {
		t.Run(name, func(t *testing.T) {
			results, err := runner.RunAll(ctx, backend)
			require.NoError(t, err)
			assert.Len(t, results, len(standardCatalog()))

			ms := results.Milliseconds()
			for op, elapsed := range ms {
				assert.GreaterOrEqual(t, elapsed, 0.0, "operation %s", op)
			}
		})
	}
}

func TestOperationError(t *testing.T) {
	boom := errors.New("boom")
	err := &thunder.OperationError{Op: "reduce", Err: boom}

	assert.Equal(t, "thunder: operation reduce: boom", err.Error())
	assert.ErrorIs(t, err, boom)
}
