// Package thunder defines the backend-neutral contract for a key-value
// collection engine: an immutable keyed dataset with a fixed operation set
// (map, filter, reduce, group-by-key, reduce-by-key, count, collect).
//
// Distributed data-processing backends pay fixed coordination overhead
// (serialization, scheduling, shuffles) on every operation, which dominates
// cost at small and medium data sizes. This module provides a
// correctness-equivalent local engine behind the same contract, plus a
// timing harness, so a system can choose per workload between a local and a
// distributed evaluation without changing call-site semantics.
//
// The contract is the Dataset interface. Three backends implement it:
//
//   - collection: the local in-memory engine (single-threaded, synchronous)
//   - distributed: an in-process partitioned stand-in that evaluates the
//     way a distributed backend would (hash shuffle, per-partition combine)
//   - pebbleds: an out-of-core variant backed by a pebble store
//
// The bench package times named operations against any of them:
//
//	local, err := collection.From([]int{1, 1, 2, 2}, []int{10, 20, 30, 40})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	catalog := thunder.Operations[int, int](
//	    aggregate.Sum[int], aggregate.Max[int],
//	    func(v int) (int, error) { return v * 2, nil },
//	    func(k, _ int) (bool, error) { return k > 1, nil },
//	)
//
//	runner := bench.NewRunner(catalog)
//	results, err := runner.RunAll(ctx, thunder.Dataset[int, int](local))
//
// All operations are referentially transparent: they return new state and
// leave the receiver untouched, so the harness can re-run the same operation
// on the same dataset for repeated trials.
package thunder
