// Package pebbleds implements the thunder.Dataset contract on top of a
// pebble store. Records are gob-encoded and keyed by their position, so a
// full iteration replays the dataset in order; transforms stream the store
// and write their result into a fresh database under the same root
// directory.
//
// The backend exists for benchmarking: it puts a storage engine between the
// operation set and the data, so the harness can measure what per-operation
// serialization and I/O cost on top of the in-memory engine.
//
// Basic usage:
//
//	d, err := pebbleds.From(t.TempDir(), keys, values)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
//	total, err := d.Reduce(ctx, aggregate.Sum[int])
//
// Closing a dataset closes every dataset derived from it, so a benchmark
// run only needs to close the root.
package pebbleds
