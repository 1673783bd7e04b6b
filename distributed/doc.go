// Package distributed implements the thunder.Dataset contract the way a
// distributed backend would evaluate it, while staying in-process: records
// are murmur3 hash-scattered over partitions, narrow operations (map,
// filter) run per partition on their own goroutines, and wide operations
// (reduce, group-by-key, reduce-by-key) combine per partition before merging
// across partitions.
//
// The package is a stand-in, not a runtime: there is no network transfer,
// no fault tolerance and no scheduler. Its purpose is twofold. It proves
// backend substitutability — the same benchmark catalog and harness drive
// it and the local engine, and results must be observably identical modulo
// unspecified ordering — and it carries the per-operation coordination
// machinery (scatter, shuffle stores, cross-partition merge) whose overhead
// the local engine exists to avoid.
//
// Basic usage:
//
//	local, err := collection.From(keys, values)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d, err := distributed.Distribute(ctx, local,
//	    distributed.WithPartitions[string, int](8),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	perKey, err := d.GroupByKey(ctx)
//
// GroupByKey runs through a pluggable shuffle store (see the shuffle
// package); the default keeps groups on the heap, and the bolt store spills
// them to a temporary bbolt file.
package distributed
