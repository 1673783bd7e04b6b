// Package collection implements the local in-memory engine behind the
// thunder.Dataset contract: an immutable, ordered sequence of key-value
// records with map, filter, reduce, group-by-key, reduce-by-key, count and
// collect operations, evaluated synchronously with no partitioning,
// scheduling or transfer overhead.
//
// Every operation returns a new collection (or scalar) and leaves the
// receiver untouched, so repeated invocations against the same collection
// observe identical state. Caller-supplied functions fail fast: the first
// error aborts the operation and surfaces wrapped in a
// thunder.OperationError carrying the operation name.
//
// Basic usage:
//
//	c, err := collection.From([]int{1, 1, 2, 2}, []int{10, 20, 30, 40})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	groups, _ := c.GroupByKey(ctx)   // map[1:[10 20] 2:[30 40]]
//	total, _ := c.Reduce(ctx, aggregate.Sum[int])  // 100
//
// Grouping is hash-based on the key's built-in equality; iteration order
// over distinct keys is unspecified, mirroring a distributed shuffle.
package collection
