package collection

import (
	"context"

	"github.com/thunder-project/thunder"
)

// Map applies f independently to each value, producing a new collection with
// a possibly different value type and the same length and key sequence. It
// is the type-changing form of MapValues, which Go interfaces cannot
// express as a method.
func Map[K comparable, V, V2 any](_ context.Context, c *Collection[K, V], f thunder.MapFunc[V, V2]) (*Collection[K, V2], error) {
	return mapRecords(c, f)
}

func mapRecords[K comparable, V, V2 any](c *Collection[K, V], f thunder.MapFunc[V, V2]) (*Collection[K, V2], error) {
	out := make([]thunder.Record[K, V2], len(c.records))
	for i, r := range c.records {
		mapped, err := f(r.Value)
		if err != nil {
			return nil, &thunder.OperationError{Op: "mapValues", Err: err}
		}
		out[i] = thunder.Record[K, V2]{Key: r.Key, Value: mapped}
	}
	return &Collection[K, V2]{records: out}, nil
}
