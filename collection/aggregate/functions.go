// Package aggregate provides stock combiners for Reduce and ReduceByKey.
// All of them are associative and commutative over their domain.
package aggregate

import "cmp"

// Sum adds two values. For strings this concatenates, which is associative
// but not commutative; use it with string values only where combination
// order does not matter to the caller.
func Sum[V cmp.Ordered](a, b V) (V, error) {
	return a + b, nil
}

// Max returns the larger of two values.
func Max[V cmp.Ordered](a, b V) (V, error) {
	return max(a, b), nil
}

// Min returns the smaller of two values.
func Min[V cmp.Ordered](a, b V) (V, error) {
	return min(a, b), nil
}
