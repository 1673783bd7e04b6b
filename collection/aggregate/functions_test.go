package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunder-project/thunder/collection/aggregate"
)

func TestCombiners(t *testing.T) {
	tests := []struct {
		name    string
		combine func(int, int) (int, error)
		a, b    int
		want    int
	}{
		{name: "sum", combine: aggregate.Sum[int], a: 3, b: 4, want: 7},
		{name: "max picks larger", combine: aggregate.Max[int], a: 3, b: 4, want: 4},
		{name: "max of negatives", combine: aggregate.Max[int], a: -3, b: -4, want: -3},
		{name: "min picks smaller", combine: aggregate.Min[int], a: 3, b: 4, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.combine(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// All stock combiners are commutative.
			swapped, err := tt.combine(tt.b, tt.a)
			require.NoError(t, err)
			assert.Equal(t, got, swapped)
		})
	}
}

func TestSum_strings(t *testing.T) {
	got, err := aggregate.Sum("ab", "cd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", got)
}
