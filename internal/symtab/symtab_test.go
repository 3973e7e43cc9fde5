package symtab

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrayBoundsCount(t *testing.T) {
	tests := []struct {
		name     string
		bounds   ArrayBounds
		expected uint64
	}{
		{"not an array", ArrayBounds{Minimum: 3, Maximum: 3}, 1},
		{"zero based", ArrayBounds{Maximum: 9}, 10},
		{"offset", ArrayBounds{Minimum: 2, Maximum: 4}, 3},
		{"inverted", ArrayBounds{Minimum: 5, Maximum: 1}, 0},
		{"negative minimum", ArrayBounds{Minimum: -2, Maximum: 2}, 5},
		{"whole int64 range", ArrayBounds{Minimum: math.MinInt64, Maximum: math.MaxInt64}, math.MaxUint64},
		{"from int64 minimum", ArrayBounds{Minimum: math.MinInt64, Maximum: 0}, 1<<63 + 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.bounds.Count())
		})
	}
}
