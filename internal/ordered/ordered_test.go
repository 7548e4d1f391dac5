package ordered_test

import (
	"testing"

	"github.com/berleon/blinktree/internal/ordered"
	"github.com/stretchr/testify/require"
)

func TestLowerBound(t *testing.T) {
	tests := []struct {
		name string
		seq  []int
		key  int
		want int
	}{
		{name: "empty", seq: nil, key: 5, want: 0},
		{name: "below all", seq: []int{2, 4, 6}, key: 1, want: 0},
		{name: "above all", seq: []int{2, 4, 6}, key: 7, want: 3},
		{name: "exact match first", seq: []int{2, 4, 6}, key: 2, want: 0},
		{name: "exact match middle", seq: []int{2, 4, 6}, key: 4, want: 1},
		{name: "between", seq: []int{2, 4, 6}, key: 5, want: 2},
		{name: "single element", seq: []int{3}, key: 3, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ordered.LowerBound(tt.seq, tt.key)
			require.Equal(t, tt.want, got)
		})
	}
}
