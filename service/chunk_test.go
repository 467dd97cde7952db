package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{name: "empty", items: nil, size: 4, want: [][]int{}},
		{name: "round robin", items: []int{1, 2, 3, 4, 5, 6, 7}, size: 3, want: [][]int{{1, 4, 7}, {2, 5}, {3, 6}}},
		{name: "fewer items than buckets", items: []int{1, 2}, size: 4, want: [][]int{{1}, {2}}},
		{name: "invalid size", items: []int{1, 2}, size: 0, want: [][]int{{1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.items, tt.size))
		})
	}
}
