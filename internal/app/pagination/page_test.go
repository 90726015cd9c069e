package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name      string
		requested int
		total     int
		size      int
		want      Page
	}{
		{
			name: "empty list", requested: 3, total: 0, size: 5,
			want: Page{Current: 1, Size: 5, TotalCount: 0, TotalPages: 0},
		},
		{
			name: "first page", requested: 1, total: 12, size: 5,
			want: Page{Current: 1, Size: 5, TotalCount: 12, TotalPages: 3, HasNext: true, Range: []int{1, 2, 3}},
		},
		{
			name: "last partial page", requested: 3, total: 12, size: 5,
			want: Page{Current: 3, Size: 5, TotalCount: 12, TotalPages: 3, HasPrevious: true, Range: []int{1, 2, 3}},
		},
		{
			name: "beyond last page is clamped", requested: 40, total: 12, size: 5,
			want: Page{Current: 3, Size: 5, TotalCount: 12, TotalPages: 3, HasPrevious: true, Range: []int{1, 2, 3}},
		},
		{
			name: "zero page is clamped", requested: 0, total: 6, size: 5,
			want: Page{Current: 1, Size: 5, TotalCount: 6, TotalPages: 2, HasNext: true, Range: []int{1, 2}},
		},
		{
			name: "exact multiple", requested: 2, total: 10, size: 5,
			want: Page{Current: 2, Size: 5, TotalCount: 10, TotalPages: 2, HasPrevious: true, Range: []int{1, 2}},
		},
		{
			name: "fifth page stays in first window", requested: 5, total: 60, size: 5,
			want: Page{Current: 5, Size: 5, TotalCount: 60, TotalPages: 12, HasPrevious: true, HasNext: true, Range: []int{1, 2, 3, 4, 5}},
		},
		{
			name: "sixth page opens second window", requested: 6, total: 60, size: 5,
			want: Page{Current: 6, Size: 5, TotalCount: 60, TotalPages: 12, HasPrevious: true, HasNext: true, Range: []int{6, 7, 8, 9, 10}},
		},
		{
			name: "last window is truncated", requested: 12, total: 60, size: 5,
			want: Page{Current: 12, Size: 5, TotalCount: 60, TotalPages: 12, HasPrevious: true, Range: []int{11, 12}},
		},
		{
			name: "default size", requested: 1, total: 7, size: 0,
			want: Page{Current: 1, Size: DefaultSize, TotalCount: 7, TotalPages: 2, HasNext: true, Range: []int{1, 2}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, New(tc.requested, tc.total, tc.size))
		})
	}
}

func TestOffsetAndNeighbours(t *testing.T) {
	p := New(3, 23, 5)
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, 5, p.Limit())
	assert.Equal(t, 2, p.PreviousPage())
	assert.Equal(t, 4, p.NextPage())

	first := New(1, 23, 5)
	assert.Equal(t, 0, first.Offset())
	assert.Equal(t, 1, first.PreviousPage())

	last := New(5, 23, 5)
	assert.Equal(t, 5, last.NextPage())
	assert.False(t, last.HasNext)
}

func TestSizeIsCapped(t *testing.T) {
	p := New(1, 1000, 5000)
	assert.Equal(t, MaxSize, p.Size)
	assert.Equal(t, 10, p.TotalPages)
}
