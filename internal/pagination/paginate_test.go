package pagination

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	items []int
	err   error
}

func (s *sliceSource) Count(ctx context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.items)), nil
}

func (s *sliceSource) Fetch(ctx context.Context, offset, limit int) ([]int, error) {
	end := offset + limit
	if end > len(s.items) {
		end = len(s.items)
	}
	return s.items[offset:end], nil
}

func numbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		numPages int
		expected int
	}{
		{name: "Absent", raw: "", numPages: 3, expected: 1},
		{name: "Garbage", raw: "abc", numPages: 3, expected: 1},
		{name: "Decimal", raw: "2.0", numPages: 3, expected: 1},
		{name: "Zero", raw: "0", numPages: 3, expected: 3},
		{name: "Negative", raw: "-2", numPages: 3, expected: 3},
		{name: "Overflow", raw: "99999999999999999999999", numPages: 5, expected: 5},
		{name: "Negative overflow", raw: "-99999999999999999999999", numPages: 5, expected: 5},
		{name: "Explicit sign", raw: "+2", numPages: 3, expected: 2},
		{name: "Middle", raw: "2", numPages: 3, expected: 2},
		{name: "Past the end", raw: "99", numPages: 3, expected: 3},
		{name: "Empty collection", raw: "4", numPages: 0, expected: 1},
		{name: "Empty collection zero", raw: "0", numPages: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Number(tt.raw, tt.numPages))
		})
	}
}

func TestPaginateBounds(t *testing.T) {
	ctx := context.Background()
	for _, n := range []int{0, 1, 9, 10, 11, 13, 30} {
		for _, size := range []int{1, 3, 10} {
			src := &sliceSource{items: numbers(n)}
			expectedPages := (n + size - 1) / size

			seen := 0
			for number := 1; number <= expectedPages; number++ {
				page, err := Paginate[int](ctx, src, strconv.Itoa(number), size)
				require.NoError(t, err)

				remaining := n - (number-1)*size
				assert.Equal(t, min(size, remaining), page.Len())
				assert.Equal(t, expectedPages, page.NumPages)
				seen += page.Len()
			}
			assert.Equal(t, n, seen)
		}
	}
}

func TestPaginateEmpty(t *testing.T) {
	page, err := Paginate[int](context.Background(), &sliceSource{}, "3", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 0, page.Len())
	assert.NotNil(t, page.Items)
	assert.False(t, page.HasPrevious())
	assert.False(t, page.HasNext())
	assert.False(t, page.HasOtherPages())
}

func TestPaginatePastLastPage(t *testing.T) {
	page, err := Paginate[int](context.Background(), &sliceSource{items: numbers(13)}, "7", 10)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Number)
	assert.Equal(t, []int{10, 11, 12}, page.Items)
	assert.True(t, page.HasPrevious())
	assert.False(t, page.HasNext())
	assert.Equal(t, 1, page.PreviousNumber())
}

func TestPaginateFirstPage(t *testing.T) {
	page, err := Paginate[int](context.Background(), &sliceSource{items: numbers(13)}, "", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, page.Number)
	assert.Len(t, page.Items, 10)
	assert.False(t, page.HasPrevious())
	assert.True(t, page.HasNext())
	assert.Equal(t, 2, page.NextNumber())
	assert.EqualValues(t, 13, page.Count)
}

func TestPaginateCountError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Paginate[int](context.Background(), &sliceSource{err: boom}, "1", 10)
	assert.ErrorIs(t, err, boom)
}

func TestPaginateOutOfRangeSelectsLastPage(t *testing.T) {
	src := &sliceSource{items: numbers(13)}
	for _, raw := range []string{"0", "-1", "99999999999999999999999"} {
		page, err := Paginate[int](context.Background(), src, raw, 5)
		require.NoError(t, err)
		assert.Equal(t, 3, page.Number, raw)
		assert.Equal(t, []int{10, 11, 12}, page.Items, raw)
	}
}
