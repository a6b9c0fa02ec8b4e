package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{100, 1, 100},
		{101, 100, 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TotalPages(tc.total, tc.limit), "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestWindowCountRule(t *testing.T) {
	for total := 0; total <= 35; total++ {
		for limit := 1; limit <= 12; limit++ {
			for page := 1; page <= 6; page++ {
				start, end := Pagination{Page: page, Limit: limit}.Window(total)
				got := end - start

				want := total - (page-1)*limit
				if want < 0 {
					want = 0
				}
				if want > limit {
					want = limit
				}
				if got != want {
					t.Fatalf("total=%d limit=%d page=%d: expected %d items, got %d", total, limit, page, want, got)
				}
			}
		}
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, int64(0), Pagination{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, int64(20), Pagination{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, int64(0), Pagination{Page: 0, Limit: 10}.Offset())
}

func TestOffsetSaturatesForHugePages(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), Pagination{Page: math.MaxInt, Limit: 10}.Offset())
	assert.Equal(t, int64(math.MaxInt64), Pagination{Page: math.MaxInt, Limit: math.MaxInt}.Offset())
	assert.Equal(t, int64(math.MaxInt-1), Pagination{Page: math.MaxInt, Limit: 1}.Offset())
}

func TestWindowHugePageIsEmpty(t *testing.T) {
	start, end := Pagination{Page: math.MaxInt, Limit: 10}.Window(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)

	start, end = Pagination{Page: 2, Limit: math.MaxInt}.Window(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)

	start, end = Pagination{Page: 1, Limit: math.MaxInt}.Window(25)
	assert.Equal(t, 0, start)
	assert.Equal(t, 25, end)
}

func TestSkip(t *testing.T) {
	skip, ok := Pagination{Page: 3, Limit: 10}.Skip(25)
	assert.True(t, ok)
	assert.Equal(t, int64(20), skip)

	_, ok = Pagination{Page: 4, Limit: 10}.Skip(30)
	assert.False(t, ok)

	_, ok = Pagination{Page: math.MaxInt, Limit: 10}.Skip(math.MaxInt32)
	assert.False(t, ok)
}

func TestBuildMeta(t *testing.T) {
	meta := BuildMeta(42, Pagination{Page: 2, Limit: 10})
	assert.Equal(t, Meta{Total: 42, Page: 2, Limit: 10, TotalPages: 5}, meta)
}
