package portal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequest(t *testing.T) {
	var p PageRequest
	p.ApplyDefaults()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())
	require.NoError(t, p.Validate())

	p = PageRequest{Page: 3, PageSize: 20}
	assert.Equal(t, 40, p.Offset())

	p = PageRequest{Page: 1, PageSize: MaxPageSize + 1}
	assert.Error(t, p.Validate())
}

func TestPageRequestRejectsOverflowingPage(t *testing.T) {
	p := PageRequest{Page: math.MaxInt64, PageSize: DefaultPageSize}
	assert.Error(t, p.Validate())

	p = PageRequest{Page: MaxPage, PageSize: MaxPageSize}
	require.NoError(t, p.Validate())
	assert.GreaterOrEqual(t, p.Offset(), 0)
	assert.LessOrEqual(t, p.Offset(), math.MaxInt32)

	p.Page++
	assert.Error(t, p.Validate())
}

func TestNewPageHasMore(t *testing.T) {
	req := PageRequest{Page: 2, PageSize: 2}
	page := NewPage([]int{3, 4}, 5, req)
	assert.True(t, page.HasMore)

	page = NewPage([]int{5}, 5, PageRequest{Page: 3, PageSize: 2})
	assert.False(t, page.HasMore)

	empty := NewPage[int](nil, 0, PageRequest{Page: 1, PageSize: 10})
	assert.NotNil(t, empty.Items)
}

func TestDateRangeInclusive(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	r := DateRange{Start: &start, End: &end}

	assert.True(t, r.Contains(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2025, 1, 20, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 1, 9, 23, 59, 0, 0, time.UTC)))

	assert.Equal(t, time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC), *r.EndExclusive())
	assert.Equal(t, start, *r.StartInclusive())
}

func TestDateRangeOpenEnds(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	r := DateRange{Start: &start}
	assert.True(t, r.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, r.EndExclusive())
	assert.True(t, DateRange{}.IsZero())
	assert.True(t, DateRange{}.Contains(time.Now()))
}

func TestDateRangeValidate(t *testing.T) {
	a := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Error(t, DateRange{Start: &a, End: &b}.Validate())
	assert.NoError(t, DateRange{Start: &b, End: &a}.Validate())
	assert.NoError(t, DateRange{Start: &a, End: &a}.Validate())
}

func TestBatchItemValidate(t *testing.T) {
	assert.NoError(t, BatchItem{Type: ItemTypeFolder, ID: "x"}.Validate())
	assert.Error(t, BatchItem{Type: "report", ID: "x"}.Validate())
	assert.Error(t, BatchItem{Type: ItemTypeFile}.Validate())
}
