package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	f := Filters{}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)

	f = Filters{Page: -3, PageSize: 1000}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)

	f = Filters{Page: 4, PageSize: 50}
	f.Normalize()
	assert.Equal(t, 4, f.Page)
	assert.Equal(t, 50, f.PageSize)
}

func TestLimitOffset(t *testing.T) {
	f := Filters{Page: 3, PageSize: 20}
	assert.Equal(t, 20, f.Limit())
	assert.Equal(t, 40, f.Offset())
}

func TestSortColumn(t *testing.T) {
	f := Filters{Sort: "-year", SortSafelist: []string{"id", "name", "year"}}
	assert.Equal(t, "year", f.SortColumn())
	assert.Equal(t, DescSort, f.SortDirection())

	f.Sort = "name"
	assert.Equal(t, "name", f.SortColumn())
	assert.Equal(t, AscSort, f.SortDirection())

	f.Sort = "password_hash"
	assert.Panics(t, func() { f.SortColumn() })
}

func TestCalculateMetadata(t *testing.T) {
	meta := CalculateMetadata(95, Filters{Page: 2, PageSize: 20})
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 20, meta.PageSize)
	assert.Equal(t, 5, meta.LastPage)
	assert.Equal(t, 95, meta.TotalRecords)

	assert.Equal(t, Metadata{}, CalculateMetadata(0, Filters{Page: 1, PageSize: 20}))
}
