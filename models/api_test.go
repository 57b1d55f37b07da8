package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name      string
		page      Pagination
		wantItems []int
		wantPage  int
		wantSize  int
		hasNext   bool
	}{
		{"defaults", Pagination{}, []int{1, 2, 3, 4, 5}, 1, DefaultPageSize, false},
		{"first page", Pagination{Page: 1, PageSize: 2}, []int{1, 2}, 1, 2, true},
		{"last partial page", Pagination{Page: 3, PageSize: 2}, []int{5}, 3, 2, false},
		{"past the end", Pagination{Page: 9, PageSize: 2}, []int{}, 9, 2, false},
		{"page size capped", Pagination{Page: 1, PageSize: 5000}, []int{1, 2, 3, 4, 5}, 1, MaxPageSize, false},
		{"huge page", Pagination{Page: math.MaxInt, PageSize: 10}, []int{}, MaxPage, 10, false},
		{"huge page and size", Pagination{Page: math.MaxInt, PageSize: math.MaxInt}, []int{}, MaxPage, MaxPageSize, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PagedResult[int]
			assert.NotPanics(t, func() { got = Paginate(items, tt.page) })
			assert.Equal(t, tt.wantItems, got.Items)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantSize, got.PageSize)
			assert.Equal(t, tt.hasNext, got.HasNext)
			assert.Equal(t, 5, got.Total)
		})
	}
}
