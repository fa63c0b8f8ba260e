package handlers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/likertlabs/pulse/api/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test", nil)

	params, err := handlers.ParsePagination(req, 0)
	require.NoError(t, err)

	assert.Equal(t, handlers.DefaultLimit, params.Limit)
	assert.Equal(t, 0, params.Offset)
}

func TestParsePagination_Custom(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test?limit=25&offset=50", nil)

	params, err := handlers.ParsePagination(req, 0)
	require.NoError(t, err)

	assert.Equal(t, 25, params.Limit)
	assert.Equal(t, 50, params.Offset)
}

func TestParsePagination_CustomDefault(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test", nil)

	params, err := handlers.ParsePagination(req, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, params.Limit)
	assert.Equal(t, 0, params.Offset)
}

func TestParsePagination_MaxLimit(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test?limit=5000", nil)

	params, err := handlers.ParsePagination(req, 0)
	require.NoError(t, err)

	assert.Equal(t, handlers.MaxLimit, params.Limit)
}

func TestParsePagination_ZeroLimit(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test?limit=0", nil)

	_, err := handlers.ParsePagination(req, 0)
	assert.ErrorIs(t, err, handlers.ErrInvalidLimit)
}

func TestParsePagination_NegativeLimit(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test?limit=-1", nil)

	_, err := handlers.ParsePagination(req, 0)
	assert.ErrorIs(t, err, handlers.ErrInvalidLimit)
}

func TestParsePagination_NegativeOffset(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test?offset=-1", nil)

	_, err := handlers.ParsePagination(req, 0)
	assert.ErrorIs(t, err, handlers.ErrInvalidOffset)
}

func TestParsePagination_NonNumeric(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test?limit=abc", nil)
	_, err := handlers.ParsePagination(req, 0)
	assert.ErrorIs(t, err, handlers.ErrInvalidLimit)

	req = httptest.NewRequest("GET", "/api/test?offset=xyz", nil)
	_, err = handlers.ParsePagination(req, 0)
	assert.ErrorIs(t, err, handlers.ErrInvalidOffset)
}

var testSortColumns = map[string]string{
	"date":   "date",
	"rating": "rating",
}

func TestParseSort_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test", nil)

	sort := handlers.ParseSort(req, testSortColumns, "date", "DESC")

	assert.Equal(t, "date", sort.Field)
	assert.Equal(t, "DESC", sort.Direction)
}

func TestParseSort_AllowedField(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test?sort=rating&order=asc", nil)

	sort := handlers.ParseSort(req, testSortColumns, "date", "DESC")

	assert.Equal(t, "rating", sort.Field)
	assert.Equal(t, "ASC", sort.Direction)
}

func TestParseSort_UnknownFieldFallsBack(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test?sort=evil_column;DROP", nil)

	sort := handlers.ParseSort(req, testSortColumns, "date", "DESC")

	assert.Equal(t, "date", sort.Field)
}

func TestParseSort_UnknownOrderFallsBack(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test?order=sideways", nil)

	sort := handlers.ParseSort(req, testSortColumns, "date", "ASC")

	assert.Equal(t, "ASC", sort.Direction)
}

func TestParseSort_OrderCaseInsensitive(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/test?order=DeSc", nil)

	sort := handlers.ParseSort(req, testSortColumns, "date", "ASC")

	assert.Equal(t, "DESC", sort.Direction)
}

func TestOrderByClause(t *testing.T) {
	sort := handlers.SortParams{Field: "rating", Direction: "ASC"}
	assert.Equal(t, " ORDER BY rating ASC", sort.OrderByClause(testSortColumns))

	sort = handlers.SortParams{Field: "missing", Direction: "ASC"}
	assert.Equal(t, "", sort.OrderByClause(testSortColumns))
}
