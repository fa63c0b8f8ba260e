package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 1000
)

var (
	ErrInvalidLimit  = errors.New("invalid limit parameter")
	ErrInvalidOffset = errors.New("invalid offset parameter")
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit/offset from the query string. Absent
// values fall back to defaults; present values must parse as integers
// with limit > 0 and offset >= 0, otherwise an error is returned and
// the caller must reject the request before touching the store.
func ParsePagination(r *http.Request, defaultLimit int) (PaginationParams, error) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	limit := defaultLimit
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return PaginationParams{}, ErrInvalidLimit
		}
		limit = parsed
		if limit > MaxLimit {
			limit = MaxLimit
		}
	}

	if o := r.URL.Query().Get("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			return PaginationParams{}, ErrInvalidOffset
		}
		offset = parsed
	}

	return PaginationParams{Limit: limit, Offset: offset}, nil
}

type SortParams struct {
	Field     string
	Direction string
}

// ParseSort maps the client's sort/order values onto the endpoint's
// allowlist. Unknown sort keys fall back to defaultField and never
// reach the query text; order normalizes case-insensitively to
// ASC/DESC and falls back to defaultDirection.
func ParseSort(r *http.Request, allowedFields map[string]string, defaultField, defaultDirection string) SortParams {
	field := r.URL.Query().Get("sort")
	if _, ok := allowedFields[field]; !ok {
		field = defaultField
	}

	direction := defaultDirection
	switch strings.ToUpper(r.URL.Query().Get("order")) {
	case "ASC":
		direction = "ASC"
	case "DESC":
		direction = "DESC"
	}

	return SortParams{Field: field, Direction: direction}
}

// OrderByClause renders " ORDER BY <column> <dir>" using only the
// allowlisted column for the sort field. Identifiers cannot be bound
// as parameters, so this lookup is the only path from user input to
// the ORDER BY text.
func (s SortParams) OrderByClause(fieldMapping map[string]string) string {
	column := fieldMapping[s.Field]
	if column == "" {
		return ""
	}
	dir := "DESC"
	if s.Direction == "ASC" {
		dir = "ASC"
	}
	return " ORDER BY " + column + " " + dir
}
