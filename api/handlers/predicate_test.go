package handlers_test

import (
	"testing"

	"github.com/likertlabs/pulse/api/handlers"
	"github.com/stretchr/testify/assert"
)

func TestPredicate_Empty(t *testing.T) {
	p := &handlers.Predicate{}

	assert.True(t, p.Empty())
	assert.Equal(t, "", p.WhereClause())
	assert.Empty(t, p.Args())
}

func TestPredicate_DateBetween(t *testing.T) {
	p := &handlers.Predicate{}
	p.DateBetween("2024-01-01", "2024-01-31")

	assert.Equal(t, " WHERE date BETWEEN $1 AND $2", p.WhereClause())
	assert.Equal(t, []any{"2024-01-01", "2024-01-31"}, p.Args())
}

func TestPredicate_SingleSidedRange(t *testing.T) {
	p := &handlers.Predicate{}
	p.DateRange(handlers.DateRange{From: "2024-01-01"})
	assert.Equal(t, " WHERE date >= $1", p.WhereClause())

	p = &handlers.Predicate{}
	p.DateRange(handlers.DateRange{To: "2024-01-31"})
	assert.Equal(t, " WHERE date <= $1", p.WhereClause())

	p = &handlers.Predicate{}
	p.DateRange(handlers.DateRange{})
	assert.True(t, p.Empty())
}

func TestPredicate_SearchParenthesized(t *testing.T) {
	p := &handlers.Predicate{}
	p.DateBetween("2024-01-01", "2024-01-31")
	p.Search("Downtown", "branch", "comment")

	assert.Equal(t,
		" WHERE date BETWEEN $1 AND $2 AND (LOWER(branch) LIKE $3 OR LOWER(comment) LIKE $4)",
		p.WhereClause())
	assert.Equal(t, []any{"2024-01-01", "2024-01-31", "%downtown%", "%downtown%"}, p.Args())
}

func TestPredicate_SearchLowercasesTerm(t *testing.T) {
	p := &handlers.Predicate{}
	p.Search("DOWN", "branch")

	assert.Equal(t, []any{"%down%"}, p.Args())
}

func TestPredicate_Equals(t *testing.T) {
	p := &handlers.Predicate{}
	p.Equals("branch", "Jakarta")
	p.DateIs("2024-06-01")

	assert.Equal(t, " WHERE branch = $1 AND date = $2", p.WhereClause())
	assert.Equal(t, []any{"Jakarta", "2024-06-01"}, p.Args())
}

func TestPredicate_LimitOffsetContinuesNumbering(t *testing.T) {
	p := &handlers.Predicate{}
	p.DateBetween("2024-01-01", "2024-01-31")

	suffix, args := p.LimitOffset(10, 20)

	assert.Equal(t, " LIMIT $3 OFFSET $4", suffix)
	assert.Equal(t, []any{"2024-01-01", "2024-01-31", 10, 20}, args)

	// The count query's args must be untouched by the data query suffix.
	assert.Equal(t, []any{"2024-01-01", "2024-01-31"}, p.Args())
}

func TestPredicate_LimitOffsetNoFilters(t *testing.T) {
	p := &handlers.Predicate{}

	suffix, args := p.LimitOffset(5, 0)

	assert.Equal(t, " LIMIT $1 OFFSET $2", suffix)
	assert.Equal(t, []any{5, 0}, args)
}
