package handlers

import (
	"slices"
	"strconv"
	"strings"
)

// Predicate accumulates AND-joined WHERE clauses together with their
// positional bind values. The same predicate renders into both the
// COUNT query and the data query, so placeholder numbering stays
// consistent between the two; LIMIT/OFFSET placeholders are appended
// to the data query only, via LimitOffset.
type Predicate struct {
	clauses []string
	args    []any
}

// bind appends a value and returns its $n placeholder.
func (p *Predicate) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

// DateBetween constrains date to [start, end], inclusive both ends.
func (p *Predicate) DateBetween(start, end string) {
	p.clauses = append(p.clauses, "date BETWEEN "+p.bind(start)+" AND "+p.bind(end))
}

// DateFrom constrains date to >= start.
func (p *Predicate) DateFrom(start string) {
	p.clauses = append(p.clauses, "date >= "+p.bind(start))
}

// DateTo constrains date to <= end.
func (p *Predicate) DateTo(end string) {
	p.clauses = append(p.clauses, "date <= "+p.bind(end))
}

// DateIs constrains date to a single day.
func (p *Predicate) DateIs(day string) {
	p.clauses = append(p.clauses, "date = "+p.bind(day))
}

// DateRange applies a resolved date range, translating a single-sided
// bound into the matching comparison. An empty range adds nothing.
func (p *Predicate) DateRange(r DateRange) {
	switch {
	case r.From != "" && r.To != "":
		p.DateBetween(r.From, r.To)
	case r.From != "":
		p.DateFrom(r.From)
	case r.To != "":
		p.DateTo(r.To)
	}
}

// Equals constrains column to a value. The column name must be a
// compile-time constant, never user input.
func (p *Predicate) Equals(column string, value any) {
	p.clauses = append(p.clauses, column+" = "+p.bind(value))
}

// Search adds a case-insensitive substring match across the given
// columns, OR-joined and parenthesized so it composes with the
// surrounding AND clauses. The term is lower-cased into a %term%
// pattern.
func (p *Predicate) Search(term string, columns ...string) {
	pattern := "%" + strings.ToLower(term) + "%"
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + ") LIKE " + p.bind(pattern)
	}
	p.clauses = append(p.clauses, "("+strings.Join(parts, " OR ")+")")
}

// Empty reports whether no clause has been added.
func (p *Predicate) Empty() bool {
	return len(p.clauses) == 0
}

// WhereClause renders " WHERE a AND b AND ..." or "" when empty.
func (p *Predicate) WhereClause() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}

// Args returns the bind values for the predicate as rendered by
// WhereClause. The count query passes exactly these.
func (p *Predicate) Args() []any {
	return p.args
}

// LimitOffset returns the " LIMIT $n OFFSET $m" suffix for the data
// query and its full bind values: the predicate args with limit and
// offset appended. The predicate itself is not mutated, so Args keeps
// serving the count query.
func (p *Predicate) LimitOffset(limit, offset int) (string, []any) {
	n := len(p.args)
	suffix := " LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2)
	args := append(slices.Clone(p.args), limit, offset)
	return suffix, args
}
