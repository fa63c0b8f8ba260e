package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/likertlabs/pulse/api/config"
)

// BranchAverage is one row of a branch performance ranking.
type BranchAverage struct {
	Branch       string  `json:"branch"`
	AvgRating    float64 `json:"avg_rating"`
	TotalSurveys int     `json:"total_surveys"`
}

// branchAverageColumns maps logical sort keys onto the avg_rating /
// total_surveys aliases, which both query shapes project under the
// same names.
var branchAverageColumns = map[string]string{
	"branch":         "branch",
	"avg_rating":     "avg_rating",
	"average_rating": "avg_rating",
	"total_surveys":  "total_surveys",
}

// GetTopBranchAverages ranks branches whose average rating is >= 3,
// best first by default.
func GetTopBranchAverages(w http.ResponseWriter, r *http.Request) {
	listBranchAverages(w, r, ">= 3", "averagegood", "DESC")
}

// GetBadBranchAverages ranks branches whose average rating is < 3,
// worst first by default.
func GetBadBranchAverages(w http.ResponseWriter, r *http.Request) {
	listBranchAverages(w, r, "< 3", "averagebad", "ASC")
}

// listBranchAverages serves a branch ranking. A date filter selects a
// live GROUP BY over surveydata; "all time" reads the precomputed
// average view joined against branchrespondent for the counts. Both
// shapes project branch, avg_rating and total_surveys so sorting and
// shaping are shared. The HAVING comparison and view name come from
// the two fixed call sites.
func listBranchAverages(w http.ResponseWriter, r *http.Request, having, view, defaultDirection string) {
	q := r.URL.Query()
	sort := ParseSort(r, branchAverageColumns, "avg_rating", defaultDirection)

	var query string
	var args []any

	rng, active := ResolveDateFilter(q.Get("filter"), q.Get("startDate"), q.Get("endDate"))
	if active {
		pred := &Predicate{}
		pred.DateRange(rng)
		query = "SELECT branch, AVG(rating)::float8 AS avg_rating, COUNT(*)::int AS total_surveys FROM surveydata" +
			pred.WhereClause() +
			" GROUP BY branch HAVING AVG(rating) " + having +
			sort.OrderByClause(branchAverageColumns)
		args = pred.Args()
	} else {
		query = "SELECT ag.branch, ag.average_rating::float8 AS avg_rating, br.total_surveys::int AS total_surveys" +
			" FROM " + view + " ag JOIN branchrespondent br ON ag.branch = br.branch" +
			sort.OrderByClause(branchAverageColumns)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	rows, err := config.Pool.Query(ctx, query, args...)
	if err != nil {
		recordQuery(start, err)
		slog.Error("branch averages query error", "view", view, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer rows.Close()

	averages := []BranchAverage{}
	for rows.Next() {
		var ba BranchAverage
		if err := rows.Scan(&ba.Branch, &ba.AvgRating, &ba.TotalSurveys); err != nil {
			recordQuery(start, err)
			slog.Error("branch averages scan error", "view", view, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		averages = append(averages, ba)
	}
	recordQuery(start, rows.Err())
	if err := rows.Err(); err != nil {
		slog.Error("branch averages rows error", "view", view, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, averages)
}
