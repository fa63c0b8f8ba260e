package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/likertlabs/pulse/api/config"
)

// BranchRespondent is a per-branch respondent count.
type BranchRespondent struct {
	Branch       string `json:"branch"`
	TotalSurveys int    `json:"total_surveys"`
}

// RespondentListResponse is the envelope for /branch-respondent.
type RespondentListResponse struct {
	Data  []BranchRespondent `json:"data"`
	Total int                `json:"total"`
}

var branchRespondentColumns = map[string]string{
	"branch":        "branch",
	"total_surveys": "total_surveys",
}

// aggregateSource abstracts where per-branch respondent counts come
// from. Both variants render against the same predicate, so the count
// and data queries stay over one logical filter regardless of path.
type aggregateSource interface {
	countQuery(p *Predicate) string
	dataQuery(p *Predicate, sort SortParams, limitOffset string) string
}

// liveGroupBy aggregates directly from surveydata; used whenever a
// date filter narrows the window, since the precomputed view cannot.
type liveGroupBy struct{}

func (liveGroupBy) countQuery(p *Predicate) string {
	return "SELECT COUNT(DISTINCT branch) FROM surveydata" + p.WhereClause()
}

func (liveGroupBy) dataQuery(p *Predicate, sort SortParams, limitOffset string) string {
	return "SELECT branch, COUNT(*)::int AS total_surveys FROM surveydata" + p.WhereClause() +
		" GROUP BY branch" + sort.OrderByClause(branchRespondentColumns) + limitOffset
}

// precomputedView reads the all-time branchrespondent view.
type precomputedView struct{}

func (precomputedView) countQuery(p *Predicate) string {
	return "SELECT COUNT(*) FROM branchrespondent" + p.WhereClause()
}

func (precomputedView) dataQuery(p *Predicate, sort SortParams, limitOffset string) string {
	return "SELECT branch, total_surveys::int FROM branchrespondent" + p.WhereClause() +
		sort.OrderByClause(branchRespondentColumns) + limitOffset
}

// GetBranchRespondent lists per-branch respondent counts with
// pagination, sorting, branch search and a named date filter.
func GetBranchRespondent(w http.ResponseWriter, r *http.Request) {
	page, err := ParsePagination(r, 5)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sort := ParseSort(r, branchRespondentColumns, "branch", "ASC")

	q := r.URL.Query()
	pred := &Predicate{}

	rng, dateActive := ResolveDateFilter(q.Get("dateFilter"), q.Get("from"), q.Get("to"))
	if dateActive {
		pred.DateRange(rng)
	}
	if search := q.Get("search"); search != "" {
		pred.Search(search, "branch")
	}

	var src aggregateSource = precomputedView{}
	if dateActive {
		src = liveGroupBy{}
	}

	countQuery := src.countQuery(pred)
	limitOffset, dataArgs := pred.LimitOffset(page.Limit, page.Offset)
	dataQuery := src.dataQuery(pred, sort, limitOffset)

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var total int
	var respondents []BranchRespondent

	err = runCountAndData(ctx,
		func(ctx context.Context) error {
			return config.Pool.QueryRow(ctx, countQuery, pred.Args()...).Scan(&total)
		},
		func(ctx context.Context) error {
			rows, err := config.Pool.Query(ctx, dataQuery, dataArgs...)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				var br BranchRespondent
				if err := rows.Scan(&br.Branch, &br.TotalSurveys); err != nil {
					return err
				}
				respondents = append(respondents, br)
			}
			return rows.Err()
		},
	)
	if err != nil {
		slog.Error("branch respondent query error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if respondents == nil {
		respondents = []BranchRespondent{}
	}

	writeJSON(w, http.StatusOK, RespondentListResponse{Data: respondents, Total: total})
}

// TellerCount is a per-teller response count for one branch and day.
type TellerCount struct {
	Date          string `json:"date"`
	Branch        string `json:"branch"`
	TellerID      string `json:"teller_id"`
	TellerIDCount int    `json:"teller_id_count"`
}

// GetBranchRespondentTeller lists per-teller response counts from the
// branchrespondent_teller view, optionally narrowed by branch and a
// date or date range.
func GetBranchRespondentTeller(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pred := &Predicate{}

	if branch := q.Get("branch"); branch != "" {
		pred.Equals("branch", branch)
	}
	startDate, endDate := q.Get("startDate"), q.Get("endDate")
	switch {
	case startDate != "" && endDate != "":
		pred.DateFrom(startDate)
		pred.DateTo(endDate)
	case q.Get("date") != "":
		pred.DateIs(q.Get("date"))
	}

	query := "SELECT date, branch, teller_id, teller_id_count::int FROM branchrespondent_teller" +
		pred.WhereClause() + " ORDER BY teller_id"

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	rows, err := config.Pool.Query(ctx, query, pred.Args()...)
	if err != nil {
		recordQuery(start, err)
		slog.Error("branch respondent teller query error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer rows.Close()

	tellers := []TellerCount{}
	for rows.Next() {
		var tc TellerCount
		var date time.Time
		if err := rows.Scan(&date, &tc.Branch, &tc.TellerID, &tc.TellerIDCount); err != nil {
			recordQuery(start, err)
			slog.Error("branch respondent teller scan error", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		tc.Date = date.Format(dateLayout)
		tellers = append(tellers, tc)
	}
	recordQuery(start, rows.Err())
	if err := rows.Err(); err != nil {
		slog.Error("branch respondent teller rows error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tellers)
}
