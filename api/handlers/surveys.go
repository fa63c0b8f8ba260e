package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/likertlabs/pulse/api/config"
)

// SurveyRecord is one Likert survey response row.
type SurveyRecord struct {
	ID        int     `json:"id"`
	Date      string  `json:"date"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment"`
	Branch    string  `json:"branch"`
	Sentiment string  `json:"sentiment"`
	TellerID  string  `json:"teller_id"`
}

// surveySortColumns is the allowlist of sortable columns shared by the
// raw listing endpoints.
var surveySortColumns = map[string]string{
	"id":     "id",
	"date":   "date",
	"rating": "rating",
	"branch": "branch",
}

func GetSurveyData(w http.ResponseWriter, r *http.Request) {
	listSurveys(w, r, "surveydata")
}

func GetTopPerformance(w http.ResponseWriter, r *http.Request) {
	listSurveys(w, r, "topperformance")
}

func GetBadPerformance(w http.ResponseWriter, r *http.Request) {
	listSurveys(w, r, "badperformance")
}

// listSurveys implements the shared filtered/paginated/sorted listing
// over a survey table or view. The table name comes from the three
// fixed call sites above, never from the request.
func listSurveys(w http.ResponseWriter, r *http.Request, table string) {
	page, err := ParsePagination(r, DefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sort := ParseSort(r, surveySortColumns, "date", "DESC")

	q := r.URL.Query()
	pred := &Predicate{}

	// A single-sided date bound defaults the other side to the server
	// date, matching the dashboard's "up to today" semantics.
	startDate, endDate := q.Get("startDate"), q.Get("endDate")
	if startDate != "" || endDate != "" {
		today := serverDate()
		if startDate == "" {
			startDate = today
		}
		if endDate == "" {
			endDate = today
		}
		pred.DateBetween(startDate, endDate)
	}

	if search := q.Get("search"); search != "" {
		pred.Search(search, "branch", "comment")
	}

	countQuery := "SELECT COUNT(*) FROM " + table + pred.WhereClause()
	limitOffset, dataArgs := pred.LimitOffset(page.Limit, page.Offset)
	dataQuery := "SELECT id, date, rating, comment, branch, sentiment, teller_id FROM " + table +
		pred.WhereClause() + sort.OrderByClause(surveySortColumns) + limitOffset

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var total int
	var records []SurveyRecord

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
				var rec SurveyRecord
				var date time.Time
				if err := rows.Scan(&rec.ID, &date, &rec.Rating, &rec.Comment, &rec.Branch, &rec.Sentiment, &rec.TellerID); err != nil {
					return err
				}
				rec.Date = date.Format(dateLayout)
				records = append(records, rec)
			}
			return rows.Err()
		},
	)
	if err != nil {
		slog.Error("survey listing query error", "table", table, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Return empty array instead of null
	if records == nil {
		records = []SurveyRecord{}
	}

	writeJSON(w, http.StatusOK, ListResponse[SurveyRecord]{
		Data:       records,
		TotalCount: total,
		ServerDate: serverDate(),
	})
}
