package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/likertlabs/pulse/api/config"
)

// classifySentiment maps a Likert rating to its sentiment bucket.
// Fixed policy: 4-5 positive, 3 neutral, 1-2 negative.
func classifySentiment(rating int) string {
	switch {
	case rating >= 4:
		return "positive"
	case rating == 3:
		return "neutral"
	default:
		return "negative"
	}
}

// roundPercent rounds n/total to the nearest whole percent, reporting
// 0 when total is 0 instead of dividing by zero.
func roundPercent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

// ratingCounts returns the per-rating response counts for surveydata.
func ratingCounts(ctx context.Context) (map[int]int, error) {
	rows, err := config.Pool.Query(ctx, `SELECT rating, COUNT(*)::int FROM surveydata GROUP BY rating`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		counts[rating] = count
	}
	return counts, rows.Err()
}

type StarCount struct {
	Star    int `json:"star"`
	Count   int `json:"count"`
	Percent int `json:"percent"`
}

type SentimentDistributionResponse struct {
	Total        int         `json:"total"`
	Distribution []StarCount `json:"distribution"`
}

// GetSentimentDistribution reports per-star response counts and
// percentages, enumerating stars 5 down to 1 with zero-filled gaps.
func GetSentimentDistribution(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	counts, err := ratingCounts(ctx)
	recordQuery(start, err)
	if err != nil {
		slog.Error("sentiment distribution query error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	distribution := make([]StarCount, 0, 5)
	for star := 5; star >= 1; star-- {
		distribution = append(distribution, StarCount{
			Star:    star,
			Count:   counts[star],
			Percent: roundPercent(counts[star], total),
		})
	}

	writeJSON(w, http.StatusOK, SentimentDistributionResponse{Total: total, Distribution: distribution})
}

type SentimentAnalysisResponse struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
	Total    int `json:"total"`
}

// GetSentimentAnalysis reports the share of positive, neutral and
// negative responses as rounded percentages of the total.
func GetSentimentAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	counts, err := ratingCounts(ctx)
	recordQuery(start, err)
	if err != nil {
		slog.Error("sentiment analysis query error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var positive, neutral, negative, total int
	for rating, count := range counts {
		total += count
		switch classifySentiment(rating) {
		case "positive":
			positive += count
		case "neutral":
			neutral += count
		default:
			negative += count
		}
	}

	writeJSON(w, http.StatusOK, SentimentAnalysisResponse{
		Positive: roundPercent(positive, total),
		Neutral:  roundPercent(neutral, total),
		Negative: roundPercent(negative, total),
		Total:    total,
	})
}
