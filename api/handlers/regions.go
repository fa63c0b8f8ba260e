package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/likertlabs/pulse/api/config"
)

type RegionAverage struct {
	Region        string  `json:"region"`
	AverageRating float64 `json:"average_rating"`
}

type RegionAveragesResponse struct {
	Regions []RegionAverage `json:"regions"`
}

// GetRegionAverages returns the average rating per branch for the map
// view. Branches double as regions in the dashboard.
func GetRegionAverages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query := `
		SELECT branch AS region, AVG(rating)::float8 AS average_rating
		FROM surveydata
		GROUP BY branch
	`

	start := time.Now()
	rows, err := config.Pool.Query(ctx, query)
	if err != nil {
		recordQuery(start, err)
		slog.Error("region averages query error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch region averages")
		return
	}
	defer rows.Close()

	regions := []RegionAverage{}
	for rows.Next() {
		var ra RegionAverage
		if err := rows.Scan(&ra.Region, &ra.AverageRating); err != nil {
			recordQuery(start, err)
			slog.Error("region averages scan error", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to fetch region averages")
			return
		}
		regions = append(regions, ra)
	}
	recordQuery(start, rows.Err())
	if err := rows.Err(); err != nil {
		slog.Error("region averages rows error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch region averages")
		return
	}

	writeJSON(w, http.StatusOK, RegionAveragesResponse{Regions: regions})
}

type ProvinceAverage struct {
	Province string  `json:"province"`
	Value    float64 `json:"value"`
}

// GetAveragePerformance returns the precomputed per-branch averages as
// {province, value} pairs for the choropleth map.
func GetAveragePerformance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query := `SELECT branch AS province, average_rating::float8 AS value FROM averageperformance`

	start := time.Now()
	rows, err := config.Pool.Query(ctx, query)
	if err != nil {
		recordQuery(start, err)
		slog.Error("average performance query error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch average performance")
		return
	}
	defer rows.Close()

	provinces := []ProvinceAverage{}
	for rows.Next() {
		var pa ProvinceAverage
		if err := rows.Scan(&pa.Province, &pa.Value); err != nil {
			recordQuery(start, err)
			slog.Error("average performance scan error", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to fetch average performance")
			return
		}
		provinces = append(provinces, pa)
	}
	recordQuery(start, rows.Err())
	if err := rows.Err(); err != nil {
		slog.Error("average performance rows error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch average performance")
		return
	}

	writeJSON(w, http.StatusOK, provinces)
}
