package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/likertlabs/pulse/api/handlers"
	apitesting "github.com/likertlabs/pulse/api/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRegionAverages(t *testing.T) {
	apitesting.SetupTestPostgres(t, testPgDB)

	insertSurvey(t, "2024-01-01", 4, "", "North", "T1")
	insertSurvey(t, "2024-01-02", 5, "", "North", "T1")
	insertSurvey(t, "2024-01-01", 2, "", "South", "T2")

	req := httptest.NewRequest(http.MethodGet, "/api/region-averages", nil)
	rr := httptest.NewRecorder()
	handlers.GetRegionAverages(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.RegionAveragesResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))

	require.Len(t, resp.Regions, 2)
	byRegion := map[string]float64{}
	for _, r := range resp.Regions {
		byRegion[r.Region] = r.AverageRating
	}
	assert.Equal(t, 4.5, byRegion["North"])
	assert.Equal(t, 2.0, byRegion["South"])
}

func TestGetRegionAverages_Empty(t *testing.T) {
	apitesting.SetupTestPostgres(t, testPgDB)

	req := httptest.NewRequest(http.MethodGet, "/api/region-averages", nil)
	rr := httptest.NewRecorder()
	handlers.GetRegionAverages(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.RegionAveragesResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.NotNil(t, resp.Regions)
	assert.Empty(t, resp.Regions)
}

func TestGetAveragePerformance(t *testing.T) {
	apitesting.SetupTestPostgres(t, testPgDB)

	insertSurvey(t, "2024-01-01", 3, "", "East", "T1")
	insertSurvey(t, "2024-01-02", 5, "", "East", "T1")
	insertSurvey(t, "2024-01-01", 1, "", "West", "T2")

	req := httptest.NewRequest(http.MethodGet, "/api/averageperformance", nil)
	rr := httptest.NewRecorder()
	handlers.GetAveragePerformance(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var provinces []handlers.ProvinceAverage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&provinces))

	require.Len(t, provinces, 2)
	byProvince := map[string]float64{}
	for _, p := range provinces {
		byProvince[p.Province] = p.Value
	}
	assert.Equal(t, 4.0, byProvince["East"])
	assert.Equal(t, 1.0, byProvince["West"])
}

func TestGetAveragePerformance_Empty(t *testing.T) {
	apitesting.SetupTestPostgres(t, testPgDB)

	req := httptest.NewRequest(http.MethodGet, "/api/averageperformance", nil)
	rr := httptest.NewRecorder()
	handlers.GetAveragePerformance(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var provinces []handlers.ProvinceAverage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&provinces))
	assert.Empty(t, provinces)
}
