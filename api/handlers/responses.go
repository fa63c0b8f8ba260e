package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ListResponse is the envelope for paginated row listings. ServerDate
// carries the server's current date so clients align their "today"
// filters with the server clock rather than their own.
type ListResponse[T any] struct {
	Data       []T    `json:"data"`
	TotalCount int    `json:"totalCount"`
	ServerDate string `json:"serverDate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("JSON encoding error", "error", err)
	}
}

// writeError sends a structured JSON error body. Store errors are
// logged with full detail by the caller; the client-visible message
// stays generic.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
