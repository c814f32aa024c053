package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/karina-peters/metro-map/internal/metro"
)

// Cache policies. Live data is polled every few seconds upstream.
const (
	cacheStatic = "public, max-age=3600"
	cacheLive   = "public, max-age=4, stale-while-revalidate=4"
	cacheNone   = "no-store"
)

// ErrorResponse is the JSON error body shared by every handler
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, cacheControl string, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Vary", "Accept-Encoding")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, details map[string]interface{}) {
	writeJSON(w, status, cacheNone, ErrorResponse{Error: message, Details: details})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var fe *metro.FetchError
	switch {
	case errors.Is(err, metro.ErrNotFound), errors.Is(err, metro.ErrRegionBoundsMiss):
		return http.StatusNotFound
	case errors.As(err, &fe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
