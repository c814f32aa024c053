package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/karina-peters/metro-map/internal/metro"
	"github.com/karina-peters/metro-map/models"
)

// ArrivalSource returns grouped predictions for a set of stations
type ArrivalSource interface {
	Arrivals(ctx context.Context, stationCodes []string) (metro.ArrivalGroups, error)
}

// StationLookup resolves station codes
type StationLookup interface {
	StationName(code string) (string, bool)
	AllStations() []metro.Station
}

// ArrivalsHandler handles HTTP requests for station predictions
type ArrivalsHandler struct {
	arrivals ArrivalSource
	stations StationLookup
}

// NewArrivalsHandler creates a new handler
func NewArrivalsHandler(arrivals ArrivalSource, stations StationLookup) *ArrivalsHandler {
	return &ArrivalsHandler{arrivals: arrivals, stations: stations}
}

// GetArrivals handles GET /api/arrivals/{stations}
// stations is one code or a comma separated list (platforms of a transfer
// station have distinct codes). Unknown codes are rejected once the station
// directory is loaded.
func (h *ArrivalsHandler) GetArrivals(w http.ResponseWriter, r *http.Request) {
	var codes []string
	for _, c := range strings.Split(chi.URLParam(r, "stations"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	if len(codes) == 0 {
		writeError(w, http.StatusBadRequest, "at least one station code is required", nil)
		return
	}

	if len(h.stations.AllStations()) > 0 {
		for _, c := range codes {
			if _, ok := h.stations.StationName(c); !ok {
				writeError(w, http.StatusNotFound, "Station not found", map[string]interface{}{"code": c})
				return
			}
		}
	}

	groups, err := h.arrivals.Arrivals(r.Context(), codes)
	if err != nil {
		writeError(w, statusFor(err), "Failed to retrieve arrivals", map[string]interface{}{
			"stations": codes,
			"internal": err.Error(),
		})
		return
	}

	count := 0
	for _, g := range groups {
		count += len(g)
	}
	writeJSON(w, http.StatusOK, cacheLive, models.ArrivalsResponse{
		Stations: codes,
		Groups:   groups,
		Count:    count,
	})
}
