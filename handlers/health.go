package handlers

import (
	"net/http"
	"time"

	"github.com/karina-peters/metro-map/internal/metro"
	"github.com/karina-peters/metro-map/models"
)

// StatusReporter reports load and refresh state
type StatusReporter interface {
	Status() metro.SystemStatus
}

// HealthHandler handles GET /health
type HealthHandler struct {
	system StatusReporter
}

// NewHealthHandler creates a new handler
func NewHealthHandler(system StatusReporter) *HealthHandler {
	return &HealthHandler{system: system}
}

// GetHealth reports "starting" (503) until static data has loaded and a first
// snapshot exists, "degraded" while refreshes are failing and "ok" otherwise.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	st := h.system.Status()

	status := "ok"
	code := http.StatusOK
	switch {
	case !st.Ready || st.Positions.PolledAt.IsZero():
		status = "starting"
		code = http.StatusServiceUnavailable
	case st.Positions.FailureCount > 0:
		status = "degraded"
	}

	writeJSON(w, code, cacheNone, models.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		System:    st,
	})
}
