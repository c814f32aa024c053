package models

import (
	"time"

	"github.com/karina-peters/metro-map/internal/metro"
)

// HealthResponse is the JSON response for GET /health
type HealthResponse struct {
	Status    string             `json:"status"` // "ok", "degraded" or "starting"
	Timestamp time.Time          `json:"timestamp"`
	System    metro.SystemStatus `json:"system"`
}
