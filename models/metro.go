package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karina-peters/metro-map/internal/metro"
)

// StationsResponse is the JSON response for GET /api/stations
type StationsResponse struct {
	Stations []metro.Station `json:"stations"`
	Count    int             `json:"count"`
}

// LinesResponse is the JSON response for GET /api/lines
type LinesResponse struct {
	Lines []string `json:"lines"`
	Count int      `json:"count"`
}

// RegionsResponse is the JSON response for GET /api/regions
type RegionsResponse struct {
	Regions []string `json:"regions"`
	Count   int      `json:"count"`
}

// RegionLine is the stored window of one line inside a region
type RegionLine struct {
	LineID   string `json:"lineId"`
	Origin   int    `json:"origin"`
	Terminus int    `json:"terminus"`
}

// RegionResponse is the JSON response for GET /api/regions/{region}
type RegionResponse struct {
	Region string       `json:"region"`
	Lines  []RegionLine `json:"lines"`
}

// CircuitsResponse is the JSON response for GET /api/circuits
type CircuitsResponse struct {
	RegionID string               `json:"regionId"`
	Lines    []metro.LineSegments `json:"lines"`
	Count    int                  `json:"count"`
}

// SequenceResponse is the JSON response for GET /api/lines/{lineId}/circuits/{circuitId}
type SequenceResponse struct {
	LineID         string `json:"lineId"`
	CircuitID      string `json:"circuitId"`
	SequenceNumber int    `json:"seqNum"`
}

// OccupancyResponse is the JSON response for GET /api/occupancy
type OccupancyResponse struct {
	LineID     string    `json:"lineId"`
	CircuitID  string    `json:"circuitId"`
	Occupied   bool      `json:"occupied"`
	SnapshotID uuid.UUID `json:"snapshotId"`
}

// MapResponse is the JSON response for GET /api/map
type MapResponse struct {
	RegionID   string           `json:"regionId"`
	Lines      []metro.LineView `json:"lines"`
	SnapshotID uuid.UUID        `json:"snapshotId"`
	PolledAt   time.Time        `json:"polledAt"`
}

// TrainsResponse is the JSON response for GET /api/trains
type TrainsResponse struct {
	View       string                  `json:"view"`
	Trains     []metro.VehiclePosition `json:"trains"`
	Count      int                     `json:"count"`
	SnapshotID uuid.UUID               `json:"snapshotId"`
	PolledAt   time.Time               `json:"polledAt"`
}

// BoardResponse is the JSON response for GET /api/trains/{trainId}/board
type BoardResponse struct {
	metro.Board
	SnapshotID uuid.UUID `json:"snapshotId"`
}

// ArrivalsResponse is the JSON response for GET /api/arrivals/{stations}
type ArrivalsResponse struct {
	Stations []string            `json:"stations"`
	Groups   metro.ArrivalGroups `json:"groups"`
	Count    int                 `json:"count"`
}
