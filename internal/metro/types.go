// Package metro holds the in-memory model of a metro system: line topology,
// stations, regions and the latest live train positions.
package metro

import (
	"time"

	"github.com/google/uuid"
)

// AllRegions is the reserved region name that always resolves to every
// segment of a line.
const AllRegions = "All"

// DirectionAscending is the direction value whose trains travel in
// ascending segment sequence order. Every other value travels descending.
const DirectionAscending = "1"

// Segment is one track circuit on a line
type Segment struct {
	ID             string  `json:"id"`
	SequenceNumber int     `json:"seqNum"`
	StationCode    *string `json:"stnCode"` // nil when the circuit is not at a platform
}

// IsStation reports whether the segment sits at a station platform
func (s Segment) IsStation() bool {
	return s.StationCode != nil
}

// Station is a passenger station
type Station struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RegionBounds is a half-open index window [Origin, Terminus) over a line's
// ordered segments.
type RegionBounds struct {
	Origin   int `json:"origin"`
	Terminus int `json:"terminus"`
}

// Window clamps the bounds to a sequence of length n and returns the slice
// indices to use. lo == hi means the window is empty.
func (b RegionBounds) Window(n int) (lo, hi int) {
	lo, hi = b.Origin, b.Terminus
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if lo >= hi {
		return 0, 0
	}
	return lo, hi
}

// VehiclePosition is one train as reported by the live feed
type VehiclePosition struct {
	VehicleID              string  `json:"trainId"`
	LineCode               *string `json:"lineCode"` // nil when not in active service
	Direction              string  `json:"direction"`
	CurrentSegmentID       string  `json:"circuitId"`
	DestinationStationCode *string `json:"destinationStationCode"`
	CarCount               int     `json:"carCount"`
	ServiceType            string  `json:"serviceType,omitempty"`
	SecondsAtLocation      int     `json:"secondsAtLocation"`
}

// LineID returns the identity of the line the vehicle is on, or "" when the
// vehicle has no line code.
func (v VehiclePosition) LineID() string {
	if v.LineCode == nil {
		return ""
	}
	return LineIdentity(*v.LineCode, v.Direction)
}

// Snapshot is one complete successful poll of the live feed
type Snapshot struct {
	ID        uuid.UUID         `json:"id"`
	PolledAt  time.Time         `json:"polledAt"`
	Positions []VehiclePosition `json:"positions"`
}

// LineSegments pairs a line identity with its ordered segments
type LineSegments struct {
	LineID   string    `json:"lineId"`
	Segments []Segment `json:"circuits"`
}

// RawSegment is one circuit in a static topology import record
type RawSegment struct {
	SequenceNumber int
	SegmentID      string
	StationCode    *string
}

// RawLine is one static topology import record
type RawLine struct {
	LineCode  string
	Direction string
	Segments  []RawSegment
}

// RawStation is one static station import record
type RawStation struct {
	Code string
	Name string
}

// RawRegionLine is the bounds of one line inside a region import record
type RawRegionLine struct {
	LineCode  string
	Direction string
	Origin    int
	Terminus  int
}

// RawRegion is one static region import record
type RawRegion struct {
	Name  string
	Lines []RawRegionLine
}
