package wmata

import (
	"strconv"

	"github.com/karina-peters/metro-map/internal/metro"
)

// standardRoutesResponse is the body of TrainPositions/StandardRoutes
type standardRoutesResponse struct {
	StandardRoutes []standardRoute `json:"StandardRoutes"`
}

type standardRoute struct {
	LineCode      string         `json:"LineCode"`
	TrackNum      int            `json:"TrackNum"`
	TrackCircuits []trackCircuit `json:"TrackCircuits"`
}

type trackCircuit struct {
	SeqNum      int     `json:"SeqNum"`
	CircuitID   int     `json:"CircuitId"`
	StationCode *string `json:"StationCode"`
}

// trainPositionsResponse is the body of TrainPositions/TrainPositions
type trainPositionsResponse struct {
	TrainPositions []trainPosition `json:"TrainPositions"`
}

type trainPosition struct {
	TrainID                string  `json:"TrainId"`
	TrainNumber            string  `json:"TrainNumber"`
	CarCount               int     `json:"CarCount"`
	DirectionNum           int     `json:"DirectionNum"`
	CircuitID              int     `json:"CircuitId"`
	DestinationStationCode *string `json:"DestinationStationCode"`
	LineCode               *string `json:"LineCode"`
	SecondsAtLocation      int     `json:"SecondsAtLocation"`
	ServiceType            string  `json:"ServiceType"`
}

// predictionResponse is the body of StationPrediction.svc/json/GetPrediction
type predictionResponse struct {
	Trains []prediction `json:"Trains"`
}

type prediction struct {
	Car             string `json:"Car"`
	Destination     string `json:"Destination"`
	DestinationCode string `json:"DestinationCode"`
	DestinationName string `json:"DestinationName"`
	Group           string `json:"Group"`
	Line            string `json:"Line"`
	LocationCode    string `json:"LocationCode"`
	LocationName    string `json:"LocationName"`
	Min             string `json:"Min"`
}

// Numeric track and direction numbers become identity strings here and only
// here, so routes and positions always agree on line keys.

func (r standardRoute) toRaw() metro.RawLine {
	line := metro.RawLine{
		LineCode:  r.LineCode,
		Direction: strconv.Itoa(r.TrackNum),
		Segments:  make([]metro.RawSegment, 0, len(r.TrackCircuits)),
	}
	for _, c := range r.TrackCircuits {
		line.Segments = append(line.Segments, metro.RawSegment{
			SequenceNumber: c.SeqNum,
			SegmentID:      strconv.Itoa(c.CircuitID),
			StationCode:    c.StationCode,
		})
	}
	return line
}

func (p trainPosition) toPosition() metro.VehiclePosition {
	return metro.VehiclePosition{
		VehicleID:              p.TrainID,
		LineCode:               p.LineCode,
		Direction:              strconv.Itoa(p.DirectionNum),
		CurrentSegmentID:       strconv.Itoa(p.CircuitID),
		DestinationStationCode: p.DestinationStationCode,
		CarCount:               p.CarCount,
		ServiceType:            p.ServiceType,
		SecondsAtLocation:      p.SecondsAtLocation,
	}
}

func (p prediction) toArrival() metro.Arrival {
	return metro.Arrival{
		Car:             p.Car,
		Destination:     p.Destination,
		DestinationCode: p.DestinationCode,
		DestinationName: p.DestinationName,
		Group:           p.Group,
		Line:            p.Line,
		LocationCode:    p.LocationCode,
		LocationName:    p.LocationName,
		Minutes:         p.Min,
	}
}
