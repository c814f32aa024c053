package handlers

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/karina-peters/metro-map/internal/metro"
	"github.com/karina-peters/metro-map/models"
)

// MetroService is the query surface the metro handlers read from
type MetroService interface {
	AllStations() []metro.Station
	StationName(code string) (string, bool)
	Lines() []string
	Regions() []string
	RegionBounds(region string) (map[string]metro.RegionBounds, error)
	AllLinesWithSegments() []metro.LineSegments
	SegmentsInRegion(lineID, region string) ([]metro.Segment, error)
	RegionLines(region string) ([]metro.LineSegments, error)
	SequenceNumberOf(lineID, segmentID string) (int, bool)
	Occupancy(segmentID, lineID string) bool
	MapView(region string) ([]metro.LineView, error)
	TrainBoard(vehicleID string) (metro.Board, bool)
	Positions() *metro.PositionCache
}

// MetroHandler handles HTTP requests for stations, lines, regions and trains
type MetroHandler struct {
	svc MetroService
}

// NewMetroHandler creates a new handler backed by svc
func NewMetroHandler(svc MetroService) *MetroHandler {
	return &MetroHandler{svc: svc}
}

// GetStations handles GET /api/stations
func (h *MetroHandler) GetStations(w http.ResponseWriter, r *http.Request) {
	stations := h.svc.AllStations()
	writeJSON(w, http.StatusOK, cacheStatic, models.StationsResponse{
		Stations: stations,
		Count:    len(stations),
	})
}

// GetStation handles GET /api/stations/{code}
func (h *MetroHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	name, ok := h.svc.StationName(code)
	if !ok {
		writeError(w, http.StatusNotFound, "Station not found", map[string]interface{}{"code": code})
		return
	}
	writeJSON(w, http.StatusOK, cacheStatic, metro.Station{Code: code, Name: name})
}

// GetLines handles GET /api/lines
func (h *MetroHandler) GetLines(w http.ResponseWriter, r *http.Request) {
	lines := h.svc.Lines()
	writeJSON(w, http.StatusOK, cacheStatic, models.LinesResponse{Lines: lines, Count: len(lines)})
}

// GetRegions handles GET /api/regions
func (h *MetroHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	regions := h.svc.Regions()
	writeJSON(w, http.StatusOK, cacheStatic, models.RegionsResponse{Regions: regions, Count: len(regions)})
}

// GetRegion handles GET /api/regions/{region}
// The All region reports every line with its full extent.
func (h *MetroHandler) GetRegion(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	resp := models.RegionResponse{Region: region, Lines: []models.RegionLine{}}

	if region == metro.AllRegions {
		for _, l := range h.svc.AllLinesWithSegments() {
			resp.Lines = append(resp.Lines, models.RegionLine{LineID: l.LineID, Origin: 0, Terminus: len(l.Segments)})
		}
		writeJSON(w, http.StatusOK, cacheStatic, resp)
		return
	}

	bounds, err := h.svc.RegionBounds(region)
	if err != nil {
		writeError(w, statusFor(err), "Region not found", map[string]interface{}{"region": region})
		return
	}
	for id, b := range bounds {
		resp.Lines = append(resp.Lines, models.RegionLine{LineID: id, Origin: b.Origin, Terminus: b.Terminus})
	}
	sort.Slice(resp.Lines, func(i, j int) bool { return resp.Lines[i].LineID < resp.Lines[j].LineID })
	writeJSON(w, http.StatusOK, cacheStatic, resp)
}

// GetCircuits handles GET /api/circuits?lineId=&regionId=
// Without lineId every line of the region is returned. regionId defaults to All.
func (h *MetroHandler) GetCircuits(w http.ResponseWriter, r *http.Request) {
	lineID := r.URL.Query().Get("lineId")
	regionID := r.URL.Query().Get("regionId")
	if regionID == "" {
		regionID = metro.AllRegions
	}

	var lines []metro.LineSegments
	if lineID != "" {
		segs, err := h.svc.SegmentsInRegion(lineID, regionID)
		if err != nil {
			writeError(w, statusFor(err), "Failed to resolve circuits", map[string]interface{}{
				"lineId":   lineID,
				"regionId": regionID,
				"internal": err.Error(),
			})
			return
		}
		lines = []metro.LineSegments{{LineID: lineID, Segments: segs}}
	} else {
		var err error
		lines, err = h.svc.RegionLines(regionID)
		if err != nil {
			writeError(w, statusFor(err), "Failed to resolve circuits", map[string]interface{}{
				"regionId": regionID,
				"internal": err.Error(),
			})
			return
		}
	}
	if lines == nil {
		lines = []metro.LineSegments{}
	}

	writeJSON(w, http.StatusOK, cacheStatic, models.CircuitsResponse{
		RegionID: regionID,
		Lines:    lines,
		Count:    len(lines),
	})
}

// GetSequenceNumber handles GET /api/lines/{lineId}/circuits/{circuitId}
func (h *MetroHandler) GetSequenceNumber(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineId")
	circuitID := chi.URLParam(r, "circuitId")

	seq, ok := h.svc.SequenceNumberOf(lineID, circuitID)
	if !ok {
		writeError(w, http.StatusNotFound, "Circuit not found on line", map[string]interface{}{
			"lineId":    lineID,
			"circuitId": circuitID,
		})
		return
	}
	writeJSON(w, http.StatusOK, cacheStatic, models.SequenceResponse{
		LineID:         lineID,
		CircuitID:      circuitID,
		SequenceNumber: seq,
	})
}

// GetOccupancy handles GET /api/occupancy?lineId=&circuitId=
func (h *MetroHandler) GetOccupancy(w http.ResponseWriter, r *http.Request) {
	lineID := r.URL.Query().Get("lineId")
	circuitID := r.URL.Query().Get("circuitId")
	if lineID == "" || circuitID == "" {
		writeError(w, http.StatusBadRequest, "lineId and circuitId parameters are required", nil)
		return
	}

	writeJSON(w, http.StatusOK, cacheLive, models.OccupancyResponse{
		LineID:     lineID,
		CircuitID:  circuitID,
		Occupied:   h.svc.Occupancy(circuitID, lineID),
		SnapshotID: h.svc.Positions().Snapshot().ID,
	})
}

// GetMap handles GET /api/map?regionId=
func (h *MetroHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	regionID := r.URL.Query().Get("regionId")
	if regionID == "" {
		regionID = metro.AllRegions
	}

	snap := h.svc.Positions().Snapshot()
	lines, err := h.svc.MapView(regionID)
	if err != nil {
		writeError(w, statusFor(err), "Failed to build map", map[string]interface{}{
			"regionId": regionID,
			"internal": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, cacheLive, models.MapResponse{
		RegionID:   regionID,
		Lines:      lines,
		SnapshotID: snap.ID,
		PolledAt:   snap.PolledAt,
	})
}

// GetTrains handles GET /api/trains?view=all|active|scheduled
func (h *MetroHandler) GetTrains(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = "all"
	}

	snap := h.svc.Positions().Snapshot()
	var trains []metro.VehiclePosition
	switch view {
	case "all":
		trains = snap.Positions
	case "active":
		trains = metro.ActiveVehicles(snap.Positions)
	case "scheduled":
		trains = metro.ScheduledVehicles(snap.Positions)
	default:
		writeError(w, http.StatusBadRequest, "view must be one of all, active, scheduled", map[string]interface{}{"view": view})
		return
	}
	if trains == nil {
		trains = []metro.VehiclePosition{}
	}

	writeJSON(w, http.StatusOK, cacheLive, models.TrainsResponse{
		View:       view,
		Trains:     trains,
		Count:      len(trains),
		SnapshotID: snap.ID,
		PolledAt:   snap.PolledAt,
	})
}

// GetTrainBoard handles GET /api/trains/{trainId}/board
func (h *MetroHandler) GetTrainBoard(w http.ResponseWriter, r *http.Request) {
	trainID := chi.URLParam(r, "trainId")
	board, ok := h.svc.TrainBoard(trainID)
	if !ok {
		writeError(w, http.StatusNotFound, "Train not found in current snapshot", map[string]interface{}{"trainId": trainID})
		return
	}
	writeJSON(w, http.StatusOK, cacheLive, models.BoardResponse{
		Board:      board,
		SnapshotID: h.svc.Positions().Snapshot().ID,
	})
}
