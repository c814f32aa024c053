package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/karina-peters/metro-map/internal/metro"
	"github.com/karina-peters/metro-map/models"
)

func strPtr(s string) *string { return &s }

type stubRoutes struct{}

func (stubRoutes) FetchRoutes(ctx context.Context) ([]metro.RawLine, error) {
	line := metro.RawLine{LineCode: "RD", Direction: "1"}
	for i := 0; i < 6; i++ {
		seg := metro.RawSegment{SequenceNumber: i, SegmentID: "r" + strconv.Itoa(i)}
		if i == 1 || i == 4 {
			code := "A0" + strconv.Itoa(i)
			seg.StationCode = &code
		}
		line.Segments = append(line.Segments, seg)
	}
	return []metro.RawLine{line}, nil
}

type stubStatic struct{}

func (stubStatic) Stations(ctx context.Context) ([]metro.RawStation, error) {
	return []metro.RawStation{
		{Code: "A01", Name: "Metro Center"},
		{Code: "A04", Name: "Woodley Park"},
	}, nil
}

func (stubStatic) Regions(ctx context.Context) ([]metro.RawRegion, error) {
	return []metro.RawRegion{
		{Name: "DC", Lines: []metro.RawRegionLine{{LineCode: "RD", Direction: "1", Origin: 1, Terminus: 4}}},
		{Name: "VA"},
	}, nil
}

type stubPositions struct {
	positions []metro.VehiclePosition
	err       error
}

func (s *stubPositions) FetchPositions(ctx context.Context) ([]metro.VehiclePosition, error) {
	return s.positions, s.err
}

type stubArrivals struct {
	groups metro.ArrivalGroups
	err    error
}

func (s *stubArrivals) Arrivals(ctx context.Context, codes []string) (metro.ArrivalGroups, error) {
	return s.groups, s.err
}

type testServer struct {
	handler   http.Handler
	system    *metro.System
	positions *stubPositions
	arrivals  *stubArrivals
}

func newTestServer(t *testing.T, refresh bool) *testServer {
	t.Helper()

	positions := &stubPositions{positions: []metro.VehiclePosition{
		{VehicleID: "2", LineCode: strPtr("RD"), Direction: "1", CurrentSegmentID: "r2", DestinationStationCode: strPtr("A04")},
		{VehicleID: "1", LineCode: nil, Direction: "1", CurrentSegmentID: "r3"},
	}}
	sys := metro.NewSystem(stubStatic{}, stubRoutes{}, positions)
	if err := sys.Populate(context.Background()); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if refresh {
		if _, err := sys.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh: %v", err)
		}
	}

	arrivals := &stubArrivals{groups: metro.ArrivalGroups{
		"1": {{Line: "RD", Group: "1", Minutes: "4"}},
		"2": {},
	}}
	handler := NewRouter(
		NewMetroHandler(sys),
		NewArrivalsHandler(arrivals, sys),
		NewHealthHandler(sys),
		RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}},
	)
	return &testServer{handler: handler, system: sys, positions: positions, arrivals: arrivals}
}

func (s *testServer) get(t *testing.T, path string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("GET %s Content-Type = %q", path, ct)
	}
	if out != nil {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("GET %s: failed to decode body: %v", path, err)
		}
	}
	return rec.Code
}

func TestStaticEndpoints(t *testing.T) {
	srv := newTestServer(t, false)

	var stations models.StationsResponse
	if code := srv.get(t, "/api/stations", &stations); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if stations.Count != 2 || stations.Stations[0].Code != "A01" {
		t.Errorf("stations = %+v", stations)
	}

	var station metro.Station
	if code := srv.get(t, "/api/stations/A04", &station); code != http.StatusOK || station.Name != "Woodley Park" {
		t.Errorf("GET /api/stations/A04 = %d %+v", code, station)
	}

	var errResp ErrorResponse
	if code := srv.get(t, "/api/stations/Z99", &errResp); code != http.StatusNotFound || errResp.Error == "" {
		t.Errorf("GET /api/stations/Z99 = %d %+v", code, errResp)
	}

	var lines models.LinesResponse
	if code := srv.get(t, "/api/lines", &lines); code != http.StatusOK || lines.Count != 1 || lines.Lines[0] != "RD-1" {
		t.Errorf("GET /api/lines = %d %+v", code, lines)
	}

	var regions models.RegionsResponse
	srv.get(t, "/api/regions", &regions)
	if regions.Count != 3 || regions.Regions[0] != metro.AllRegions {
		t.Errorf("regions = %+v", regions)
	}

	var seq models.SequenceResponse
	if code := srv.get(t, "/api/lines/RD-1/circuits/r3", &seq); code != http.StatusOK || seq.SequenceNumber != 3 {
		t.Errorf("GET sequence = %d %+v", code, seq)
	}
	if code := srv.get(t, "/api/lines/RD-1/circuits/nope", nil); code != http.StatusNotFound {
		t.Errorf("GET unknown circuit status = %d", code)
	}
}

func TestGetRegion(t *testing.T) {
	srv := newTestServer(t, false)

	tests := []struct {
		path     string
		status   int
		lines    int
		terminus int
	}{
		{"/api/regions/DC", http.StatusOK, 1, 4},
		{"/api/regions/All", http.StatusOK, 1, 6},
		{"/api/regions/VA", http.StatusOK, 0, 0},
		{"/api/regions/MD", http.StatusNotFound, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			var resp models.RegionResponse
			code := srv.get(t, tc.path, &resp)
			if code != tc.status {
				t.Fatalf("status = %d, expected %d", code, tc.status)
			}
			if code != http.StatusOK {
				return
			}
			if len(resp.Lines) != tc.lines {
				t.Fatalf("lines = %+v", resp.Lines)
			}
			if tc.lines > 0 && resp.Lines[0].Terminus != tc.terminus {
				t.Errorf("terminus = %d, expected %d", resp.Lines[0].Terminus, tc.terminus)
			}
		})
	}
}

func TestGetCircuits(t *testing.T) {
	srv := newTestServer(t, false)

	tests := []struct {
		name     string
		path     string
		status   int
		circuits []string
	}{
		{"line in region", "/api/circuits?lineId=RD-1&regionId=DC", http.StatusOK, []string{"r1", "r2", "r3"}},
		{"default region", "/api/circuits?lineId=RD-1", http.StatusOK, []string{"r0", "r1", "r2", "r3", "r4", "r5"}},
		{"region only", "/api/circuits?regionId=DC", http.StatusOK, []string{"r1", "r2", "r3"}},
		{"line outside region", "/api/circuits?lineId=RD-1&regionId=VA", http.StatusNotFound, nil},
		{"unknown line", "/api/circuits?lineId=SV-9", http.StatusNotFound, nil},
		{"unknown region", "/api/circuits?regionId=MD", http.StatusNotFound, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var resp models.CircuitsResponse
			code := srv.get(t, tc.path, &resp)
			if code != tc.status {
				t.Fatalf("status = %d, expected %d", code, tc.status)
			}
			if tc.circuits == nil {
				return
			}
			if len(resp.Lines) != 1 {
				t.Fatalf("lines = %+v", resp.Lines)
			}
			var ids []string
			for _, s := range resp.Lines[0].Segments {
				ids = append(ids, s.ID)
			}
			if len(ids) != len(tc.circuits) {
				t.Fatalf("circuits = %v, expected %v", ids, tc.circuits)
			}
			for i := range ids {
				if ids[i] != tc.circuits[i] {
					t.Errorf("circuits = %v, expected %v", ids, tc.circuits)
					break
				}
			}
		})
	}
}

func TestLiveEndpoints(t *testing.T) {
	srv := newTestServer(t, true)

	tests := []struct {
		view  string
		count int
		first string
	}{
		{"", 2, "1"},
		{"all", 2, "1"},
		{"active", 1, "2"},
		{"scheduled", 1, "2"},
	}
	for _, tc := range tests {
		t.Run("view="+tc.view, func(t *testing.T) {
			var resp models.TrainsResponse
			if code := srv.get(t, "/api/trains?view="+tc.view, &resp); code != http.StatusOK {
				t.Fatalf("status = %d", code)
			}
			if resp.Count != tc.count || resp.Trains[0].VehicleID != tc.first {
				t.Errorf("trains = %+v", resp.Trains)
			}
			if resp.SnapshotID != srv.system.Positions().Snapshot().ID {
				t.Error("response snapshot id does not match cache")
			}
		})
	}
	if code := srv.get(t, "/api/trains?view=bogus", nil); code != http.StatusBadRequest {
		t.Errorf("bogus view status = %d", code)
	}

	var occ models.OccupancyResponse
	srv.get(t, "/api/occupancy?lineId=RD-1&circuitId=r2", &occ)
	if !occ.Occupied {
		t.Error("r2 on RD-1 should be occupied")
	}
	srv.get(t, "/api/occupancy?lineId=RD-1&circuitId=r3", &occ)
	if occ.Occupied {
		t.Error("r3 holds only a vehicle without a line code")
	}
	if code := srv.get(t, "/api/occupancy?lineId=RD-1", nil); code != http.StatusBadRequest {
		t.Errorf("missing circuitId status = %d", code)
	}

	var board models.BoardResponse
	if code := srv.get(t, "/api/trains/2/board", &board); code != http.StatusOK {
		t.Fatalf("board status = %d", code)
	}
	expected := []string{metro.PhraseDestination, "Woodley Park", metro.PhraseNextStop, "Woodley Park"}
	if len(board.Messages) != len(expected) {
		t.Fatalf("messages = %q", board.Messages)
	}
	for i := range expected {
		if board.Messages[i] != expected[i] {
			t.Errorf("messages = %q, expected %q", board.Messages, expected)
			break
		}
	}
	if code := srv.get(t, "/api/trains/99/board", nil); code != http.StatusNotFound {
		t.Errorf("unknown train status = %d", code)
	}

	var m models.MapResponse
	if code := srv.get(t, "/api/map?regionId=DC", &m); code != http.StatusOK {
		t.Fatalf("map status = %d", code)
	}
	if len(m.Lines) != 1 || len(m.Lines[0].Circuits) != 3 {
		t.Fatalf("map = %+v", m)
	}
	if c := m.Lines[0].Circuits[1]; c.ID != "r2" || !c.Occupied {
		t.Errorf("r2 = %+v, expected occupied", c)
	}
	if c := m.Lines[0].Circuits[0]; c.StationName != "Metro Center" {
		t.Errorf("r1 station name = %q", c.StationName)
	}
}

func TestGetArrivals(t *testing.T) {
	srv := newTestServer(t, false)

	var resp models.ArrivalsResponse
	if code := srv.get(t, "/api/arrivals/A01", &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Count != 1 || len(resp.Groups["1"]) != 1 {
		t.Errorf("arrivals = %+v", resp)
	}

	if code := srv.get(t, "/api/arrivals/A01,Z99", nil); code != http.StatusNotFound {
		t.Errorf("unknown station status = %d", code)
	}
	if code := srv.get(t, "/api/arrivals/,", nil); code != http.StatusBadRequest {
		t.Errorf("empty station list status = %d", code)
	}

	srv.arrivals.err = &metro.FetchError{Op: "fetch arrivals", StatusCode: 500, Err: errors.New("boom")}
	if code := srv.get(t, "/api/arrivals/A01", nil); code != http.StatusBadGateway {
		t.Errorf("upstream failure status = %d", code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, false)

	var resp models.HealthResponse
	if code := srv.get(t, "/health", &resp); code != http.StatusServiceUnavailable || resp.Status != "starting" {
		t.Errorf("before refresh: %d %q", code, resp.Status)
	}

	if _, err := srv.system.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if code := srv.get(t, "/health", &resp); code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("after refresh: %d %q", code, resp.Status)
	}
	if resp.System.Lines != 1 || resp.System.Stations != 2 || resp.System.Positions.Vehicles != 2 {
		t.Errorf("system = %+v", resp.System)
	}

	srv.positions.err = errors.New("timeout")
	srv.system.Refresh(context.Background())
	if code := srv.get(t, "/health", &resp); code != http.StatusOK || resp.Status != "degraded" {
		t.Errorf("after failure: %d %q", code, resp.Status)
	}
	if resp.Timestamp.After(time.Now().Add(time.Minute)) {
		t.Errorf("timestamp in the future: %v", resp.Timestamp)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/stations", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
