package metro

import (
	"context"
	"strconv"
	"sync"
)

func strPtr(s string) *string { return &s }

type fakeRoutes struct {
	mu    sync.Mutex
	lines []RawLine
	err   error
	calls int
}

func (f *fakeRoutes) FetchRoutes(ctx context.Context) ([]RawLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.lines, f.err
}

type fakeStatic struct {
	stations   []RawStation
	regions    []RawRegion
	stationErr error
	regionErr  error
}

func (f *fakeStatic) Stations(ctx context.Context) ([]RawStation, error) {
	return f.stations, f.stationErr
}

func (f *fakeStatic) Regions(ctx context.Context) ([]RawRegion, error) {
	return f.regions, f.regionErr
}

type fakePositions struct {
	mu        sync.Mutex
	positions []VehiclePosition
	err       error
	calls     int
}

func (f *fakePositions) FetchPositions(ctx context.Context) ([]VehiclePosition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.positions, f.err
}

func (f *fakePositions) set(positions []VehiclePosition, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positions = positions
	f.err = err
}

// rawLine builds a line whose circuits are named "<prefix>0".."<prefix>n-1"
// with sequence numbers equal to their index. stations maps an index to a
// station code.
func rawLine(code, direction, prefix string, n int, stations map[int]string) RawLine {
	l := RawLine{LineCode: code, Direction: direction}
	for i := 0; i < n; i++ {
		seg := RawSegment{SequenceNumber: i, SegmentID: prefix + strconv.Itoa(i)}
		if st, ok := stations[i]; ok {
			seg.StationCode = strPtr(st)
		}
		l.Segments = append(l.Segments, seg)
	}
	return l
}

func segmentIDs(segs []Segment) []string {
	ids := make([]string, len(segs))
	for i, s := range segs {
		ids[i] = s.ID
	}
	return ids
}

func vehicleIDs(vs []VehiclePosition) []string {
	ids := make([]string, len(vs))
	for i, v := range vs {
		ids[i] = v.VehicleID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
