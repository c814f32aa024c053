package metro

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// RouteFeed fetches the standard route (track circuit) topology
type RouteFeed interface {
	FetchRoutes(ctx context.Context) ([]RawLine, error)
}

// StaticSource provides the station and region imports
type StaticSource interface {
	Stations(ctx context.Context) ([]RawStation, error)
	Regions(ctx context.Context) ([]RawRegion, error)
}

// System is the single query surface over topology, stations, regions and
// live positions. One System is built at startup and shared by pointer.
type System struct {
	static StaticSource
	routes RouteFeed

	topology  *TopologyStore
	stations  *StationDirectory
	regions   *RegionIndex
	positions *PositionCache

	populateMu    sync.Mutex
	topologyReady atomic.Bool
	stationsReady atomic.Bool
	regionsReady  atomic.Bool
}

// NewSystem wires the stores to their sources. Nothing is loaded until
// Populate is called.
func NewSystem(static StaticSource, routes RouteFeed, positions PositionFeed) *System {
	return &System{
		static:    static,
		routes:    routes,
		topology:  NewTopologyStore(),
		stations:  NewStationDirectory(),
		regions:   NewRegionIndex(),
		positions: NewPositionCache(positions),
	}
}

// Populate loads every static component that has not been loaded yet. The
// components load concurrently and independently: a failure leaves that
// component empty and is retried by the next call, while the others stay
// loaded. The returned error joins every component failure.
func (s *System) Populate(ctx context.Context) error {
	s.populateMu.Lock()
	defer s.populateMu.Unlock()

	type component struct {
		name  string
		ready *atomic.Bool
		load  func(context.Context) (int, error)
	}
	components := []component{
		{"topology", &s.topologyReady, s.loadTopology},
		{"stations", &s.stationsReady, s.loadStations},
		{"regions", &s.regionsReady, s.loadRegions},
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, c := range components {
		if c.ready.Load() {
			continue
		}
		wg.Add(1)
		go func(c component) {
			defer wg.Done()
			n, err := c.load(ctx)
			if err != nil {
				log.Printf("Metro: failed to load %s: %v", c.name, err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
				mu.Unlock()
				return
			}
			c.ready.Store(true)
			log.Printf("Metro: loaded %d %s records", n, c.name)
		}(c)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (s *System) loadTopology(ctx context.Context) (int, error) {
	raw, err := s.routes.FetchRoutes(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.topology.Load(raw); err != nil {
		return 0, err
	}
	return s.topology.Len(), nil
}

func (s *System) loadStations(ctx context.Context) (int, error) {
	raw, err := s.static.Stations(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.stations.Load(raw); err != nil {
		return 0, err
	}
	return s.stations.Len(), nil
}

func (s *System) loadRegions(ctx context.Context) (int, error) {
	raw, err := s.static.Regions(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.regions.Load(raw); err != nil {
		return 0, err
	}
	return s.regions.Len(), nil
}

// Ready reports whether every static component has loaded
func (s *System) Ready() bool {
	return s.topologyReady.Load() && s.stationsReady.Load() && s.regionsReady.Load()
}

// Refresh polls the live feed. On failure the previous snapshot is kept.
func (s *System) Refresh(ctx context.Context) (Snapshot, error) {
	return s.positions.Refresh(ctx)
}

// Positions exposes the live position cache for read views
func (s *System) Positions() *PositionCache {
	return s.positions
}

// AllStations returns every station in import order
func (s *System) AllStations() []Station {
	return s.stations.All()
}

// StationName resolves a station code to its display name
func (s *System) StationName(code string) (string, bool) {
	return s.stations.Name(code)
}

// Lines returns every known line identity, sorted
func (s *System) Lines() []string {
	return s.topology.Lines()
}

// Regions returns every imported region name. The reserved AllRegions name
// is always first.
func (s *System) Regions() []string {
	out := []string{AllRegions}
	for _, r := range s.regions.Regions() {
		if r != AllRegions {
			out = append(out, r)
		}
	}
	return out
}

// RegionBounds returns the stored bounds of every line in a region
func (s *System) RegionBounds(region string) (map[string]RegionBounds, error) {
	lines, ok := s.regions.Lines(region)
	if !ok {
		return nil, fmt.Errorf("region %q: %w", region, ErrNotFound)
	}
	return lines, nil
}

// AllLinesWithSegments returns every line with its full ordered sequence
func (s *System) AllLinesWithSegments() []LineSegments {
	ids := s.topology.Lines()
	out := make([]LineSegments, 0, len(ids))
	for _, id := range ids {
		segs, ok := s.topology.Segments(id)
		if !ok {
			continue
		}
		out = append(out, LineSegments{LineID: id, Segments: segs})
	}
	return out
}

// SegmentsInRegion returns the part of a line that falls inside a region.
// AllRegions returns the whole line without consulting stored bounds.
func (s *System) SegmentsInRegion(lineID, region string) ([]Segment, error) {
	segs, ok := s.topology.Segments(lineID)
	if !ok {
		return nil, fmt.Errorf("line %q: %w", lineID, ErrNotFound)
	}
	if region == AllRegions {
		return segs, nil
	}
	if !s.regions.Has(region) {
		return nil, fmt.Errorf("region %q: %w", region, ErrNotFound)
	}
	b, ok := s.regions.Bounds(region, lineID)
	if !ok {
		return nil, fmt.Errorf("line %q in region %q: %w", lineID, region, ErrRegionBoundsMiss)
	}
	lo, hi := b.Window(len(segs))
	return segs[lo:hi], nil
}

// RegionLines returns every line windowed to a region. Lines without bounds
// in the region are left out.
func (s *System) RegionLines(region string) ([]LineSegments, error) {
	if region == AllRegions {
		return s.AllLinesWithSegments(), nil
	}
	if !s.regions.Has(region) {
		return nil, fmt.Errorf("region %q: %w", region, ErrNotFound)
	}

	var out []LineSegments
	for _, id := range s.regions.LineIDs(region) {
		segs, err := s.SegmentsInRegion(id, region)
		if err != nil {
			continue
		}
		out = append(out, LineSegments{LineID: id, Segments: segs})
	}
	return out, nil
}

// SequenceNumberOf returns the sequence number of a segment on a line
func (s *System) SequenceNumberOf(lineID, segmentID string) (int, bool) {
	seq, ok := s.topology.SequenceNumber(lineID, segmentID)
	if !ok {
		log.Printf("Metro: circuit %s not found on line %s", segmentID, lineID)
	}
	return seq, ok
}

// Occupancy reports whether any vehicle of the current snapshot is on the
// given segment of the given line
func (s *System) Occupancy(segmentID, lineID string) bool {
	for _, v := range s.positions.Current() {
		if v.CurrentSegmentID == segmentID && v.LineID() == lineID {
			return true
		}
	}
	return false
}

// NextStationSegment returns the first station segment at or beyond the
// current one in the direction of travel. Direction DirectionAscending walks
// ascending sequence order, any other direction walks descending. There is
// no wraparound at the end of the line.
func (s *System) NextStationSegment(segmentID, lineCode, direction string) (Segment, bool) {
	lineID := LineIdentity(lineCode, direction)
	segs, ok := s.topology.Segments(lineID)
	if !ok {
		log.Printf("Metro: line %s not found", lineID)
		return Segment{}, false
	}
	i, ok := s.topology.IndexOf(lineID, segmentID)
	if !ok {
		log.Printf("Metro: circuit %s not found on line %s", segmentID, lineID)
		return Segment{}, false
	}

	if direction == DirectionAscending {
		for j := i; j < len(segs); j++ {
			if segs[j].IsStation() {
				return segs[j], true
			}
		}
		return Segment{}, false
	}
	for j := i; j >= 0; j-- {
		if segs[j].IsStation() {
			return segs[j], true
		}
	}
	return Segment{}, false
}

// CircuitView is one segment on a map with its live occupancy
type CircuitView struct {
	Segment
	Occupied    bool   `json:"occupied"`
	StationName string `json:"stationName,omitempty"`
}

// LineView is one line on a map
type LineView struct {
	LineID   string        `json:"lineId"`
	Circuits []CircuitView `json:"circuits"`
}

// MapView returns every line of a region with per-circuit occupancy, all
// computed against a single snapshot.
func (s *System) MapView(region string) ([]LineView, error) {
	lines, err := s.RegionLines(region)
	if err != nil {
		return nil, err
	}

	type key struct{ lineID, segmentID string }
	occupied := make(map[key]bool)
	for _, v := range s.positions.Current() {
		if v.LineCode == nil {
			continue
		}
		occupied[key{v.LineID(), v.CurrentSegmentID}] = true
	}

	out := make([]LineView, 0, len(lines))
	for _, l := range lines {
		view := LineView{LineID: l.LineID, Circuits: make([]CircuitView, len(l.Segments))}
		for i, seg := range l.Segments {
			cv := CircuitView{Segment: seg, Occupied: occupied[key{l.LineID, seg.ID}]}
			if seg.StationCode != nil {
				cv.StationName, _ = s.stations.Name(*seg.StationCode)
			}
			view.Circuits[i] = cv
		}
		out = append(out, view)
	}
	return out, nil
}

// SystemStatus summarises what the System holds
type SystemStatus struct {
	Ready     bool        `json:"ready"`
	Lines     int         `json:"lines"`
	Stations  int         `json:"stations"`
	Regions   int         `json:"regions"`
	Positions CacheStatus `json:"positions"`
}

// Status reports load state and the last refresh outcome
func (s *System) Status() SystemStatus {
	return SystemStatus{
		Ready:     s.Ready(),
		Lines:     s.topology.Len(),
		Stations:  s.stations.Len(),
		Regions:   s.regions.Len(),
		Positions: s.positions.Status(),
	}
}
