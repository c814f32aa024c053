package metro

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// TopologyStore holds the ordered segment sequence of every line, keyed by
// line identity.
type TopologyStore struct {
	mu    sync.RWMutex
	lines map[string][]Segment
	index map[string]map[string]int // lineID -> segment id -> position in lines[lineID]
}

// NewTopologyStore creates an empty store
func NewTopologyStore() *TopologyStore {
	return &TopologyStore{
		lines: make(map[string][]Segment),
		index: make(map[string]map[string]int),
	}
}

// Load replaces the store with the given records. Records that share an
// identity are merged, and every line is sorted ascending by sequence number
// (stable, so equal sequence numbers keep input order). On empty input the
// store is left untouched.
func (s *TopologyStore) Load(raw []RawLine) error {
	if len(raw) == 0 {
		return fmt.Errorf("topology: %w", ErrMissingData)
	}

	lines := make(map[string][]Segment)
	skipped := 0
	for _, r := range raw {
		if r.LineCode == "" {
			skipped++
			continue
		}
		id := LineIdentity(r.LineCode, r.Direction)
		for _, seg := range r.Segments {
			lines[id] = append(lines[id], Segment{
				ID:             seg.SegmentID,
				SequenceNumber: seg.SequenceNumber,
				StationCode:    seg.StationCode,
			})
		}
		if _, ok := lines[id]; !ok {
			lines[id] = []Segment{}
		}
	}
	if len(lines) == 0 {
		return fmt.Errorf("topology: no usable line records: %w", ErrMissingData)
	}

	index := make(map[string]map[string]int, len(lines))
	for id, segs := range lines {
		sort.SliceStable(segs, func(i, j int) bool {
			return segs[i].SequenceNumber < segs[j].SequenceNumber
		})
		positions := make(map[string]int, len(segs))
		for i, seg := range segs {
			// A circuit listed twice resolves to its first position
			if _, dup := positions[seg.ID]; !dup {
				positions[seg.ID] = i
			}
		}
		index[id] = positions
	}

	if skipped > 0 {
		log.Printf("Metro: skipped %d topology records without a line code", skipped)
	}

	s.mu.Lock()
	s.lines = lines
	s.index = index
	s.mu.Unlock()
	return nil
}

// Segments returns a copy of the ordered segments of a line
func (s *TopologyStore) Segments(lineID string) ([]Segment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	segs, ok := s.lines[lineID]
	if !ok {
		return nil, false
	}
	out := make([]Segment, len(segs))
	copy(out, segs)
	return out, true
}

// Lines returns every known line identity, sorted
func (s *TopologyStore) Lines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.lines))
	for id := range s.lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of lines held
func (s *TopologyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// IndexOf returns the position of a segment within its line's ordered sequence
func (s *TopologyStore) IndexOf(lineID, segmentID string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions, ok := s.index[lineID]
	if !ok {
		return 0, false
	}
	i, ok := positions[segmentID]
	return i, ok
}

// SequenceNumber returns the sequence number of a segment on a line
func (s *TopologyStore) SequenceNumber(lineID, segmentID string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[lineID][segmentID]
	if !ok {
		return 0, false
	}
	return s.lines[lineID][i].SequenceNumber, true
}
