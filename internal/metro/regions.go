package metro

import (
	"fmt"
	"sort"
	"sync"
)

// RegionIndex maps region name -> line identity -> bounds
type RegionIndex struct {
	mu     sync.RWMutex
	bounds map[string]map[string]RegionBounds
	order  []string
}

// NewRegionIndex creates an empty index
func NewRegionIndex() *RegionIndex {
	return &RegionIndex{bounds: make(map[string]map[string]RegionBounds)}
}

// Load replaces the index. A region listed twice has its lines merged, later
// bounds for the same line winning.
func (x *RegionIndex) Load(raw []RawRegion) error {
	if len(raw) == 0 {
		return fmt.Errorf("regions: %w", ErrMissingData)
	}

	bounds := make(map[string]map[string]RegionBounds, len(raw))
	order := make([]string, 0, len(raw))
	for _, r := range raw {
		if r.Name == "" {
			continue
		}
		lines, ok := bounds[r.Name]
		if !ok {
			lines = make(map[string]RegionBounds, len(r.Lines))
			bounds[r.Name] = lines
			order = append(order, r.Name)
		}
		for _, l := range r.Lines {
			lines[LineIdentity(l.LineCode, l.Direction)] = RegionBounds{
				Origin:   l.Origin,
				Terminus: l.Terminus,
			}
		}
	}
	if len(order) == 0 {
		return fmt.Errorf("regions: no usable region records: %w", ErrMissingData)
	}

	x.mu.Lock()
	x.bounds = bounds
	x.order = order
	x.mu.Unlock()
	return nil
}

// Bounds returns the window of a line inside a region
func (x *RegionIndex) Bounds(region, lineID string) (RegionBounds, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	b, ok := x.bounds[region][lineID]
	return b, ok
}

// Has reports whether the region was imported
func (x *RegionIndex) Has(region string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.bounds[region]
	return ok
}

// Regions returns region names in import order
func (x *RegionIndex) Regions() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]string, len(x.order))
	copy(out, x.order)
	return out
}

// Lines returns the bounds of every line in a region
func (x *RegionIndex) Lines(region string) (map[string]RegionBounds, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	lines, ok := x.bounds[region]
	if !ok {
		return nil, false
	}
	out := make(map[string]RegionBounds, len(lines))
	for id, b := range lines {
		out[id] = b
	}
	return out, true
}

// LineIDs returns the identities of the lines bounded in a region, sorted
func (x *RegionIndex) LineIDs(region string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	ids := make([]string, 0, len(x.bounds[region]))
	for id := range x.bounds[region] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of regions held
func (x *RegionIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.order)
}
