package metro

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// PositionFeed fetches the current position of every train from upstream
type PositionFeed interface {
	FetchPositions(ctx context.Context) ([]VehiclePosition, error)
}

// CacheStatus describes the outcome of the most recent refreshes
type CacheStatus struct {
	SnapshotID   uuid.UUID `json:"snapshotId"`
	PolledAt     time.Time `json:"polledAt"`
	Vehicles     int       `json:"vehicles"`
	LastAttempt  time.Time `json:"lastAttempt"`
	LastError    string    `json:"lastError,omitempty"`
	FailureCount int       `json:"consecutiveFailures"`
}

// PositionCache holds the most recent successful snapshot of the live feed.
// A failed refresh leaves the previous snapshot in place.
type PositionCache struct {
	feed  PositionFeed
	group singleflight.Group
	now   func() time.Time

	mu          sync.RWMutex // protects snapshot and the status fields below
	snapshot    *Snapshot
	lastAttempt time.Time
	lastErr     error
	failures    int
}

// NewPositionCache creates an empty cache backed by feed
func NewPositionCache(feed PositionFeed) *PositionCache {
	return &PositionCache{
		feed:     feed,
		now:      func() time.Time { return time.Now().UTC() },
		snapshot: &Snapshot{},
	}
}

// Refresh polls the feed and swaps in a new snapshot on success. Concurrent
// callers share one upstream call.
func (c *PositionCache) Refresh(ctx context.Context) (Snapshot, error) {
	v, err, _ := c.group.Do("positions", func() (interface{}, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

func (c *PositionCache) refresh(ctx context.Context) (Snapshot, error) {
	attempt := c.now()
	positions, err := c.feed.FetchPositions(ctx)
	if err == nil && len(positions) == 0 {
		err = ErrEmptyFeed
	}
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{Op: "fetch positions", Err: err}
		}
		c.mu.Lock()
		c.lastAttempt = attempt
		c.lastErr = err
		c.failures++
		c.mu.Unlock()
		return Snapshot{}, err
	}

	sorted := make([]VehiclePosition, len(positions))
	copy(sorted, positions)
	SortByVehicleID(sorted)

	snap := &Snapshot{
		ID:        uuid.New(),
		PolledAt:  attempt,
		Positions: sorted,
	}

	c.mu.Lock()
	c.snapshot = snap
	c.lastAttempt = attempt
	c.lastErr = nil
	c.failures = 0
	c.mu.Unlock()

	return *snap, nil
}

// Snapshot returns the current snapshot. The positions slice must not be
// modified.
func (c *PositionCache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.snapshot
}

// Current returns every vehicle of the current snapshot, unfiltered
func (c *PositionCache) Current() []VehiclePosition {
	return c.Snapshot().Positions
}

// Active returns vehicles of the current snapshot that carry a line code
func (c *PositionCache) Active() []VehiclePosition {
	return ActiveVehicles(c.Current())
}

// Scheduled returns vehicles of the current snapshot that carry a
// destination station
func (c *PositionCache) Scheduled() []VehiclePosition {
	return ScheduledVehicles(c.Current())
}

// ActiveVehicles keeps vehicles in active service (non-nil line code), the
// view used by line-scoped displays
func ActiveVehicles(vs []VehiclePosition) []VehiclePosition {
	return filterPositions(vs, func(v VehiclePosition) bool {
		return v.LineCode != nil
	})
}

// ScheduledVehicles keeps vehicles with a destination, the view used by
// timetable displays
func ScheduledVehicles(vs []VehiclePosition) []VehiclePosition {
	return filterPositions(vs, func(v VehiclePosition) bool {
		return v.DestinationStationCode != nil
	})
}

// Find returns the vehicle with the given id from the current snapshot
func (c *PositionCache) Find(vehicleID string) (VehiclePosition, bool) {
	for _, v := range c.Current() {
		if v.VehicleID == vehicleID {
			return v, true
		}
	}
	return VehiclePosition{}, false
}

// Status reports the current snapshot and the last refresh outcome
func (c *PositionCache) Status() CacheStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := CacheStatus{
		SnapshotID:   c.snapshot.ID,
		PolledAt:     c.snapshot.PolledAt,
		Vehicles:     len(c.snapshot.Positions),
		LastAttempt:  c.lastAttempt,
		FailureCount: c.failures,
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}

func filterPositions(in []VehiclePosition, keep func(VehiclePosition) bool) []VehiclePosition {
	out := make([]VehiclePosition, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// SortByVehicleID orders vehicles by numeric id. Ids that are not numbers
// sort after numeric ones, lexicographically.
func SortByVehicleID(vs []VehiclePosition) {
	sort.SliceStable(vs, func(i, j int) bool {
		return vehicleIDLess(vs[i].VehicleID, vs[j].VehicleID)
	})
}

func vehicleIDLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("snapshot %s (%d vehicles at %s)", s.ID, len(s.Positions), s.PolledAt.Format(time.RFC3339))
}
