package metro

import (
	"fmt"
	"sync"
)

// StationDirectory maps station codes to display names and remembers the
// order stations were imported in.
type StationDirectory struct {
	mu    sync.RWMutex
	names map[string]string
	order []string
}

// NewStationDirectory creates an empty directory
func NewStationDirectory() *StationDirectory {
	return &StationDirectory{names: make(map[string]string)}
}

// Load replaces the directory. A code listed twice keeps its first position
// and its last name.
func (d *StationDirectory) Load(raw []RawStation) error {
	if len(raw) == 0 {
		return fmt.Errorf("stations: %w", ErrMissingData)
	}

	names := make(map[string]string, len(raw))
	order := make([]string, 0, len(raw))
	for _, st := range raw {
		if st.Code == "" {
			continue
		}
		if _, seen := names[st.Code]; !seen {
			order = append(order, st.Code)
		}
		names[st.Code] = st.Name
	}
	if len(order) == 0 {
		return fmt.Errorf("stations: no usable station records: %w", ErrMissingData)
	}

	d.mu.Lock()
	d.names = names
	d.order = order
	d.mu.Unlock()
	return nil
}

// Name returns the display name for a station code
func (d *StationDirectory) Name(code string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[code]
	return name, ok
}

// All returns every station in import order
func (d *StationDirectory) All() []Station {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Station, len(d.order))
	for i, code := range d.order {
		out[i] = Station{Code: code, Name: d.names[code]}
	}
	return out
}

// Len returns the number of stations held
func (d *StationDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}
