package metro

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingData is returned when a static import is empty or absent.
	// The store being loaded keeps its previous contents.
	ErrMissingData = errors.New("static data is missing or empty")

	// ErrNotFound is returned when a line, region or station is unknown
	ErrNotFound = errors.New("not found")

	// ErrRegionBoundsMiss is returned when a known line has no bounds in the
	// requested region
	ErrRegionBoundsMiss = errors.New("line has no bounds in region")

	// ErrEmptyFeed is wrapped by FetchError when the upstream answered with an
	// empty payload
	ErrEmptyFeed = errors.New("feed payload is empty")
)

// FetchError reports a failed upstream call. The previous snapshot, if any,
// stays in place.
type FetchError struct {
	Op         string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
