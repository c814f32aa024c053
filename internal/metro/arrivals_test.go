package metro

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeArrivals struct {
	mu       sync.Mutex
	arrivals []Arrival
	err      error
	requests [][]string
}

func (f *fakeArrivals) FetchArrivals(ctx context.Context, codes []string) ([]Arrival, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, codes)
	return f.arrivals, f.err
}

func TestArrivalBoardGroupsByPlatform(t *testing.T) {
	feed := &fakeArrivals{arrivals: []Arrival{
		{Line: "RD", Group: "1", Minutes: "3", DestinationName: "Glenmont"},
		{Line: "RD", Group: "2", Minutes: "ARR", DestinationName: "Shady Grove"},
		{Line: "RD", Group: "1", Minutes: "BRD", DestinationName: "Glenmont"},
		{Line: "--", Group: "3", Minutes: "", DestinationName: "No Passenger"},
	}}
	board := NewArrivalBoard(feed, time.Minute)

	groups, err := board.Arrivals(context.Background(), []string{"A01"})
	if err != nil {
		t.Fatalf("Arrivals: %v", err)
	}
	if n := len(groups["1"]); n != 2 {
		t.Errorf("group 1 has %d arrivals, expected 2", n)
	}
	if n := len(groups["2"]); n != 2 {
		t.Errorf("group 2 has %d arrivals, expected 2", n)
	}
	if groups["1"][0].Minutes != "3" || groups["1"][1].Minutes != "BRD" {
		t.Errorf("group 1 order not preserved: %+v", groups["1"])
	}
}

func TestArrivalBoardCachesByStationSet(t *testing.T) {
	feed := &fakeArrivals{arrivals: []Arrival{{Group: "1"}}}
	board := NewArrivalBoard(feed, time.Minute)
	ctx := context.Background()

	if _, err := board.Arrivals(ctx, []string{"C01", "A01"}); err != nil {
		t.Fatalf("Arrivals: %v", err)
	}
	if _, err := board.Arrivals(ctx, []string{"A01", " C01", "A01"}); err != nil {
		t.Fatalf("Arrivals: %v", err)
	}
	if len(feed.requests) != 1 {
		t.Fatalf("feed called %d times, expected 1", len(feed.requests))
	}
	if !equalStrings(feed.requests[0], []string{"A01", "C01"}) {
		t.Errorf("request codes = %v, expected sorted [A01 C01]", feed.requests[0])
	}

	if _, err := board.Arrivals(ctx, []string{"B01"}); err != nil {
		t.Fatalf("Arrivals: %v", err)
	}
	if len(feed.requests) != 2 {
		t.Errorf("different station set should miss the cache")
	}
}

func TestArrivalBoardErrors(t *testing.T) {
	feed := &fakeArrivals{err: &FetchError{Op: "fetch arrivals", StatusCode: 500, Err: errors.New("boom")}}
	board := NewArrivalBoard(feed, time.Minute)

	if _, err := board.Arrivals(context.Background(), []string{" ", ""}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Arrivals with no codes error = %v, expected ErrNotFound", err)
	}

	_, err := board.Arrivals(context.Background(), []string{"A01"})
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != 500 {
		t.Fatalf("Arrivals error = %v, expected FetchError 500", err)
	}

	// Failures are not cached
	feed.mu.Lock()
	feed.err = nil
	feed.arrivals = []Arrival{{Group: "2"}}
	feed.mu.Unlock()
	groups, err := board.Arrivals(context.Background(), []string{"A01"})
	if err != nil {
		t.Fatalf("Arrivals after recovery: %v", err)
	}
	if len(groups["2"]) != 1 {
		t.Errorf("groups = %+v", groups)
	}
}
