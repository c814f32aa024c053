package metro

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// Arrival is one predicted train arrival at a station platform
type Arrival struct {
	Car             string `json:"car"`
	Destination     string `json:"destination"`
	DestinationCode string `json:"destinationCode"`
	DestinationName string `json:"destinationName"`
	Group           string `json:"group"`
	Line            string `json:"line"`
	LocationCode    string `json:"locationCode"`
	LocationName    string `json:"locationName"`
	Minutes         string `json:"min"` // minutes, or "ARR" / "BRD"
}

// ArrivalFeed fetches predictions for one or more stations
type ArrivalFeed interface {
	FetchArrivals(ctx context.Context, stationCodes []string) ([]Arrival, error)
}

// ArrivalGroups splits predictions by platform group ("1" and "2")
type ArrivalGroups map[string][]Arrival

// ArrivalBoard caches grouped predictions for a short time
type ArrivalBoard struct {
	feed  ArrivalFeed
	cache *cache.Cache
}

// NewArrivalBoard creates a board whose entries live for ttl
func NewArrivalBoard(feed ArrivalFeed, ttl time.Duration) *ArrivalBoard {
	return &ArrivalBoard{
		feed:  feed,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Arrivals returns predictions for the given stations grouped by platform
// group. Group "1" stays "1", every other group is reported as "2".
func (b *ArrivalBoard) Arrivals(ctx context.Context, stationCodes []string) (ArrivalGroups, error) {
	codes := normalizeCodes(stationCodes)
	if len(codes) == 0 {
		return nil, fmt.Errorf("arrivals: no station codes: %w", ErrNotFound)
	}

	key := strings.Join(codes, ",")
	if cached, ok := b.cache.Get(key); ok {
		return cached.(ArrivalGroups), nil
	}

	arrivals, err := b.feed.FetchArrivals(ctx, codes)
	if err != nil {
		return nil, err
	}

	groups := ArrivalGroups{"1": {}, "2": {}}
	for _, a := range arrivals {
		g := "2"
		if a.Group == "1" {
			g = "1"
		}
		groups[g] = append(groups[g], a)
	}

	b.cache.SetDefault(key, groups)
	return groups, nil
}

func normalizeCodes(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
