package wmata

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/karina-peters/metro-map/internal/metro"
)

// GTFSRTFeed reads train positions from a GTFS-realtime VehiclePositions
// feed instead of the JSON TrainPositions endpoint
type GTFSRTFeed struct {
	client *Client
	url    string
}

// NewGTFSRTFeed creates a feed that fetches url through client, sharing its
// credentials and rate limit
func NewGTFSRTFeed(client *Client, url string) *GTFSRTFeed {
	return &GTFSRTFeed{client: client, url: url}
}

// FetchPositions fetches and decodes the feed
func (f *GTFSRTFeed) FetchPositions(ctx context.Context) ([]metro.VehiclePosition, error) {
	body, err := f.client.get(ctx, "fetch gtfs-rt positions", f.url)
	if err != nil {
		return nil, err
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return nil, &metro.FetchError{Op: "fetch gtfs-rt positions", Err: fmt.Errorf("failed to parse protobuf: %w", err)}
	}
	return DecodeVehiclePositions(feed), nil
}

// DecodeVehiclePositions converts the vehicle entities of a feed. Route id
// maps to the line code, direction_id 0/1 to direction "1"/"2" and stop id to
// the current segment. GTFS-RT carries no destination station.
func DecodeVehiclePositions(feed *gtfs.FeedMessage) []metro.VehiclePosition {
	var positions []metro.VehiclePosition
	for _, entity := range feed.GetEntity() {
		vehicle := entity.GetVehicle()
		if vehicle == nil {
			continue
		}

		id := vehicle.GetVehicle().GetId()
		if id == "" {
			id = entity.GetId()
		}
		if id == "" {
			continue
		}

		pos := metro.VehiclePosition{
			VehicleID:        id,
			CurrentSegmentID: vehicle.GetStopId(),
		}

		if trip := vehicle.GetTrip(); trip != nil {
			if route := trip.GetRouteId(); route != "" {
				pos.LineCode = &route
			}
			if trip.DirectionId != nil {
				pos.Direction = strconv.Itoa(int(trip.GetDirectionId()) + 1)
			}
		}

		positions = append(positions, pos)
	}
	return positions
}
