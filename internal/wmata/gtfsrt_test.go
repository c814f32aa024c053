package wmata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func testFeed() *gtfs.FeedMessage {
	return &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("e1"),
				Vehicle: &gtfs.VehiclePosition{
					Vehicle: &gtfs.VehicleDescriptor{Id: proto.String("101")},
					Trip:    &gtfs.TripDescriptor{RouteId: proto.String("RED"), DirectionId: proto.Uint32(1)},
					StopId:  proto.String("PF_A01_C"),
				},
			},
			{
				Id: proto.String("e2"),
				Vehicle: &gtfs.VehiclePosition{
					Trip: &gtfs.TripDescriptor{RouteId: proto.String("BLUE"), DirectionId: proto.Uint32(0)},
				},
			},
			{
				Id:      proto.String("e3"),
				Vehicle: &gtfs.VehiclePosition{},
			},
			{
				Id: proto.String("alert-only"),
			},
		},
	}
}

func TestDecodeVehiclePositions(t *testing.T) {
	positions := DecodeVehiclePositions(testFeed())
	if len(positions) != 3 {
		t.Fatalf("got %d positions, expected 3", len(positions))
	}

	tests := []struct {
		id        string
		lineCode  string
		direction string
		segment   string
	}{
		{"101", "RED", "2", "PF_A01_C"},
		{"e2", "BLUE", "1", ""},
		{"e3", "", "", ""},
	}
	for i, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			p := positions[i]
			if p.VehicleID != tc.id {
				t.Errorf("VehicleID = %q, expected %q", p.VehicleID, tc.id)
			}
			lineCode := ""
			if p.LineCode != nil {
				lineCode = *p.LineCode
			}
			if lineCode != tc.lineCode || p.Direction != tc.direction || p.CurrentSegmentID != tc.segment {
				t.Errorf("got (%q, %q, %q), expected (%q, %q, %q)",
					lineCode, p.Direction, p.CurrentSegmentID, tc.lineCode, tc.direction, tc.segment)
			}
			if p.DestinationStationCode != nil {
				t.Error("GTFS-RT positions should have no destination")
			}
		})
	}
}

func TestGTFSRTFeedFetch(t *testing.T) {
	body, err := proto.Marshal(testFeed())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api_key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.Write(body)
	}))
	defer srv.Close()

	feed := NewGTFSRTFeed(NewClient(Options{Host: srv.URL, APIKey: "secret"}), srv.URL+"/gtfs/rail-gtfsrt-vehiclepositions.pb")
	positions, err := feed.FetchPositions(context.Background())
	if err != nil {
		t.Fatalf("FetchPositions: %v", err)
	}
	if len(positions) != 3 {
		t.Errorf("got %d positions, expected 3", len(positions))
	}

	bad := NewGTFSRTFeed(NewClient(Options{Host: srv.URL, APIKey: "wrong"}), srv.URL+"/feed.pb")
	if _, err := bad.FetchPositions(context.Background()); err == nil {
		t.Error("expected error for rejected key")
	}
}
