package metro

// Phrases shown on a train's onboard sign
const (
	PhraseDestination     = "Destination"
	PhraseThisIs          = "This is"
	PhraseNextStop        = "Next stop is"
	PhrasePositionUnknown = "Position unknown"
)

// Board is what a train's onboard sign displays
type Board struct {
	Train           VehiclePosition `json:"train"`
	DestinationName string          `json:"destinationName,omitempty"`
	NextStation     *Segment        `json:"nextStation,omitempty"`
	NextStationName string          `json:"nextStationName,omitempty"`
	AtStation       bool            `json:"atStation"`
	Messages        []string        `json:"messages"`
}

// TrainBoard builds the sign for a train of the current snapshot
func (s *System) TrainBoard(vehicleID string) (Board, bool) {
	v, ok := s.positions.Find(vehicleID)
	if !ok {
		return Board{}, false
	}

	b := Board{Train: v, Messages: []string{}}
	if v.DestinationStationCode != nil {
		if name, ok := s.stations.Name(*v.DestinationStationCode); ok {
			b.DestinationName = name
			b.Messages = append(b.Messages, PhraseDestination, name)
		}
	}

	if v.LineCode == nil {
		b.Messages = append(b.Messages, PhrasePositionUnknown)
		return b, true
	}
	next, ok := s.NextStationSegment(v.CurrentSegmentID, *v.LineCode, v.Direction)
	if !ok {
		b.Messages = append(b.Messages, PhrasePositionUnknown)
		return b, true
	}

	b.NextStation = &next
	b.NextStationName, _ = s.stations.Name(*next.StationCode)
	b.AtStation = next.ID == v.CurrentSegmentID
	phrase := PhraseNextStop
	if b.AtStation {
		phrase = PhraseThisIs
	}
	b.Messages = append(b.Messages, phrase, b.NextStationName)
	return b, true
}
