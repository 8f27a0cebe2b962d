package models

// TripStop is one stop in a plan request. Entries in TripPlanRequest.Stops
// may be null where the client removed a stop without compacting the list.
type TripStop struct {
	Point
	Name string `json:"name,omitempty"`
}

// TripLegFlags carry the client-owned per-leg edit state.
type TripLegFlags struct {
	Custom bool `json:"custom,omitempty"`
	Locked bool `json:"locked,omitempty"`
}

// TripPlanRequest is the body of POST /v1/trips/{tripId}/plan. Modes are
// indexed by leg; missing or unknown modes default to walking.
type TripPlanRequest struct {
	Stops []*TripStop    `json:"stops"`
	Modes []string       `json:"modes,omitempty"`
	Flags []TripLegFlags `json:"flags,omitempty"`
}

// TripPlanResponse is the reconciled segment list for a trip.
type TripPlanResponse struct {
	TripID   string             `json:"tripId"`
	Segments []SegmentView      `json:"segments"`
	Errors   []RoutingErrorView `json:"errors,omitempty"`
}

// SegmentView is the wire shape of one reconciled segment.
type SegmentView struct {
	Index           int    `json:"index"`
	Mode            string `json:"mode"`
	Start           Point  `json:"start"`
	End             Point  `json:"end"`
	Polyline        string `json:"polyline,omitempty"`
	DistanceMeters  int    `json:"distanceMeters"`
	DurationSeconds int    `json:"durationSeconds"`
	IsFallback      bool   `json:"isFallback,omitempty"`
	IsCustom        bool   `json:"isCustom,omitempty"`
	IsPoint         bool   `json:"isPoint,omitempty"`
}

// RoutingErrorView reports a leg the engine could not route at all. The
// client is expected to clear the offending stop when ClearStop is set.
type RoutingErrorView struct {
	LegIndex    int    `json:"legIndex"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	ClearStop   bool   `json:"clearStop"`
	Message     string `json:"message"`
}
