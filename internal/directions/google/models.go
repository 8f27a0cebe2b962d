package google

// Wire types for the Directions and Geocoding JSON APIs. Only the fields the
// planner consumes are mapped.

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type directionsResponse struct {
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message"`
	Routes       []apiRoute `json:"routes"`
}

type apiRoute struct {
	Legs             []apiLeg `json:"legs"`
	OverviewPolyline struct {
		Points string `json:"points"`
	} `json:"overview_polyline"`
	Warnings []string `json:"warnings"`
}

type apiLeg struct {
	Steps         []apiStep `json:"steps"`
	Distance      textValue `json:"distance"`
	Duration      textValue `json:"duration"`
	StartLocation latLng    `json:"start_location"`
	EndLocation   latLng    `json:"end_location"`
}

type apiStep struct {
	TravelMode     string             `json:"travel_mode"`
	Distance       textValue          `json:"distance"`
	Duration       textValue          `json:"duration"`
	StartLocation  latLng             `json:"start_location"`
	EndLocation    latLng             `json:"end_location"`
	TransitDetails *apiTransitDetails `json:"transit_details,omitempty"`
}

type apiTransitDetails struct {
	Line struct {
		ShortName string `json:"short_name"`
		Name      string `json:"name"`
		Vehicle   struct {
			Type string `json:"type"`
		} `json:"vehicle"`
	} `json:"line"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string `json:"place_id"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location latLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}
