package models

// GeocodeResponse is the body of GET /v1/geocode.
type GeocodeResponse struct {
	Query            string `json:"query"`
	Location         Point  `json:"location"`
	PlaceID          string `json:"placeId,omitempty"`
	FormattedAddress string `json:"formattedAddress,omitempty"`
}
