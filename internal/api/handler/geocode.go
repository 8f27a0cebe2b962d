package handler

import (
	"net/http"
	"strings"

	"github.com/tripweaver/tripweaver/internal/api/models"
	"github.com/tripweaver/tripweaver/internal/api/response"
	"github.com/tripweaver/tripweaver/internal/geocode"
)

// GeocodeHandler handles place lookup endpoints.
type GeocodeHandler struct {
	service *geocode.Service
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(service *geocode.Service) *GeocodeHandler {
	return &GeocodeHandler{service: service}
}

// Geocode handles GET /v1/geocode?query=...
func (h *GeocodeHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		response.BadRequest(w, r, "query parameter is required", []models.FieldError{
			{Field: "query", Message: "is required"},
		})
		return
	}

	result, err := h.service.Resolve(r.Context(), query)
	if err != nil {
		response.NotFound(w, r, "no match for query")
		return
	}

	response.JSON(w, r, http.StatusOK, models.GeocodeResponse{
		Query:            query,
		Location:         models.Point{Lat: result.Location.Lat, Lon: result.Location.Lon},
		PlaceID:          result.PlaceID,
		FormattedAddress: result.FormattedAddress,
	})
}
