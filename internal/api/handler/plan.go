package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripweaver/tripweaver/internal/api/models"
	"github.com/tripweaver/tripweaver/internal/api/response"
	"github.com/tripweaver/tripweaver/internal/geo"
	"github.com/tripweaver/tripweaver/internal/planner"
	"github.com/tripweaver/tripweaver/pkg/polyline"
)

const maxStopsPerTrip = 25

// PlanHandler handles trip planning endpoints.
type PlanHandler struct {
	trips *planner.Service
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(trips *planner.Service) *PlanHandler {
	return &PlanHandler{trips: trips}
}

// PlanTrip handles POST /v1/trips/{tripId}/plan - reconcile the trip's
// segment list against the submitted stops and modes.
func (h *PlanHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	var input models.TripPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if len(input.Stops) > maxStopsPerTrip {
		response.BadRequest(w, r, "too many stops", []models.FieldError{
			{Field: "stops", Message: "at most 25 stops per trip"},
		})
		return
	}

	segments, events, err := h.trips.Reconcile(r.Context(), tripID, toPassInput(input))
	if errors.Is(err, planner.ErrSuperseded) {
		// A newer request for this trip won; its response carries the state.
		response.JSON(w, r, http.StatusConflict, models.TripPlanResponse{TripID: tripID})
		return
	}
	if err != nil {
		response.InternalError(w, r, "trip reconciliation failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toPlanResponse(tripID, segments, events))
}

// GetTrip handles GET /v1/trips/{tripId} - current segment list.
func (h *PlanHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")
	segments, ok := h.trips.Segments(tripID)
	if !ok {
		response.NotFound(w, r, "unknown trip")
		return
	}
	response.JSON(w, r, http.StatusOK, toPlanResponse(tripID, segments, nil))
}

// DeleteTrip handles DELETE /v1/trips/{tripId} - drop the trip session.
func (h *PlanHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")
	if !h.trips.Drop(r.Context(), tripID) {
		response.NotFound(w, r, "unknown trip")
		return
	}
	response.NoContent(w, r)
}

func toPassInput(input models.TripPlanRequest) planner.PassInput {
	stops := make([]*planner.Stop, len(input.Stops))
	for i, s := range input.Stops {
		if s == nil {
			continue
		}
		stops[i] = &planner.Stop{
			Point: geo.Point{Lat: s.Lat, Lon: s.Lon},
			Name:  s.Name,
		}
	}
	modes := make([]planner.TravelMode, len(input.Modes))
	for i, m := range input.Modes {
		modes[i] = planner.TravelMode(m)
	}
	flags := make([]planner.LegFlags, len(input.Flags))
	for i, f := range input.Flags {
		flags[i] = planner.LegFlags{Custom: f.Custom, Locked: f.Locked}
	}
	return planner.PassInput{Stops: stops, Modes: modes, Flags: flags}
}

func toPlanResponse(tripID string, segments []*planner.Segment, events []planner.RoutingError) models.TripPlanResponse {
	resp := models.TripPlanResponse{
		TripID:   tripID,
		Segments: make([]models.SegmentView, 0, len(segments)),
	}
	for _, seg := range segments {
		view := models.SegmentView{
			Index:           seg.Index,
			Mode:            string(seg.Mode),
			Start:           models.Point{Lat: seg.Start.Lat, Lon: seg.Start.Lon},
			End:             models.Point{Lat: seg.End.Lat, Lon: seg.End.Lon},
			DistanceMeters:  seg.DistanceMeters,
			DurationSeconds: seg.DurationSeconds,
			IsFallback:      seg.IsFallback,
			IsCustom:        seg.IsCustom,
			IsPoint:         seg.IsPoint,
		}
		if len(seg.Path) >= 2 {
			points := make([]polyline.Point, len(seg.Path))
			for i, p := range seg.Path {
				points[i] = polyline.Point{Lat: p.Lat, Lon: p.Lon}
			}
			view.Polyline = polyline.Encode(points)
		}
		resp.Segments = append(resp.Segments, view)
	}
	for _, ev := range events {
		resp.Errors = append(resp.Errors, models.RoutingErrorView{
			LegIndex:    ev.LegIndex,
			Origin:      ev.OriginLabel,
			Destination: ev.DestinationLabel,
			ClearStop:   ev.ClearStop,
			Message:     ev.Error(),
		})
	}
	return resp
}
