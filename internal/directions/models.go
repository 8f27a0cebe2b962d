// Package directions defines the directions-provider interface and the
// provider-neutral route result model consumed by the trip planner.
package directions

import (
	"context"
	"errors"
	"time"

	"github.com/tripweaver/tripweaver/internal/geo"
)

// Sentinel errors for provider operations.
var (
	// ErrProviderUnavailable indicates the provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
	// ErrNoRouteFound indicates no route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the coordinates are out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider is the external directions provider. The planner treats every
// failure uniformly: one call per leg, no retry, fallback on error.
type Provider interface {
	// Route computes directions between two points.
	Route(ctx context.Context, req Request) (*Result, error)
	// Geocode resolves a free-form query to a coordinate and place ID.
	Geocode(ctx context.Context, query string) (*GeocodeResult, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Mode is the travel mode actually sent to the provider. This is the
// effective mode, which may differ from the mode shown to the user.
type Mode string

const (
	ModeDriving   Mode = "driving"
	ModeWalking   Mode = "walking"
	ModeBicycling Mode = "bicycling"
	ModeTransit   Mode = "transit"
)

// TransitVehicle classifies a transit step's vehicle.
type TransitVehicle string

// Vehicle types reported by the provider for transit steps.
const (
	VehicleBus           TransitVehicle = "BUS"
	VehicleFerry         TransitVehicle = "FERRY"
	VehicleRail          TransitVehicle = "RAIL"
	VehicleSubway        TransitVehicle = "SUBWAY"
	VehicleTrain         TransitVehicle = "TRAIN"
	VehicleTram          TransitVehicle = "TRAM"
	VehicleMetroRail     TransitVehicle = "METRO_RAIL"
	VehicleHeavyRail     TransitVehicle = "HEAVY_RAIL"
	VehicleCommuterTrain TransitVehicle = "COMMUTER_TRAIN"
)

// TransitOptions narrow a transit request.
type TransitOptions struct {
	// Vehicles restricts the request to the given vehicle families.
	Vehicles []TransitVehicle
	// FewerTransfers asks the provider to prefer routes with fewer transfers.
	FewerTransfers bool
}

// Request asks the provider for directions between two points.
type Request struct {
	Origin      geo.Point
	Destination geo.Point
	Mode        Mode
	Transit     *TransitOptions
}

// Result is a provider response. The planner only ever uses the first route.
type Result struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
	// Fallback marks a synthesized straight-line result that stands in for
	// a route the provider could not produce.
	Fallback bool
	// Warnings carries provider or synthesizer notices for display.
	Warnings []string
}

// Route is a single routed alternative.
type Route struct {
	Legs []Leg
	// OverviewPolyline is the encoded display path (precision 5).
	OverviewPolyline string
}

// Leg is the routed section between two waypoints of a request. Requests
// issued by the planner always have exactly one leg.
type Leg struct {
	Steps           []Step
	DistanceMeters  int
	DurationSeconds int
	StartLocation   geo.Point
	EndLocation     geo.Point
}

// Step is a single instruction-level section of a leg.
type Step struct {
	Mode            Mode
	DistanceMeters  int
	DurationSeconds int
	StartLocation   geo.Point
	EndLocation     geo.Point
	// Transit is set only for transit steps.
	Transit *TransitDetails
}

// TransitDetails describes the vehicle serving a transit step.
type TransitDetails struct {
	Vehicle  TransitVehicle
	LineName string
}

// GeocodeResult resolves a query to a location.
type GeocodeResult struct {
	Location geo.Point
	PlaceID  string
	// FormattedAddress is display text; provider terms restrict storing it
	// beyond the session, so it is never written to the persistent cache.
	FormattedAddress string
}

// Error provides detailed error information from a directions provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
