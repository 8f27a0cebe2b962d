package planner

import (
	"errors"
	"fmt"

	"github.com/tripweaver/tripweaver/internal/directions"
	"github.com/tripweaver/tripweaver/internal/geo"
)

// Validation failure reasons. A failed validation never reaches the user; the
// leg degrades to a fallback segment and the reason is logged.
var (
	ErrEndpointTooFar = errors.New("route endpoint too far from requested stop")
	ErrImpureTransit  = errors.New("route mixes in non-qualifying travel")
	ErrNoTransitLeg   = errors.New("route contains no qualifying transit step")
	ErrEmptyRoute     = errors.New("provider returned no routes")
)

// Validator rejects provider results that would mislead the user: routes
// that start or end away from the requested stops, and transit routes padded
// out with long walks or the wrong vehicle family.
type Validator struct {
	// ProximityToleranceM bounds how far a returned route's endpoints may
	// sit from the requested coordinates.
	ProximityToleranceM float64
	// TransitWalkCapM bounds walking connector steps inside transit routes.
	TransitWalkCapM float64
}

// Validate checks the first route of result against the leg it was computed
// for. Fallback results are exempt; they are correct by construction.
func (v Validator) Validate(result *directions.Result, spec LegSpec) error {
	if result == nil || len(result.Routes) == 0 || len(result.Routes[0].Legs) == 0 {
		return ErrEmptyRoute
	}
	if result.Fallback {
		return nil
	}
	leg := result.Routes[0].Legs[0]

	if d := geo.Distance(leg.StartLocation, spec.Origin.Point); d > v.ProximityToleranceM {
		return fmt.Errorf("%w: start is %.0fm from origin", ErrEndpointTooFar, d)
	}
	if d := geo.Distance(leg.EndLocation, spec.Destination.Point); d > v.ProximityToleranceM {
		return fmt.Errorf("%w: end is %.0fm from destination", ErrEndpointTooFar, d)
	}

	switch spec.Mode {
	case ModeTransit, ModeTrain:
		return v.checkTransitPurity(leg, railVehicles)
	case ModeFerry:
		return v.checkTransitPurity(leg, []directions.TransitVehicle{directions.VehicleFerry})
	}
	return nil
}

// checkTransitPurity requires every step to be either a short walking
// connector or a transit step on an allowed vehicle, with at least one
// qualifying transit step overall.
func (v Validator) checkTransitPurity(leg directions.Leg, allowed []directions.TransitVehicle) error {
	qualifying := 0
	for _, step := range leg.Steps {
		switch step.Mode {
		case directions.ModeWalking:
			if step.DistanceMeters > int(v.TransitWalkCapM) {
				return fmt.Errorf("%w: %dm walking connector", ErrImpureTransit, step.DistanceMeters)
			}
		case directions.ModeTransit:
			if step.Transit == nil {
				return fmt.Errorf("%w: transit step without vehicle details", ErrImpureTransit)
			}
			if !vehicleAllowed(step.Transit.Vehicle, allowed) {
				return fmt.Errorf("%w: vehicle %s", ErrImpureTransit, step.Transit.Vehicle)
			}
			qualifying++
		default:
			return fmt.Errorf("%w: %s step", ErrImpureTransit, step.Mode)
		}
	}
	if qualifying == 0 {
		return ErrNoTransitLeg
	}
	return nil
}

func vehicleAllowed(vehicle directions.TransitVehicle, allowed []directions.TransitVehicle) bool {
	for _, v := range allowed {
		if vehicle == v {
			return true
		}
	}
	return false
}
