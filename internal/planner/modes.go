package planner

import (
	"github.com/tripweaver/tripweaver/internal/directions"
	"github.com/tripweaver/tripweaver/internal/render"
)

// railVehicles is the vehicle family accepted for transit and train legs.
var railVehicles = []directions.TransitVehicle{
	directions.VehicleRail,
	directions.VehicleSubway,
	directions.VehicleTrain,
	directions.VehicleTram,
	directions.VehicleMetroRail,
	directions.VehicleHeavyRail,
	directions.VehicleCommuterTrain,
}

// effectivePlan is how a display mode translates into a provider request.
// KeyMode feeds the cache key, so two display modes that produce different
// provider requests must never share a KeyMode.
type effectivePlan struct {
	// Provider is false for modes computed locally (flight).
	Provider bool
	Mode     directions.Mode
	Transit  *directions.TransitOptions
	// KeyMode names the effective request for cache key derivation.
	KeyMode string
}

// resolveEffectiveMode applies the mode policy for one leg. distanceMeters
// is the straight-line distance between the endpoints; walk and bike legs
// longer than thresholdKm are silently routed as driving while the display
// mode stays what the user picked.
func resolveEffectiveMode(mode TravelMode, distanceMeters, thresholdKm float64) effectivePlan {
	overland := distanceMeters > thresholdKm*1000

	switch mode {
	case ModeWalk:
		if overland {
			return effectivePlan{Provider: true, Mode: directions.ModeDriving, KeyMode: string(directions.ModeDriving)}
		}
		return effectivePlan{Provider: true, Mode: directions.ModeWalking, KeyMode: string(directions.ModeWalking)}
	case ModeBike:
		if overland {
			return effectivePlan{Provider: true, Mode: directions.ModeDriving, KeyMode: string(directions.ModeDriving)}
		}
		return effectivePlan{Provider: true, Mode: directions.ModeBicycling, KeyMode: string(directions.ModeBicycling)}
	case ModeBus:
		// Bus requests route as driving: provider bus routing quality is too
		// uneven to surface, and the drawn path is near identical.
		return effectivePlan{Provider: true, Mode: directions.ModeDriving, KeyMode: string(directions.ModeDriving)}
	case ModeTransit, ModeTrain:
		return effectivePlan{
			Provider: true,
			Mode:     directions.ModeTransit,
			Transit: &directions.TransitOptions{
				Vehicles:       railVehicles,
				FewerTransfers: true,
			},
			KeyMode: "transit-rail",
		}
	case ModeFerry:
		return effectivePlan{Provider: true, Mode: directions.ModeTransit, KeyMode: string(directions.ModeTransit)}
	case ModeFlight:
		return effectivePlan{Provider: false, KeyMode: "flight"}
	default:
		return effectivePlan{Provider: true, Mode: directions.ModeDriving, KeyMode: string(directions.ModeDriving)}
	}
}

// lineStyle maps a leg to its drawn polyline styling. Fallback and flight
// paths render dashed.
func lineStyle(mode TravelMode, fallback bool) render.PolylineStyle {
	return render.PolylineStyle{
		Mode:   string(mode),
		Dashed: fallback || mode == ModeFlight,
	}
}
