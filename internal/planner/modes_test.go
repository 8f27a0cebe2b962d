package planner

import (
	"testing"

	"github.com/tripweaver/tripweaver/internal/directions"
)

func TestResolveEffectiveMode(t *testing.T) {
	tests := []struct {
		name      string
		mode      TravelMode
		distanceM float64
		provider  bool
		effective directions.Mode
		keyMode   string
	}{
		{"short walk", ModeWalk, 5_000, true, directions.ModeWalking, "walking"},
		{"overland walk becomes driving", ModeWalk, 35_000, true, directions.ModeDriving, "driving"},
		{"short bike", ModeBike, 12_000, true, directions.ModeBicycling, "bicycling"},
		{"overland bike becomes driving", ModeBike, 31_000, true, directions.ModeDriving, "driving"},
		{"bus always drives", ModeBus, 2_000, true, directions.ModeDriving, "driving"},
		{"car", ModeCar, 500_000, true, directions.ModeDriving, "driving"},
		{"transit", ModeTransit, 40_000, true, directions.ModeTransit, "transit-rail"},
		{"train", ModeTrain, 40_000, true, directions.ModeTransit, "transit-rail"},
		{"ferry is generic transit", ModeFerry, 40_000, true, directions.ModeTransit, "transit"},
		{"flight bypasses provider", ModeFlight, 2_000_000, false, "", "flight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := resolveEffectiveMode(tt.mode, tt.distanceM, 30)
			if plan.Provider != tt.provider {
				t.Errorf("Provider = %v, want %v", plan.Provider, tt.provider)
			}
			if plan.Mode != tt.effective {
				t.Errorf("Mode = %s, want %s", plan.Mode, tt.effective)
			}
			if plan.KeyMode != tt.keyMode {
				t.Errorf("KeyMode = %s, want %s", plan.KeyMode, tt.keyMode)
			}
		})
	}
}

func TestRailModesShareCacheKeyAndRequestShape(t *testing.T) {
	transit := resolveEffectiveMode(ModeTransit, 10_000, 30)
	train := resolveEffectiveMode(ModeTrain, 10_000, 30)

	if transit.KeyMode != train.KeyMode {
		t.Errorf("transit and train derive different cache key modes: %s vs %s", transit.KeyMode, train.KeyMode)
	}
	for _, plan := range []effectivePlan{transit, train} {
		if plan.Transit == nil {
			t.Fatal("rail plan missing transit options")
		}
		if !plan.Transit.FewerTransfers {
			t.Error("rail plan should prefer fewer transfers")
		}
		if len(plan.Transit.Vehicles) != len(railVehicles) {
			t.Errorf("rail plan restricts to %d vehicles, want %d", len(plan.Transit.Vehicles), len(railVehicles))
		}
	}

	ferry := resolveEffectiveMode(ModeFerry, 10_000, 30)
	if ferry.Transit != nil {
		t.Error("ferry plan should not restrict vehicles")
	}
	if ferry.KeyMode == transit.KeyMode {
		t.Error("ferry must not share a cache key mode with rail transit")
	}
}
