package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweaver/tripweaver/internal/api"
	"github.com/tripweaver/tripweaver/internal/api/models"
	"github.com/tripweaver/tripweaver/internal/cache"
	"github.com/tripweaver/tripweaver/internal/directions"
	"github.com/tripweaver/tripweaver/internal/geo"
	"github.com/tripweaver/tripweaver/internal/geocode"
	"github.com/tripweaver/tripweaver/internal/planner"
	"github.com/tripweaver/tripweaver/internal/render"
	"github.com/tripweaver/tripweaver/pkg/polyline"
)

// stubProvider answers every route request with a valid single-step result
// whose endpoints match the request exactly.
type stubProvider struct {
	mu           sync.Mutex
	routeCalls   int
	geocodeCalls int
	geocodeErr   error
}

func (s *stubProvider) Route(_ context.Context, req directions.Request) (*directions.Result, error) {
	s.mu.Lock()
	s.routeCalls++
	s.mu.Unlock()

	distance := int(geo.Distance(req.Origin, req.Destination))
	return &directions.Result{
		Routes: []directions.Route{{
			Legs: []directions.Leg{{
				Steps: []directions.Step{{
					Mode:            req.Mode,
					DistanceMeters:  distance,
					DurationSeconds: 600,
					StartLocation:   req.Origin,
					EndLocation:     req.Destination,
				}},
				DistanceMeters:  distance,
				DurationSeconds: 600,
				StartLocation:   req.Origin,
				EndLocation:     req.Destination,
			}},
			OverviewPolyline: polyline.Encode([]polyline.Point{
				{Lat: req.Origin.Lat, Lon: req.Origin.Lon},
				{Lat: req.Destination.Lat, Lon: req.Destination.Lon},
			}),
		}},
		Provider: "stub",
	}, nil
}

func (s *stubProvider) Geocode(_ context.Context, _ string) (*directions.GeocodeResult, error) {
	s.mu.Lock()
	s.geocodeCalls++
	s.mu.Unlock()
	if s.geocodeErr != nil {
		return nil, s.geocodeErr
	}
	return &directions.GeocodeResult{
		Location:         geo.Point{Lat: 52.3676, Lon: 4.9041},
		PlaceID:          "place_ams",
		FormattedAddress: "Amsterdam, Netherlands",
	}, nil
}

func (s *stubProvider) Name() string { return "stub" }

type testEnv struct {
	router   http.Handler
	provider *stubProvider
}

func newTestEnv(t *testing.T, opts ...func(*api.RouterConfig)) *testEnv {
	t.Helper()

	logger := zerolog.New(io.Discard)
	provider := &stubProvider{}
	store := cache.NewMemoryStore()

	dirCache := cache.NewTwoTier(cache.TwoTierConfig{
		Name:   "directions",
		Store:  store,
		Logger: logger,
	})
	geoCache := cache.NewTwoTier(cache.TwoTierConfig{
		Name:   "geocode",
		Store:  store,
		Logger: logger,
	})

	overlay := render.NewMemoryOverlay()
	trips := planner.NewService(func(onError func(planner.RoutingError)) *planner.Reconciler {
		return planner.NewReconciler(planner.ReconcilerConfig{
			Provider:       provider,
			Overlay:        overlay,
			Directions:     dirCache,
			Logger:         logger,
			OnRoutingError: onError,
		})
	})

	geocodeSvc := geocode.NewService(geocode.ServiceConfig{
		Provider: provider,
		Cache:    geoCache,
		Places:   cache.NewPlaceStore(store, logger),
		Logger:   logger,
	})

	cfg := api.RouterConfig{
		Version:     "test",
		BuildTime:   "2026-01-01T00:00:00Z",
		Logger:      logger,
		Trips:       trips,
		Geocode:     geocodeSvc,
		StatsCaches: []*cache.TwoTier{dirCache, geoCache},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testEnv{router: api.NewRouter(cfg), provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func twoStopWalk() models.TripPlanRequest {
	return models.TripPlanRequest{
		Stops: []*models.TripStop{
			{Point: models.Point{Lat: 52.52, Lon: 13.405}, Name: "Alexanderplatz"},
			{Point: models.Point{Lat: 52.53, Lon: 13.41}},
		},
		Modes: []string{"walk"},
	}
}

func TestRouter_HealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/ops/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.False(t, health.Time.IsZero())
}

func TestRouter_ReadinessCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/ops/ready", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ReadinessCheck_DependencyDown(t *testing.T) {
	env := newTestEnv(t, func(cfg *api.RouterConfig) {
		cfg.ReadyCheck = func(context.Context) error {
			return errors.New("connection refused")
		}
	})

	w := env.do(t, http.MethodGet, "/v1/ops/ready", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_CacheStats(t *testing.T) {
	env := newTestEnv(t)

	// Run one plan so the directions cache records a miss.
	planResp := env.do(t, http.MethodPost, "/v1/trips/trip_stats/plan", twoStopWalk())
	require.Equal(t, http.StatusOK, planResp.Code)

	w := env.do(t, http.MethodGet, "/v1/ops/cache/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var stats models.CacheStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats.Caches, 2)
	assert.Equal(t, "directions", stats.Caches[0].Name)
	assert.Equal(t, "geocode", stats.Caches[1].Name)
	assert.Equal(t, int64(1), stats.Caches[0].Misses)
	assert.Equal(t, 1, stats.Caches[0].MemoryLen)
}

func TestRouter_PlanTrip(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/trips/trip_abc/plan", twoStopWalk())

	assert.Equal(t, http.StatusOK, w.Code)

	var plan models.TripPlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, "trip_abc", plan.TripID)
	require.Len(t, plan.Segments, 1)

	seg := plan.Segments[0]
	assert.Equal(t, 0, seg.Index)
	assert.Equal(t, "walk", seg.Mode)
	assert.NotEmpty(t, seg.Polyline)
	assert.InDelta(t, 52.52, seg.Start.Lat, 1e-9)
	assert.InDelta(t, 52.53, seg.End.Lat, 1e-9)
	assert.False(t, seg.IsFallback)
	assert.Empty(t, plan.Errors)
}

func TestRouter_PlanTrip_ReplanReusesCache(t *testing.T) {
	env := newTestEnv(t)

	first := env.do(t, http.MethodPost, "/v1/trips/trip_abc/plan", twoStopWalk())
	require.Equal(t, http.StatusOK, first.Code)
	second := env.do(t, http.MethodPost, "/v1/trips/trip_abc/plan", twoStopWalk())
	require.Equal(t, http.StatusOK, second.Code)

	// The second pass reuses the published segment without re-routing.
	assert.Equal(t, 1, env.provider.routeCalls)
}

func TestRouter_PlanTrip_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/trips/trip_abc/plan", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_PlanTrip_TooManyStops(t *testing.T) {
	env := newTestEnv(t)

	input := models.TripPlanRequest{}
	for i := 0; i < 26; i++ {
		input.Stops = append(input.Stops, &models.TripStop{
			Point: models.Point{Lat: 52.0 + float64(i)*0.01, Lon: 13.0},
		})
	}

	w := env.do(t, http.MethodPost, "/v1/trips/trip_abc/plan", input)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "stops", problem.Errors[0].Field)
}

func TestRouter_GetTrip(t *testing.T) {
	env := newTestEnv(t)

	planResp := env.do(t, http.MethodPost, "/v1/trips/trip_abc/plan", twoStopWalk())
	require.Equal(t, http.StatusOK, planResp.Code)

	w := env.do(t, http.MethodGet, "/v1/trips/trip_abc", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var plan models.TripPlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, "trip_abc", plan.TripID)
	assert.Len(t, plan.Segments, 1)
}

func TestRouter_GetTrip_Unknown(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/trips/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_DeleteTrip(t *testing.T) {
	env := newTestEnv(t)

	planResp := env.do(t, http.MethodPost, "/v1/trips/trip_abc/plan", twoStopWalk())
	require.Equal(t, http.StatusOK, planResp.Code)

	w := env.do(t, http.MethodDelete, "/v1/trips/trip_abc", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	after := env.do(t, http.MethodGet, "/v1/trips/trip_abc", nil)
	assert.Equal(t, http.StatusNotFound, after.Code)
}

func TestRouter_DeleteTrip_Unknown(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodDelete, "/v1/trips/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Geocode(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/geocode?query=Amsterdam", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var result models.GeocodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Amsterdam", result.Query)
	assert.Equal(t, "place_ams", result.PlaceID)
	assert.Equal(t, "Amsterdam, Netherlands", result.FormattedAddress)
	assert.InDelta(t, 52.3676, result.Location.Lat, 1e-9)
}

func TestRouter_Geocode_MissingQuery(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/geocode", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Geocode_NoMatch(t *testing.T) {
	env := newTestEnv(t)
	env.provider.geocodeErr = directions.ErrNoRouteFound

	w := env.do(t, http.MethodGet, "/v1/geocode?query=xyzzy", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/ops/health", nil)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/nonexistent", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
