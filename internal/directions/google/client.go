// Package google provides a client for the Google Maps Directions and
// Geocoding web services.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripweaver/tripweaver/internal/directions"
	"github.com/tripweaver/tripweaver/internal/geo"
	"github.com/tripweaver/tripweaver/internal/provider/resilience"
)

const (
	// ProviderName identifies this directions provider.
	ProviderName = "google-maps"

	// DefaultBaseURL is the Google Maps web service base URL.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Google Maps client.
type ClientConfig struct {
	// APIKey is the Maps API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the Maps API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). If nil, a
	// circuit-breaker client with retries disabled is used: a pair the
	// provider cannot route now will not route on an identical retry, and
	// the planner falls back instead.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Maps web services client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Google Maps client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.DisableRetry = true
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Route computes directions between two points.
func (c *Client) Route(ctx context.Context, req directions.Request) (*directions.Result, error) {
	if !req.Origin.Valid() {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      directions.ErrInvalidCoordinates,
		}
	}
	if !req.Destination.Valid() {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      directions.ErrInvalidCoordinates,
		}
	}

	params := url.Values{}
	params.Set("origin", formatPoint(req.Origin))
	params.Set("destination", formatPoint(req.Destination))
	params.Set("mode", string(req.Mode))
	params.Set("key", c.apiKey)
	if req.Transit != nil {
		if len(req.Transit.Vehicles) > 0 {
			params.Set("transit_mode", transitModeParam(req.Transit.Vehicles))
		}
		if req.Transit.FewerTransfers {
			params.Set("transit_routing_preference", "fewer_transfers")
		}
	}

	c.logger.Debug().
		Str("mode", string(req.Mode)).
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Msg("requesting directions")

	var apiResp directionsResponse
	if err := c.getJSON(ctx, "/directions/json", params, &apiResp); err != nil {
		return nil, err
	}

	if apiResp.Status != "OK" {
		return nil, c.statusError(apiResp.Status, apiResp.ErrorMessage)
	}

	result := toResult(&apiResp)

	c.logger.Debug().
		Int("route_count", len(result.Routes)).
		Msg("received directions")

	return result, nil
}

// Geocode resolves a free-form query to a coordinate and place ID.
func (c *Client) Geocode(ctx context.Context, query string) (*directions.GeocodeResult, error) {
	params := url.Values{}
	params.Set("address", query)
	params.Set("key", c.apiKey)

	var apiResp geocodeResponse
	if err := c.getJSON(ctx, "/geocode/json", params, &apiResp); err != nil {
		return nil, err
	}

	if apiResp.Status != "OK" || len(apiResp.Results) == 0 {
		return nil, c.statusError(apiResp.Status, "")
	}

	first := apiResp.Results[0]
	return &directions.GeocodeResult{
		Location:         geo.Point{Lat: first.Geometry.Location.Lat, Lon: first.Geometry.Location.Lng},
		PlaceID:          first.PlaceID,
		FormattedAddress: first.FormattedAddress,
	}, nil
}

// getJSON executes a GET request against the API and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &directions.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach directions provider",
			Err:      directions.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &directions.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("directions provider returned status %d", resp.StatusCode),
			Err:      directions.ErrProviderUnavailable,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// statusError maps API status strings to domain errors.
func (c *Client) statusError(status, message string) error {
	switch status {
	case "ZERO_RESULTS", "NOT_FOUND":
		if message == "" {
			message = "no route found between the given points"
		}
		return &directions.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  message,
			Err:      directions.ErrNoRouteFound,
		}
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return &directions.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  "API quota exceeded, please try again later",
			Err:      directions.ErrRateLimitExceeded,
		}
	case "INVALID_REQUEST":
		if message == "" {
			message = "invalid directions request"
		}
		return &directions.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  message,
			Err:      directions.ErrInvalidCoordinates,
		}
	default:
		if message == "" {
			message = "directions provider is temporarily unavailable"
		}
		return &directions.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  message,
			Err:      directions.ErrProviderUnavailable,
		}
	}
}

// toResult converts an API response to the domain model.
func toResult(resp *directionsResponse) *directions.Result {
	routes := make([]directions.Route, 0, len(resp.Routes))
	var warnings []string

	for i := range resp.Routes {
		apiRoute := &resp.Routes[i]
		route := directions.Route{
			OverviewPolyline: apiRoute.OverviewPolyline.Points,
			Legs:             make([]directions.Leg, 0, len(apiRoute.Legs)),
		}
		warnings = append(warnings, apiRoute.Warnings...)

		for j := range apiRoute.Legs {
			apiLeg := &apiRoute.Legs[j]
			leg := directions.Leg{
				DistanceMeters:  apiLeg.Distance.Value,
				DurationSeconds: apiLeg.Duration.Value,
				StartLocation:   geo.Point{Lat: apiLeg.StartLocation.Lat, Lon: apiLeg.StartLocation.Lng},
				EndLocation:     geo.Point{Lat: apiLeg.EndLocation.Lat, Lon: apiLeg.EndLocation.Lng},
				Steps:           make([]directions.Step, 0, len(apiLeg.Steps)),
			}

			for k := range apiLeg.Steps {
				apiStep := &apiLeg.Steps[k]
				step := directions.Step{
					Mode:            directions.Mode(strings.ToLower(apiStep.TravelMode)),
					DistanceMeters:  apiStep.Distance.Value,
					DurationSeconds: apiStep.Duration.Value,
					StartLocation:   geo.Point{Lat: apiStep.StartLocation.Lat, Lon: apiStep.StartLocation.Lng},
					EndLocation:     geo.Point{Lat: apiStep.EndLocation.Lat, Lon: apiStep.EndLocation.Lng},
				}
				if apiStep.TransitDetails != nil {
					lineName := apiStep.TransitDetails.Line.ShortName
					if lineName == "" {
						lineName = apiStep.TransitDetails.Line.Name
					}
					step.Transit = &directions.TransitDetails{
						Vehicle:  directions.TransitVehicle(apiStep.TransitDetails.Line.Vehicle.Type),
						LineName: lineName,
					}
				}
				leg.Steps = append(leg.Steps, step)
			}

			route.Legs = append(route.Legs, leg)
		}

		routes = append(routes, route)
	}

	return &directions.Result{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
		Warnings:  warnings,
	}
}

// transitModeParam joins vehicle families into the transit_mode parameter.
// The API accepts coarse families, so rail variants collapse to "rail".
func transitModeParam(vehicles []directions.TransitVehicle) string {
	seen := make(map[string]bool, len(vehicles))
	var parts []string
	for _, v := range vehicles {
		var family string
		switch v {
		case directions.VehicleBus:
			family = "bus"
		case directions.VehicleTram:
			family = "tram"
		case directions.VehicleSubway, directions.VehicleMetroRail:
			family = "subway"
		case directions.VehicleTrain, directions.VehicleHeavyRail, directions.VehicleCommuterTrain:
			family = "train"
		default:
			family = "rail"
		}
		if !seen[family] {
			seen[family] = true
			parts = append(parts, family)
		}
	}
	return strings.Join(parts, "|")
}

func formatPoint(p geo.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lon)
}

// Ensure Client implements the provider interface.
var _ directions.Provider = (*Client)(nil)
