// Package geocode resolves listing addresses to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hsnnder/real-estatemvp/internal/config"
)

var (
	ErrNotConfigured = errors.New("geocoding API key not configured")
	ErrEmptyAddress  = errors.New("empty address")
	ErrNoResult      = errors.New("address could not be geocoded")
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IGeocoder turns a free-form address into coordinates.
type IGeocoder interface {
	Resolve(ctx context.Context, address string) (*Coordinates, error)
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry *struct {
			Location *struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// googleGeocoder implements IGeocoder with the Google Geocoding API.
type googleGeocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleGeocoder creates a new geocoder.
func NewGoogleGeocoder(cfg *config.Config) IGeocoder {
	return &googleGeocoder{
		apiKey:     cfg.GeocodeAPIKey,
		baseURL:    cfg.GeocodeBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve returns the first result's location.
func (g *googleGeocoder) Resolve(ctx context.Context, address string) (*Coordinates, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	qs := url.Values{}
	qs.Set("address", address)
	qs.Set("key", g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+qs.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to contact geocoding service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: http status %d", ErrNoResult, resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse geocode response: %w", err)
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return nil, fmt.Errorf("%w: status %s %s", ErrNoResult, body.Status, body.ErrorMessage)
	}
	geo := body.Results[0].Geometry
	if geo == nil || geo.Location == nil || geo.Location.Lat == nil || geo.Location.Lng == nil {
		return nil, fmt.Errorf("%w: result has no location", ErrNoResult)
	}
	return &Coordinates{Lat: *geo.Location.Lat, Lng: *geo.Location.Lng}, nil
}
