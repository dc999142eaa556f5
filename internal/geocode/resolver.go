// Package geocode resolves a coordinate fix into a coarse, human-readable
// region label via an external reverse-geocoding provider. Resolution is
// best-effort: a failed or empty lookup is reported as an error the caller
// discards, and the next fix is the implicit retry.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"roam/pkg/platform/sentinel"
)

// Coordinate is a raw location fix position.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Resolver converts a coordinate into a region label. Implementations are
// stateless per call.
type Resolver interface {
	Resolve(ctx context.Context, coord Coordinate) (string, error)
}

// countryZoom asks the provider for country-level granularity only; the
// monitor never needs street precision.
const countryZoom = "3"

type reverseResponse struct {
	Address struct {
		Country string `json:"country"`
		State   string `json:"state"`
	} `json:"address"`
}

// HTTPResolver calls a Nominatim-style /reverse endpoint.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver builds a resolver against the given provider base URL.
func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Resolve performs one reverse-geocoding call. It returns the country name,
// falling back to the administrative state when the provider omits a country
// (open ocean, disputed areas). Empty results map to sentinel.ErrNoResult.
func (r *HTTPResolver) Resolve(ctx context.Context, coord Coordinate) (string, error) {
	ctx, span := otel.Tracer("geocode").Start(ctx, "geocode.resolve",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", formatCoord(coord.Latitude))
	q.Set("lon", formatCoord(coord.Longitude))
	q.Set("zoom", countryZoom)
	q.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "roam/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: %w: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode reverse geocode response: %w", err)
	}

	region := body.Address.Country
	if region == "" {
		region = body.Address.State
	}
	if region == "" {
		return "", sentinel.ErrNoResult
	}
	return region, nil
}

// formatCoord truncates to ~1km precision; finer digits are noise at
// country-level resolution and would fragment the cache keyspace.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
