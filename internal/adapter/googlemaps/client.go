// Package googlemaps geocodes incident addresses with the Google Maps
// Geocoding API.
package googlemaps

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"

	"github.com/couchcryptid/crime-data-etl/internal/domain"
	"github.com/couchcryptid/crime-data-etl/internal/observability"
)

const provider = "google"

// locationConfidence maps Google's location_type to a 0-1 score.
var locationConfidence = map[string]float64{
	"ROOFTOP":            1.0,
	"RANGE_INTERPOLATED": 0.8,
	"GEOMETRIC_CENTER":   0.6,
	"APPROXIMATE":        0.4,
}

// Client implements domain.Geocoder using the Google Maps Geocoding API.
type Client struct {
	maps    *maps.Client
	timeout time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures the underlying maps client.
type Option = maps.ClientOption

// WithBaseURL points the client at a different API host, e.g. a test server.
func WithBaseURL(u string) Option { return maps.WithBaseURL(u) }

// NewClient creates a Google geocoding client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) (*Client, error) {
	opts = append([]Option{maps.WithAPIKey(apiKey)}, opts...)
	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create google maps client: %w", err)
	}
	return &Client{maps: c, timeout: timeout, metrics: metrics, logger: logger}, nil
}

// ForwardGeocode converts a street address within region to coordinates.
// Google is forgiving about input format, so the region is appended as-is.
func (c *Client) ForwardGeocode(ctx context.Context, address, region string) (domain.GeocodingResult, error) {
	query := address
	if region != "" {
		query = address + ", " + region
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	results, err := c.maps.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		c.metrics.ObserveGeocode(provider, observability.GeocodeOutcome(false, err), time.Since(start))
		return domain.GeocodingResult{}, fmt.Errorf("google geocode request: %w", err)
	}

	var result domain.GeocodingResult
	if len(results) > 0 {
		r := results[0]
		confidence := locationConfidence[r.Geometry.LocationType]
		if r.PartialMatch {
			confidence /= 2
		}
		result = domain.GeocodingResult{
			Lat:              r.Geometry.Location.Lat,
			Lng:              r.Geometry.Location.Lng,
			FormattedAddress: r.FormattedAddress,
			Confidence:       confidence,
		}
	} else {
		c.logger.Debug("google returned no results")
	}

	c.metrics.ObserveGeocode(provider, observability.GeocodeOutcome(result.Found(), nil), time.Since(start))
	return result, nil
}
