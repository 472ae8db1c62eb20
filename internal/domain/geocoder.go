package domain

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Found reports whether the result carries coordinates.
func (r GeocodingResult) Found() bool {
	return (r.Lat != 0 || r.Lng != 0) && (Point{Lat: r.Lat, Lng: r.Lng}).Finite()
}

// Geocoder resolves a street address to coordinates.
type Geocoder interface {
	// ForwardGeocode converts an address within region (the jurisdiction
	// label) to coordinates. An empty result with a nil error means "not found".
	ForwardGeocode(ctx context.Context, address, region string) (GeocodingResult, error)
}

// DefaultSimulatedSpan is the side of the simulated geocoding box in degrees
// (about 3 km of latitude).
const DefaultSimulatedSpan = 0.03

// SimulatedGeocoder is the stand-in used when no real geocoder is available.
// It does NOT locate the address: it places the point pseudo-randomly inside
// a square box of Span degrees around Center. The random stream is seeded by
// the query, so the same address always lands on the same point and reruns
// produce identical output. Results carry zero confidence.
type SimulatedGeocoder struct {
	Center Point
	Span   float64
}

// NewSimulatedGeocoder creates a simulated geocoder around center. A
// non-positive span selects DefaultSimulatedSpan.
func NewSimulatedGeocoder(center Point, span float64) *SimulatedGeocoder {
	if span <= 0 {
		span = DefaultSimulatedSpan
	}
	return &SimulatedGeocoder{Center: center, Span: span}
}

// ForwardGeocode implements Geocoder. It never fails.
func (g *SimulatedGeocoder) ForwardGeocode(_ context.Context, address, region string) (GeocodingResult, error) {
	sum := sha256.Sum256([]byte(address + "|" + region))
	r := rand.New(rand.NewPCG(binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])))

	lat := g.Center.Lat + (r.Float64()-0.5)*g.Span
	lng := g.Center.Lng + (r.Float64()-0.5)*g.Span
	return GeocodingResult{
		Lat: roundTo(lat, 6),
		Lng: roundTo(lng, 6),
	}, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
