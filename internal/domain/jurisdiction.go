package domain

import "math"

// metersPerDegree is the length of one degree of latitude, and of longitude
// at the equator, used by the planar distance approximation.
const metersPerDegree = 111000.0

// DistanceMeters approximates the distance from center to (lat, lng) on a
// plane: latitude degrees scale by a constant, longitude degrees additionally
// by cos(center latitude). Good to well under 1% at township scale.
func DistanceMeters(lat, lng float64, center Point) float64 {
	dLat := (lat - center.Lat) * metersPerDegree
	dLng := (lng - center.Lng) * metersPerDegree * math.Cos(center.Lat*math.Pi/180)
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// WithinJurisdiction reports whether (lat, lng) is no farther than
// radiusMeters from center. Non-finite coordinates are never inside.
func WithinJurisdiction(lat, lng float64, center Point, radiusMeters float64) bool {
	if !(Point{Lat: lat, Lng: lng}).Finite() {
		return false
	}
	d := DistanceMeters(lat, lng, center)
	return !math.IsNaN(d) && d <= radiusMeters
}
