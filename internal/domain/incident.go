package domain

import (
	"math"
	"strings"
	"time"
)

// CrimeType is the fixed category enumeration of the canonical record.
type CrimeType string

const (
	TypeTheft        CrimeType = "THEFT"
	TypeBurglary     CrimeType = "BURGLARY"
	TypeAssault      CrimeType = "ASSAULT"
	TypeVandalism    CrimeType = "VANDALISM"
	TypeDrugOffense  CrimeType = "DRUG_OFFENSE"
	TypeVehicleTheft CrimeType = "VEHICLE_THEFT"
	TypeFraud        CrimeType = "FRAUD"
	TypeDUI          CrimeType = "DUI"
	TypeDomestic     CrimeType = "DOMESTIC"
	TypeOther        CrimeType = "OTHER"
)

// CrimeTypes lists every member of the enumeration.
var CrimeTypes = []CrimeType{
	TypeTheft, TypeBurglary, TypeAssault, TypeVandalism, TypeDrugOffense,
	TypeVehicleTheft, TypeFraud, TypeDUI, TypeDomestic, TypeOther,
}

// Valid reports whether t is a member of the enumeration.
func (t CrimeType) Valid() bool {
	for _, c := range CrimeTypes {
		if t == c {
			return true
		}
	}
	return false
}

// StatusReported is the status assigned when a source does not provide one.
const StatusReported = "REPORTED"

// Where an incident's coordinates came from. Never serialized.
const (
	GeoSourceReported  = "reported"  // coordinates supplied by the source
	GeoSourceGeocoded  = "geocoded"  // resolved by a real geocoding provider
	GeoSourceSimulated = "simulated" // approximated inside the jurisdiction box
	GeoSourcePending   = "pending"   // awaiting geocoding
	GeoSourceMissing   = "missing"   // no usable coordinates; fails the filter
)

// Point is a WGS-84 coordinate pair in the downstream map's lat/lng naming.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Finite reports whether both coordinates are real numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		!math.IsInf(p.Lat, 0) && !math.IsInf(p.Lng, 0)
}

// NoPoint is the placeholder location for incidents without coordinates.
var NoPoint = Point{Lat: math.NaN(), Lng: math.NaN()}

// Incident is the canonical record written to the output file. The JSON
// field names are the contract with the map, search and stats front end.
type Incident struct {
	ID          string    `json:"id"`
	Type        CrimeType `json:"type"`
	Date        time.Time `json:"date"`
	Location    Point     `json:"location"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Severity    int       `json:"severity"`

	Source    string `json:"-"`
	GeoSource string `json:"-"`
}

// Jurisdiction is the geographic scope of the pipeline: incidents farther
// than RadiusMeters from Center are dropped.
type Jurisdiction struct {
	Name         string
	Aliases      []string
	Center       Point
	RadiusMeters float64
	IDPrefix     string
}

// Named reports whether text already mentions the jurisdiction by name or alias.
func (j Jurisdiction) Named(text string) bool {
	lower := strings.ToLower(text)
	if j.Name != "" && strings.Contains(lower, strings.ToLower(j.Name)) {
		return true
	}
	for _, a := range j.Aliases {
		if a != "" && strings.Contains(lower, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// Contains reports whether p lies inside the jurisdiction radius.
func (j Jurisdiction) Contains(p Point) bool {
	return WithinJurisdiction(p.Lat, p.Lng, j.Center, j.RadiusMeters)
}
