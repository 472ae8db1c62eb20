package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// csvIDPrefix marks generated ids of rows from tabular sources.
const csvIDPrefix = "CSV"

// dateLayouts are tried in order when parsing source dates. Layouts without
// a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	time.RFC1123Z,
	time.RFC1123,
}

// Transformer turns raw incidents from any source into canonical records.
// It is deterministic apart from the clock used for missing dates and has no
// I/O; geocoding of pending locations happens in EnrichWithGeocoding.
type Transformer struct {
	jurisdiction Jurisdiction
	normalizer   *TypeNormalizer
	scorer       *SeverityScorer
	anonymizer   *Anonymizer
}

// NewTransformer composes a transformer from its parts.
func NewTransformer(j Jurisdiction, normalizer *TypeNormalizer, scorer *SeverityScorer) *Transformer {
	return &Transformer{
		jurisdiction: j,
		normalizer:   normalizer,
		scorer:       scorer,
		anonymizer:   NewAnonymizer(j),
	}
}

// NewDefaultTransformer uses the built-in synonym and severity tables.
func NewDefaultTransformer(j Jurisdiction) *Transformer {
	return NewTransformer(j, NewTypeNormalizer(nil), NewSeverityScorer(DefaultSeverityRules()))
}

// Jurisdiction returns the jurisdiction the transformer was built for.
func (t *Transformer) Jurisdiction() Jurisdiction { return t.jurisdiction }

// Transform builds the canonical record for raw. It never fails: every
// missing or malformed field is replaced by its default.
func (t *Transformer) Transform(raw RawIncident) Incident {
	crimeType := t.normalizer.Normalize(first(raw.Type, raw.CrimeType))
	description := first(raw.Description, Scalar(raw.Details.Text))

	inc := Incident{
		ID:          first(raw.ID),
		Type:        crimeType,
		Date:        parseDate(first(raw.Date, raw.IncidentDate)),
		Address:     t.anonymizer.Anonymize(first(raw.Address, raw.Location)),
		Description: description,
		Status:      normalizeStatus(raw.Status.String()),
		Source:      raw.Origin,
	}
	if inc.ID == "" {
		inc.ID = t.generateID(raw)
	}

	inc.Location, inc.GeoSource = rawLocation(raw)

	if severity, ok := ParseExplicitSeverity(raw.Severity.String()); ok {
		inc.Severity = severity
	} else {
		inc.Severity = t.scorer.Score(crimeType, SeverityContext{
			Weapon:      raw.Details.Weapon || parseFlag(raw.Weapon.String()),
			Injury:      raw.Details.Injury || parseFlag(raw.Injury.String()),
			Value:       max(raw.Details.Value, parseFloatOrZero(raw.Value.String())),
			Description: description,
		})
	}

	return inc
}

// GeocodeQuery returns the address to geocode for raw: the original,
// un-redacted street address, or the jurisdiction itself when none is given.
func (t *Transformer) GeocodeQuery(raw RawIncident) string {
	if addr := first(raw.Address, raw.Location); addr != "" {
		return addr
	}
	return t.jurisdiction.Name
}

// rawLocation picks latitude|lat and longitude|lng. Both must parse to finite
// numbers, otherwise the incident is pending geocoding (tabular input) or
// has no location at all.
func rawLocation(raw RawIncident) (Point, string) {
	lat, errLat := strconv.ParseFloat(first(raw.Latitude, raw.Lat), 64)
	lng, errLng := strconv.ParseFloat(first(raw.Longitude, raw.Lng), 64)
	p := Point{Lat: lat, Lng: lng}
	if errLat == nil && errLng == nil && p.Finite() {
		return p, GeoSourceReported
	}
	if raw.GeocodeFallback {
		return NoPoint, GeoSourcePending
	}
	return NoPoint, GeoSourceMissing
}

// parseDate reads a source date, falling back to the current time when the
// value is missing or in no recognized layout.
func parseDate(value string) time.Time {
	if value != "" {
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, value); err == nil {
				return ts.UTC()
			}
		}
	}
	return clock.Now().UTC()
}

func normalizeStatus(status string) string {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return StatusReported
	}
	return status
}

// generateID derives an id from the record's own content so unchanged input
// keeps its id across runs. The raw (not defaulted) date is hashed so
// records without dates keep stable ids too.
func (t *Transformer) generateID(raw RawIncident) string {
	input := fmt.Sprintf("%s|%d|%s|%s|%s|%s|%s|%s",
		raw.Origin, raw.Row,
		first(raw.Type, raw.CrimeType),
		first(raw.Date, raw.IncidentDate),
		first(raw.Address, raw.Location),
		first(raw.Latitude, raw.Lat),
		first(raw.Longitude, raw.Lng),
		first(raw.Description, Scalar(raw.Details.Text)),
	)
	hash := sha256.Sum256([]byte(input))

	prefix := t.jurisdiction.IDPrefix
	if raw.Row > 0 {
		prefix = csvIDPrefix
	}
	if prefix == "" {
		return strings.ToUpper(hex.EncodeToString(hash[:8]))
	}
	return strings.ToUpper(prefix + "-" + hex.EncodeToString(hash[:8]))
}
