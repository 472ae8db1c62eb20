package domain

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Scalar holds the textual form of any JSON scalar. Sources disagree on
// whether coordinates and severities are numbers or strings, so raw fields
// accept both. Objects and arrays decode to the empty string.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	case data[0] == '{', data[0] == '[':
		*s = ""
	default:
		*s = Scalar(data)
	}
	return nil
}

// String returns the trimmed text.
func (s Scalar) String() string { return strings.TrimSpace(string(s)) }

// Details carries the optional "details" field, which older feeds send as an
// object of severity signals and newer feeds as free text.
type Details struct {
	Text   string
	Weapon bool
	Injury bool
	Value  float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Details) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &d.Text)
	case '{':
		var obj struct {
			Weapon Scalar `json:"weapon"`
			Injury Scalar `json:"injury"`
			Value  Scalar `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		d.Weapon = parseFlag(obj.Weapon.String())
		d.Injury = parseFlag(obj.Injury.String())
		d.Value = parseFloatOrZero(obj.Value.String())
	}
	return nil
}

// RawIncident is an unvalidated incident as delivered by a source. Any field
// may be missing; the transformer substitutes defaults.
type RawIncident struct {
	ID           Scalar  `json:"id"`
	Type         Scalar  `json:"type"`
	CrimeType    Scalar  `json:"crime_type"`
	Date         Scalar  `json:"date"`
	IncidentDate Scalar  `json:"incident_date"`
	Latitude     Scalar  `json:"latitude"`
	Lat          Scalar  `json:"lat"`
	Longitude    Scalar  `json:"longitude"`
	Lng          Scalar  `json:"lng"`
	Address      Scalar  `json:"address"`
	Location     Scalar  `json:"location"`
	Description  Scalar  `json:"description"`
	Details      Details `json:"details"`
	Status       Scalar  `json:"status"`
	Severity     Scalar  `json:"severity"`
	Weapon       Scalar  `json:"weapon"`
	Injury       Scalar  `json:"injury"`
	Value        Scalar  `json:"value"`

	// Origin names the source that produced the record.
	Origin string `json:"-"`
	// Row is the 1-based data row for tabular sources, 0 otherwise.
	Row int `json:"-"`
	// GeocodeFallback allows missing coordinates to be resolved from the
	// address. Set for tabular rows (import CSV, scraped tables) only.
	GeocodeFallback bool `json:"-"`
}

// RawIncidentFromRow maps a header->value row (CSV import, scraped table)
// onto a RawIncident. Header names are matched case-insensitively.
func RawIncidentFromRow(row map[string]string, origin string, rowNum int) RawIncident {
	lower := make(map[string]string, len(row))
	for k, v := range row {
		lower[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	get := func(key string) Scalar { return Scalar(lower[key]) }

	return RawIncident{
		ID:              get("id"),
		Type:            get("type"),
		CrimeType:       get("crime_type"),
		Date:            get("date"),
		IncidentDate:    get("incident_date"),
		Latitude:        get("latitude"),
		Lat:             get("lat"),
		Longitude:       get("longitude"),
		Lng:             get("lng"),
		Address:         get("address"),
		Location:        get("location"),
		Description:     get("description"),
		Details:         Details{Text: lower["details"]},
		Status:          get("status"),
		Severity:        get("severity"),
		Weapon:          get("weapon"),
		Injury:          get("injury"),
		Value:           get("value"),
		Origin:          origin,
		Row:             rowNum,
		GeocodeFallback: true,
	}
}

// first returns the first non-empty value.
func first(values ...Scalar) string {
	for _, v := range values {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseFlag accepts the usual spellings of a boolean column.
func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y":
		return true
	default:
		return false
	}
}
