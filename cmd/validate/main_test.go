package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

func testJurisdiction() domain.Jurisdiction {
	return domain.Jurisdiction{
		Name:         "Bethlehem Township",
		Aliases:      []string{"Bethlehem Township", "Bethlehem Twp"},
		Center:       domain.Point{Lat: 40.6501, Lng: -75.3685},
		RadiusMeters: 8000,
	}
}

const validFile = `[
  {"id": "BT-2", "type": "BURGLARY", "date": "2025-01-04T00:00:00Z", "location": {"lat": 40.66, "lng": -75.37}, "address": "2200 Block Farmersville Rd", "description": "", "status": "REPORTED", "severity": 4},
  {"id": "BT-1", "type": "THEFT", "date": "2025-01-01T00:00:00Z", "location": {"lat": 40.65, "lng": -75.368}, "address": "100 Block Main St", "description": "Stolen bike", "status": "REPORTED", "severity": 3},
  {"id": "BT-3", "type": "FRAUD", "date": "2025-01-01T00:00:00Z", "location": {"lat": 40.65, "lng": -75.368}, "address": "Unknown, Bethlehem Township", "description": "", "status": "CLOSED", "severity": 3}
]`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crimes.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func failedPhases(phases []*phase) []string {
	var names []string
	for _, p := range phases {
		if !p.passed() {
			names = append(names, p.name)
		}
	}
	return names
}

func TestRun_ValidFile(t *testing.T) {
	assert.Equal(t, 0, run(writeFile(t, validFile), testJurisdiction()))
}

func TestRun_EmptyList(t *testing.T) {
	assert.Equal(t, 0, run(writeFile(t, "[]"), testJurisdiction()))
}

func TestRun_Unreadable(t *testing.T) {
	assert.Equal(t, 1, run(filepath.Join(t.TempDir(), "missing.json"), testJurisdiction()))
	assert.Equal(t, 1, run(writeFile(t, "{not json"), testJurisdiction()))
}

func TestValidate_Violations(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }
	sev := func(v int) *int { return &v }
	loc := func(lat, lng float64) *coords { return &coords{Lat: ptr(lat), Lng: ptr(lng)} }
	good := func() record {
		return record{
			ID: "BT-1", Type: "THEFT", Date: "2025-01-01T00:00:00Z",
			Location: loc(40.65, -75.368), Address: "100 Block Main St",
			Status: "REPORTED", Severity: sev(3),
		}
	}

	tests := []struct {
		name   string
		mutate func(r *record)
		failed string
	}{
		{"far away", func(r *record) { r.Location = loc(39.95, -75.16) }, "Locations inside jurisdiction"},
		{"no location", func(r *record) { r.Location = nil }, "Locations inside jurisdiction"},
		{"lower-case type", func(r *record) { r.Type = "theft" }, "Types, severities, statuses and dates"},
		{"severity too high", func(r *record) { r.Severity = sev(6) }, "Types, severities, statuses and dates"},
		{"lower-case status", func(r *record) { r.Status = "Closed" }, "Types, severities, statuses and dates"},
		{"bad date", func(r *record) { r.Date = "01/01/2025" }, "Types, severities, statuses and dates"},
		{"house number", func(r *record) { r.Address = "123 Main St" }, "Anonymized addresses"},
		{"unrounded block", func(r *record) { r.Address = "150 Block Main St" }, "Anonymized addresses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := good()
			tt.mutate(&r)
			assert.Equal(t, []string{tt.failed}, failedPhases(validate([]record{r}, testJurisdiction())))
		})
	}

	t.Run("duplicate ids and ordering", func(t *testing.T) {
		older, newer := good(), good()
		newer.Date = "2025-02-01T00:00:00Z"
		assert.Equal(t,
			[]string{"Unique IDs", "Newest first"},
			failedPhases(validate([]record{older, newer}, testJurisdiction())))
	})
}
