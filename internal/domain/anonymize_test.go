package domain

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func testJurisdiction() Jurisdiction {
	return Jurisdiction{
		Name:         "Bethlehem Township",
		Aliases:      []string{"Bethlehem Township", "Bethlehem Twp"},
		Center:       Point{Lat: 40.6501, Lng: -75.3685},
		RadiusMeters: 8000,
		IDPrefix:     "BT",
	}
}

func TestAnonymizer_Anonymize(t *testing.T) {
	a := NewAnonymizer(testJurisdiction())

	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{"rounds down to block", "123 Main St", "100 Block Main St"},
		{"under one hundred", "45 Oak Ave", "0 Block Oak Ave"},
		{"exact hundred", "3400 Freemansburg Ave", "3400 Block Freemansburg Ave"},
		{"surrounding whitespace", "  789   Easton Rd ", "700 Block Easton Rd"},
		{"names jurisdiction", "Bethlehem Township", "Bethlehem Township"},
		{"names alias", "Route 191, Bethlehem Twp", "Route 191, Bethlehem Twp"},
		{"no house number", "Main St & Oak Ave", "Main St & Oak Ave, Bethlehem Township"},
		{"empty", "", "Unknown, Bethlehem Township"},
		{"number only", "123", "123, Bethlehem Township"},
		{"overflowing house number", "99999999999999999999999 Main St", "99999999999999999999999 Main St, Bethlehem Township"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.Anonymize(tt.address))
		})
	}
}

func TestAnonymizer_DiscardsHouseNumber(t *testing.T) {
	a := NewAnonymizer(testJurisdiction())
	blockRe := regexp.MustCompile(`^(\d+) Block (.+)$`)

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 99999).Draw(t, "house")
		street := rapid.StringMatching(`[A-Z][a-z]{2,10} (St|Ave|Rd)`).Draw(t, "street")

		got := a.Anonymize(strconv.Itoa(n) + " " + street)
		m := blockRe.FindStringSubmatch(got)
		if m == nil {
			t.Fatalf("Anonymize produced %q, want block form", got)
		}
		if m[1] != strconv.Itoa(n/100*100) || m[2] != street {
			t.Fatalf("Anonymize(%d %s) = %q", n, street, got)
		}
	})
}
