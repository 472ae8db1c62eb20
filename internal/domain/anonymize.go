package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// houseNumberRe splits "<house number> <street>", e.g. "123 Main St".
var houseNumberRe = regexp.MustCompile(`^(\d+)\s+(.+)$`)

// UnknownAddress stands in for incidents reported without any address.
const UnknownAddress = "Unknown"

// Anonymizer redacts street addresses to block level.
type Anonymizer struct {
	jurisdiction Jurisdiction
}

// NewAnonymizer creates an anonymizer that labels unnumbered addresses with
// the jurisdiction name.
func NewAnonymizer(j Jurisdiction) *Anonymizer {
	return &Anonymizer{jurisdiction: j}
}

// Anonymize rounds the house number down to the nearest hundred:
// "123 Main St" -> "100 Block Main St". Addresses without a leading house
// number are returned unchanged when they already name the jurisdiction and
// get the jurisdiction appended otherwise. The house number is discarded.
func (a *Anonymizer) Anonymize(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		address = UnknownAddress
	}

	if m := houseNumberRe.FindStringSubmatch(address); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			block := n / 100 * 100
			return strconv.Itoa(block) + " Block " + strings.TrimSpace(m[2])
		}
	}

	if a.jurisdiction.Name == "" || a.jurisdiction.Named(address) {
		return address
	}
	return address + ", " + a.jurisdiction.Name
}
