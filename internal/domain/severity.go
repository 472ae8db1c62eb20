package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Severity bounds of the canonical record.
const (
	MinSeverity = 1
	MaxSeverity = 5
)

// leadingIntRe mirrors parseInt: an optional sign and digits at the start.
var leadingIntRe = regexp.MustCompile(`^\s*([+-]?\d+)`)

// SeverityContext holds the signals that raise severity above the base value.
type SeverityContext struct {
	Weapon      bool
	Injury      bool
	Value       float64
	Description string
}

// SeverityRules configures the scorer.
type SeverityRules struct {
	Base           map[CrimeType]int
	Default        int
	WeaponKeywords []string
	InjuryKeywords []string
	ValueThreshold float64
}

// DefaultSeverityRules returns the built-in base table and bump signals.
func DefaultSeverityRules() SeverityRules {
	return SeverityRules{
		Base: map[CrimeType]int{
			TypeAssault:      5,
			TypeVehicleTheft: 5,
			TypeBurglary:     4,
			TypeDomestic:     4,
			TypeDrugOffense:  3,
			TypeTheft:        3,
			TypeFraud:        3,
			TypeDUI:          3,
			TypeVandalism:    2,
			TypeOther:        2,
		},
		Default:        2,
		WeaponKeywords: []string{"weapon", "gun", "armed"},
		InjuryKeywords: []string{"injury", "injured", "hurt"},
		ValueThreshold: 5000,
	}
}

// SeverityScorer derives the 1-5 severity of an incident.
type SeverityScorer struct {
	rules SeverityRules
}

// NewSeverityScorer creates a scorer with the given rules.
func NewSeverityScorer(rules SeverityRules) *SeverityScorer {
	return &SeverityScorer{rules: rules}
}

// Score starts from the base severity of t and adds one for each of: a
// weapon, an injury, a monetary value above the threshold. The result is
// always within [MinSeverity, MaxSeverity].
func (s *SeverityScorer) Score(t CrimeType, c SeverityContext) int {
	severity, ok := s.rules.Base[t]
	if !ok {
		severity = s.rules.Default
	}
	severity = clampSeverity(severity)

	desc := strings.ToLower(c.Description)
	if c.Weapon || containsAny(desc, s.rules.WeaponKeywords) {
		severity = min(MaxSeverity, severity+1)
	}
	if c.Injury || containsAny(desc, s.rules.InjuryKeywords) {
		severity = min(MaxSeverity, severity+1)
	}
	if s.rules.ValueThreshold > 0 && c.Value > s.rules.ValueThreshold {
		severity = min(MaxSeverity, severity+1)
	}
	return clampSeverity(severity)
}

// ParseExplicitSeverity reads a source-supplied severity. Zero and
// unparseable values report ok=false so the computed score is used instead;
// anything else is clamped into range.
func ParseExplicitSeverity(raw string) (severity int, ok bool) {
	m := leadingIntRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// Overflow: the sign still tells us which end to clamp to.
		if strings.HasPrefix(m[1], "-") {
			return MinSeverity, true
		}
		return MaxSeverity, true
	}
	if n == 0 {
		return 0, false
	}
	return clampSeverity(n), true
}

func clampSeverity(n int) int {
	return max(MinSeverity, min(MaxSeverity, n))
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
