package domain

import "strings"

// Synonym maps a lower-case phrase found in free-text categories to a CrimeType.
type Synonym struct {
	Phrase string
	Type   CrimeType
}

// DefaultSynonyms returns the built-in synonym table. Order matters: the
// first phrase contained in the input wins, so specific phrases ("vehicle
// theft", "domestic assault" via "domestic") precede the generic phrases
// they contain ("theft", "assault").
func DefaultSynonyms() []Synonym {
	return []Synonym{
		{"motor vehicle theft", TypeVehicleTheft},
		{"vehicle theft", TypeVehicleTheft},
		{"auto theft", TypeVehicleTheft},
		{"car theft", TypeVehicleTheft},

		{"domestic violence", TypeDomestic},
		{"domestic", TypeDomestic},

		{"aggravated assault", TypeAssault},
		{"simple assault", TypeAssault},
		{"assault", TypeAssault},
		{"battery", TypeAssault},

		{"breaking and entering", TypeBurglary},
		{"breaking & entering", TypeBurglary},
		{"b&e", TypeBurglary},
		{"burglary", TypeBurglary},

		{"larceny", TypeTheft},
		{"shoplifting", TypeTheft},
		{"robbery", TypeTheft},
		{"theft", TypeTheft},

		{"vandalism", TypeVandalism},
		{"criminal mischief", TypeVandalism},
		{"property damage", TypeVandalism},

		{"drug offense", TypeDrugOffense},
		{"drug violation", TypeDrugOffense},
		{"drug possession", TypeDrugOffense},
		{"narcotics", TypeDrugOffense},

		{"fraud", TypeFraud},

		{"driving under influence", TypeDUI},
		{"driving under the influence", TypeDUI},
		{"dui", TypeDUI},
		{"dwi", TypeDUI},
	}
}

// TypeNormalizer maps free-text crime categories onto CrimeType.
type TypeNormalizer struct {
	synonyms []Synonym
}

// NewTypeNormalizer creates a normalizer over the given ordered table.
// A nil table selects DefaultSynonyms.
func NewTypeNormalizer(synonyms []Synonym) *TypeNormalizer {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	table := make([]Synonym, 0, len(synonyms))
	for _, s := range synonyms {
		phrase := foldCategory(s.Phrase)
		if phrase == "" || !s.Type.Valid() {
			continue
		}
		table = append(table, Synonym{Phrase: phrase, Type: s.Type})
	}
	return &TypeNormalizer{synonyms: table}
}

// Normalize returns the type of the first synonym contained in raw, or
// TypeOther when nothing matches.
func (n *TypeNormalizer) Normalize(raw string) CrimeType {
	folded := foldCategory(raw)
	if folded == "" {
		return TypeOther
	}
	for _, s := range n.synonyms {
		if strings.Contains(folded, s.Phrase) {
			return s.Type
		}
	}
	return TypeOther
}

// foldCategory lower-cases, turns enum separators into spaces and collapses
// whitespace so "DRUG_OFFENSE" and "Drug  offense" compare equal.
func foldCategory(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
