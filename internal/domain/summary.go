package domain

import (
	"sort"
	"time"
)

// TypeCount is the number of incidents of one type.
type TypeCount struct {
	Type  CrimeType `json:"type"`
	Count int       `json:"count"`
}

// Summary describes a pipeline result.
type Summary struct {
	Total  int         `json:"total"`
	ByType []TypeCount `json:"by_type"`
	Newest *time.Time  `json:"newest,omitempty"`
	Oldest *time.Time  `json:"oldest,omitempty"`
}

// Summarize counts incidents by type, most frequent first (ties by type
// name), and records the date range when there is at least one incident.
func Summarize(incidents []Incident) Summary {
	s := Summary{Total: len(incidents)}
	if len(incidents) == 0 {
		return s
	}

	counts := make(map[CrimeType]int)
	newest, oldest := incidents[0].Date, incidents[0].Date
	for _, inc := range incidents {
		counts[inc.Type]++
		if inc.Date.After(newest) {
			newest = inc.Date
		}
		if inc.Date.Before(oldest) {
			oldest = inc.Date
		}
	}

	s.ByType = make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		s.ByType = append(s.ByType, TypeCount{Type: t, Count: n})
	}
	sort.Slice(s.ByType, func(i, j int) bool {
		if s.ByType[i].Count != s.ByType[j].Count {
			return s.ByType[i].Count > s.ByType[j].Count
		}
		return s.ByType[i].Type < s.ByType[j].Type
	})

	s.Newest = &newest
	s.Oldest = &oldest
	return s
}
