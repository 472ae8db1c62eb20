// Command validate checks a persisted incident file against the guarantees
// the pipeline makes about its output: unique ids, every incident inside the
// jurisdiction, severities in range, canonical types, upper-case statuses,
// anonymized addresses, parseable dates and newest-first ordering.
//
// Usage:
//
//	go run ./cmd/validate [-file src/_data/crimes.json]
//
// The jurisdiction is read from the same environment variables as the
// pipeline.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/couchcryptid/crime-data-etl/internal/config"
	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

var blockRe = regexp.MustCompile(`^(\d+) Block \S`)

type coords struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// record mirrors the output schema loosely so malformed values are reported
// instead of failing the decode.
type record struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	Location    *coords `json:"location"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Severity    *int    `json:"severity"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("file", "", "incident JSON file (defaults to DATA_DIR/OUTPUT_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}
	if *path == "" {
		*path = cfg.OutputPath()
	}

	if code := run(*path, cfg.Jurisdiction()); code != 0 {
		os.Exit(code)
	}
}

func run(path string, j domain.Jurisdiction) int {
	fmt.Println("=== Crime Incident File Validation ===")
	fmt.Println()

	records, err := load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := validate(records, j)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d in %s\n", len(records), path)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func load(path string) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

func validate(records []record, j domain.Jurisdiction) []*phase {
	return []*phase{
		checkIDs(records),
		checkLocations(records, j),
		checkFields(records),
		checkAddresses(records, j),
		checkOrdering(records),
	}
}

func checkIDs(records []record) *phase {
	p := &phase{name: "Unique IDs"}
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			p.errorf("record %d: empty id", i)
			continue
		}
		if prev, ok := seen[r.ID]; ok {
			p.errorf("record %d: id %q already used by record %d", i, r.ID, prev)
			continue
		}
		seen[r.ID] = i
	}
	return p
}

func checkLocations(records []record, j domain.Jurisdiction) *phase {
	p := &phase{name: "Locations inside jurisdiction"}
	for i, r := range records {
		if r.Location == nil || r.Location.Lat == nil || r.Location.Lng == nil {
			p.errorf("record %d (%s): missing location", i, r.ID)
			continue
		}
		lat, lng := *r.Location.Lat, *r.Location.Lng
		if !domain.WithinJurisdiction(lat, lng, j.Center, j.RadiusMeters) {
			d := domain.DistanceMeters(lat, lng, j.Center)
			p.errorf("record %d (%s): %.0fm from center, radius %.0fm", i, r.ID, math.Round(d), j.RadiusMeters)
		}
	}
	return p
}

func checkFields(records []record) *phase {
	p := &phase{name: "Types, severities, statuses and dates"}
	for i, r := range records {
		if !domain.CrimeType(r.Type).Valid() {
			p.errorf("record %d (%s): type %q is not canonical", i, r.ID, r.Type)
		}
		switch {
		case r.Severity == nil:
			p.errorf("record %d (%s): missing severity", i, r.ID)
		case *r.Severity < domain.MinSeverity || *r.Severity > domain.MaxSeverity:
			p.errorf("record %d (%s): severity %d out of range", i, r.ID, *r.Severity)
		}
		if r.Status == "" || r.Status != strings.ToUpper(r.Status) {
			p.errorf("record %d (%s): status %q is not upper case", i, r.ID, r.Status)
		}
		if _, err := time.Parse(time.RFC3339Nano, r.Date); err != nil {
			p.errorf("record %d (%s): date %q is not RFC 3339", i, r.ID, r.Date)
		}
	}
	return p
}

// checkAddresses accepts "<n> Block <street>" with n a multiple of 100, or
// any address that names the jurisdiction.
func checkAddresses(records []record, j domain.Jurisdiction) *phase {
	p := &phase{name: "Anonymized addresses"}
	for i, r := range records {
		if m := blockRe.FindStringSubmatch(r.Address); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n%100 == 0 {
				continue
			}
			p.errorf("record %d (%s): block %q is not rounded to a hundred", i, r.ID, r.Address)
			continue
		}
		if !j.Named(r.Address) {
			p.errorf("record %d (%s): address %q may expose a house number", i, r.ID, r.Address)
		}
	}
	return p
}

func checkOrdering(records []record) *phase {
	p := &phase{name: "Newest first"}
	var prev time.Time
	for i, r := range records {
		t, err := time.Parse(time.RFC3339Nano, r.Date)
		if err != nil {
			continue
		}
		if i > 0 && !prev.IsZero() && t.After(prev) {
			p.errorf("record %d (%s): %s is newer than the record before it", i, r.ID, r.Date)
		}
		prev = t
	}
	return p
}
