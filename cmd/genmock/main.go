// Command genmock writes a deterministic mock import CSV for manual testing
// of the pipeline. Rows mix source spellings of crime types, rows with and
// without coordinates, explicit severities and a few locations outside the
// jurisdiction. After writing, it previews the rows through the domain
// transformer so the expected output can be checked by eye.
//
// Usage:
//
//	go run ./cmd/genmock -out data/import.csv -rows 50 -seed 1
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/crime-data-etl/internal/adapter/csvimport"
	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

var (
	baseDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	center   = domain.Point{Lat: 40.6501, Lng: -75.3685}
)

var header = []string{"Type", "Date", "Address", "Description", "Lat", "Lng", "Severity", "Status"}

type template struct {
	rawType      string
	descriptions []string
}

var templates = []template{
	{"THEFT", []string{"Stolen bike", "Package taken from porch", "Catalytic converter removed"}},
	{"Larceny", []string{"Wallet taken from unlocked car", "Tools missing from truck bed"}},
	{"Burglary", []string{"Forced entry through rear door", "Garage broken into overnight"}},
	{"Breaking and Entering", []string{"Window pried open"}},
	{"criminal mischief", []string{"Mailbox smashed", "Graffiti on fence"}},
	{"Vandalism", []string{"Tires slashed"}},
	{"DUI", []string{"Driver failed field sobriety test"}},
	{"Simple Assault", []string{"Argument escalated", "Armed suspect injured victim"}},
	{"Fraud", []string{"Gift card scam reported by phone", "Identity theft reported"}},
	{"Disturbance", []string{"Noise complaint", "Loud party"}},
}

var streets = []string{
	"Main St", "Oak Ave", "Easton Ave", "Freemansburg Ave", "Farmersville Rd",
	"Butztown Rd", "Center St", "Hecktown Rd", "Township Line Rd", "Green Pond Rd",
}

var statuses = []string{"", "reported", "under investigation", "closed", "Arrest Made"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/import.csv", "output path for the mock import CSV")
	rows := flag.Int("rows", 50, "number of data rows")
	seed := flag.Uint64("seed", 1, "random seed; the same seed always yields the same file")
	flag.Parse()

	if *rows <= 0 {
		return fmt.Errorf("-rows must be positive, got %d", *rows)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := generate(f, *rows, *seed); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", *out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", *out, err)
	}
	log.Printf("wrote %d rows to %s", *rows, *out)

	return preview(*out)
}

// generate writes a header and n pseudo-random rows seeded by seed.
func generate(w io.Writer, n int, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}
	for range n {
		if err := cw.Write(mockRow(rng)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func mockRow(rng *rand.Rand) []string {
	t := templates[rng.IntN(len(templates))]
	desc := t.descriptions[rng.IntN(len(t.descriptions))]

	date := baseDate.Add(time.Duration(rng.IntN(60*24)) * time.Hour)
	dateStr := date.Format("2006-01-02 15:04")
	if rng.IntN(4) == 0 {
		dateStr = date.Format("01/02/2006")
	}

	address := strconv.Itoa(1+rng.IntN(3999)) + " " + streets[rng.IntN(len(streets))]
	if rng.IntN(10) == 0 {
		address = streets[rng.IntN(len(streets))] + " & " + streets[rng.IntN(len(streets))]
	}

	var lat, lng string
	switch r := rng.IntN(10); {
	case r < 5:
		// within roughly 5km of the center
		lat = strconv.FormatFloat(center.Lat+(rng.Float64()-0.5)*0.08, 'f', 4, 64)
		lng = strconv.FormatFloat(center.Lng+(rng.Float64()-0.5)*0.08, 'f', 4, 64)
	case r == 5:
		// Philadelphia, outside the jurisdiction
		lat, lng = "39.9526", "-75.1652"
	}

	severity := ""
	if rng.IntN(8) == 0 {
		severity = strconv.Itoa(1 + rng.IntN(5))
	}

	return []string{t.rawType, dateStr, address, desc, lat, lng, severity, statuses[rng.IntN(len(statuses))]}
}

// preview runs the written rows through the domain transformer with a fixed
// clock and prints per-type counts.
func preview(path string) error {
	domain.SetClock(clockwork.NewFakeClockAt(baseDate))
	defer domain.SetClock(nil)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	raws, err := csvimport.Parse(f, csvimport.SourceName)
	if err != nil {
		return fmt.Errorf("parse generated csv: %w", err)
	}

	tr := domain.NewDefaultTransformer(domain.Jurisdiction{
		Name:         "Bethlehem Township",
		Aliases:      []string{"Bethlehem Township", "Bethlehem Twp"},
		Center:       center,
		RadiusMeters: 8000,
		IDPrefix:     "BT",
	})
	counts := make(map[domain.CrimeType]int)
	pending := 0
	for _, raw := range raws {
		inc := tr.Transform(raw)
		counts[inc.Type]++
		if inc.GeoSource == domain.GeoSourcePending {
			pending++
		}
	}

	fmt.Println("\n=== Preview ===")
	for _, t := range domain.CrimeTypes {
		fmt.Printf("  %-10s %d\n", t, counts[t])
	}
	fmt.Printf("  %d rows need geocoding\n", pending)
	return nil
}
