// Package csvimport reads manually entered incidents from a CSV file.
package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

// SourceName identifies imported rows in logs, metrics and generated ids.
const SourceName = "csv"

const utf8BOM = "\ufeff"

// Importer is the source for the optional import file. Rows go through the
// same transformation as fetched records; rows without coordinates are
// geocoded from their address.
type Importer struct {
	path   string
	logger *slog.Logger
}

// NewImporter creates an importer for the CSV file at path.
func NewImporter(path string, logger *slog.Logger) *Importer {
	return &Importer{path: path, logger: logger}
}

// Name implements pipeline.SourceFetcher.
func (i *Importer) Name() string { return SourceName }

// Path returns the import file location.
func (i *Importer) Path() string { return i.path }

// Fetch reads the import file. A missing file is not an error and yields no
// records.
func (i *Importer) Fetch(ctx context.Context) ([]domain.RawIncident, error) {
	f, err := os.Open(i.path)
	if errors.Is(err, os.ErrNotExist) {
		i.logger.Debug("no import file", "path", i.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raws, err := Parse(f, SourceName)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", i.path, err)
	}
	i.logger.Info("imported csv rows", "path", i.path, "count", len(raws))
	return raws, nil
}

// Parse reads a header row followed by data rows. Header names are matched
// case-insensitively, values are trimmed and blank rows are skipped. Row
// numbers count data rows from 1.
func Parse(r io.Reader, origin string) ([]domain.RawIncident, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	// Hand-edited exports carry bare quotes such as 55" TV.
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var raws []domain.RawIncident
	rowNum := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}
		rowNum++

		row := make(map[string]string, len(header))
		for idx, name := range header {
			if idx < len(record) {
				row[name] = record[idx]
			}
		}
		raws = append(raws, domain.RawIncidentFromRow(row, origin, rowNum))
	}
	return raws, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
