// Package file persists the incident list as the JSON document read by the
// static site generator.
package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

// Store writes incidents to a single JSON file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the output file location.
func (s *Store) Path() string { return s.path }

// Save replaces the file with incidents as a 2-space indented JSON array.
// The document is written to a temporary file in the same directory and
// renamed over the target, so readers never observe a partial file and a
// failed save leaves the previous one intact.
func (s *Store) Save(ctx context.Context, incidents []domain.Incident) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := []byte("[]")
	if len(incidents) > 0 {
		var err error
		data, err = json.MarshalIndent(incidents, "", "  ")
		if err != nil {
			return fmt.Errorf("encode incidents: %w", err)
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	s.logger.Info("saved incidents", "path", s.path, "count", len(incidents), "bytes", len(data))
	return nil
}

// Load reads a previously saved file. A missing file yields no incidents.
func (s *Store) Load(_ context.Context) ([]domain.Incident, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var incidents []domain.Incident
	if err := json.Unmarshal(data, &incidents); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return incidents, nil
}
