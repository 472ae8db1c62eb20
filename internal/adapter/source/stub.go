package source

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/crime-data-etl/internal/config"
	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

// Stub stands in for a portal that cannot be fetched yet. It logs where the
// data lives and how to obtain it, and returns no records.
type Stub struct {
	def    config.SourceDef
	logger *slog.Logger
}

// NewStub creates a placeholder source.
func NewStub(def config.SourceDef, logger *slog.Logger) *Stub {
	return &Stub{def: def, logger: logger}
}

// Name implements Fetcher.
func (s *Stub) Name() string { return s.def.Name }

// Fetch implements Fetcher.
func (s *Stub) Fetch(_ context.Context) ([]domain.RawIncident, error) {
	s.logger.Info("source not integrated, skipping", "url", s.def.URL, "note", s.def.Note)
	return nil, nil
}
