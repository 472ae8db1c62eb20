// Package source implements the upstream incident sources named in the
// sources file: placeholders for portals without an open API, JSON feeds
// and scraped HTML blotters.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/crime-data-etl/internal/config"
	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

// Fetcher retrieves raw incidents from one upstream source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawIncident, error)
}

// Build creates a fetcher for each definition, in order. timeout bounds the
// HTTP requests of network sources.
func Build(defs []config.SourceDef, timeout time.Duration, logger *slog.Logger) ([]Fetcher, error) {
	fetchers := make([]Fetcher, 0, len(defs))
	for _, def := range defs {
		l := logger.With("source", def.Name)
		switch def.Kind {
		case config.SourceStub:
			fetchers = append(fetchers, NewStub(def, l))
		case config.SourceJSON:
			fetchers = append(fetchers, NewJSONFeed(def, timeout, l))
		case config.SourceScrape:
			fetchers = append(fetchers, NewScraper(def, timeout, l))
		default:
			return nil, fmt.Errorf("source %q: unknown kind %q", def.Name, def.Kind)
		}
	}
	return fetchers, nil
}

// tag marks each record with the source it came from.
func tag(raws []domain.RawIncident, name string) []domain.RawIncident {
	for i := range raws {
		raws[i].Origin = name
	}
	return raws
}
