package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/couchcryptid/crime-data-etl/internal/config"
	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

const userAgent = "crime-data-etl (+https://github.com/couchcryptid/crime-data-etl)"

// Scraper reads incidents from an HTML police blotter table. The header
// cells name the columns; data cells are mapped by position, like rows of
// the import CSV.
type Scraper struct {
	def     config.SourceDef
	timeout time.Duration
	logger  *slog.Logger
}

// NewScraper creates a blotter scraping source.
func NewScraper(def config.SourceDef, timeout time.Duration, logger *slog.Logger) *Scraper {
	return &Scraper{def: def, timeout: timeout, logger: logger}
}

// Name implements Fetcher.
func (s *Scraper) Name() string { return s.def.Name }

// Fetch implements Fetcher.
func (s *Scraper) Fetch(ctx context.Context) ([]domain.RawIncident, error) {
	c := colly.NewCollector(colly.UserAgent(userAgent))
	if s.timeout > 0 {
		c.SetRequestTimeout(s.timeout)
	}

	var raws []domain.RawIncident

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnHTML(s.def.Selector, func(e *colly.HTMLElement) {
		var header []string
		e.ForEach("tr", func(_ int, row *colly.HTMLElement) {
			if th := row.ChildTexts("th"); len(th) > 0 && header == nil {
				header = th
				return
			}
			cells := row.ChildTexts("td")
			if len(cells) == 0 {
				return
			}
			if header == nil {
				header = cells
				return
			}

			values := make(map[string]string, len(header))
			for i, name := range header {
				if i < len(cells) {
					values[name] = cells[i]
				}
			}
			raws = append(raws, domain.RawIncidentFromRow(values, s.def.Name, len(raws)+1))
		})
	})

	if err := c.Visit(s.def.URL); err != nil {
		return nil, fmt.Errorf("scrape %s: %w", s.def.URL, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("scraped blotter", "count", len(raws))
	return raws, nil
}
