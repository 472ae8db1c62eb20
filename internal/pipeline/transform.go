package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/crime-data-etl/internal/domain"
	"github.com/couchcryptid/crime-data-etl/internal/observability"
)

// IncidentTransformer implements Transformer using the domain transformer,
// then resolves pending locations through the configured geocoders.
type IncidentTransformer struct {
	transformer *domain.Transformer
	geocoder    domain.Geocoder
	fallback    domain.Geocoder
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewTransformer creates an IncidentTransformer. geocoder is the real
// provider and may be nil; fallback approximates locations it cannot
// resolve and may also be nil, leaving such incidents without coordinates.
func NewTransformer(t *domain.Transformer, geocoder, fallback domain.Geocoder, metrics *observability.Metrics, logger *slog.Logger) *IncidentTransformer {
	return &IncidentTransformer{
		transformer: t,
		geocoder:    geocoder,
		fallback:    fallback,
		metrics:     metrics,
		logger:      logger,
	}
}

// Transform implements Transformer.
func (t *IncidentTransformer) Transform(ctx context.Context, raw domain.RawIncident) domain.Incident {
	inc := t.transformer.Transform(raw)
	if inc.GeoSource != domain.GeoSourcePending {
		return inc
	}

	inc = domain.EnrichWithGeocoding(ctx, inc,
		t.transformer.GeocodeQuery(raw),
		t.transformer.Jurisdiction().Name,
		t.geocoder, t.fallback, t.logger,
	)
	if inc.GeoSource == domain.GeoSourceSimulated {
		t.metrics.GeocodeSimulated.Inc()
	}
	return inc
}
