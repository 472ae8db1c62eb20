// Package app wires configuration into a ready-to-run ingestion pipeline.
// Both the one-shot ingest command and the long-running serve command build
// their pipeline here so the two never drift apart.
package app

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/crime-data-etl/internal/adapter/csvimport"
	"github.com/couchcryptid/crime-data-etl/internal/adapter/file"
	"github.com/couchcryptid/crime-data-etl/internal/adapter/googlemaps"
	kafkaadapter "github.com/couchcryptid/crime-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/crime-data-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/crime-data-etl/internal/adapter/source"
	"github.com/couchcryptid/crime-data-etl/internal/config"
	"github.com/couchcryptid/crime-data-etl/internal/domain"
	"github.com/couchcryptid/crime-data-etl/internal/observability"
	"github.com/couchcryptid/crime-data-etl/internal/pipeline"
)

// App holds the assembled pipeline and the resources it owns.
type App struct {
	Pipeline *pipeline.Pipeline
	Store    *file.Store
	Importer *csvimport.Importer

	publisher *kafkaadapter.Publisher
}

// Build assembles sources, geocoders, the file store and the optional Kafka
// publisher from cfg.
func Build(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*App, error) {
	defs, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}
	fetchers, err := source.Build(defs, cfg.FetchTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("build sources: %w", err)
	}

	importer := csvimport.NewImporter(cfg.ImportCSV, logger)
	sources := make([]pipeline.SourceFetcher, 0, len(fetchers)+1)
	for _, f := range fetchers {
		sources = append(sources, f)
	}
	sources = append(sources, importer)

	geocoder, err := newGeocoder(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	j := cfg.Jurisdiction()
	fallback := domain.NewSimulatedGeocoder(j.Center, cfg.SimulatedGeocodeSpan)
	transformer := pipeline.NewTransformer(domain.NewDefaultTransformer(j), geocoder, fallback, metrics, logger)

	store := file.NewStore(cfg.OutputPath(), logger)

	a := &App{Store: store, Importer: importer}
	opts := []pipeline.Option{pipeline.WithFetchTimeout(cfg.FetchTimeout)}
	if cfg.KafkaEnabled() {
		a.publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(a.publisher))
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	a.Pipeline = pipeline.New(sources, transformer, store, j, logger, metrics, opts...)
	logger.Info("pipeline ready",
		"jurisdiction", j.Name,
		"sources", len(sources),
		"output", store.Path(),
		"import_csv", importer.Path(),
	)
	return a, nil
}

// Close releases the Kafka writer, if any.
func (a *App) Close() error {
	if a.publisher == nil {
		return nil
	}
	return a.publisher.Close()
}

// newGeocoder returns the real provider selected by GEOCODER, or nil when
// locations are only simulated.
func newGeocoder(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (domain.Geocoder, error) {
	switch mode := cfg.GeocoderMode(); mode {
	case config.GeocoderMapbox:
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
		return mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics), nil
	case config.GeocoderGoogle:
		client, err := googlemaps.NewClient(cfg.GoogleMapsAPIKey, cfg.MapboxTimeout, metrics, logger)
		if err != nil {
			return nil, fmt.Errorf("google maps geocoder: %w", err)
		}
		logger.Info("google maps geocoding enabled", "timeout", cfg.MapboxTimeout)
		return client, nil
	default:
		logger.Info("real geocoding disabled, locations without coordinates are simulated")
		return nil, nil
	}
}
