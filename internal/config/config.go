package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

// Geocoder selection values for GEOCODER.
const (
	GeocoderAuto      = "auto"
	GeocoderSimulated = "simulated"
	GeocoderMapbox    = "mapbox"
	GeocoderGoogle    = "google"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	JurisdictionName    string
	JurisdictionAliases []string
	JurisdictionLat     float64
	JurisdictionLng     float64
	RadiusMeters        float64
	IDPrefix            string

	DataDir     string
	OutputFile  string
	ImportCSV   string
	SourcesFile string

	FetchTimeout         time.Duration
	SimulatedGeocodeSpan float64
	Geocoder             string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration // also bounds Google geocoding requests
	MapboxCacheSize int

	GoogleMapsAPIKey string

	// Kafka publishing is disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	HTTPAddr        string
	RefreshInterval time.Duration
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first if
// present; variables already set in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	lat, err := parseFloat("JURISDICTION_LAT", "40.6501")
	if err != nil {
		return nil, err
	}
	lng, err := parseFloat("JURISDICTION_LNG", "-75.3685")
	if err != nil {
		return nil, err
	}
	radius, err := parseFloat("JURISDICTION_RADIUS_METERS", "8000")
	if err != nil {
		return nil, err
	}
	span, err := parseFloat("SIMULATED_GEOCODE_SPAN", "0.03")
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		JurisdictionName:    sharedcfg.EnvOrDefault("JURISDICTION_NAME", "Bethlehem Township"),
		JurisdictionAliases: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("JURISDICTION_ALIASES", "Bethlehem Township,Bethlehem Twp")),
		JurisdictionLat:     lat,
		JurisdictionLng:     lng,
		RadiusMeters:        radius,
		IDPrefix:            sharedcfg.EnvOrDefault("ID_PREFIX", "BT"),

		DataDir:     sharedcfg.EnvOrDefault("DATA_DIR", "src/_data"),
		OutputFile:  sharedcfg.EnvOrDefault("OUTPUT_FILE", "crimes.json"),
		ImportCSV:   sharedcfg.EnvOrDefault("IMPORT_CSV", "data/import.csv"),
		SourcesFile: os.Getenv("SOURCES_FILE"),

		FetchTimeout:         fetchTimeout,
		SimulatedGeocodeSpan: span,
		Geocoder:             sharedcfg.EnvOrDefault("GEOCODER", GeocoderAuto),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parsePositiveInt("MAPBOX_CACHE_SIZE", 1000),

		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "crime-incidents"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		RefreshInterval: refreshInterval,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if math.Abs(c.JurisdictionLat) > 90 {
		return errors.New("JURISDICTION_LAT must be within [-90, 90]")
	}
	if math.Abs(c.JurisdictionLng) > 180 {
		return errors.New("JURISDICTION_LNG must be within [-180, 180]")
	}
	if c.RadiusMeters <= 0 {
		return errors.New("JURISDICTION_RADIUS_METERS must be positive")
	}
	if c.SimulatedGeocodeSpan <= 0 {
		return errors.New("SIMULATED_GEOCODE_SPAN must be positive")
	}
	if c.OutputFile == "" {
		return errors.New("OUTPUT_FILE is required")
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	switch c.Geocoder {
	case GeocoderAuto, GeocoderSimulated:
	case GeocoderMapbox:
		if c.MapboxToken == "" {
			return errors.New("GEOCODER is mapbox but MAPBOX_TOKEN is not set")
		}
	case GeocoderGoogle:
		if c.GoogleMapsAPIKey == "" {
			return errors.New("GEOCODER is google but GOOGLE_MAPS_API_KEY is not set")
		}
	default:
		return fmt.Errorf("invalid GEOCODER %q: want auto, simulated, mapbox or google", c.Geocoder)
	}

	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// Jurisdiction builds the geographic scope used by every stage.
func (c *Config) Jurisdiction() domain.Jurisdiction {
	return domain.Jurisdiction{
		Name:         c.JurisdictionName,
		Aliases:      c.JurisdictionAliases,
		Center:       domain.Point{Lat: c.JurisdictionLat, Lng: c.JurisdictionLng},
		RadiusMeters: c.RadiusMeters,
		IDPrefix:     c.IDPrefix,
	}
}

// OutputPath is the location of the persisted incident file.
func (c *Config) OutputPath() string {
	return filepath.Join(c.DataDir, c.OutputFile)
}

// GeocoderMode resolves "auto" to the first configured provider, Mapbox
// before Google, or simulated when neither is available.
func (c *Config) GeocoderMode() string {
	if c.Geocoder != GeocoderAuto {
		return c.Geocoder
	}
	switch {
	case c.MapboxEnabled:
		return GeocoderMapbox
	case c.GoogleMapsAPIKey != "":
		return GeocoderGoogle
	default:
		return GeocoderSimulated
	}
}

// KafkaEnabled reports whether incidents are also published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }
