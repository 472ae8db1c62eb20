package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crime_etl"

// Reasons an incident is dropped after transformation.
const (
	DropDuplicate         = "duplicate"
	DropOutOfJurisdiction = "out_of_jurisdiction"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ingestion pipeline.
type Metrics struct {
	IncidentsFetched   *prometheus.CounterVec // labels: source
	SourceErrors       *prometheus.CounterVec // labels: source
	IncidentsDropped   *prometheus.CounterVec // labels: reason={duplicate,out_of_jurisdiction}
	IncidentsPersisted prometheus.Gauge
	PublishErrors      prometheus.Counter
	RunDuration        prometheus.Histogram
	RunFailures        prometheus.Counter
	LastSuccess        prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: provider, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: provider
	GeocodeSimulated   prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		IncidentsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incidents_fetched_total",
			Help:      "Raw incidents returned by each source.",
		}, []string{"source"}),
		SourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Failed source fetches, including timeouts.",
		}, []string{"source"}),
		IncidentsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incidents_dropped_total",
			Help:      "Incidents removed after transformation, by reason.",
		}, []string{"reason"}),
		IncidentsPersisted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "incidents_persisted",
			Help:      "Number of incidents in the last persisted file.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish a run's incidents to Kafka.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-transform-persist run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Runs that ended with a fatal error.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		GeocodeSimulated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_simulated_total",
			Help:      "Incidents placed by the simulated geocoder.",
		}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.IncidentsFetched,
		m.SourceErrors,
		m.IncidentsDropped,
		m.IncidentsPersisted,
		m.PublishErrors,
		m.RunDuration,
		m.RunFailures,
		m.LastSuccess,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeSimulated,
	}
}

// ObserveGeocode records one provider request. Safe on a nil receiver.
func (m *Metrics) ObserveGeocode(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GeocodeRequests.WithLabelValues(provider, outcome).Inc()
	m.GeocodeAPIDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveGeocodeCache records a cache lookup result ("hit" or "miss").
func (m *Metrics) ObserveGeocodeCache(result string) {
	if m == nil {
		return
	}
	m.GeocodeCache.WithLabelValues(result).Inc()
}

// GeocodeOutcome classifies a provider response for metrics.
func GeocodeOutcome(found bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case found:
		return "success"
	default:
		return "empty"
	}
}
