package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

// IncidentSource exposes the incidents of the last successful run.
type IncidentSource interface {
	Latest() ([]domain.Incident, domain.Summary)
}

// Server exposes health, readiness, metrics and incident HTTP endpoints.
type Server struct {
	httpServer *http.Server
	incidents  IncidentSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /incidents and /incidents/summary routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, incidents IncidentSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		incidents: incidents,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /incidents", s.handleIncidents)
	mux.HandleFunc("GET /incidents/summary", s.handleSummary)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleIncidents returns the latest incidents, optionally narrowed by
// ?type=THEFT,BURGLARY and ?min_severity=N.
func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, _ := s.incidents.Latest()

	types := make(map[domain.CrimeType]bool)
	for _, t := range strings.Split(r.URL.Query().Get("type"), ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			types[domain.CrimeType(t)] = true
		}
	}
	minSeverity := domain.MinSeverity
	if v := r.URL.Query().Get("min_severity"); v != "" {
		n, ok := domain.ParseExplicitSeverity(v)
		if !ok {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "min_severity must be between 1 and 5"})
			return
		}
		minSeverity = n
	}

	out := make([]domain.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if len(types) > 0 && !types[inc.Type] {
			continue
		}
		if inc.Severity < minSeverity {
			continue
		}
		out = append(out, inc)
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	_, summary := s.incidents.Latest()
	sharedobs.WriteJSON(w, http.StatusOK, summary)
}
