package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/crime-data-etl/internal/domain"
	"github.com/couchcryptid/crime-data-etl/internal/observability"
)

// ErrSourceTimeout marks a source that did not answer within the fetch timeout.
var ErrSourceTimeout = errors.New("source fetch timed out")

// DefaultFetchTimeout bounds each source when no timeout is configured.
const DefaultFetchTimeout = 30 * time.Second

// SourceFetcher retrieves raw incidents from one upstream source.
type SourceFetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawIncident, error)
}

// Transformer converts a raw incident into a canonical one. It never fails;
// unusable records come back without a finite location and are filtered out.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawIncident) domain.Incident
}

// Store persists the final incident list, replacing the previous one.
type Store interface {
	Save(ctx context.Context, incidents []domain.Incident) error
}

// Publisher forwards the final incident list to an optional secondary sink.
type Publisher interface {
	Publish(ctx context.Context, incidents []domain.Incident) error
}

// Result describes one completed run.
type Result struct {
	Incidents         []domain.Incident
	Summary           domain.Summary
	Fetched           int
	Duplicates        int
	OutOfJurisdiction int
	// SourceErrors holds the failure of each source that contributed nothing.
	SourceErrors map[string]error
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithPublisher also publishes each run's incidents. Publish failures are
// logged and counted but do not fail the run.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithFetchTimeout bounds each source fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// Pipeline orchestrates the fetch-transform-persist run.
type Pipeline struct {
	sources      []SourceFetcher
	transformer  Transformer
	store        Store
	publisher    Publisher
	jurisdiction domain.Jurisdiction
	fetchTimeout time.Duration
	logger       *slog.Logger
	metrics      *observability.Metrics

	runMu  sync.Mutex
	ready  atomic.Bool
	mu     sync.RWMutex
	latest Result
}

// New creates a Pipeline with the given stages and observability. Sources
// are fetched concurrently but their records are combined in the order given.
func New(sources []SourceFetcher, t Transformer, s Store, j domain.Jurisdiction, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		sources:      sources,
		transformer:  t,
		store:        s,
		jurisdiction: j,
		fetchTimeout: DefaultFetchTimeout,
		logger:       logger,
		metrics:      metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a run has persisted its output, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Latest returns the incidents and summary of the last successful run.
// The returned slice must not be modified.
func (p *Pipeline) Latest() ([]domain.Incident, domain.Summary) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest.Incidents, p.latest.Summary
}

// Run performs one complete ingestion. Source failures never fail the run;
// only a cancelled context or a persistence error is returned, in which case
// the previous output is left untouched.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now()
	p.logger.Info("run started", "sources", len(p.sources))

	batches, sourceErrs := p.fetchAll(ctx)
	if err := ctx.Err(); err != nil {
		p.metrics.RunFailures.Inc()
		return Result{}, fmt.Errorf("run cancelled: %w", err)
	}

	res := Result{SourceErrors: sourceErrs}
	var transformed []domain.Incident
	for _, batch := range batches {
		res.Fetched += len(batch)
		for _, raw := range batch {
			transformed = append(transformed, p.transformer.Transform(ctx, raw))
		}
	}

	unique, dups := dedupe(transformed)
	res.Duplicates = dups
	p.metrics.IncidentsDropped.WithLabelValues(observability.DropDuplicate).Add(float64(dups))

	inside, outside := p.filter(unique)
	res.OutOfJurisdiction = outside
	p.metrics.IncidentsDropped.WithLabelValues(observability.DropOutOfJurisdiction).Add(float64(outside))

	sortNewestFirst(inside)
	res.Incidents = inside

	if err := ctx.Err(); err != nil {
		p.metrics.RunFailures.Inc()
		return Result{}, fmt.Errorf("run cancelled: %w", err)
	}
	if err := p.store.Save(ctx, inside); err != nil {
		p.metrics.RunFailures.Inc()
		p.logger.Error("persist failed", "error", err)
		return Result{}, fmt.Errorf("persist incidents: %w", err)
	}
	p.metrics.IncidentsPersisted.Set(float64(len(inside)))

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, inside); err != nil {
			p.metrics.PublishErrors.Inc()
			p.logger.Error("publish failed, output file is still current", "error", err, "count", len(inside))
		}
	}

	res.Summary = domain.Summarize(inside)

	p.mu.Lock()
	p.latest = res
	p.mu.Unlock()
	p.ready.Store(true)

	elapsed := time.Since(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.metrics.LastSuccess.SetToCurrentTime()
	p.logSummary(res, elapsed)

	return res, nil
}

// fetchAll runs every source concurrently, each under its own timeout.
// A failed source contributes an empty batch and an entry in the error map.
func (p *Pipeline) fetchAll(ctx context.Context) ([][]domain.RawIncident, map[string]error) {
	batches := make([][]domain.RawIncident, len(p.sources))
	errs := make([]error, len(p.sources))

	var g errgroup.Group
	for i, src := range p.sources {
		g.Go(func() error {
			raws, err := p.fetchOne(ctx, src)
			if err != nil {
				errs[i] = err
				p.metrics.SourceErrors.WithLabelValues(src.Name()).Inc()
				p.logger.Error("source fetch failed", "source", src.Name(), "error", err)
				return nil
			}
			batches[i] = raws
			p.metrics.IncidentsFetched.WithLabelValues(src.Name()).Add(float64(len(raws)))
			p.logger.Info("source fetched", "source", src.Name(), "count", len(raws))
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	failed := make(map[string]error)
	for i, err := range errs {
		if err != nil {
			failed[p.sources[i].Name()] = err
		}
	}
	return batches, failed
}

type fetchResult struct {
	raws []domain.RawIncident
	err  error
}

// fetchOne returns when the source answers or the timeout elapses, whichever
// is first, so a source that ignores its context cannot stall the run.
func (p *Pipeline) fetchOne(ctx context.Context, src SourceFetcher) ([]domain.RawIncident, error) {
	fctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("source panicked: %v", r)}
			}
		}()
		raws, err := src.Fetch(fctx)
		done <- fetchResult{raws: raws, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(fctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s: %w", ErrSourceTimeout, p.fetchTimeout, r.err)
		}
		return r.raws, r.err
	case <-fctx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w after %s", ErrSourceTimeout, p.fetchTimeout)
	}
}

// dedupe keeps one incident per id. A later occurrence replaces an earlier
// one in place, so the output keeps first-seen order with last-seen values.
func dedupe(incidents []domain.Incident) ([]domain.Incident, int) {
	index := make(map[string]int, len(incidents))
	out := make([]domain.Incident, 0, len(incidents))
	dups := 0
	for _, inc := range incidents {
		if i, ok := index[inc.ID]; ok {
			out[i] = inc
			dups++
			continue
		}
		index[inc.ID] = len(out)
		out = append(out, inc)
	}
	return out, dups
}

// filter drops incidents outside the jurisdiction radius, including every
// incident without finite coordinates.
func (p *Pipeline) filter(incidents []domain.Incident) ([]domain.Incident, int) {
	out := make([]domain.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if p.jurisdiction.Contains(inc.Location) {
			out = append(out, inc)
			continue
		}
		p.logger.Debug("dropping incident outside jurisdiction",
			"incident_id", inc.ID,
			"source", inc.Source,
			"geo_source", inc.GeoSource,
		)
	}
	return out, len(incidents) - len(out)
}

func sortNewestFirst(incidents []domain.Incident) {
	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].Date.After(incidents[j].Date)
	})
}

func (p *Pipeline) logSummary(res Result, elapsed time.Duration) {
	attrs := []any{
		"total", res.Summary.Total,
		"fetched", res.Fetched,
		"duplicates", res.Duplicates,
		"out_of_jurisdiction", res.OutOfJurisdiction,
		"failed_sources", len(res.SourceErrors),
		"duration", elapsed,
	}
	if res.Summary.Newest != nil {
		attrs = append(attrs,
			"newest", res.Summary.Newest.Format(time.DateOnly),
			"oldest", res.Summary.Oldest.Format(time.DateOnly),
		)
	}
	for _, tc := range res.Summary.ByType {
		attrs = append(attrs, string(tc.Type), tc.Count)
	}
	p.logger.Info("run complete", attrs...)
}
