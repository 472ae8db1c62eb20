package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/goccy/go-json"

	"github.com/couchcryptid/crime-data-etl/internal/config"
	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

// maxFeedBytes caps the size of a JSON feed response.
const maxFeedBytes = 32 << 20

// Transient failures (network errors, 429 and 5xx) are retried.
const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 4 * time.Second
)

// statusError is a non-200 feed response.
type statusError struct {
	url    string
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d: %s", e.url, e.status, e.body)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= http.StatusInternalServerError
	}
	return true
}

// JSONFeed fetches incidents from an unauthenticated HTTP endpoint that
// returns either a JSON array of records or an object with an "incidents"
// array.
type JSONFeed struct {
	def        config.SourceDef
	httpClient *http.Client
	backoff    time.Duration
	logger     *slog.Logger
}

// NewJSONFeed creates a JSON feed source.
func NewJSONFeed(def config.SourceDef, timeout time.Duration, logger *slog.Logger) *JSONFeed {
	return &JSONFeed{
		def:        def,
		httpClient: &http.Client{Timeout: timeout},
		backoff:    initialBackoff,
		logger:     logger,
	}
}

// Name implements Fetcher.
func (f *JSONFeed) Name() string { return f.def.Name }

// Fetch implements Fetcher. Transient failures are retried with
// exponential backoff until maxAttempts or ctx is done.
func (f *JSONFeed) Fetch(ctx context.Context) ([]domain.RawIncident, error) {
	backoff := f.backoff
	for attempt := 1; ; attempt++ {
		body, err := f.get(ctx)
		if err == nil {
			raws, err := decodeFeed(body)
			if err != nil {
				return nil, err
			}
			f.logger.Debug("fetched feed", "source", f.def.Name, "count", len(raws), "attempts", attempt)
			return tag(raws, f.def.Name), nil
		}
		if attempt == maxAttempts || !retryable(err) || ctx.Err() != nil {
			return nil, err
		}

		f.logger.Warn("feed fetch failed, retrying",
			"source", f.def.Name,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if !retry.SleepWithContext(ctx, backoff) {
			return nil, fmt.Errorf("fetch %s: %w", f.def.URL, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (f *JSONFeed) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.def.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.def.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{url: f.def.URL, status: resp.StatusCode, body: body}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func decodeFeed(body []byte) ([]domain.RawIncident, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	if body[0] == '[' {
		var raws []domain.RawIncident
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, fmt.Errorf("decode incident array: %w", err)
		}
		return raws, nil
	}

	var wrapped struct {
		Incidents []domain.RawIncident `json:"incidents"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode incident object: %w", err)
	}
	return wrapped.Incidents, nil
}
