// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Search client limits.
const (
	defaultSearchTimeout = 2 * time.Second
	maxSearchResponse    = 4 << 20 // 4 MiB
)

// SearchClientConfig configures the search index HTTP client.
type SearchClientConfig struct {
	// BaseURL is the index endpoint, e.g. "http://search:9200".
	BaseURL string

	// Timeout bounds one query round trip.
	Timeout time.Duration
}

// SearchClient queries the dedicated search index over HTTP. All calls
// pass through a circuit breaker so a struggling index sheds load fast
// and callers fall back to the catalog store instead of queueing.
type SearchClient struct {
	cfg     SearchClientConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*SearchResult]
	logger  zerolog.Logger
}

// NewSearchClient creates a breaker-protected search index client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSearchClient(cfg SearchClientConfig, logger zerolog.Logger) *SearchClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSearchTimeout
	}

	log := logger.With().Str("component", "search-client").Logger()

	settings := gobreaker.Settings{
		Name:        "search-index",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &SearchClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[*SearchResult](settings),
		logger:  log,
	}
}

// Search runs the query through the breaker. An open breaker returns
// ErrUnavailable immediately without touching the network.
func (c *SearchClient) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	result, err := c.breaker.Execute(func() (*SearchResult, error) {
		return c.doSearch(ctx, query)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Healthy reports whether the breaker currently admits requests.
func (c *SearchClient) Healthy() bool {
	return c.breaker.State() != gobreaker.StateOpen
}

// doSearch performs one HTTP round trip against the index.
func (c *SearchClient) doSearch(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSearchResponse))
		return nil, fmt.Errorf("%w: index returned %d", ErrUnavailable, resp.StatusCode)
	}

	var result SearchResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSearchResponse)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	result.Source = SourceIndex

	return &result, nil
}
