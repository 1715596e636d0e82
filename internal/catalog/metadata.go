// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Metadata client limits.
const (
	defaultMetadataTimeout = 3 * time.Second
	defaultMetadataRPS     = 5
	maxMetadataResponse    = 1 << 20 // 1 MiB
)

// MetadataClientConfig configures the external metadata client.
type MetadataClientConfig struct {
	// BaseURL is the provider endpoint.
	BaseURL string

	// Timeout bounds one lookup round trip.
	Timeout time.Duration

	// RequestsPerSecond is the provider-side rate budget.
	RequestsPerSecond float64

	// Burst is the limiter burst size.
	Burst int
}

// MetadataClient enriches titles from an external provider under a
// client-side rate limit. Lookups that cannot acquire a token within
// the request deadline are dropped rather than queued, so a slow
// provider never backs up a turn.
type MetadataClient struct {
	cfg     MetadataClientConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewMetadataClient creates a rate-limited metadata client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMetadataClient(cfg MetadataClientConfig, logger zerolog.Logger) *MetadataClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMetadataTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultMetadataRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RequestsPerSecond)
		if cfg.Burst < 1 {
			cfg.Burst = 1
		}
	}

	return &MetadataClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger.With().Str("component", "metadata-client").Logger(),
	}
}

// metadataResponse is the provider's lookup payload.
type metadataResponse struct {
	Genres         []string `json:"genres"`
	Moods          []string `json:"moods"`
	Year           int      `json:"year"`
	RuntimeMinutes int      `json:"runtime_minutes"`
	Rating         float64  `json:"rating"`
	Popularity     float64  `json:"popularity"`
}

// Enrich fills missing fields on the title. It waits for a rate token
// only as long as the context allows; a throttled or failed lookup
// returns an error and leaves the title untouched.
func (c *MetadataClient) Enrich(ctx context.Context, title *TitleResult) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/v1/titles/"+url.PathEscape(title.ID), nil)
	if err != nil {
		return fmt.Errorf("build metadata request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxMetadataResponse))
		return fmt.Errorf("%w: title %s", ErrNotFound, title.ID)
	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxMetadataResponse))
		return fmt.Errorf("%w: provider returned %d", ErrUnavailable, resp.StatusCode)
	}

	var meta metadataResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataResponse)).Decode(&meta); err != nil {
		return fmt.Errorf("decode metadata response: %w", err)
	}

	c.apply(title, &meta)
	return nil
}

// apply copies provider fields into gaps on the title. Existing catalog
// values win over provider values.
func (c *MetadataClient) apply(title *TitleResult, meta *metadataResponse) {
	if len(title.Genres) == 0 {
		title.Genres = meta.Genres
	}
	if len(title.Moods) == 0 {
		title.Moods = meta.Moods
	}
	if title.Year == 0 {
		title.Year = meta.Year
	}
	if title.RuntimeMinutes == 0 {
		title.RuntimeMinutes = meta.RuntimeMinutes
	}
	if title.Rating == 0 {
		title.Rating = meta.Rating
	}
	if title.Popularity == 0 {
		title.Popularity = meta.Popularity
	}
}
