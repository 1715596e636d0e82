// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package catalog

import (
	"context"
	"errors"
)

// Sentinel errors shared by catalog backends.
var (
	// ErrUnavailable indicates the backend is down or its breaker is open.
	ErrUnavailable = errors.New("catalog: backend unavailable")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("catalog: not found")
)

// SearchIndex is the dedicated full-text search backend. Implementations
// must return ErrUnavailable (possibly wrapped) when the backend cannot
// serve, so callers can fall back to the catalog store.
type SearchIndex interface {
	// Search runs a structured query against the index.
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)

	// Healthy reports whether the index is currently accepting queries.
	Healthy() bool
}

// Store is the canonical catalog and profile storage.
type Store interface {
	// SearchTitles is the degraded search path: simpler matching over the
	// canonical catalog, used when the search index is unavailable.
	SearchTitles(ctx context.Context, query SearchQuery) (*SearchResult, error)

	// Availability returns where a title can be watched in a region.
	// An unknown title returns ErrNotFound.
	Availability(ctx context.Context, titleID, region string) ([]AvailabilityResult, error)

	// FindByTitle resolves a display title to catalog entries.
	FindByTitle(ctx context.Context, title string) ([]TitleResult, error)

	// Profile returns the profile read model, or ErrNotFound.
	Profile(ctx context.Context, profileID string) (*Profile, error)

	// UpdatePreferences replaces the explicit preferences of a profile.
	UpdatePreferences(ctx context.Context, profileID string, prefs Preferences) error

	// RecordFeedback appends one like/dislike signal.
	RecordFeedback(ctx context.Context, fb Feedback) error

	// FeedbackFor returns the feedback history of a profile, newest first.
	FeedbackFor(ctx context.Context, profileID string) ([]Feedback, error)

	// TopRated returns the highest-rated titles, optionally filtered by
	// genre, for cold-start recommendations.
	TopRated(ctx context.Context, genres []string, limit int) ([]TitleResult, error)
}

// MetadataProvider enriches titles from an external source. Lookups are
// best-effort: a failed or throttled lookup degrades the response, it
// never fails the turn.
type MetadataProvider interface {
	// Enrich fills missing fields on the given title in place.
	Enrich(ctx context.Context, title *TitleResult) error
}
