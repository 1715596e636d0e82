// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package catalog

import (
	"time"
)

// TitleResult is the common shape for catalog titles, regardless of
// whether they came from the search index, the relational store, or an
// external metadata provider.
type TitleResult struct {
	// ID is the catalog identifier.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// MediaType is "movie" or "series".
	MediaType string `json:"media_type"`

	// Genres are canonical genre names.
	Genres []string `json:"genres,omitempty"`

	// Moods are editorial mood tags aligned with the NLU mood vocabulary.
	Moods []string `json:"moods,omitempty"`

	// Year is the release year.
	Year int `json:"year,omitempty"`

	// RuntimeMinutes is the runtime (per-episode for series).
	RuntimeMinutes int `json:"runtime_minutes,omitempty"`

	// Rating is the critic rating on a 0-10 scale.
	Rating float64 `json:"rating,omitempty"`

	// Popularity is a pre-computed popularity metric in [0,1].
	Popularity float64 `json:"popularity,omitempty"`

	// SeriesKey groups sequels and seasons of one franchise. Empty for
	// standalone titles.
	SeriesKey string `json:"series_key,omitempty"`
}

// AvailabilityResult describes where a title can be watched.
type AvailabilityResult struct {
	// TitleID is the catalog identifier of the title.
	TitleID string `json:"title_id"`

	// Title is the display title.
	Title string `json:"title"`

	// Service is the canonical streaming service name.
	Service string `json:"service"`

	// Region is the ISO country code the row applies to.
	Region string `json:"region"`

	// Kind is "subscription", "rent", or "buy".
	Kind string `json:"kind,omitempty"`

	// Leaving, when set, is the date the title leaves the service.
	Leaving *time.Time `json:"leaving,omitempty"`
}

// Preferences are a profile's explicit taste settings.
type Preferences struct {
	// Genres the profile explicitly likes.
	Genres []string `json:"genres,omitempty"`

	// Moods the profile explicitly likes.
	Moods []string `json:"moods,omitempty"`

	// AvoidGenres the profile never wants to see.
	AvoidGenres []string `json:"avoid_genres,omitempty"`
}

// Profile is the read model of a user profile.
type Profile struct {
	// ID is the profile identifier.
	ID string `json:"id"`

	// Region is the profile's ISO country code.
	Region string `json:"region,omitempty"`

	// Tier is the quota tier ("free" or "premium").
	Tier string `json:"tier,omitempty"`

	// Subscriptions are canonical service names with an active plan.
	Subscriptions []string `json:"subscriptions,omitempty"`

	// Preferences are the explicit taste settings.
	Preferences Preferences `json:"preferences"`
}

// Feedback is one like/dislike signal on a title.
type Feedback struct {
	// ProfileID is the profile that gave the feedback.
	ProfileID string `json:"profile_id"`

	// TitleID is the rated title.
	TitleID string `json:"title_id"`

	// Genres are the genres of the rated title, denormalized for
	// preference inference.
	Genres []string `json:"genres,omitempty"`

	// Liked is true for a like, false for a dislike.
	Liked bool `json:"liked"`

	// Timestamp is when the feedback was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// SearchQuery is the structured query built from extracted entities.
type SearchQuery struct {
	// Text is the free-text query (entity phrases stripped).
	Text string `json:"text,omitempty"`

	// Title, when set, overrides Text with an exact-title lookup.
	Title string `json:"title,omitempty"`

	// Genres filters by canonical genre names.
	Genres []string `json:"genres,omitempty"`

	// Services filters to titles available on any of these services.
	Services []string `json:"services,omitempty"`

	// Region scopes availability filtering.
	Region string `json:"region,omitempty"`

	// RuntimeMin/RuntimeMax bound the runtime in minutes. Nil means
	// unconstrained.
	RuntimeMin *int `json:"runtime_min,omitempty"`
	RuntimeMax *int `json:"runtime_max,omitempty"`

	// YearMin/YearMax bound the release year. Nil means unconstrained.
	YearMin *int `json:"year_min,omitempty"`
	YearMax *int `json:"year_max,omitempty"`

	// Limit caps the number of returned items.
	Limit int `json:"limit,omitempty"`
}

// SearchResult is a ranked list of titles plus provenance.
type SearchResult struct {
	// Items are the matching titles in rank order.
	Items []TitleResult `json:"items"`

	// Total is the number of matches before the limit was applied.
	Total int `json:"total"`

	// Source records which path produced the result: "index", "catalog",
	// or "cache".
	Source string `json:"source"`
}

// Result sources.
const (
	SourceIndex   = "index"
	SourceCatalog = "catalog"
	SourceCache   = "cache"
)
