// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package nlu

// DurationRange constrains content runtime in minutes.
// A nil bound means unconstrained on that side.
type DurationRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// YearRange constrains content release year.
// A nil bound means unconstrained on that side.
type YearRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// ExtractedEntities holds the structured constraints recognized in a user
// message. Every field is optional: a zero-length slice, empty string, or
// nil range means the dimension is unconstrained. Callers never need to
// distinguish empty from missing.
type ExtractedEntities struct {
	// Genres are canonical genre names, first-mention order, deduplicated.
	Genres []string `json:"genres,omitempty"`

	// Services are canonical streaming service names.
	Services []string `json:"services,omitempty"`

	// Moods are canonical mood descriptors.
	Moods []string `json:"moods,omitempty"`

	// Duration is the requested runtime range in minutes.
	Duration *DurationRange `json:"duration,omitempty"`

	// ReleaseYear is the requested release year range.
	ReleaseYear *YearRange `json:"release_year,omitempty"`

	// Region is an ISO 3166-1 alpha-2 country code.
	Region string `json:"region,omitempty"`

	// Titles are quoted substrings in order of appearance.
	// Duplicates are preserved.
	Titles []string `json:"titles,omitempty"`
}

// IsEmpty reports whether no entity of any kind was extracted.
func (e *ExtractedEntities) IsEmpty() bool {
	return len(e.Genres) == 0 &&
		len(e.Services) == 0 &&
		len(e.Moods) == 0 &&
		e.Duration == nil &&
		e.ReleaseYear == nil &&
		e.Region == "" &&
		len(e.Titles) == 0
}

// intPtr returns a pointer to v. Used when populating range bounds.
func intPtr(v int) *int {
	return &v
}
