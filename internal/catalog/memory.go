// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store implementation. It backs the
// degraded search path and the profile/feedback operations, loaded from
// the catalog snapshot at startup. Safe for concurrent use.
type MemoryStore struct {
	mu           sync.RWMutex
	titles       map[string]TitleResult
	availability map[string][]AvailabilityResult
	profiles     map[string]*Profile
	feedback     map[string][]Feedback
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		titles:       make(map[string]TitleResult),
		availability: make(map[string][]AvailabilityResult),
		profiles:     make(map[string]*Profile),
		feedback:     make(map[string][]Feedback),
	}
}

// AddTitle inserts or replaces a catalog title.
func (s *MemoryStore) AddTitle(title TitleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles[title.ID] = title
}

// AddAvailability registers an availability row for a title.
func (s *MemoryStore) AddAvailability(row AvailabilityResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.availability[row.TitleID] = append(s.availability[row.TitleID], row)
}

// PutProfile inserts or replaces a profile.
func (s *MemoryStore) PutProfile(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.profiles[p.ID] = &cp
}

// SearchTitles matches titles against the query using simple substring
// and attribute filters. This is the fallback path when the search
// index is down, so ranking is popularity-based rather than relevance.
func (s *MemoryStore) SearchTitles(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []TitleResult
	for _, title := range s.titles {
		if s.matches(title, query) {
			matched = append(matched, title)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Popularity != matched[j].Popularity {
			return matched[i].Popularity > matched[j].Popularity
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	return &SearchResult{Items: matched, Total: total, Source: SourceCatalog}, nil
}

// Availability returns the rows for a title filtered by region.
func (s *MemoryStore) Availability(ctx context.Context, titleID, region string) ([]AvailabilityResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.titles[titleID]; !ok {
		return nil, fmt.Errorf("%w: title %s", ErrNotFound, titleID)
	}

	var rows []AvailabilityResult
	for _, row := range s.availability[titleID] {
		if region == "" || row.Region == region {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// FindByTitle resolves a display title case-insensitively. Exact
// matches come first, then prefix and substring matches.
func (s *MemoryStore) FindByTitle(ctx context.Context, title string) ([]TitleResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var exact, partial []TitleResult
	for _, t := range s.titles {
		haystack := strings.ToLower(t.Title)
		switch {
		case haystack == needle:
			exact = append(exact, t)
		case strings.Contains(haystack, needle):
			partial = append(partial, t)
		}
	}

	sortByPopularity(exact)
	sortByPopularity(partial)
	return append(exact, partial...), nil
}

// Profile returns the stored profile.
func (s *MemoryStore) Profile(ctx context.Context, profileID string) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[profileID]
	if !ok {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, profileID)
	}
	cp := *p
	return &cp, nil
}

// UpdatePreferences replaces the profile's explicit preferences.
func (s *MemoryStore) UpdatePreferences(ctx context.Context, profileID string, prefs Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profileID]
	if !ok {
		return fmt.Errorf("%w: profile %s", ErrNotFound, profileID)
	}
	p.Preferences = prefs
	return nil
}

// RecordFeedback appends one feedback signal.
func (s *MemoryStore) RecordFeedback(ctx context.Context, fb Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback[fb.ProfileID] = append(s.feedback[fb.ProfileID], fb)
	return nil
}

// FeedbackFor returns feedback newest first.
func (s *MemoryStore) FeedbackFor(ctx context.Context, profileID string) ([]Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.feedback[profileID]
	out := make([]Feedback, len(history))
	for i, fb := range history {
		out[len(history)-1-i] = fb
	}
	return out, nil
}

// TopRated returns the highest-rated titles, filtered to the given
// genres when any are provided.
func (s *MemoryStore) TopRated(ctx context.Context, genres []string, limit int) ([]TitleResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []TitleResult
	for _, title := range s.titles {
		if len(genres) == 0 || overlaps(title.Genres, genres) {
			matched = append(matched, title)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Rating != matched[j].Rating {
			return matched[i].Rating > matched[j].Rating
		}
		return matched[i].ID < matched[j].ID
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// matches applies every constraint of the query to one title.
func (s *MemoryStore) matches(title TitleResult, query SearchQuery) bool {
	if query.Title != "" &&
		!strings.EqualFold(strings.TrimSpace(query.Title), title.Title) {
		return false
	}
	if query.Text != "" &&
		!strings.Contains(strings.ToLower(title.Title), strings.ToLower(query.Text)) {
		return false
	}
	if len(query.Genres) > 0 && !overlaps(title.Genres, query.Genres) {
		return false
	}
	if query.YearMin != nil && title.Year < *query.YearMin {
		return false
	}
	if query.YearMax != nil && title.Year > *query.YearMax {
		return false
	}
	if query.RuntimeMin != nil && title.RuntimeMinutes < *query.RuntimeMin {
		return false
	}
	if query.RuntimeMax != nil && title.RuntimeMinutes > *query.RuntimeMax {
		return false
	}
	if len(query.Services) > 0 && !s.availableOn(title.ID, query.Services, query.Region) {
		return false
	}
	return true
}

// availableOn reports whether the title is on any of the services in
// the region. Callers must hold s.mu.
func (s *MemoryStore) availableOn(titleID string, services []string, region string) bool {
	for _, row := range s.availability[titleID] {
		if region != "" && row.Region != region {
			continue
		}
		for _, svc := range services {
			if strings.EqualFold(row.Service, svc) {
				return true
			}
		}
	}
	return false
}

// overlaps reports whether a and b share at least one element,
// case-insensitively.
func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}

// sortByPopularity orders titles most popular first with a stable
// ID tiebreak.
func sortByPopularity(titles []TitleResult) {
	sort.Slice(titles, func(i, j int) bool {
		if titles[i].Popularity != titles[j].Popularity {
			return titles[i].Popularity > titles[j].Popularity
		}
		return titles[i].ID < titles[j].ID
	})
}
