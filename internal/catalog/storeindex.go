// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package catalog

import "context"

// StoreIndex serves searches straight from the catalog store. It
// stands in for the dedicated index when none is configured, so the
// rest of the system never special-cases a missing index.
type StoreIndex struct {
	store Store
}

// NewStoreIndex wraps store as a SearchIndex.
func NewStoreIndex(store Store) *StoreIndex {
	return &StoreIndex{store: store}
}

// Search implements SearchIndex.
func (s *StoreIndex) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	return s.store.SearchTitles(ctx, query)
}

// Healthy implements SearchIndex. The local store has no failure mode
// short of process death.
func (s *StoreIndex) Healthy() bool { return true }
