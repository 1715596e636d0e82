// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"context"
	"time"

	"github.com/tomtom215/concierge/internal/catalog"
	"github.com/tomtom215/concierge/internal/metrics"
	"github.com/tomtom215/concierge/internal/nlu"
)

// searchResultLimit bounds one search worker query.
const searchResultLimit = 24

// runSearch builds a structured query from the extracted entities and
// queries the full-text index, falling back to the catalog store when
// the index cannot serve. Identical queries within the cache TTL are
// answered from memory.
func (w *workers) runSearch(ctx context.Context, cls *nlu.Classification, cleanText, region string) (result WorkerResult) {
	started := time.Now()
	result = WorkerResult{Worker: WorkerSearch, Success: true}
	defer func() { w.finish(&result, started, recover()) }()

	ctx, cancel := context.WithTimeout(ctx, workerTimeout)
	defer cancel()

	query := buildSearchQuery(cls, cleanText, region)

	if cached, ok := w.cache.TryGet(query); ok {
		metrics.RecordCacheLookup("search_result", true)
		result.Titles = cached.Items
		return result
	}
	metrics.RecordCacheLookup("search_result", false)

	hits, err := w.index.Search(ctx, query)
	if err == nil {
		w.cache.Put(query, hits)
		result.Titles = hits.Items
		return result
	}

	w.logger.Warn().Err(err).Msg("search index unavailable, using catalog fallback")
	result.FallbackUsed = true

	hits, err = w.store.SearchTitles(ctx, query)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		return result
	}

	result.Titles = hits.Items
	return result
}

// buildSearchQuery maps extracted entities onto the query shape. A
// quoted title entity overrides the free-text query.
func buildSearchQuery(cls *nlu.Classification, cleanText, region string) catalog.SearchQuery {
	query := catalog.SearchQuery{
		Text:     cleanText,
		Genres:   cls.Entities.Genres,
		Services: cls.Entities.Services,
		Region:   region,
		Limit:    searchResultLimit,
	}

	if cls.Entities.Region != "" {
		query.Region = cls.Entities.Region
	}
	if len(cls.Entities.Titles) > 0 {
		query.Title = cls.Entities.Titles[0]
		query.Text = ""
	}
	if d := cls.Entities.Duration; d != nil {
		query.RuntimeMin = d.Min
		query.RuntimeMax = d.Max
	}
	if y := cls.Entities.ReleaseYear; y != nil {
		query.YearMin = y.Min
		query.YearMax = y.Max
	}

	return query
}
