// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"context"
	"time"

	"github.com/tomtom215/concierge/internal/catalog"
)

// candidatePoolSize is how many catalog picks feed the scorer when no
// prior search results exist.
const candidatePoolSize = 24

// enrichBudget caps best-effort metadata lookups per turn.
const enrichBudget = 4

// runRecommendations is the ranking core and the universal fallback:
// it scores prior search hits when the turn produced any, otherwise it
// generates picks straight from the catalog, then applies diversity
// sampling. Every surviving candidate carries a sanitized reason.
func (w *workers) runRecommendations(ctx context.Context, candidates []catalog.TitleResult, taste *TasteProfile, region string) (result WorkerResult) {
	started := time.Now()
	result = WorkerResult{Worker: WorkerRecommendations, Success: true}
	defer func() { w.finish(&result, started, recover()) }()

	ctx, cancel := context.WithTimeout(ctx, workerTimeout)
	defer cancel()

	if taste == nil {
		taste = coldStartTaste(nil)
	}

	if len(candidates) == 0 {
		picks, err := w.store.TopRated(ctx, taste.Genres, candidatePoolSize)
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			return result
		}
		candidates = picks
		result.FallbackUsed = true
	}

	w.enrichSparse(ctx, candidates)

	scored := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		rows := w.availabilityFor(ctx, candidates[i].ID, region)
		scored = append(scored, w.scorer.score(candidates[i], taste, rows))
	}

	result.Recommendations = diversify(scored)
	return result
}

// availabilityFor fetches availability rows, tolerating lookup failure.
func (w *workers) availabilityFor(ctx context.Context, titleID, region string) []catalog.AvailabilityResult {
	if region == "" {
		return nil
	}
	rows, err := w.store.Availability(ctx, titleID, region)
	if err != nil {
		return nil
	}
	return rows
}

// enrichSparse fills metadata gaps on candidates missing a rating, up
// to the per-turn budget. Enrichment is best-effort only.
func (w *workers) enrichSparse(ctx context.Context, candidates []catalog.TitleResult) {
	if w.metadata == nil {
		return
	}

	budget := enrichBudget
	for i := range candidates {
		if budget == 0 {
			return
		}
		if candidates[i].Rating > 0 {
			continue
		}
		if err := w.metadata.Enrich(ctx, &candidates[i]); err != nil {
			w.logger.Debug().Err(err).Str("title_id", candidates[i].ID).Msg("metadata enrichment skipped")
		}
		budget--
	}
}
