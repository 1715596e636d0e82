// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/concierge/internal/catalog"
	"github.com/tomtom215/concierge/internal/nlu"
)

// runAvailability resolves availability rows for each named title,
// scoped to the caller's region and, when known, their subscribed
// services. An unresolvable title contributes nothing; only a missing
// title list yields the "nothing to look up" message.
func (w *workers) runAvailability(ctx context.Context, cls *nlu.Classification, region string, subscriptions []string) (result WorkerResult) {
	started := time.Now()
	result = WorkerResult{Worker: WorkerAvailability, Success: true}
	defer func() { w.finish(&result, started, recover()) }()

	ctx, cancel := context.WithTimeout(ctx, workerTimeout)
	defer cancel()

	if cls.Entities.Region != "" {
		region = cls.Entities.Region
	}

	names := cls.Entities.Titles
	if len(names) == 0 {
		// Fall back to whatever non-entity text is left, so "where can I
		// watch Dune" without quotes still resolves.
		if cleaned := remainderTitle(cls); cleaned != "" {
			names = []string{cleaned}
		}
	}
	if len(names) == 0 {
		result.Message = "Tell me which title to check and I'll find where it's streaming."
		return result
	}

	for _, name := range names {
		matches, err := w.store.FindByTitle(ctx, name)
		if err != nil || len(matches) == 0 {
			continue
		}

		rows, err := w.store.Availability(ctx, matches[0].ID, region)
		if err != nil {
			continue
		}
		result.Availability = append(result.Availability, filterBySubscriptions(rows, subscriptions)...)
	}

	return result
}

// remainderTitle extracts a title guess from an availability query by
// stripping the question scaffolding around the name.
func remainderTitle(cls *nlu.Classification) string {
	text := cls.RawQuery
	for _, prefix := range []string{
		"where can i watch", "where can i stream", "where to watch",
		"is", "can i watch", "where is",
	} {
		if len(text) > len(prefix) && equalFoldPrefix(text, prefix) {
			text = text[len(prefix):]
			break
		}
	}
	return trimQueryNoise(text)
}

// equalFoldPrefix reports whether text starts with prefix,
// case-insensitively.
func equalFoldPrefix(text, prefix string) bool {
	return len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix)
}

// trimQueryNoise strips surrounding whitespace and trailing question
// punctuation from a title guess.
func trimQueryNoise(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimRight(text, "?!. ")
	// "is Dune on Netflix" leaves a trailing service clause; cut it.
	if idx := strings.LastIndex(strings.ToLower(text), " on "); idx > 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// filterBySubscriptions keeps rows on subscribed services when the
// caller has any subscriptions; otherwise all rows pass.
func filterBySubscriptions(rows []catalog.AvailabilityResult, subscriptions []string) []catalog.AvailabilityResult {
	if len(subscriptions) == 0 {
		return rows
	}

	var kept []catalog.AvailabilityResult
	for _, row := range rows {
		if containsFold(subscriptions, row.Service) {
			kept = append(kept, row)
		}
	}
	return kept
}
