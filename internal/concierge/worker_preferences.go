// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tomtom215/concierge/internal/catalog"
)

// runPreferences resolves the caller's taste profile. A missing or
// unknown profile short-circuits to the cold-start default; a profile
// with no explicit genres gets a ranked list inferred from recent
// feedback. ColdStart is driven by subscriptions alone.
func (w *workers) runPreferences(ctx context.Context, profileID string, sessionSubscriptions []string) (result WorkerResult) {
	started := time.Now()
	result = WorkerResult{Worker: WorkerPreferences, Success: true}
	defer func() { w.finish(&result, started, recover()) }()

	ctx, cancel := context.WithTimeout(ctx, workerTimeout)
	defer cancel()

	if profileID == "" {
		result.Preferences = coldStartTaste(sessionSubscriptions)
		return result
	}

	profile, err := w.store.Profile(ctx, profileID)
	if errors.Is(err, catalog.ErrNotFound) {
		result.Preferences = coldStartTaste(sessionSubscriptions)
		return result
	}
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		result.Preferences = coldStartTaste(sessionSubscriptions)
		return result
	}

	taste := &TasteProfile{
		Genres:        profile.Preferences.Genres,
		Moods:         profile.Preferences.Moods,
		AvoidGenres:   profile.Preferences.AvoidGenres,
		Subscriptions: profile.Subscriptions,
		ColdStart:     len(profile.Subscriptions) == 0,
	}

	if len(taste.Genres) == 0 {
		if inferred := w.inferGenres(ctx, profileID); len(inferred) > 0 {
			taste.Genres = inferred
			taste.Inferred = true
		}
	}

	result.Preferences = taste
	return result
}

// coldStartTaste is the fixed default for callers without a profile.
func coldStartTaste(subscriptions []string) *TasteProfile {
	return &TasteProfile{
		Subscriptions: subscriptions,
		ColdStart:     len(subscriptions) == 0,
	}
}

// inferGenres ranks genres from like/dislike feedback: likes add,
// dislikes subtract, net-negative genres are excluded entirely.
func (w *workers) inferGenres(ctx context.Context, profileID string) []string {
	history, err := w.store.FeedbackFor(ctx, profileID)
	if err != nil || len(history) == 0 {
		return nil
	}

	net := make(map[string]int)
	for _, fb := range history {
		delta := 1
		if !fb.Liked {
			delta = -1
		}
		for _, genre := range fb.Genres {
			net[genre] += delta
		}
	}

	type ranked struct {
		genre string
		score int
	}
	var positives []ranked
	for genre, score := range net {
		if score > 0 {
			positives = append(positives, ranked{genre, score})
		}
	}

	sort.Slice(positives, func(i, j int) bool {
		if positives[i].score != positives[j].score {
			return positives[i].score > positives[j].score
		}
		return positives[i].genre < positives[j].genre
	})

	genres := make([]string, len(positives))
	for i, p := range positives {
		genres[i] = p.genre
	}
	return genres
}
