// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"math"
	"strings"
	"testing"

	"github.com/tomtom215/concierge/internal/catalog"
	"github.com/tomtom215/concierge/internal/safety"
)

func testScorer() *scorer {
	return newScorer(safety.NewFilter(safety.DefaultConfig()))
}

func TestScoreAvoidedGenreDominates(t *testing.T) {
	s := testScorer()
	taste := &TasteProfile{
		Genres:        []string{"Horror", "Thriller"},
		AvoidGenres:   []string{"Horror"},
		Subscriptions: []string{"Netflix"},
	}

	title := catalog.TitleResult{
		ID: "t1", Title: "Scary Sequel",
		Genres: []string{"Horror", "Thriller"},
		Rating: 9.5, Popularity: 1.0,
	}
	availability := []catalog.AvailabilityResult{{TitleID: "t1", Service: "Netflix", Region: "US"}}

	rec := s.score(title, taste, availability)
	if rec.Score != 0 {
		t.Errorf("Score = %v, want 0: an avoided genre must sink the title despite every other signal", rec.Score)
	}
}

func TestScoreSubscriptionBoostOutranksQuality(t *testing.T) {
	s := testScorer()
	taste := &TasteProfile{Subscriptions: []string{"Netflix"}}

	onService := s.score(
		catalog.TitleResult{ID: "a", Title: "On My Service", Rating: 6.0, Popularity: 0.3},
		taste,
		[]catalog.AvailabilityResult{{TitleID: "a", Service: "Netflix", Region: "US"}},
	)
	offService := s.score(
		catalog.TitleResult{ID: "b", Title: "Elsewhere", Rating: 8.5, Popularity: 0.9},
		taste,
		nil,
	)

	if onService.Score <= offService.Score {
		t.Errorf("on-service score %v should beat off-service %v", onService.Score, offService.Score)
	}
}

func TestScoreColdStartQualityBlend(t *testing.T) {
	s := testScorer()
	title := catalog.TitleResult{ID: "t1", Title: "Classic", Rating: 9.0, Popularity: 0.8}

	warm := s.score(title, &TasteProfile{Subscriptions: []string{"Max"}}, nil)
	cold := s.score(title, &TasteProfile{ColdStart: true}, nil)

	if cold.Score <= warm.Score {
		t.Errorf("cold-start score %v should exceed warm score %v for the same quality", cold.Score, warm.Score)
	}
	if !cold.QualityFallback {
		t.Error("cold-start recommendation must carry the quality fallback marker")
	}
	if !strings.Contains(cold.Reason, "highest-rated") {
		t.Errorf("cold-start reason = %q, want quality-blend wording", cold.Reason)
	}
}

func TestScoreAlwaysFiniteNonNegative(t *testing.T) {
	s := testScorer()
	taste := &TasteProfile{AvoidGenres: []string{"Drama", "Horror", "Action"}}

	titles := []catalog.TitleResult{
		{ID: "a", Genres: []string{"Drama", "Horror", "Action"}},
		{ID: "b", Rating: -5, Popularity: -1},
		{ID: "c", Rating: 100, Popularity: 100},
		{ID: "d"},
	}
	for _, title := range titles {
		rec := s.score(title, taste, nil)
		if rec.Score < 0 || math.IsNaN(rec.Score) || math.IsInf(rec.Score, 0) {
			t.Errorf("score(%s) = %v, want finite and non-negative", title.ID, rec.Score)
		}
	}
}

func TestScoreMatchedPreferencesRecorded(t *testing.T) {
	s := testScorer()
	taste := &TasteProfile{
		Genres:        []string{"Science Fiction"},
		Moods:         []string{"comedy"},
		Subscriptions: []string{"Netflix"},
	}

	rec := s.score(catalog.TitleResult{
		ID: "t1", Title: "Fun in Space",
		Genres: []string{"Science Fiction"},
		Moods:  []string{"comedy"},
	}, taste, nil)

	if len(rec.MatchedPreferences) != 2 {
		t.Errorf("MatchedPreferences = %v, want both genre and mood matches", rec.MatchedPreferences)
	}
	if !strings.Contains(rec.Reason, "matches your taste") {
		t.Errorf("Reason = %q, want preference-match wording", rec.Reason)
	}
}

func TestReasonIsSanitizedAndBounded(t *testing.T) {
	s := testScorer()

	rec := s.score(catalog.TitleResult{
		ID:    "t1",
		Title: "<script>alert(1)</script>" + strings.Repeat("Long Title ", 80),
	}, &TasteProfile{ColdStart: true}, nil)

	if strings.Contains(rec.Reason, "<script>") {
		t.Errorf("Reason = %q, want HTML stripped", rec.Reason)
	}
	if len(rec.Reason) > 500 {
		t.Errorf("Reason length = %d, want <= 500", len(rec.Reason))
	}
}

func TestReasonHonorsSanitizerSwitch(t *testing.T) {
	cfg := safety.DefaultConfig()
	cfg.SanitizerEnabled = false
	s := newScorer(safety.NewFilter(cfg))

	rec := s.score(catalog.TitleResult{
		ID:    "t1",
		Title: "A <em>Stylized</em> Name",
	}, &TasteProfile{ColdStart: true}, nil)

	if !strings.Contains(rec.Reason, "<em>") {
		t.Errorf("Reason = %q, want markup preserved with the sanitizer off", rec.Reason)
	}
}
