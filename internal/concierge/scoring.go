// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/concierge/internal/catalog"
	"github.com/tomtom215/concierge/internal/safety"
)

// Scoring weights. The avoid penalty dominates every positive term so a
// single avoided genre sinks a title regardless of other signal.
const (
	genreMatchWeight  = 1.0
	moodMatchWeight   = 0.5
	avoidGenrePenalty = 6.0
	subscriptionBoost = 2.0
	qualityWeight     = 1.0
	coldStartBlend    = 2.0

	highRatingThreshold = 7.5
	recentYearWindow    = 2
)

// scorer ranks candidate titles against a taste profile.
type scorer struct {
	now      func() time.Time
	sanitize func(string) string
}

// newScorer creates a scorer using the real clock. Reason strings go
// through the filter so the sanitizer switch applies to them too.
func newScorer(filter *safety.Filter) *scorer {
	return &scorer{now: time.Now, sanitize: filter.SanitizeReason}
}

// score produces a Recommendation for one candidate. The returned score
// is always finite and non-negative; titles in an avoided genre land at
// zero rather than negative.
func (s *scorer) score(title catalog.TitleResult, taste *TasteProfile, availability []catalog.AvailabilityResult) Recommendation {
	var (
		total    float64
		matched  []string
		onSub    bool
		avoided  bool
		quality  = qualityTerm(title)
	)

	for _, genre := range title.Genres {
		if containsFold(taste.AvoidGenres, genre) {
			total -= avoidGenrePenalty
			avoided = true
			continue
		}
		if containsFold(taste.Genres, genre) {
			total += genreMatchWeight
			matched = append(matched, genre)
		}
	}
	for _, mood := range title.Moods {
		if containsFold(taste.Moods, mood) {
			total += moodMatchWeight
			matched = append(matched, mood)
		}
	}

	for _, row := range availability {
		if containsFold(taste.Subscriptions, row.Service) {
			onSub = true
			break
		}
	}
	if onSub {
		total += subscriptionBoost
	}

	total += qualityWeight * quality
	if taste.ColdStart {
		total += coldStartBlend * quality
	}

	if total < 0 || avoided {
		total = 0
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		total = 0
	}

	rec := Recommendation{
		Title:              title,
		Score:              total,
		Availability:       availability,
		MatchedPreferences: matched,
		QualityFallback:    taste.ColdStart,
	}
	rec.Reason = s.reason(rec, onSub)
	return rec
}

// qualityTerm is a bounded, monotonic blend of rating and popularity
// in [0,1].
func qualityTerm(title catalog.TitleResult) float64 {
	rating := title.Rating / 10
	if rating > 1 {
		rating = 1
	}
	if rating < 0 {
		rating = 0
	}

	popularity := title.Popularity
	if popularity > 1 {
		popularity = 1
	}
	if popularity < 0 {
		popularity = 0
	}

	return 0.6*rating + 0.4*popularity
}

// reason summarizes the dominant scoring factor in one sanitized line.
func (s *scorer) reason(rec Recommendation, onSubscription bool) string {
	title := rec.Title
	var text string

	switch {
	case rec.QualityFallback:
		text = fmt.Sprintf("%s is one of the highest-rated titles right now - a strong pick while we learn your taste.", title.Title)
	case onSubscription && len(rec.Availability) > 0:
		text = fmt.Sprintf("%s is included with your %s subscription.", title.Title, rec.Availability[0].Service)
	case len(rec.MatchedPreferences) > 0:
		text = fmt.Sprintf("%s matches your taste for %s.", title.Title, joinNatural(rec.MatchedPreferences))
	case title.Rating >= highRatingThreshold:
		text = fmt.Sprintf("%s is critically acclaimed with a %.1f rating.", title.Title, title.Rating)
	case title.Year >= s.now().Year()-recentYearWindow:
		text = fmt.Sprintf("%s is a recent release from %d.", title.Title, title.Year)
	default:
		text = fmt.Sprintf("%s is popular with viewers right now.", title.Title)
	}

	return s.sanitize(text)
}

// joinNatural joins up to three items as "a, b and c".
func joinNatural(items []string) string {
	if len(items) > 3 {
		items = items[:3]
	}
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// containsFold reports whether list contains value case-insensitively.
func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
