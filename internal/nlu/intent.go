// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package nlu

import (
	"strings"
)

// Intent is the closed set of conversational intents. Dispatch on Intent
// is exhaustive; adding a value requires updating the orchestrator's
// worker table.
type Intent int

const (
	// IntentSearch is the generic fallback: find content matching constraints.
	IntentSearch Intent = iota
	// IntentAvailability asks where a title can be watched.
	IntentAvailability
	// IntentRecommendations asks for suggestions.
	IntentRecommendations
	// IntentPreferences states likes or dislikes.
	IntentPreferences
	// IntentSocial involves friends or shared watching.
	IntentSocial
)

// String returns the wire name of the intent.
func (i Intent) String() string {
	switch i {
	case IntentSearch:
		return "search"
	case IntentAvailability:
		return "availability"
	case IntentRecommendations:
		return "recommendations"
	case IntentPreferences:
		return "preferences"
	case IntentSocial:
		return "social"
	default:
		return "unknown"
	}
}

// Fixed per-rule confidence scores. These are not calibrated
// probabilities; callers may only compare them ordinally.
const (
	confidenceAvailability    = 0.9
	confidenceRecommendations = 0.85
	confidencePreferences     = 0.8
	confidenceSocial          = 0.75
	confidenceSearchFallback  = 0.4
)

// Classification is the immutable result of intent classification.
type Classification struct {
	// Intent is the classified intent.
	Intent Intent `json:"intent"`

	// Confidence is the fixed score of the matched rule, in [0,1].
	Confidence float64 `json:"confidence"`

	// Entities are the structured entities extracted from the query.
	Entities ExtractedEntities `json:"entities"`

	// RawQuery is the trimmed input text.
	RawQuery string `json:"raw_query"`
}

// Rule phrase tables, checked in priority order. The first matching rule
// wins regardless of where its phrase appears in the text.
var (
	availabilityPhrases = []string{
		"where can i watch",
		"where can we watch",
		"where do i watch",
		"where to watch",
		"where can i stream",
		"where to stream",
		"where is",
		"is it available",
		"available on",
		"available in",
		"available anywhere",
		"can i stream",
		"streaming on",
		"which service",
		"what service",
	}

	recommendationPhrases = []string{
		"recommend",
		"recommendation",
		"recommendations",
		"what should i watch",
		"what should we watch",
		"what to watch",
		"suggest",
		"suggestion",
		"suggestions",
		"something like",
		"anything like",
		"similar to",
		"movies like",
		"shows like",
		"any good",
		"in the mood for",
	}

	preferencePhrases = []string{
		"i love",
		"i like",
		"i really like",
		"i enjoy",
		"i hate",
		"i dislike",
		"i can't stand",
		"i cannot stand",
		"i prefer",
		"i'm into",
		"i am into",
		"my favorite",
		"my favourite",
		"not a fan of",
	}

	socialPhrases = []string{
		"friend",
		"friends",
		"watch party",
		"watch together",
		"watch with",
		"my partner",
		"my family",
		"group watch",
	}
)

// Classifier assigns an intent to free-text queries using a fixed
// priority rule table. It owns an Extractor so classifications always
// carry the extracted entities.
type Classifier struct {
	extractor *Extractor
}

// NewClassifier creates a classifier backed by the given extractor.
func NewClassifier(extractor *Extractor) *Classifier {
	return &Classifier{extractor: extractor}
}

// Classify determines the intent of text. Rules are checked by priority,
// not by position in the text: availability beats recommendations beats
// preferences beats social; anything else falls back to search.
func (c *Classifier) Classify(text string) Classification {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	entities := c.extractor.Extract(trimmed)

	result := Classification{
		Intent:     IntentSearch,
		Confidence: confidenceSearchFallback,
		Entities:   entities,
		RawQuery:   trimmed,
	}

	switch {
	case containsAny(lower, availabilityPhrases):
		result.Intent = IntentAvailability
		result.Confidence = confidenceAvailability
	case containsAny(lower, recommendationPhrases):
		result.Intent = IntentRecommendations
		result.Confidence = confidenceRecommendations
	case containsAny(lower, preferencePhrases):
		result.Intent = IntentPreferences
		result.Confidence = confidencePreferences
	case containsAny(lower, socialPhrases):
		result.Intent = IntentSocial
		result.Confidence = confidenceSocial
	}

	return result
}

// containsAny reports whether any phrase occurs in text at a word boundary.
func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if indexWord(text, phrase) >= 0 {
			return true
		}
	}
	return false
}
