// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"time"

	"github.com/tomtom215/concierge/internal/catalog"
	"github.com/tomtom215/concierge/internal/nlu"
	"github.com/tomtom215/concierge/internal/session"
)

// Worker names used in results, logs, and metrics.
const (
	WorkerSearch          = "search"
	WorkerAvailability    = "availability"
	WorkerPreferences     = "preferences"
	WorkerRecommendations = "recommendations"
)

// Request is one user turn entering the orchestrator.
type Request struct {
	// Message is the raw user message.
	Message string

	// SessionID continues an existing conversation when set. An empty or
	// expired ID transparently starts a new session.
	SessionID string

	// ProfileID links the turn to a user profile, when known.
	ProfileID string
}

// WorkerResult is the uniform envelope every capability worker returns.
// A failed worker contributes nothing; it never fails the turn.
type WorkerResult struct {
	// Worker is the producing worker's name.
	Worker string

	// Success is false when the worker could not produce data.
	Success bool

	// Error holds the failure description when Success is false.
	Error string

	// Latency is the worker's wall-clock duration.
	Latency time.Duration

	// FallbackUsed is true when the worker served from a degraded path.
	FallbackUsed bool

	// Titles are search hits (Search worker).
	Titles []catalog.TitleResult

	// Availability rows (Availability worker).
	Availability []catalog.AvailabilityResult

	// Message is an optional worker-level note, e.g. "no titles named".
	Message string

	// Preferences is the resolved taste profile (Preferences worker).
	Preferences *TasteProfile

	// Recommendations are the final scored picks (Recommendations worker).
	Recommendations []Recommendation
}

// TasteProfile is the Preferences worker's contribution: explicit or
// inferred taste plus the cold-start signal that drives the quality
// blend downstream.
type TasteProfile struct {
	// Genres the profile likes, explicit or inferred from feedback.
	Genres []string

	// Moods the profile likes.
	Moods []string

	// AvoidGenres are never recommended.
	AvoidGenres []string

	// Subscriptions are the profile's active services.
	Subscriptions []string

	// ColdStart is true when the profile has no active subscriptions,
	// regardless of whether preferences exist.
	ColdStart bool

	// Inferred is true when Genres came from feedback rather than
	// explicit settings.
	Inferred bool
}

// Recommendation is one scored, sanitized pick.
type Recommendation struct {
	// Title is the recommended catalog title.
	Title catalog.TitleResult `json:"title"`

	// Score is the final ranking score. Always finite and non-negative.
	Score float64 `json:"score"`

	// Reason is the sanitized human-readable explanation.
	Reason string `json:"reason"`

	// Availability rows attached when the region is known.
	Availability []catalog.AvailabilityResult `json:"availability,omitempty"`

	// MatchedPreferences are the preference genres/moods this title hit.
	MatchedPreferences []string `json:"matched_preferences,omitempty"`

	// QualityFallback marks cold-start picks ranked by quality rather
	// than personalization.
	QualityFallback bool `json:"quality_fallback,omitempty"`
}

// Response is the aggregated outcome of one turn.
type Response struct {
	// SessionID is stable across the conversation.
	SessionID string `json:"session_id"`

	// TurnNumber is the conversation turn this response closed.
	TurnNumber int `json:"turn_number"`

	// Intent is the classified intent of the user message.
	Intent nlu.Intent `json:"intent"`

	// Reasoning is the sanitized top-level explanation.
	Reasoning string `json:"reasoning"`

	// Recommendations in final rank order, diversity-sampled.
	Recommendations []Recommendation `json:"recommendations"`

	// Availability rows, present for availability turns.
	Availability []catalog.AvailabilityResult `json:"availability,omitempty"`

	// FollowUpQuestions are 2-4 templated suggestions.
	FollowUpQuestions []string `json:"follow_up_questions"`

	// Quota is the caller's standing after this turn.
	Quota session.QuotaStatus `json:"quota"`

	// Degraded is true when at least one worker failed or fell back.
	Degraded bool `json:"degraded,omitempty"`

	// FallbackUsed is true when the deterministic rules path produced
	// the reasoning (no generation provider involved).
	FallbackUsed bool `json:"fallback_used,omitempty"`
}
