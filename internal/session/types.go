// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package session

import (
	"time"
)

// Role identifies the author of a conversation turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one utterance within a conversation. Turns are append-only.
type Turn struct {
	// Role is RoleUser or RoleAssistant.
	Role string `json:"role"`

	// Text is the utterance text.
	Text string `json:"text"`

	// Intent is the classified intent of the user turn that produced
	// this exchange.
	Intent string `json:"intent,omitempty"`

	// Timestamp is when the turn was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// Context is the per-conversation state owned by the Manager. Workers
// receive read-only snapshots.
type Context struct {
	// ConversationID is the stable conversation key.
	ConversationID string `json:"conversation_id"`

	// TurnNumber increases strictly with each completed exchange.
	TurnNumber int `json:"turn_number"`

	// ProfileID links the conversation to a user profile, when known.
	ProfileID string `json:"profile_id,omitempty"`

	// Region is the ISO country code governing availability lookups.
	Region string `json:"region,omitempty"`

	// Subscriptions are the services the profile subscribes to.
	Subscriptions []string `json:"subscriptions,omitempty"`

	// History holds recent turns, oldest first. Bounded; oldest entries
	// are evicted past the configured cap.
	History []Turn `json:"history,omitempty"`
}

// Session wraps a conversation context with its lifecycle metadata.
type Session struct {
	// ID is the session identifier returned to the caller.
	ID string `json:"id"`

	// Context is the conversation state.
	Context Context `json:"context"`

	// CreatedAt is when the session was first created.
	CreatedAt time.Time `json:"created_at"`

	// LastActive is refreshed on every exchange; sessions idle past the
	// configured TTL expire.
	LastActive time.Time `json:"last_active"`
}

// Tier is a usage class with a distinct daily request allowance.
type Tier string

const (
	// TierFree is the default tier with a limited daily allowance.
	TierFree Tier = "free"

	// TierPremium has an unlimited daily allowance.
	TierPremium Tier = "premium"
)

// QuotaStatus reports daily quota standing for one subject and tier.
type QuotaStatus struct {
	// Allowed is false once the daily limit is reached.
	Allowed bool `json:"allowed"`

	// Used is the number of requests consumed today.
	Used int64 `json:"used"`

	// Limit is the daily allowance. Zero means unlimited.
	Limit int64 `json:"limit"`

	// Remaining is Limit-Used, never negative. Zero when unlimited.
	Remaining int64 `json:"remaining"`

	// Tier is the quota tier consulted.
	Tier Tier `json:"tier"`

	// ResetsAt is the next daily reset boundary (UTC midnight).
	ResetsAt time.Time `json:"resets_at"`
}
