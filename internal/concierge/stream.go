// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"context"

	"github.com/tomtom215/concierge/internal/metrics"
	"github.com/tomtom215/concierge/internal/session"
)

// EventType discriminates stream events.
type EventType string

// Stream event types. A stream emits zero or more recommendation
// events followed by exactly one terminal done or error event.
const (
	EventRecommendation EventType = "recommendation"
	EventDone           EventType = "done"
	EventError          EventType = "error"
)

// streamBuffer is the bounded channel size per stream.
const streamBuffer = 16

// Event is one element of an incremental response stream.
type Event struct {
	// Type discriminates the payload.
	Type EventType `json:"type"`

	// Recommendation is set on recommendation events.
	Recommendation *Recommendation `json:"recommendation,omitempty"`

	// Done is set on the terminal done event.
	Done *DoneEvent `json:"done,omitempty"`

	// Err is set on the terminal error event. The transport maps it to
	// a wire code.
	Err error `json:"-"`
}

// DoneEvent is the terminal summary of a successful stream.
type DoneEvent struct {
	SessionID            string              `json:"session_id"`
	Reasoning            string              `json:"reasoning"`
	FollowUpQuestions    []string            `json:"follow_up_questions"`
	TotalRecommendations int                 `json:"total_recommendations"`
	FallbackUsed         bool                `json:"fallback_used"`
	Quota                session.QuotaStatus `json:"quota"`
}

// HandleTurnStream runs one turn and emits its result incrementally:
// one recommendation event per pick in final rank order, then a single
// done event, or a single error event. The returned channel is closed
// after the terminal event. Canceling ctx stops the turn; a canceled
// turn is not persisted.
func (o *Orchestrator) HandleTurnStream(ctx context.Context, req Request) <-chan Event {
	ch := make(chan Event, streamBuffer)

	go func() {
		defer close(ch)

		resp, err := o.HandleTurn(ctx, req)
		if err != nil {
			emit(ctx, ch, Event{Type: EventError, Err: err})
			return
		}

		for i := range resp.Recommendations {
			if !emit(ctx, ch, Event{Type: EventRecommendation, Recommendation: &resp.Recommendations[i]}) {
				return
			}
		}

		emit(ctx, ch, Event{Type: EventDone, Done: &DoneEvent{
			SessionID:            resp.SessionID,
			Reasoning:            resp.Reasoning,
			FollowUpQuestions:    resp.FollowUpQuestions,
			TotalRecommendations: len(resp.Recommendations),
			FallbackUsed:         resp.FallbackUsed,
			Quota:                resp.Quota,
		}})
	}()

	return ch
}

// emit delivers one event unless the consumer is gone. Returns false
// when the stream should stop.
func emit(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		metrics.StreamEventsDropped.Inc()
		return false
	}
}
