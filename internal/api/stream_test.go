// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/concierge/internal/concierge"
	"github.com/tomtom215/concierge/internal/session"
)

// sseEvent is one parsed Server-Sent Event.
type sseEvent struct {
	name string
	data string
}

// parseSSE splits a raw event-stream body into its events.
func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()

	var events []sseEvent
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data = strings.TrimPrefix(line, "data: ")
			}
		}
		if ev.name == "" {
			t.Fatalf("event block without name: %q", block)
		}
		events = append(events, ev)
	}
	return events
}

func getStream(t *testing.T, router http.Handler, query string) (*httptest.ResponseRecorder, []sseEvent) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/concierge/stream?"+query, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec, parseSSE(t, rec.Body.String())
}

func TestStreamEventSequence(t *testing.T) {
	router := newTestRouter(t, enabledConfig(), session.DefaultConfig())

	rec, events := getStream(t, router, "message=recommend+a+sci-fi+movie")
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}
	if len(events) == 0 {
		t.Fatal("no events emitted")
	}

	last := events[len(events)-1]
	if last.name != string(concierge.EventDone) {
		t.Fatalf("terminal event = %q, want done", last.name)
	}
	for _, ev := range events[:len(events)-1] {
		if ev.name != string(concierge.EventRecommendation) {
			t.Errorf("non-terminal event = %q, want recommendation", ev.name)
		}
	}

	var done concierge.DoneEvent
	if err := json.Unmarshal([]byte(last.data), &done); err != nil {
		t.Fatalf("decode done event: %v", err)
	}
	if done.SessionID == "" {
		t.Error("done.session_id missing")
	}
	if done.TotalRecommendations != len(events)-1 {
		t.Errorf("total_recommendations = %d, want %d emitted", done.TotalRecommendations, len(events)-1)
	}
	if len(done.FollowUpQuestions) < 2 {
		t.Errorf("follow_up_questions = %d, want at least 2", len(done.FollowUpQuestions))
	}
}

func TestStreamEmptyMessage(t *testing.T) {
	router := newTestRouter(t, enabledConfig(), session.DefaultConfig())

	_, events := getStream(t, router, "message=")
	if len(events) != 1 || events[0].name != string(concierge.EventError) {
		t.Fatalf("events = %+v, want single error event", events)
	}

	var wire streamError
	if err := json.Unmarshal([]byte(events[0].data), &wire); err != nil {
		t.Fatalf("decode error event: %v", err)
	}
	if wire.Code != ErrCodeEmptyMessage {
		t.Errorf("code = %q, want %s", wire.Code, ErrCodeEmptyMessage)
	}
}

func TestStreamDisabledFeature(t *testing.T) {
	router := newTestRouter(t, concierge.Config{Enabled: false}, session.DefaultConfig())

	_, events := getStream(t, router, "message=anything")
	if len(events) != 1 || events[0].name != string(concierge.EventError) {
		t.Fatalf("events = %+v, want single error event", events)
	}

	var wire streamError
	if err := json.Unmarshal([]byte(events[0].data), &wire); err != nil {
		t.Fatalf("decode error event: %v", err)
	}
	if wire.Code != ErrCodeConciergeDisabled {
		t.Errorf("code = %q, want %s", wire.Code, ErrCodeConciergeDisabled)
	}
}

func TestStreamSessionContinuity(t *testing.T) {
	router := newTestRouter(t, enabledConfig(), session.DefaultConfig())

	_, events := getStream(t, router, "message=recommend+a+movie")
	var first concierge.DoneEvent
	if err := json.Unmarshal([]byte(events[len(events)-1].data), &first); err != nil {
		t.Fatalf("decode done event: %v", err)
	}

	_, events = getStream(t, router, "message=something+darker&session_id="+first.SessionID)
	var second concierge.DoneEvent
	if err := json.Unmarshal([]byte(events[len(events)-1].data), &second); err != nil {
		t.Fatalf("decode done event: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session ID changed across stream turns: %q vs %q", second.SessionID, first.SessionID)
	}
}
