// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/concierge/internal/concierge"
	"github.com/tomtom215/concierge/internal/logging"
	"github.com/tomtom215/concierge/internal/metrics"
	"github.com/tomtom215/concierge/internal/session"
)

// streamError is the wire shape of a terminal error event.
type streamError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Stream handles the incremental endpoint over Server-Sent Events: one
// recommendation event per pick in final rank order, then a terminal
// done or error event, after which the connection closes. Closing the
// client connection cancels the in-flight turn.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		NewResponseWriter(w, r).InternalError()
		return
	}

	query := r.URL.Query()
	req := concierge.Request{
		Message:   query.Get("message"),
		SessionID: query.Get("session_id"),
		ProfileID: query.Get("profile_id"),
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	metrics.TrackStream(true)
	defer metrics.TrackStream(false)

	if strings.TrimSpace(req.Message) == "" {
		writeSSE(w, flusher, string(concierge.EventError), streamError{
			Code:    ErrCodeEmptyMessage,
			Message: "Query parameter 'message' must not be empty",
		})
		return
	}

	for ev := range h.orch.HandleTurnStream(r.Context(), req) {
		switch ev.Type {
		case concierge.EventRecommendation:
			writeSSE(w, flusher, string(ev.Type), ev.Recommendation)
		case concierge.EventDone:
			writeSSE(w, flusher, string(ev.Type), ev.Done)
		case concierge.EventError:
			writeSSE(w, flusher, string(ev.Type), h.streamErrorFor(ev.Err))
		}
	}
}

// streamErrorFor maps a turn error onto the terminal error payload.
func (h *Handler) streamErrorFor(err error) streamError {
	var rejected *concierge.InputRejectedError
	var exceeded *concierge.QuotaExceededError

	switch {
	case errors.As(err, &rejected):
		code, message := inputRejectionCode(rejected.Reason)
		return streamError{Code: code, Message: message}
	case errors.As(err, &exceeded):
		return streamError{
			Code:    ErrCodeDailyLimitExceeded,
			Message: "Daily request limit reached",
			Details: map[string]any{
				"limit":     exceeded.Status.Limit,
				"resets_at": exceeded.Status.ResetsAt,
			},
		}
	case errors.Is(err, concierge.ErrDisabled):
		return streamError{Code: ErrCodeConciergeDisabled, Message: "The concierge feature is disabled"}
	case errors.Is(err, session.ErrBusy):
		return streamError{Code: ErrCodeSessionBusy, Message: "A turn is already in progress for this session"}
	default:
		h.logger.Error().Err(err).Msg("stream turn failed")
		return streamError{Code: ErrCodeInternalError, Message: "An internal error occurred"}
	}
}

// writeSSE emits one event in wire format and flushes it immediately.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger := logging.Logger()
		logger.Error().Err(err).Str("event", event).Msg("failed to encode stream event")
		return
	}

	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
