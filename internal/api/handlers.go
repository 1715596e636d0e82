// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/concierge/internal/catalog"
	"github.com/tomtom215/concierge/internal/concierge"
	"github.com/tomtom215/concierge/internal/logging"
	"github.com/tomtom215/concierge/internal/safety"
	"github.com/tomtom215/concierge/internal/session"
	"github.com/tomtom215/concierge/internal/validation"
)

// Handler serves the concierge HTTP endpoints.
type Handler struct {
	orch     *concierge.Orchestrator
	sessions *session.Manager
	index    catalog.SearchIndex
	logger   zerolog.Logger
	started  time.Time
}

// NewHandler creates the endpoint handler set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(orch *concierge.Orchestrator, sessions *session.Manager, index catalog.SearchIndex, logger zerolog.Logger) *Handler {
	return &Handler{
		orch:     orch,
		sessions: sessions,
		index:    index,
		logger:   logger.With().Str("component", "api").Logger(),
		started:  time.Now(),
	}
}

// ChatRequest is the request/response endpoint payload.
type ChatRequest struct {
	// Message is the user's message. Length is enforced again by the
	// safety layer; the validator catches the obvious cases first.
	Message string `json:"message" validate:"required,max=1000"`

	// SessionID continues an existing conversation.
	SessionID string `json:"session_id" validate:"omitempty,uuid4"`

	// ProfileID links the turn to a profile.
	ProfileID string `json:"profile_id" validate:"omitempty,max=128"`
}

// Chat handles one request/response turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "Request body must be valid JSON")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		rw.Error(http.StatusBadRequest, ErrCodeEmptyMessage, "Message must not be empty")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, err.Error(), err.Fields())
		return
	}

	resp, err := h.orch.HandleTurn(r.Context(), concierge.Request{
		Message:   req.Message,
		SessionID: req.SessionID,
		ProfileID: req.ProfileID,
	})
	if err != nil {
		h.writeTurnError(rw, r, err)
		return
	}

	rw.Success(resp)
}

// DeleteSession tears down a session by ID. Idempotent: unknown and
// already-expired IDs succeed.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	if id == "" {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "Session ID is required")
		return
	}

	if err := h.sessions.End(r.Context(), id); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("session_id", id).Msg("session delete failed")
		rw.InternalError()
		return
	}

	rw.NoContent()
}

// parseResponse is the entity-parse utility payload.
type parseResponse struct {
	Entities any    `json:"entities"`
	Stripped string `json:"stripped"`
}

// ParseEntities exposes the extractor and stripper for reuse by a
// plain search bar. Gated by the concierge feature switch.
func (h *Handler) ParseEntities(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if !h.orch.Enabled() {
		rw.Error(http.StatusServiceUnavailable, ErrCodeConciergeDisabled, "The concierge feature is disabled")
		return
	}

	text := r.URL.Query().Get("text")
	if strings.TrimSpace(text) == "" {
		rw.Error(http.StatusBadRequest, ErrCodeEmptyMessage, "Query parameter 'text' must not be empty")
		return
	}

	extractor := h.orch.Extractor()
	rw.Success(parseResponse{
		Entities: extractor.Extract(text),
		Stripped: extractor.Strip(text),
	})
}

// Telemetry returns the in-process turn statistics.
func (h *Handler) Telemetry(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.orch.Telemetry().Snapshot())
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// HealthReady reports readiness to serve turns.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if !h.orch.Enabled() {
		rw.Error(http.StatusServiceUnavailable, ErrCodeConciergeDisabled, "The concierge feature is disabled")
		return
	}
	rw.Success(map[string]any{"status": "ready"})
}

// HealthStatus reports the feature switches and degradation flags.
func (h *Handler) HealthStatus(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"enabled":       h.orch.Enabled(),
		"degraded":      !h.index.Healthy(),
		"fallback_used": h.orch.FallbackUsed(),
	})
}

// writeTurnError maps orchestrator failures to stable wire codes.
func (h *Handler) writeTurnError(rw *ResponseWriter, r *http.Request, err error) {
	var rejected *concierge.InputRejectedError
	var exceeded *concierge.QuotaExceededError

	switch {
	case errors.As(err, &rejected):
		code, message := inputRejectionCode(rejected.Reason)
		rw.Error(http.StatusBadRequest, code, message)
	case errors.As(err, &exceeded):
		rw.ErrorWithDetails(http.StatusTooManyRequests, ErrCodeDailyLimitExceeded,
			"Daily request limit reached", map[string]any{
				"limit":     exceeded.Status.Limit,
				"used":      exceeded.Status.Used,
				"resets_at": exceeded.Status.ResetsAt,
			})
	case errors.Is(err, concierge.ErrDisabled):
		rw.Error(http.StatusServiceUnavailable, ErrCodeConciergeDisabled, "The concierge feature is disabled")
	case errors.Is(err, session.ErrBusy):
		rw.Error(http.StatusConflict, ErrCodeSessionBusy, "A turn is already in progress for this session")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("turn failed")
		rw.InternalError()
	}
}

// inputRejectionCode maps safety reasons to wire codes.
func inputRejectionCode(reason string) (code, message string) {
	switch reason {
	case safety.ReasonEmpty:
		return ErrCodeEmptyMessage, "Message must not be empty"
	case safety.ReasonTooLong:
		return ErrCodeMessageTooLong, "Message exceeds the maximum length"
	default:
		return ErrCodeUnsafeMessage, "Message was rejected by the safety filter"
	}
}
