// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/concierge/internal/concierge"
	"github.com/tomtom215/concierge/internal/logging"
	"github.com/tomtom215/concierge/internal/metrics"
)

const (
	wsWriteWait      = 10 * time.Second
	wsReadWait       = 5 * time.Minute
	wsMaxMessageSize = 4 * 1024 // requests are small chat payloads
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// wsFrame is the wire shape of every server-to-client message. The
// same typed events as the SSE endpoint, wrapped with their type tag.
type wsFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WebSocket serves the streaming endpoint over a WebSocket connection.
// Unlike SSE, the connection is conversational: each client JSON frame
// is one turn request, and the server answers with the turn's event
// sequence before reading the next request. The connection closes when
// the client disconnects or sends a malformed frame.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close() //nolint:errcheck // best-effort cleanup

	metrics.TrackStream(true)
	defer metrics.TrackStream(false)

	conn.SetReadLimit(wsMaxMessageSize)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(wsReadWait)); err != nil {
			return
		}

		var req ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}

		if !h.serveWSTurn(r, conn, req) {
			return
		}
	}
}

// serveWSTurn runs one turn and writes its event sequence. Returns
// false when the connection is no longer usable.
func (h *Handler) serveWSTurn(r *http.Request, conn *websocket.Conn, req ChatRequest) bool {
	events := h.orch.HandleTurnStream(r.Context(), concierge.Request{
		Message:   req.Message,
		SessionID: req.SessionID,
		ProfileID: req.ProfileID,
	})

	for ev := range events {
		var frame wsFrame
		switch ev.Type {
		case concierge.EventRecommendation:
			frame = wsFrame{Type: string(ev.Type), Data: ev.Recommendation}
		case concierge.EventDone:
			frame = wsFrame{Type: string(ev.Type), Data: ev.Done}
		case concierge.EventError:
			frame = wsFrame{Type: string(ev.Type), Data: h.streamErrorFor(ev.Err)}
		default:
			continue
		}

		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
			return false
		}
		if err := conn.WriteJSON(frame); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket write failed")
			return false
		}
	}
	return true
}
