// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/concierge/internal/config"
	"github.com/tomtom215/concierge/internal/middleware"
)

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(cfg *config.Config, handler *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints get a permissive limit so monitoring can poll
	// frequently without tripping the API limit.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
		r.Get("/status", handler.HealthStatus)
	})

	r.Route("/api/v1/concierge", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Post("/chat", handler.Chat)
		r.Get("/stream", handler.Stream)
		r.Get("/ws", handler.WebSocket)
		r.Get("/parse", handler.ParseEntities)
		r.Get("/telemetry", handler.Telemetry)
	})

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Delete("/{id}", handler.DeleteSession)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
