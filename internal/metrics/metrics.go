// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

// Package metrics exposes the Prometheus instrumentation for the
// concierge: turn latency and outcomes, per-worker durations, quota
// rejections, safety blocks, cache efficiency, and stream activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Turn Metrics
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "concierge_turn_duration_seconds",
			Help:    "End-to-end turn duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"intent", "outcome"}, // outcome: "ok", "degraded", "blocked", "error"
	)

	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_turns_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"intent", "outcome"},
	)

	// Worker Metrics
	WorkerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "concierge_worker_duration_seconds",
			Help:    "Capability worker duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"worker"}, // "search", "availability", "preferences", "recommendations"
	)

	WorkerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_worker_errors_total",
			Help: "Total number of worker failures",
		},
		[]string{"worker"},
	)

	WorkerFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_worker_fallbacks_total",
			Help: "Total number of degraded worker executions (fallback path used)",
		},
		[]string{"worker"},
	)

	// Safety Metrics
	SafetyBlocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_safety_blocks_total",
			Help: "Total number of inputs rejected by the safety filter",
		},
		[]string{"reason"}, // "empty", "too_long", "injection", "obfuscation"
	)

	OutputRedactions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "concierge_output_redactions_total",
			Help: "Total number of responses with redacted content",
		},
	)

	// Quota Metrics
	QuotaRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_quota_rejections_total",
			Help: "Total number of turns rejected by the daily quota",
		},
		[]string{"tier"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "search_result"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Stream Metrics
	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "concierge_active_streams",
			Help: "Current number of open event streams (SSE and WebSocket)",
		},
	)

	StreamEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "concierge_stream_events_dropped_total",
			Help: "Total number of stream events dropped on slow consumers",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "concierge_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "concierge_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Session Metrics
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "concierge_sessions_created_total",
			Help: "Total number of sessions created",
		},
	)

	SessionsBusy = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "concierge_sessions_busy_total",
			Help: "Total number of turns rejected because one was already in flight",
		},
	)
)

// RecordTurn records one completed turn with its classified intent and
// outcome.
func RecordTurn(intent, outcome string, duration time.Duration) {
	TurnDuration.WithLabelValues(intent, outcome).Observe(duration.Seconds())
	TurnsTotal.WithLabelValues(intent, outcome).Inc()
}

// RecordWorker records one worker execution.
func RecordWorker(worker string, duration time.Duration, err error, fallback bool) {
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	if err != nil {
		WorkerErrors.WithLabelValues(worker).Inc()
	}
	if fallback {
		WorkerFallbacks.WithLabelValues(worker).Inc()
	}
}

// RecordSafetyBlock records one rejected input.
func RecordSafetyBlock(reason string) {
	SafetyBlocks.WithLabelValues(reason).Inc()
}

// RecordQuotaRejection records one quota rejection for a tier.
func RecordQuotaRejection(tier string) {
	QuotaRejections.WithLabelValues(tier).Inc()
}

// RecordCacheLookup records one cache hit or miss.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// TrackStream adjusts the active stream gauge.
func TrackStream(open bool) {
	if open {
		ActiveStreams.Inc()
		return
	}
	ActiveStreams.Dec()
}
