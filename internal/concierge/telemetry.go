// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"sync"
	"time"
)

// Telemetry accumulates in-process turn statistics. It is injected into
// the orchestrator rather than held as a package-level singleton, so
// tests and multiple server instances each own an isolated aggregator.
// Safe for concurrent use.
type Telemetry struct {
	mu sync.Mutex

	turns          int64
	turnsByIntent  map[string]int64
	turnsByOutcome map[string]int64
	workerFailures map[string]int64
	safetyBlocks   int64
	quotaRejects   int64
	totalLatency   time.Duration
}

// TelemetrySnapshot is a point-in-time copy of the accumulated counters.
type TelemetrySnapshot struct {
	// Turns is the number of completed turns since the last reset.
	Turns int64 `json:"turns"`

	// TurnsByIntent counts turns per classified intent.
	TurnsByIntent map[string]int64 `json:"turns_by_intent"`

	// TurnsByOutcome counts turns per outcome ("ok", "degraded",
	// "blocked", "error").
	TurnsByOutcome map[string]int64 `json:"turns_by_outcome"`

	// WorkerFailures counts failed worker executions per worker.
	WorkerFailures map[string]int64 `json:"worker_failures"`

	// SafetyBlocks counts inputs rejected by the safety filter.
	SafetyBlocks int64 `json:"safety_blocks"`

	// QuotaRejections counts turns rejected by the daily quota.
	QuotaRejections int64 `json:"quota_rejections"`

	// AvgTurnLatencyMs is the mean turn latency in milliseconds.
	AvgTurnLatencyMs float64 `json:"avg_turn_latency_ms"`
}

// NewTelemetry creates an empty aggregator.
func NewTelemetry() *Telemetry {
	return &Telemetry{
		turnsByIntent:  make(map[string]int64),
		turnsByOutcome: make(map[string]int64),
		workerFailures: make(map[string]int64),
	}
}

// RecordTurn records one completed turn.
func (t *Telemetry) RecordTurn(intent, outcome string, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.turns++
	t.turnsByIntent[intent]++
	t.turnsByOutcome[outcome]++
	t.totalLatency += latency
}

// RecordWorkerFailure records one failed worker execution.
func (t *Telemetry) RecordWorkerFailure(worker string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.workerFailures[worker]++
}

// RecordSafetyBlock records one rejected input.
func (t *Telemetry) RecordSafetyBlock() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.safetyBlocks++
}

// RecordQuotaRejection records one quota rejection.
func (t *Telemetry) RecordQuotaRejection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.quotaRejects++
}

// Snapshot returns a copy of the current counters.
func (t *Telemetry) Snapshot() TelemetrySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := TelemetrySnapshot{
		Turns:           t.turns,
		TurnsByIntent:   copyCounts(t.turnsByIntent),
		TurnsByOutcome:  copyCounts(t.turnsByOutcome),
		WorkerFailures:  copyCounts(t.workerFailures),
		SafetyBlocks:    t.safetyBlocks,
		QuotaRejections: t.quotaRejects,
	}
	if t.turns > 0 {
		snap.AvgTurnLatencyMs = float64(t.totalLatency.Milliseconds()) / float64(t.turns)
	}
	return snap
}

// Reset zeroes all counters.
func (t *Telemetry) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.turns = 0
	t.turnsByIntent = make(map[string]int64)
	t.turnsByOutcome = make(map[string]int64)
	t.workerFailures = make(map[string]int64)
	t.safetyBlocks = 0
	t.quotaRejects = 0
	t.totalLatency = 0
}

// copyCounts clones a counter map.
func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
