// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/concierge/internal/catalog"
	"github.com/tomtom215/concierge/internal/metrics"
	"github.com/tomtom215/concierge/internal/safety"
)

// Per-worker call budget. A slow backend costs one worker its
// contribution, never the turn.
const workerTimeout = 3 * time.Second

// workers bundles the capability workers and their backends.
type workers struct {
	index    catalog.SearchIndex
	store    catalog.Store
	metadata catalog.MetadataProvider
	cache    *catalog.ResultCache
	scorer   *scorer
	logger   zerolog.Logger
}

// newWorkers wires the capability workers.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newWorkers(index catalog.SearchIndex, store catalog.Store, metadata catalog.MetadataProvider, cache *catalog.ResultCache, filter *safety.Filter, logger zerolog.Logger) *workers {
	return &workers{
		index:    index,
		store:    store,
		metadata: metadata,
		cache:    cache,
		scorer:   newScorer(filter),
		logger:   logger.With().Str("component", "workers").Logger(),
	}
}

// finish stamps latency and metrics on a completed worker result and
// converts panics into failed results so a worker bug degrades the turn
// instead of crashing it. Used via defer from every worker entry point.
func (w *workers) finish(result *WorkerResult, started time.Time, recovered any) {
	if recovered != nil {
		result.Success = false
		result.Error = fmt.Sprintf("worker panic: %v", recovered)
		w.logger.Error().
			Str("worker", result.Worker).
			Interface("panic", recovered).
			Msg("worker panicked")
	}

	result.Latency = time.Since(started)

	var err error
	if !result.Success {
		err = fmt.Errorf("%s", result.Error)
		w.logger.Warn().
			Str("worker", result.Worker).
			Str("error", result.Error).
			Dur("latency", result.Latency).
			Msg("worker failed")
	}
	metrics.RecordWorker(result.Worker, result.Latency, err, result.FallbackUsed)
}
