// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Collector runs one store garbage collection cycle.
type Collector interface {
	RunGC() error
}

// GCService periodically compacts the key-value store's value log.
// Session and quota keys expire by TTL; without GC the dead versions
// accumulate on disk.
type GCService struct {
	store    Collector
	interval time.Duration
	logger   zerolog.Logger
}

// NewGCService creates the maintenance loop.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGCService(store Collector, interval time.Duration, logger zerolog.Logger) *GCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &GCService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "store-gc").Logger(),
	}
}

// Serve implements suture.Service.
func (s *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.store.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("value log gc failed")
				continue
			}
			s.logger.Debug().Msg("value log gc cycle complete")
		}
	}
}

// String identifies the service in suture's event logs.
func (s *GCService) String() string { return "store-gc" }
