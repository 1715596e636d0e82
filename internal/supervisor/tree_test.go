// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// signalService reports when it starts serving and blocks until canceled.
type signalService struct {
	started atomic.Bool
}

func (s *signalService) Serve(ctx context.Context) error {
	s.started.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

func (s *signalService) String() string { return "signal-service" }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTreeServesBothLayers(t *testing.T) {
	tree := NewTree(quietLogger(), DefaultTreeConfig())

	storageSvc := &signalService{}
	apiSvc := &signalService{}
	tree.AddStorageService(storageSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for !storageSvc.started.Load() || !apiSvc.started.Load() {
		select {
		case <-deadline:
			t.Fatalf("services not started: storage=%v api=%v",
				storageSvc.started.Load(), apiSvc.started.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("tree terminated with %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancellation")
	}
}

func TestTreeConfigDefaults(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 || cfg.FailureBackoff != 15*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	// Zero config must not panic and must apply fallbacks.
	tree := NewTree(quietLogger(), TreeConfig{})
	if tree == nil {
		t.Fatal("NewTree returned nil")
	}
}
