// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

// Command server runs the concierge HTTP service: conversational media
// discovery over request/response, SSE, and WebSocket transports.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/concierge/internal/api"
	"github.com/tomtom215/concierge/internal/catalog"
	"github.com/tomtom215/concierge/internal/concierge"
	"github.com/tomtom215/concierge/internal/config"
	"github.com/tomtom215/concierge/internal/logging"
	"github.com/tomtom215/concierge/internal/safety"
	"github.com/tomtom215/concierge/internal/session"
	"github.com/tomtom215/concierge/internal/store"
	"github.com/tomtom215/concierge/internal/supervisor"
	"github.com/tomtom215/concierge/internal/supervisor/services"
)

const storeGCInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logger.Info().
		Bool("concierge_enabled", cfg.Concierge.Enabled).
		Str("search_url", cfg.Search.URL).
		Str("metadata_url", cfg.Metadata.URL).
		Msg("starting concierge")

	kv, err := store.Open(store.Options{Dir: cfg.Store.Dir, InMemory: cfg.Store.InMemory}, logger)
	if err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Store.Dir).Msg("failed to open store")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error().Err(err).Msg("store close failed")
		}
	}()

	cat := catalog.NewMemoryStore()
	if cfg.Catalog.SeedFile != "" {
		seed, err := catalog.LoadSeed(cfg.Catalog.SeedFile)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Catalog.SeedFile).Msg("failed to load catalog seed")
		}
		cat.ApplySeed(seed)
		logger.Info().
			Int("titles", len(seed.Titles)).
			Int("availability", len(seed.Availability)).
			Int("profiles", len(seed.Profiles)).
			Msg("catalog seeded")
	}

	var index catalog.SearchIndex
	if cfg.Search.URL != "" {
		index = catalog.NewSearchClient(catalog.SearchClientConfig{
			BaseURL: cfg.Search.URL,
			Timeout: cfg.Search.Timeout,
		}, logger)
	} else {
		index = catalog.NewStoreIndex(cat)
		logger.Info().Msg("search index not configured, serving searches from the catalog store")
	}

	var metadata catalog.MetadataProvider
	if cfg.Metadata.URL != "" {
		metadata = catalog.NewMetadataClient(catalog.MetadataClientConfig{
			BaseURL:           cfg.Metadata.URL,
			Timeout:           cfg.Metadata.Timeout,
			RequestsPerSecond: cfg.Metadata.RequestsPerSecond,
			Burst:             cfg.Metadata.Burst,
		}, logger)
	}

	sessions := session.NewManager(kv, session.Config{
		TTL:               cfg.Session.TTL,
		HistoryLimit:      cfg.Session.HistoryLimit,
		FreeDailyLimit:    cfg.Session.FreeDailyLimit,
		PremiumDailyLimit: cfg.Session.PremiumDailyLimit,
	}, logger)

	filter := safety.NewFilter(safety.Config{
		InputCheckEnabled:  cfg.Safety.InputCheckEnabled,
		OutputCheckEnabled: cfg.Safety.OutputCheckEnabled,
		SanitizerEnabled:   cfg.Safety.SanitizerEnabled,
		MaxInputLength:     cfg.Safety.MaxInputLength,
		SpecialCharRatio:   cfg.Safety.SpecialCharRatio,
	})

	orch := concierge.New(
		concierge.Config{
			Enabled:            cfg.Concierge.Enabled,
			GenerationProvider: cfg.Concierge.GenerationProvider,
		},
		sessions,
		index,
		cat,
		metadata,
		catalog.NewResultCache(cfg.Concierge.ResultCacheSize, cfg.Concierge.ResultCacheTTL),
		filter,
		concierge.NewTelemetry(),
		logger,
	)

	router := api.NewRouter(cfg, api.NewHandler(orch, sessions, index, logger))
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: the SSE and WebSocket endpoints hold
		// connections open past any fixed deadline.
		IdleTimeout: 2 * cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddStorageService(services.NewGCService(kv, storeGCInterval, logger))
	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", server.Addr).Msg("listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("supervisor tree failed")
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("service missed shutdown timeout")
		}
	}

	logger.Info().Msg("shutdown complete")
}
