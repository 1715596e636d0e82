// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestSearchClientSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/search" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var query SearchQuery
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			t.Errorf("decode query: %v", err)
		}
		if query.Text != "heist" {
			t.Errorf("query text = %q, want heist", query.Text)
		}

		_ = json.NewEncoder(w).Encode(SearchResult{
			Items: []TitleResult{{ID: "t1", Title: "Heat"}},
			Total: 1,
		})
	}))
	defer srv.Close()

	c := NewSearchClient(SearchClientConfig{BaseURL: srv.URL}, zerolog.Nop())

	result, err := c.Search(context.Background(), SearchQuery{Text: "heist"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != "t1" {
		t.Errorf("result = %+v, want single item t1", result)
	}
	if result.Source != SourceIndex {
		t.Errorf("Source = %q, want %q", result.Source, SourceIndex)
	}
}

func TestSearchClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewSearchClient(SearchClientConfig{BaseURL: srv.URL}, zerolog.Nop())

	if _, err := c.Search(context.Background(), SearchQuery{Text: "x"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Search = %v, want ErrUnavailable", err)
	}
}

func TestSearchClientBreakerOpensUnderSustainedFailure(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewSearchClient(SearchClientConfig{BaseURL: srv.URL}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, _ = c.Search(ctx, SearchQuery{Text: "x"})
	}

	if c.Healthy() {
		t.Fatal("breaker should be open after sustained failures")
	}

	before := calls.Load()
	if _, err := c.Search(ctx, SearchQuery{Text: "x"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Search with open breaker = %v, want ErrUnavailable", err)
	}
	if calls.Load() != before {
		t.Error("open breaker must short-circuit without a network call")
	}
}

func TestSearchClientUnreachable(t *testing.T) {
	c := NewSearchClient(SearchClientConfig{BaseURL: "http://127.0.0.1:1"}, zerolog.Nop())

	if _, err := c.Search(context.Background(), SearchQuery{Text: "x"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Search(unreachable) = %v, want ErrUnavailable", err)
	}
}
