// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package catalog

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/concierge/internal/cache"
)

// ResultCache is a short-TTL cache for search results, keyed by the
// normalized query. Identical queries within the TTL are served from
// memory without touching the index.
type ResultCache struct {
	lru *cache.LRUCache
}

// NewResultCache creates a result cache with the given capacity and TTL.
func NewResultCache(capacity int, ttl time.Duration) *ResultCache {
	return &ResultCache{lru: cache.NewLRUCache(capacity, ttl)}
}

// TryGet returns a cached result for the query, if present. The cached
// copy is returned with its Source rewritten so provenance stays honest.
func (c *ResultCache) TryGet(query SearchQuery) (*SearchResult, bool) {
	value, ok := c.lru.Get(cacheKey(query))
	if !ok {
		return nil, false
	}

	cached, ok := value.(*SearchResult)
	if !ok {
		return nil, false
	}

	// Shallow copy so callers cannot mutate the cached entry's metadata.
	out := *cached
	out.Source = SourceCache
	return &out, true
}

// Put stores a result under the normalized query key.
func (c *ResultCache) Put(query SearchQuery, result *SearchResult) {
	if result == nil {
		return
	}
	c.lru.Add(cacheKey(query), result)
}

// Stats returns cumulative hit and miss counts.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.lru.Stats()
}

// cacheKey builds a canonical key: lowercased text, sorted filters, and
// explicit bound markers so distinct queries never collide.
func cacheKey(query SearchQuery) string {
	var b strings.Builder

	b.WriteString(strings.ToLower(strings.TrimSpace(query.Text)))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(query.Title)))
	b.WriteByte('|')
	b.WriteString(sortedJoined(query.Genres))
	b.WriteByte('|')
	b.WriteString(sortedJoined(query.Services))
	b.WriteByte('|')
	b.WriteString(query.Region)
	b.WriteByte('|')
	writeBound(&b, query.RuntimeMin)
	writeBound(&b, query.RuntimeMax)
	writeBound(&b, query.YearMin)
	writeBound(&b, query.YearMax)
	b.WriteString(strconv.Itoa(query.Limit))

	return b.String()
}

// sortedJoined lowercases, sorts, and joins a filter list.
func sortedJoined(values []string) string {
	if len(values) == 0 {
		return ""
	}
	lowered := make([]string, len(values))
	for i, v := range values {
		lowered[i] = strings.ToLower(v)
	}
	sort.Strings(lowered)
	return strings.Join(lowered, ",")
}

// writeBound appends an optional bound with a nil marker.
func writeBound(b *strings.Builder, bound *int) {
	if bound == nil {
		b.WriteString("-|")
		return
	}
	b.WriteString(strconv.Itoa(*bound))
	b.WriteByte('|')
}
