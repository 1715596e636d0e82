// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const seedFixture = `{
	"titles": [
		{"id": "t1", "title": "Dune", "media_type": "movie", "genres": ["Science Fiction"], "year": 2021, "rating": 8.1, "popularity": 0.9},
		{"id": "t2", "title": "Paddington", "media_type": "movie", "genres": ["Family"], "year": 2014, "rating": 7.6, "popularity": 0.6}
	],
	"availability": [
		{"title_id": "t1", "title": "Dune", "service": "Max", "region": "US", "kind": "subscription"}
	],
	"profiles": [
		{"id": "p1", "region": "US", "tier": "premium", "subscriptions": ["Max"]}
	]
}`

func writeSeedFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestLoadSeedAndApply(t *testing.T) {
	seed, err := LoadSeed(writeSeedFile(t, seedFixture))
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(seed.Titles) != 2 || len(seed.Availability) != 1 || len(seed.Profiles) != 1 {
		t.Fatalf("seed = %d titles, %d availability, %d profiles; want 2/1/1",
			len(seed.Titles), len(seed.Availability), len(seed.Profiles))
	}

	store := NewMemoryStore()
	store.ApplySeed(seed)
	ctx := context.Background()

	titles, err := store.FindByTitle(ctx, "dune")
	if err != nil || len(titles) != 1 || titles[0].ID != "t1" {
		t.Errorf("FindByTitle after seed = %v, %v; want seeded t1", titles, err)
	}

	rows, err := store.Availability(ctx, "t1", "US")
	if err != nil || len(rows) != 1 || rows[0].Service != "Max" {
		t.Errorf("Availability after seed = %v, %v; want Max row", rows, err)
	}

	profile, err := store.Profile(ctx, "p1")
	if err != nil {
		t.Fatalf("Profile after seed: %v", err)
	}
	if profile.Tier != "premium" || profile.Region != "US" {
		t.Errorf("profile = %+v, want premium US profile", profile)
	}
}

func TestLoadSeedMissingFile(t *testing.T) {
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadSeed on a missing file must fail")
	}
}

func TestLoadSeedMalformed(t *testing.T) {
	if _, err := LoadSeed(writeSeedFile(t, `{"titles": [`)); err == nil {
		t.Error("LoadSeed on malformed JSON must fail")
	}
}
