// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package catalog

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// SeedData is the on-disk catalog format loaded at startup.
type SeedData struct {
	Titles       []TitleResult        `json:"titles"`
	Availability []AvailabilityResult `json:"availability"`
	Profiles     []Profile            `json:"profiles"`
}

// LoadSeed reads a catalog seed file.
func LoadSeed(path string) (*SeedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// ApplySeed loads the seed contents into the store.
func (s *MemoryStore) ApplySeed(seed *SeedData) {
	for _, title := range seed.Titles {
		s.AddTitle(title)
	}
	for _, avail := range seed.Availability {
		s.AddAvailability(avail)
	}
	for i := range seed.Profiles {
		s.PutProfile(&seed.Profiles[i])
	}
}
