// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"sort"
	"strings"
	"unicode"
)

// maxRecommendations caps every recommendation batch.
const maxRecommendations = 6

// sequelMarkers are trailing tokens that indicate an installment rather
// than a distinct work.
var sequelMarkers = map[string]struct{}{
	"part": {}, "chapter": {}, "volume": {}, "vol": {},
	"season": {}, "episode": {}, "returns": {}, "begins": {},
	"ii": {}, "iii": {}, "iv": {}, "v": {},
}

// diversify bounds a scored batch: sort by score, collapse each series
// family to its single highest-scored member, and cap the result.
// Input order is not assumed; ties break on title ID for determinism.
func diversify(recs []Recommendation) []Recommendation {
	sorted := make([]Recommendation, len(recs))
	copy(sorted, recs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Title.ID < sorted[j].Title.ID
	})

	seen := make(map[string]struct{})
	out := make([]Recommendation, 0, maxRecommendations)
	for _, rec := range sorted {
		family := seriesFamily(rec.Title.SeriesKey, rec.Title.Title)
		if _, dup := seen[family]; dup {
			continue
		}
		seen[family] = struct{}{}

		out = append(out, rec)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}

// seriesFamily derives the family key for a title. An explicit catalog
// series key wins; otherwise the display title is reduced to its root:
// everything before a subtitle separator, with trailing numerals and
// sequel markers stripped.
func seriesFamily(seriesKey, title string) string {
	if seriesKey != "" {
		return "key:" + strings.ToLower(seriesKey)
	}

	root := strings.ToLower(strings.TrimSpace(title))
	for _, sep := range []string{":", " - ", " ("} {
		if idx := strings.Index(root, sep); idx > 0 {
			root = root[:idx]
		}
	}

	words := strings.Fields(root)
	for len(words) > 1 {
		last := words[len(words)-1]
		if _, marker := sequelMarkers[last]; !marker && !isNumeral(last) {
			break
		}
		words = words[:len(words)-1]
	}

	return strings.Join(words, " ")
}

// isNumeral reports whether s is all digits.
func isNumeral(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
