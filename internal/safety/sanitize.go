// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package safety

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxReasonLength bounds every user-facing recommendation reason,
// including the ellipsis marker when truncated.
const maxReasonLength = 500

var (
	htmlTagRe      = regexp.MustCompile(`<[^>]*>`)
	markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// SanitizeReason cleans a recommendation reason for display: HTML tags
// are stripped, markdown links reduced to their link text, whitespace
// collapsed, and the result truncated to maxReasonLength with an
// ellipsis marker. Idempotent on already-safe text. When the sanitizer
// is disabled the text passes through unchanged.
func (f *Filter) SanitizeReason(text string) string {
	if !f.cfg.SanitizerEnabled {
		return text
	}
	return SanitizeReason(text)
}

// SanitizeReason is the pure sanitization function behind
// Filter.SanitizeReason, exported for callers without a filter.
func SanitizeReason(text string) string {
	out := htmlTagRe.ReplaceAllString(text, "")
	out = markdownLinkRe.ReplaceAllString(out, "$1")
	out = strings.Join(strings.Fields(out), " ")

	if len(out) > maxReasonLength {
		// Back up to a rune boundary so truncation never splits a
		// multi-byte character.
		cut := maxReasonLength - 3
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut] + "..."
	}

	return out
}
