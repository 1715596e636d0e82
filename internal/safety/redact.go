// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package safety

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// previewLength is the maximum length of the redacted preview stored in
// audit logs.
const previewLength = 80

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
)

// RedactedPrompt is the audit-log representation of a user prompt. The
// raw text is never stored; Hash and Length allow correlation across
// log entries.
type RedactedPrompt struct {
	// Preview is the masked, truncated prompt text.
	Preview string `json:"preview"`

	// Hash is the hex SHA-256 of the original text.
	Hash string `json:"hash"`

	// Length is the original text length in bytes.
	Length int `json:"length"`
}

// RedactPrompt masks email and phone patterns, truncates to a short
// preview, and returns a stable hash plus the original length.
func RedactPrompt(text string) RedactedPrompt {
	sum := sha256.Sum256([]byte(text))

	masked := emailRe.ReplaceAllString(text, "[email]")
	masked = phoneRe.ReplaceAllString(masked, "[phone]")

	if len(masked) > previewLength {
		masked = masked[:previewLength]
	}

	return RedactedPrompt{
		Preview: masked,
		Hash:    hex.EncodeToString(sum[:]),
		Length:  len(text),
	}
}
