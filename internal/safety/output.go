// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package safety

import (
	"regexp"
)

// Output flag categories reported by CheckOutput.
const (
	ReasonLeakage = "leakage"
	ReasonPII     = "pii"
)

// leakagePhrases mark text that resembles system-prompt leakage.
var leakagePhrases = []string{
	"as an ai model",
	"as an ai language model",
	"as a language model",
	"as an artificial intelligence",
	"my system prompt",
	"my instructions are",
	"i was instructed to",
	"i have been instructed",
	"my training data",
}

var (
	// ssnRe matches SSN-shaped triples (123-45-6789).
	ssnRe = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

	// cardRe matches 16 contiguous digits, the shape of a payment card number.
	cardRe = regexp.MustCompile(`\b\d{16}\b`)
)

// OutputResult is the outcome of an output safety check. When Safe is
// false, Filtered holds a redacted variant the orchestrator may use
// instead of a full fallback message.
type OutputResult struct {
	// Safe is false when the text was flagged.
	Safe bool `json:"safe"`

	// Reason names the triggering category when Safe is false.
	Reason string `json:"reason,omitempty"`

	// Filtered is the redacted variant of the input, set when Safe is false.
	Filtered string `json:"filtered,omitempty"`
}

// CheckOutput screens assistant-facing text before it leaves the system.
// When the output check is disabled it passes everything through.
func (f *Filter) CheckOutput(text string) OutputResult {
	if !f.cfg.OutputCheckEnabled {
		return OutputResult{Safe: true}
	}

	if f.leakage.Contains(text) {
		return OutputResult{Safe: false, Reason: ReasonLeakage}
	}

	if ssnRe.MatchString(text) || cardRe.MatchString(text) {
		filtered := ssnRe.ReplaceAllString(text, "[redacted]")
		filtered = cardRe.ReplaceAllString(filtered, "[redacted]")
		return OutputResult{Safe: false, Reason: ReasonPII, Filtered: filtered}
	}

	return OutputResult{Safe: true}
}
