// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package safety

import (
	"strings"

	"github.com/tomtom215/concierge/internal/cache"
)

// Reason categories reported by CheckInput.
const (
	ReasonEmpty       = "empty"
	ReasonTooLong     = "too_long"
	ReasonInjection   = "injection"
	ReasonObfuscation = "obfuscation"
)

// Config controls the safety layer. Zero values fall back to defaults
// via NewFilter.
type Config struct {
	// InputCheckEnabled toggles the input safety check.
	InputCheckEnabled bool

	// OutputCheckEnabled toggles the output safety check.
	OutputCheckEnabled bool

	// SanitizerEnabled toggles reason sanitization.
	SanitizerEnabled bool

	// MaxInputLength is the maximum accepted message length in bytes.
	MaxInputLength int

	// SpecialCharRatio is the maximum tolerated ratio of non-alphanumeric,
	// non-punctuation characters before input is rejected as obfuscated.
	SpecialCharRatio float64
}

// DefaultConfig returns the default safety configuration with all checks
// enabled.
func DefaultConfig() Config {
	return Config{
		InputCheckEnabled:  true,
		OutputCheckEnabled: true,
		SanitizerEnabled:   true,
		MaxInputLength:     1000,
		SpecialCharRatio:   0.3,
	}
}

// injectionPhrases are curated prompt-injection and jailbreak markers.
// Matching is case-insensitive substring matching; these phrases are
// distinctive enough that word-boundary checks are unnecessary.
var injectionPhrases = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"ignore the above",
	"disregard previous instructions",
	"disregard the above",
	"forget your instructions",
	"forget all previous",
	"override your instructions",
	"new instructions:",
	"you are now",
	"pretend you are",
	"pretend to be",
	"act as if",
	"roleplay as",
	"system prompt",
	"system:",
	"[system]",
	"<|im_start|>",
	"<|im_end|>",
	"<<sys>>",
	"### instruction",
	"###instruction",
	"developer mode",
	"dan mode",
	"jailbreak",
	"do anything now",
}

// InputResult is the outcome of an input safety check.
type InputResult struct {
	// Safe is false when the input must be rejected before any state change.
	Safe bool `json:"safe"`

	// Reason names the triggering category when Safe is false.
	Reason string `json:"reason,omitempty"`
}

// Filter performs the input and output safety checks. It is immutable
// after construction and safe for concurrent use.
type Filter struct {
	cfg       Config
	injection *cache.AhoCorasick
	leakage   *cache.AhoCorasick
}

// NewFilter builds a filter from cfg, applying defaults for zero limits.
func NewFilter(cfg Config) *Filter {
	if cfg.MaxInputLength <= 0 {
		cfg.MaxInputLength = 1000
	}
	if cfg.SpecialCharRatio <= 0 {
		cfg.SpecialCharRatio = 0.3
	}

	injection := cache.NewAhoCorasick()
	injection.AddPatterns(injectionPhrases, nil)
	injection.Build()

	leakage := cache.NewAhoCorasick()
	leakage.AddPatterns(leakagePhrases, nil)
	leakage.Build()

	return &Filter{
		cfg:       cfg,
		injection: injection,
		leakage:   leakage,
	}
}

// CheckInput validates user input before it reaches any session state.
// When the input check is disabled it passes everything through.
func (f *Filter) CheckInput(text string) InputResult {
	if !f.cfg.InputCheckEnabled {
		return InputResult{Safe: true}
	}

	if strings.TrimSpace(text) == "" {
		return InputResult{Safe: false, Reason: ReasonEmpty}
	}

	if len(text) > f.cfg.MaxInputLength {
		return InputResult{Safe: false, Reason: ReasonTooLong}
	}

	if f.injection.Contains(text) {
		return InputResult{Safe: false, Reason: ReasonInjection}
	}

	if specialCharRatio(text) > f.cfg.SpecialCharRatio {
		return InputResult{Safe: false, Reason: ReasonObfuscation}
	}

	return InputResult{Safe: true}
}

// specialCharRatio computes the share of characters that are neither
// alphanumeric, whitespace, nor ordinary punctuation. Short strings are
// exempt; punctuation-heavy but normal questions must pass.
func specialCharRatio(text string) float64 {
	runes := []rune(text)
	if len(runes) < 12 {
		return 0
	}

	special := 0
	for _, r := range runes {
		if isNormalRune(r) {
			continue
		}
		special++
	}

	return float64(special) / float64(len(runes))
}

// isNormalRune reports whether r is expected in ordinary conversational text.
func isNormalRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '\t' || r == '\n':
		return true
	}
	return strings.ContainsRune(`.,!?'"-:;()&+`, r)
}
