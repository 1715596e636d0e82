// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

// Package nlu implements rule-based natural language understanding for
// conversational media discovery: structured entity extraction from free
// text and priority-ordered intent classification.
//
// No machine learning is involved. Dictionary phrases are matched with an
// Aho-Corasick automaton, numeric constraints (durations, year ranges)
// with regular expressions, and intents with a fixed-priority rule table.
// Confidence scores are fixed per rule and only support ordinal
// comparison; they are not calibrated probabilities.
package nlu
