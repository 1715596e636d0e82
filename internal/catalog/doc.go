// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

// Package catalog provides access to the media catalog: the dedicated
// search index (with circuit-breaker protection), the canonical title
// and availability store, profile preferences and feedback, and a
// rate-limited external metadata provider. The orchestrator talks to
// this package exclusively through its interfaces so that every
// backend can degrade or be swapped independently.
package catalog
