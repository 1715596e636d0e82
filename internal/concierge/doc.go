// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

// Package concierge is the conversational core: the per-turn
// orchestrator state machine, the capability workers it dispatches to,
// recommendation scoring with diversity sampling, templated follow-up
// questions, and the bounded event stream the incremental transport
// drains. Workers fail soft: a broken backend degrades a turn, it never
// aborts one.
package concierge
