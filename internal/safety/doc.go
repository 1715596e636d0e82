// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

// Package safety implements the text safety layer: input validation
// against prompt-injection attempts, output screening for system-prompt
// leakage and PII-shaped substrings, user-facing reason sanitization,
// and prompt redaction for audit logging.
//
// The input check, output check, and reason sanitizer are independently
// switchable; a disabled check passes everything through. Redaction is
// always applied before any prompt text reaches a log.
package safety
