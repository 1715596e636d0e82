// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"fmt"

	"github.com/tomtom215/concierge/internal/nlu"
)

// Follow-up question bounds.
const (
	minFollowUps = 2
	maxFollowUps = 4
)

// followUpQuestions builds 2-4 templated next-step questions from the
// classified turn. Entity-specific templates come first; generic
// fillers pad up to the minimum.
func followUpQuestions(cls *nlu.Classification) []string {
	var qs []string

	switch cls.Intent {
	case nlu.IntentAvailability:
		if len(cls.Entities.Titles) > 0 {
			qs = append(qs, fmt.Sprintf("Want similar titles to %q?", cls.Entities.Titles[0]))
		}
		qs = append(qs, "Should I check availability in another region?")
	case nlu.IntentRecommendations:
		if len(cls.Entities.Genres) > 0 {
			qs = append(qs, fmt.Sprintf("Want more %s picks?", cls.Entities.Genres[0]))
		}
		qs = append(qs, "Should I only show titles on your services?")
	case nlu.IntentPreferences:
		qs = append(qs,
			"Want recommendations based on your updated taste?",
			"Any genres you never want to see?")
	case nlu.IntentSocial:
		qs = append(qs, "Want picks that work for a group?")
	case nlu.IntentSearch:
		if len(cls.Entities.Genres) > 0 {
			qs = append(qs, fmt.Sprintf("Want me to narrow the %s results further?", cls.Entities.Genres[0]))
		}
		if len(cls.Entities.Services) > 0 {
			qs = append(qs, fmt.Sprintf("Only results on %s?", cls.Entities.Services[0]))
		}
	}

	if cls.Entities.Duration == nil {
		qs = append(qs, "Looking for something short or a longer watch?")
	}
	if len(cls.Entities.Moods) == 0 {
		qs = append(qs, "What kind of mood are you in?")
	}

	generic := []string{
		"Want something released recently?",
		"Should I surprise you with a wildcard pick?",
	}
	for _, q := range generic {
		if len(qs) >= minFollowUps {
			break
		}
		qs = append(qs, q)
	}

	if len(qs) > maxFollowUps {
		qs = qs[:maxFollowUps]
	}
	return qs
}
