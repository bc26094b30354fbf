package moderation

import (
	goaway "github.com/TwiN/go-away"
)

// Longest message the relay will forward, in characters
const maxMessageLength = 200

// Clean truncates overly long messages and masks profanity.
// Pure function with no shared state, safe from concurrent message paths.
func Clean(text string) string {
	if runes := []rune(text); len(runes) > maxMessageLength {
		text = string(runes[:maxMessageLength]) + "..."
	}

	return goaway.Censor(text)
}
