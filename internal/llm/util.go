// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanReply trims a completion and removes a markdown code fence wrapped around
// the whole reply. Models sometimes fence plain text even when told not to.
func CleanReply(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	// Skip potential language identifier on first line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
			text = text[idx+1:]
		}
	}
	return strings.TrimSpace(text)
}
