package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanReply(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text",
			input:    "  Led a team of five engineers.\n",
			expected: "Led a team of five engineers.",
		},
		{
			name:     "fenced with language",
			input:    "```html\n<p>Led a team</p>\n```",
			expected: "<p>Led a team</p>",
		},
		{
			name:     "fenced without language",
			input:    "```\nLed a team\n```",
			expected: "Led a team",
		},
		{
			name:     "inline fence is kept",
			input:    "Use ```go``` blocks",
			expected: "Use ```go``` blocks",
		},
		{
			name:     "only fences",
			input:    "``````",
			expected: "",
		},
		{
			name:     "empty",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanReply(tt.input))
		})
	}
}
