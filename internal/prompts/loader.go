// Package prompts provides the system prompts sent with content enhancement requests.
// Prompts are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// EnhanceFile holds the enhancement prompts
const EnhanceFile = "enhance.json"

//go:embed *.json
var promptFiles embed.FS

// cache stores parsed prompt files to avoid repeated JSON parsing
var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// fieldGuidance describes what a good result looks like for each known field hint
var fieldGuidance = map[string]struct {
	label    string
	guidance string
}{
	"summary": {
		label:    "professional summary",
		guidance: "Write three to five short statements that present the candidate's experience, strengths and focus.",
	},
	"description": {
		label:    "description of a work experience entry",
		guidance: "Describe the company in one sentence if the input does, then list responsibilities and achievements, starting each with an action verb.",
	},
	"title": {
		label:    "job title",
		guidance: "Return a single concise, conventional job title.",
	},
	"headline": {
		label:    "headline",
		guidance: "Return one short line naming the role and the main specialities.",
	},
	"skill": {
		label:    "skill name",
		guidance: "Return the conventional spelling of the skill or technology.",
	},
}

// Get retrieves a prompt by filename and key.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// DefaultSystem returns the general CV writing assistant prompt
func DefaultSystem() string {
	return MustGet(EnhanceFile, "cv-assistant")
}

// FieldSystem returns the system prompt for a field hint such as "summary".
// Unknown hints are used verbatim as the field label.
func FieldSystem(field string, html bool) string {
	key := strings.ToLower(strings.TrimSpace(field))
	label, guidance := key, "Make the text clearer and more impactful."
	if g, ok := fieldGuidance[key]; ok {
		label, guidance = g.label, g.guidance
	}

	format := MustGet(EnhanceFile, "format-plain")
	if html {
		format = MustGet(EnhanceFile, "format-html")
	}

	return Format(MustGet(EnhanceFile, "field-enhancer"), map[string]string{
		"Field":    label,
		"Guidance": guidance,
		"Format":   format,
	})
}

// loadFile loads and caches a prompt file.
func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}
