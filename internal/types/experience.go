// Package types provides type definitions for the CV data edited through the admin surface.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ExperienceEntry represents one position on the CV
type ExperienceEntry struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	DateRange   string   `json:"dateRange"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description"` // rich text (HTML) or a plain string
	Tags        []string `json:"tags"`
}

// NewExperienceEntry returns the empty record used when a new experience is added
func NewExperienceEntry() ExperienceEntry {
	return ExperienceEntry{Tags: []string{}}
}

// Clone returns a copy that shares no slices with e
func (e ExperienceEntry) Clone() ExperienceEntry {
	out := e
	out.Tags = append([]string{}, e.Tags...)
	return out
}
