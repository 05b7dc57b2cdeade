// Package listedit implements the add/edit/delete/reorder operations shared by every
// ordered collection on the CV (experiences, languages, education, certifications,
// tags and top skills). Every operation returns a new slice; inputs are never mutated.
package listedit

import (
	"fmt"
	"slices"
	"strings"
)

// Direction is the way a move shifts an element
type Direction string

// Move directions
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates a direction supplied by a caller
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down:
		return d, nil
	default:
		return "", fmt.Errorf("invalid direction %q: must be %q or %q", s, Up, Down)
	}
}

// Draft is a record open for editing. Index is set when the draft was opened
// from an existing element and is never persisted.
type Draft[T any] struct {
	Record T
	Index  *int
}

// Add opens a draft for a new record
func Add[T any](record T) *Draft[T] {
	return &Draft[T]{Record: record}
}

// Edit opens a draft holding a copy of record tagged with its position
func Edit[T any](record T, index int) *Draft[T] {
	idx := index
	return &Draft[T]{Record: record, Index: &idx}
}

// IsNew reports whether saving d appends rather than replaces
func (d *Draft[T]) IsNew() bool {
	return d.Index == nil
}

// Save writes the draft into items. A draft whose index lies in [0, len) replaces
// that element; any other draft is appended. A nil draft leaves items unchanged.
func Save[T any](draft *Draft[T], items []T) []T {
	out := slices.Clone(items)
	if draft == nil {
		return out
	}
	if draft.Index != nil && *draft.Index >= 0 && *draft.Index < len(out) {
		out[*draft.Index] = draft.Record
		return out
	}
	return append(out, draft.Record)
}

// Delete removes the element at index. Out-of-range indexes are ignored.
func Delete[T any](index int, items []T) []T {
	if index < 0 || index >= len(items) {
		return slices.Clone(items)
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...)
}

// Move swaps the element at index with its neighbour in direction dir.
// Moves that would leave the bounds of items are ignored.
func Move[T any](index int, dir Direction, items []T) []T {
	out := slices.Clone(items)
	if index < 0 || index >= len(out) {
		return out
	}

	target := index - 1
	if dir == Down {
		target = index + 1
	} else if dir != Up {
		return out
	}
	if target < 0 || target >= len(out) {
		return out
	}

	out[index], out[target] = out[target], out[index]
	return out
}

// AddTag appends tag unless it is blank or already present (exact match).
// The stored value is trimmed.
func AddTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(tags, tag) {
		return slices.Clone(tags)
	}
	return append(slices.Clone(tags), tag)
}

// RemoveTag drops every occurrence of tag (exact match)
func RemoveTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}
