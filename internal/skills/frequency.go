// Package skills derives the top-skills list from the tags on experience entries.
package skills

import (
	"sort"

	"github.com/jonathan/cv-admin/internal/types"
)

// DefaultTopN is the number of skills kept when the list is generated
const DefaultTopN = 10

// TagCount is a distinct tag and the number of times it occurs
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CountTags counts every tag occurrence across experiences, duplicates within a
// single entry included. Tags are compared exactly (case and whitespace matter).
// The result is sorted by count descending; equal counts keep first-seen order.
func CountTags(experiences []types.ExperienceEntry) []TagCount {
	positions := make(map[string]int)
	counts := make([]TagCount, 0)

	for _, exp := range experiences {
		for _, tag := range exp.Tags {
			if pos, seen := positions[tag]; seen {
				counts[pos].Count++
				continue
			}
			positions[tag] = len(counts)
			counts = append(counts, TagCount{Tag: tag, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	return counts
}

// TopSkills returns at most n tags ranked by CountTags.
// The result is meant to replace the stored top-skills list, not merge into it.
func TopSkills(experiences []types.ExperienceEntry, n int) []string {
	counts := CountTags(experiences)
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}

	top := make([]string, len(counts))
	for i, c := range counts {
		top[i] = c.Tag
	}
	return top
}
