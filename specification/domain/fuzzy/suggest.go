// Package fuzzy ranks known identifiers by edit distance to an unrecognized
// input, used to improve operator and field error messages.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const maxSuggestions = 3

// Suggest returns up to three candidates closest to input by Levenshtein
// distance, nearest first. Candidates further than half the longer string's
// length are considered unrelated and dropped; the result is empty when
// nothing is close.
func Suggest(input string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	matches := make([]scored, 0, len(candidates))
	lowered := strings.ToLower(input)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(lowered, strings.ToLower(c))
		limit := max(len(input), len(c)) / 2
		if d <= limit {
			matches = append(matches, scored{name: c, dist: d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
