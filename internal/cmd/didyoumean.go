package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestDistance is the largest edit distance still worth suggesting.
const maxSuggestDistance = 3

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	row := make([]int, lb+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= la; i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			val := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = val
		}
	}
	return row[lb]
}

// closest returns the candidate nearest to unknown. Typos are caught by edit
// distance; abbreviations like "shop" for "shopping-list" by subsequence
// matching.
func closest(unknown string, candidates []string, key func(string) string) string {
	unknown = strings.ToLower(unknown)
	if unknown == "" {
		return ""
	}

	best, bestDist := "", maxSuggestDistance+1
	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = strings.ToLower(key(c))
		if d := levenshtein(unknown, keys[i]); d < bestDist {
			best, bestDist = c, d
		}
	}
	if best != "" {
		return best
	}

	if matches := fuzzy.Find(unknown, keys); len(matches) > 0 {
		return candidates[matches[0].Index]
	}
	return ""
}

// suggestCommand finds the closest command name to the unknown input.
func suggestCommand(unknown string, commands []string) string {
	return closest(unknown, commands, func(s string) string { return s })
}

// suggestFlag finds the closest flag to the unknown input, ignoring dashes,
// and returns it with its original prefix.
func suggestFlag(unknown string, flagNames []string) string {
	return closest(strings.TrimLeft(unknown, "-"), flagNames, func(s string) string {
		return strings.TrimLeft(s, "-")
	})
}
