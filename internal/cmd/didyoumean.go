package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestDistance bounds the edit distance of a typo suggestion.
const maxSuggestDistance = 2

// suggestCommand finds the closest name to the unknown input. Abbreviations
// ("msg" for "message") are found by fuzzy subsequence matching, typos
// ("lsit" for "list") by edit distance. Returns "" when nothing is close.
func suggestCommand(unknown string, names []string) string {
	unknown = strings.ToLower(strings.TrimSpace(unknown))
	if unknown == "" {
		return ""
	}

	if len(unknown) >= 2 {
		if matches := fuzzy.FindFrom(unknown, lowerSource(names)); len(matches) > 0 {
			return names[matches[0].Index]
		}
	}

	best, bestDist := "", maxSuggestDistance+1
	for _, name := range names {
		if d := levenshtein(unknown, strings.ToLower(name)); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// suggestFlag is suggestCommand for flags. Dashes are ignored while matching
// and kept on the returned name.
func suggestFlag(unknown string, names []string) string {
	stripped := strings.TrimLeft(unknown, "-")
	if stripped == "" {
		return ""
	}
	bare := make([]string, len(names))
	for i, n := range names {
		bare[i] = strings.TrimLeft(n, "-")
	}
	match := suggestCommand(stripped, bare)
	if match == "" {
		return ""
	}
	for i, b := range bare {
		if b == match {
			return names[i]
		}
	}
	return ""
}

type lowerSource []string

func (s lowerSource) String(i int) string { return strings.ToLower(s[i]) }
func (s lowerSource) Len() int            { return len(s) }

// levenshtein computes the Levenshtein edit distance between two strings.
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
