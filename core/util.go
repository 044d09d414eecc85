package core

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// minSimilarity is the ratio below which ClosestMatch gives up.
const minSimilarity = .6

// ClosestMatch returns the candidate most similar to `s`, or "" if none is similar enough.
func ClosestMatch(s string, candidates []string) string {
	if s == "" {
		return ""
	}
	var (
		best      string
		bestRatio float64
	)
	a := strings.Split(strings.ToLower(s), "")
	for _, c := range candidates {
		ratio := difflib.NewMatcher(a, strings.Split(strings.ToLower(c), "")).Ratio()
		if ratio > bestRatio {
			best, bestRatio = c, ratio
		}
	}
	if bestRatio < minSimilarity {
		return ""
	}
	return best
}

// NormalizeLabel returns the canonical key of a header label: trimmed, lowered and stripped of all whitespace.
func NormalizeLabel(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "")
}
