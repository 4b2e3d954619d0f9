// Package textmetrics scores recognized text against a caller-supplied
// expected transcript.
package textmetrics

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

// MatchScore returns a similarity in [0, 1] between the expected text and
// the recognized text: 1.0 for identical strings, 0.0 for completely
// different ones. Comparison is whitespace-normalized and case-sensitive.
func MatchScore(expected, recognized string) float64 {
	expected = normalize(expected)
	recognized = normalize(recognized)

	if expected == "" && recognized == "" {
		return 1.0
	}
	maxLen := len(expected)
	if len(recognized) > maxLen {
		maxLen = len(recognized)
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein.Distance(expected, recognized)
	return 1.0 - float64(dist)/float64(maxLen)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
