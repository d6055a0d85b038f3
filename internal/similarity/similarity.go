// Package similarity computes sequence-similarity ratios between strings.
//
// Ratio follows difflib's SequenceMatcher semantics: 2*M/T where M is the
// number of characters in matching blocks and T the combined length, with the
// "popular element" autojunk heuristic enabled for inputs of 200+ characters.
package similarity

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns the similarity of a and b in [0, 1]. Two empty strings are
// identical (1.0).
func Ratio(a, b string) float64 {
	m := difflib.NewMatcher(runes(a), runes(b))
	return m.Ratio()
}

// runes splits s into one element per code point, the unit SequenceMatcher
// compares for strings.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
