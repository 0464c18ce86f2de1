package grading

import (
	"strings"
)

// strippedPunctuation is removed before exact-match comparison.
const strippedPunctuation = `.,!?;:'"()[]{}`

// Normalize folds an answer for exact-match comparison: surrounding
// whitespace is trimmed, case is folded, the characters in
// strippedPunctuation are removed and whitespace runs collapse to one space.
//
// Similarity scoring never sees normalized text.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunctuation, r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
