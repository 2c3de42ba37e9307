// Package strutil holds the string helpers used to match annotation labels
// across datasets.
package strutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Levenshtein returns the edit distance between two strings: the minimum
// number of single-rune insertions, deletions and substitutions turning a
// into b.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i, c1 := range ra {
		curr[0] = i + 1
		for j, c2 := range rb {
			ins := prev[j+1] + 1
			del := curr[j] + 1
			sub := prev[j]
			if c1 != c2 {
				sub++
			}
			curr[j+1] = min(ins, del, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLabel canonicalizes an annotation label for matching across
// sources: combining marks are stripped and the result is lowercased, so
// "Clean and Jerk" and "clean and jerk" or accented variants compare equal.
func NormalizeLabel(s string) string {
	clean, _, err := transform.String(stripMarks, s)
	if err != nil {
		clean = s
	}
	return strings.ToLower(clean)
}
