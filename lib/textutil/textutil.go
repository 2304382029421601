package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchName reports whether the normalized name contains any of the
// normalized matchers.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, NormalizeName(m)) {
			return true
		}
	}
	return false
}

// ClosestName returns the candidate most similar to name by Jaro-Winkler
// distance, along with its similarity. It returns "", 0 for no candidates.
func ClosestName(name string, candidates []string) (string, float64) {
	var best string
	var bestSimilarity float64

	normalized := NormalizeName(name)
	for _, c := range candidates {
		similarity := matchr.JaroWinkler(normalized, NormalizeName(c), false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = c
		}
	}
	return best, bestSimilarity
}
