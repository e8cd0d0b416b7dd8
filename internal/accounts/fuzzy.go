package accounts

import (
	"github.com/schollz/closestmatch"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"conciliador/internal/config"
)

// Matcher scores the nearest key to a lookup name within a fixed candidate set.
// Implementations are built over the full set up front so indexed strategies
// can precompute.
type Matcher interface {
	// Nearest returns the closest candidate key and its similarity ratio in [0, 1].
	Nearest(name string) (string, float64)
}

// NewMatcher builds the strategy selected by name over the candidate keys.
// Unknown strategy names fall back to the levenshtein scan.
func NewMatcher(strategy string, keys []string) Matcher {
	if strategy == config.StrategyClosestMatch && len(keys) > 0 {
		return &closestMatchMatcher{cm: closestmatch.New(keys, []int{3, 4})}
	}
	return &levenshteinMatcher{keys: keys}
}

// Ratio returns a similarity ratio in [0, 1] between two strings, computed
// from the edit distance with substitutions weighted as delete plus insert.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}

// levenshteinMatcher scans every key linearly. Keys are visited in chart
// order, so an earlier key wins an exact ratio tie.
type levenshteinMatcher struct {
	keys []string
}

func (m *levenshteinMatcher) Nearest(name string) (string, float64) {
	best := ""
	bestRatio := 0.0
	for _, key := range m.keys {
		if ratio := Ratio(name, key); ratio > bestRatio {
			best = key
			bestRatio = ratio
		}
	}
	return best, bestRatio
}

// closestMatchMatcher shortlists a candidate through an n-gram index and then
// scores it with the same ratio as the linear scan, so both strategies agree
// on the acceptance threshold.
type closestMatchMatcher struct {
	cm *closestmatch.ClosestMatch
}

func (m *closestMatchMatcher) Nearest(name string) (string, float64) {
	candidate := m.cm.Closest(name)
	if candidate == "" {
		return "", 0
	}
	return candidate, Ratio(name, candidate)
}
