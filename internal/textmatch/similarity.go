package textmatch

import (
	"fmt"
	"math"
	"strings"
)

// DefaultDecayFactor controls how forgiving the exponential decay model is.
const DefaultDecayFactor = 0.5

// Model selects how an edit distance is turned into a similarity score.
type Model string

const (
	// ModelLinear scores (1 - d/maxLen) * 100.
	ModelLinear Model = "linear"

	// ModelExponentialDecay scores exp(-d / (maxLen * decay)) * 100. Longer
	// phrases lose less per edit than under the linear model.
	ModelExponentialDecay Model = "exponentialDecay"
)

// ParseModel resolves a model name from config or flags.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return ModelLinear, nil
	case "", "exponentialdecay", "exponential_decay", "exponential-decay", "exponential":
		return ModelExponentialDecay, nil
	default:
		return "", fmt.Errorf("unknown matching model: %q", s)
	}
}

// Distance returns the Levenshtein distance between a and b, counted in runes.
// Insertion, deletion and substitution each cost 1.
func Distance(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	n, m := len(ar), len(br)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}

	// Two rows of the (n+1) x (m+1) table are enough.
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[m]
}

// Similarity returns a score in [0, 100] for how close a is to b.
// Two empty strings, or identical strings, score 100. A non-positive
// decayFactor falls back to DefaultDecayFactor.
func Similarity(a, b string, model Model, decayFactor float64) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 100
	}
	d := Distance(a, b)
	if d == 0 {
		return 100
	}

	var score float64
	switch model {
	case ModelLinear:
		score = 1 - float64(d)/float64(maxLen)
	default:
		if decayFactor <= 0 {
			decayFactor = DefaultDecayFactor
		}
		score = math.Exp(-float64(d) / (float64(maxLen) * decayFactor))
	}

	return clamp(score*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
