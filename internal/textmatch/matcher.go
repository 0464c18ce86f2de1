package textmatch

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidInput is returned when a caller breaks an input contract,
// such as asking for a best match against no candidates.
var ErrInvalidInput = errors.New("invalid input")

// Candidate is one scored canonical answer.
type Candidate struct {
	Text        string
	Probability float64
}

// MatchResult is the outcome of ranking candidates against one input.
type MatchResult struct {
	BestMatch   string
	Probability float64

	// Ranked holds every candidate, highest probability first. Ties keep
	// the order the candidates were given in.
	Ranked []Candidate
}

type matchConfig struct {
	model       Model
	decayFactor float64
}

// Option tunes FindBestMatch.
type Option func(*matchConfig)

// WithModel overrides the scoring model (exponential decay by default).
func WithModel(m Model) Option { return func(c *matchConfig) { c.model = m } }

// WithDecayFactor overrides the exponential decay factor.
func WithDecayFactor(f float64) Option { return func(c *matchConfig) { c.decayFactor = f } }

// FindBestMatch scores input against every candidate and ranks them.
// Returns ErrInvalidInput if candidates is empty.
func FindBestMatch(input string, candidates []string, opts ...Option) (MatchResult, error) {
	if len(candidates) == 0 {
		return MatchResult{}, fmt.Errorf("find best match: no candidates: %w", ErrInvalidInput)
	}

	cfg := matchConfig{
		model:       ModelExponentialDecay,
		decayFactor: DefaultDecayFactor,
	}
	for _, o := range opts {
		o(&cfg)
	}

	ranked := make([]Candidate, len(candidates))
	for i, c := range candidates {
		ranked[i] = Candidate{
			Text:        c,
			Probability: Similarity(input, c, cfg.model, cfg.decayFactor),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})

	return MatchResult{
		BestMatch:   ranked[0].Text,
		Probability: ranked[0].Probability,
		Ranked:      ranked,
	}, nil
}
