package grading

import (
	"fmt"

	"github.com/abhisek/vocabdrill/internal/textmatch"
)

// Evaluation is the graded result of one input against an item's answers.
type Evaluation struct {
	Verdict      Verdict
	BestMatch    string
	Probability  float64
	IsExactMatch bool

	// Ranked is the full candidate ranking, for display. Nil on an exact
	// match, where no similarity ranking is computed.
	Ranked []textmatch.Candidate
}

// Evaluator grades free-text answers. The zero value is not usable; build
// one with NewEvaluator.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an Evaluator. Call cfg.Validate first if the config
// came from user input.
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Config returns the evaluator's configuration.
func (e *Evaluator) Config() Config {
	return e.cfg
}

// Evaluate grades input against the canonical answers.
//
// An exact match after Normalize is Perfect with probability 100, even when
// the raw-string similarity would be lower. Otherwise the raw strings are
// ranked and the best probability is compared against the threshold.
func (e *Evaluator) Evaluate(input string, answers []string) (Evaluation, error) {
	if len(answers) == 0 {
		return Evaluation{}, fmt.Errorf("evaluate: no canonical answers: %w", textmatch.ErrInvalidInput)
	}

	normalized := Normalize(input)
	for _, a := range answers {
		if Normalize(a) == normalized {
			return Evaluation{
				Verdict:      Perfect,
				BestMatch:    a,
				Probability:  100,
				IsExactMatch: true,
			}, nil
		}
	}

	res, err := textmatch.FindBestMatch(input, answers,
		textmatch.WithModel(e.cfg.Model),
		textmatch.WithDecayFactor(e.cfg.DecayFactor),
	)
	if err != nil {
		return Evaluation{}, err
	}

	verdict := Wrong
	if res.Probability >= e.cfg.Threshold {
		verdict = Partial
	}

	return Evaluation{
		Verdict:     verdict,
		BestMatch:   res.BestMatch,
		Probability: res.Probability,
		Ranked:      res.Ranked,
	}, nil
}

// Evaluate grades input with the default configuration and the given threshold.
func Evaluate(input string, answers []string, threshold float64) (Evaluation, error) {
	cfg := DefaultConfig()
	cfg.Threshold = threshold
	return NewEvaluator(cfg).Evaluate(input, answers)
}
