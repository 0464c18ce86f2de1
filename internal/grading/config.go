package grading

import (
	"fmt"

	"github.com/abhisek/vocabdrill/internal/textmatch"
)

// DefaultThreshold is the minimum similarity, in percent, for a Partial verdict.
const DefaultThreshold = 60.0

// Config holds evaluator tuning.
type Config struct {
	// Threshold is the minimum similarity percentage (0-100) to count a
	// non-exact answer as acceptable.
	Threshold float64

	// DecayFactor tunes the exponential decay model. Default: 0.5.
	DecayFactor float64

	// Model selects linear or exponential decay scoring.
	Model textmatch.Model
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:   DefaultThreshold,
		DecayFactor: textmatch.DefaultDecayFactor,
		Model:       textmatch.ModelExponentialDecay,
	}
}

// Validate checks ranges and the model name.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be within [0, 100], got %g", c.Threshold)
	}
	if c.DecayFactor <= 0 {
		return fmt.Errorf("decay factor must be positive, got %g", c.DecayFactor)
	}
	if _, err := textmatch.ParseModel(string(c.Model)); err != nil {
		return err
	}
	return nil
}
