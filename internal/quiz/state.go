package quiz

import (
	"fmt"

	"github.com/abhisek/vocabdrill/internal/grading"
)

// Phase is the session's position in its lifecycle.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseAwaitingConfirmation // a near miss is waiting for the learner's override
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseInProgress:
		return "in_progress"
	case PhaseAwaitingConfirmation:
		return "awaiting_confirmation"
	case PhaseCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Override is the learner's decision on a near-miss answer.
type Override int

const (
	Reject Override = iota
	Accept
)

// Transition describes an index change, for observers.
type Transition struct {
	From  int
	To    int
	Phase Phase
}

// Outcome is what Submit and Confirm report back to the caller.
type Outcome struct {
	Index      int
	ItemID     string
	Evaluation grading.Evaluation

	// Verdict is the final verdict, or Unanswered while awaiting confirmation.
	Verdict grading.Verdict

	// AwaitingConfirmation is set when the learner must accept or reject
	// Evaluation.BestMatch before the item is finalized.
	AwaitingConfirmation bool

	// Advanced is set when the session moved on to the next item.
	Advanced bool
}

// Summary tallies verdicts across a session.
type Summary struct {
	Total      int
	Perfect    int
	Partial    int
	Wrong      int
	Unanswered int
}

// Answered returns the number of items with a final verdict.
func (s Summary) Answered() int {
	return s.Perfect + s.Partial + s.Wrong
}

// PerfectRate is Perfect over answered items (0 when nothing was answered).
// Partial answers are deliberately not counted as perfect.
func (s Summary) PerfectRate() float64 {
	if s.Answered() == 0 {
		return 0
	}
	return float64(s.Perfect) / float64(s.Answered())
}

// AcceptedRate is Perfect plus Partial over answered items.
func (s Summary) AcceptedRate() float64 {
	if s.Answered() == 0 {
		return 0
	}
	return float64(s.Perfect+s.Partial) / float64(s.Answered())
}
