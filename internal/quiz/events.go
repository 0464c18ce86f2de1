package quiz

import (
	"time"

	"github.com/abhisek/vocabdrill/internal/grading"
)

// GradeEvent is emitted once for every finalized item.
type GradeEvent struct {
	SessionID   string
	ItemID      string
	Index       int
	Verdict     grading.Verdict
	Probability float64
	Input       string
	Level       int
	Lesson      int
	At          time.Time
}

// Emitter receives grade events. Emit must not block: the session calls it
// in the middle of a transition and never waits for delivery.
type Emitter interface {
	Emit(GradeEvent)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(GradeEvent)

func (f EmitterFunc) Emit(e GradeEvent) { f(e) }

type nopEmitter struct{}

func (nopEmitter) Emit(GradeEvent) {}
