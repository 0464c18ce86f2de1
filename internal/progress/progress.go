// Package progress delivers grade events from a quiz session to persistent
// storage without holding up the session.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/vocabdrill/internal/quiz"
)

// ErrDispatcherClosed is reported for events emitted after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Recorder persists one finalized grade.
type Recorder interface {
	RecordGrade(ctx context.Context, ev quiz.GradeEvent) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, ev quiz.GradeEvent) error

func (f RecorderFunc) RecordGrade(ctx context.Context, ev quiz.GradeEvent) error {
	return f(ctx, ev)
}

// Bookmark is the saved resume position for a practice scope.
type Bookmark struct {
	Scope     string    `json:"scope"`
	Index     int       `json:"index"`
	SessionID string    `json:"session_id"`
	SavedAt   time.Time `json:"saved_at"`
}

// BookmarkStore saves and loads resume positions.
type BookmarkStore interface {
	SaveBookmark(ctx context.Context, b Bookmark) error
	// Bookmark returns the saved position for scope; false if none exists.
	Bookmark(ctx context.Context, scope string) (Bookmark, bool, error)
}

// Scope names a practice selection. Zero level or lesson means "any".
func Scope(level, lesson int) string {
	switch {
	case level == 0 && lesson == 0:
		return "all"
	case lesson == 0:
		return fmt.Sprintf("L%d", level)
	case level == 0:
		return fmt.Sprintf("lesson%d", lesson)
	default:
		return fmt.Sprintf("L%d-%d", level, lesson)
	}
}

// PersistenceError reports a grade event that could not be recorded. The
// in-memory verdict is unaffected.
type PersistenceError struct {
	Event quiz.GradeEvent
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist grade for item %q (%s): %v", e.Event.ItemID, e.Event.Verdict, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Fanout records to every recorder in order and joins their errors.
type Fanout []Recorder

func (f Fanout) RecordGrade(ctx context.Context, ev quiz.GradeEvent) error {
	var errs []error
	for _, r := range f {
		if err := r.RecordGrade(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BookmarkRecorder advances the bookmark for Scope past each graded item.
type BookmarkRecorder struct {
	Store BookmarkStore
	Scope string
	Now   func() time.Time
}

func (r *BookmarkRecorder) RecordGrade(ctx context.Context, ev quiz.GradeEvent) error {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return r.Store.SaveBookmark(ctx, Bookmark{
		Scope:     r.Scope,
		Index:     ev.Index + 1,
		SessionID: ev.SessionID,
		SavedAt:   now(),
	})
}
