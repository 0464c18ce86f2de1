package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vocabdrill/internal/grading"
	"github.com/abhisek/vocabdrill/internal/quiz"
)

type memRecorder struct {
	mu     sync.Mutex
	events []quiz.GradeEvent
	err    error
}

func (m *memRecorder) RecordGrade(_ context.Context, ev quiz.GradeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *memRecorder) recorded() []quiz.GradeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]quiz.GradeEvent(nil), m.events...)
}

func gradeEvent(id string, idx int, v grading.Verdict) quiz.GradeEvent {
	return quiz.GradeEvent{SessionID: "s1", ItemID: id, Index: idx, Verdict: v}
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	rec := &memRecorder{}
	d := NewDispatcher(rec)

	d.Emit(gradeEvent("a", 0, grading.Perfect))
	d.Emit(gradeEvent("b", 1, grading.Wrong))
	d.Emit(gradeEvent("c", 2, grading.Perfect))
	require.NoError(t, d.Close(context.Background()))

	got := rec.recorded()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ItemID)
	assert.Equal(t, "b", got[1].ItemID)
	assert.Equal(t, "c", got[2].ItemID)
}

func TestDispatcher_BurstNeverDrops(t *testing.T) {
	rec := &memRecorder{}
	d := NewDispatcher(rec)

	for i := 0; i < 50; i++ {
		d.Emit(gradeEvent("x", i, grading.Perfect))
	}
	require.NoError(t, d.Close(context.Background()))

	assert.Len(t, rec.recorded(), 50)
}

func TestDispatcher_FailureIsReported(t *testing.T) {
	boom := errors.New("disk full")
	rec := &memRecorder{err: boom}

	var (
		mu       sync.Mutex
		failures []*PersistenceError
	)
	d := NewDispatcher(rec, WithFailureHandler(func(e *PersistenceError) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, e)
	}))

	d.Emit(gradeEvent("a", 0, grading.Wrong))
	require.NoError(t, d.Close(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failures, 1)
	assert.Equal(t, "a", failures[0].Event.ItemID)
	assert.Equal(t, grading.Wrong, failures[0].Event.Verdict)
	assert.ErrorIs(t, failures[0], boom)
	assert.Contains(t, failures[0].Error(), `item "a"`)
}

func TestDispatcher_EmitAfterClose(t *testing.T) {
	var got error
	d := NewDispatcher(&memRecorder{}, WithFailureHandler(func(e *PersistenceError) {
		got = e
	}))
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	d.Emit(gradeEvent("late", 0, grading.Perfect))
	assert.ErrorIs(t, got, ErrDispatcherClosed)
}

func TestDispatcher_CloseHonorsContext(t *testing.T) {
	release := make(chan struct{})
	rec := RecorderFunc(func(ctx context.Context, _ quiz.GradeEvent) error {
		<-release
		return nil
	})
	d := NewDispatcher(rec)
	d.Emit(gradeEvent("slow", 0, grading.Perfect))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_DrivesSessionWithoutBlocking(t *testing.T) {
	release := make(chan struct{})
	rec := &memRecorder{}
	slow := RecorderFunc(func(ctx context.Context, ev quiz.GradeEvent) error {
		<-release
		return rec.RecordGrade(ctx, ev)
	})
	d := NewDispatcher(slow)

	items := []quiz.Item{
		{ID: "1", Prompt: "go (past)", Answers: []string{"갔다"}},
		{ID: "2", Prompt: "hello", Answers: []string{"안녕하세요"}},
	}
	s, err := quiz.NewSession(items, quiz.WithEmitter(d))
	require.NoError(t, err)
	require.NoError(t, s.Start())

	_, err = s.Submit("갔다")
	require.NoError(t, err)
	_, err = s.Submit("안녕하세요")
	require.NoError(t, err)
	assert.Equal(t, quiz.PhaseCompleted, s.Phase())
	assert.Empty(t, rec.recorded())

	close(release)
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, rec.recorded(), 2)
}

func TestDispatcher_BacklogKeepsOrderAndBookmarkAdvances(t *testing.T) {
	release := make(chan struct{})
	rec := &memRecorder{}
	marks := &memBookmarks{}
	slowFirst := RecorderFunc(func(ctx context.Context, ev quiz.GradeEvent) error {
		if ev.Index == 0 {
			<-release
		}
		return rec.RecordGrade(ctx, ev)
	})
	d := NewDispatcher(Fanout{slowFirst, &BookmarkRecorder{Store: marks, Scope: "L1-2"}})

	for i := 0; i < 4; i++ {
		d.Emit(gradeEvent("x", i, grading.Perfect))
	}
	close(release)
	require.NoError(t, d.Close(context.Background()))

	got := rec.recorded()
	require.Len(t, got, 4)
	for i, ev := range got {
		assert.Equal(t, i, ev.Index)
	}

	b, ok, err := marks.Bookmark(context.Background(), "L1-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, b.Index)
}
