package quiz

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vocabdrill/internal/grading"
	"github.com/abhisek/vocabdrill/internal/textmatch"
)

// recordingEmitter collects grade events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []GradeEvent
}

func (r *recordingEmitter) Emit(e GradeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) Events() []GradeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]GradeEvent(nil), r.events...)
}

func testItems() []Item {
	return []Item{
		{ID: "1", Prompt: "가다 (past)", Answers: []string{"갔다"}, Kind: KindVocabulary, Level: 1, Lesson: 2},
		{ID: "2", Prompt: "I went to school", Answers: []string{"학교에 갔어요", "학교 갔다"}, Kind: KindSentence, Level: 1, Lesson: 2},
		{ID: "3", Prompt: "hello", Answers: []string{"안녕하세요"}, Kind: KindVocabulary, Level: 1, Lesson: 3},
	}
}

func startedSession(t *testing.T, opts ...Option) (*Session, *recordingEmitter) {
	t.Helper()
	em := &recordingEmitter{}
	opts = append([]Option{WithEmitter(em)}, opts...)
	s, err := NewSession(testItems(), opts...)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	return s, em
}

func TestNewSession_RejectsItemWithoutAnswers(t *testing.T) {
	items := testItems()
	items[1].Answers = nil

	_, err := NewSession(items)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 1, cfgErr.Index)
	assert.Equal(t, "2", cfgErr.ItemID)
	assert.ErrorIs(t, err, textmatch.ErrInvalidInput)
}

func TestStart(t *testing.T) {
	s, err := NewSession(testItems())
	require.NoError(t, err)
	assert.Equal(t, PhaseNotStarted, s.Phase())
	assert.NotEmpty(t, s.ID())

	require.NoError(t, s.Start())
	assert.Equal(t, PhaseInProgress, s.Phase())
	assert.Equal(t, 0, s.Index())

	err = s.Start()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStart_EmptySessionCompletes(t *testing.T) {
	s, err := NewSession(nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Equal(t, PhaseCompleted, s.Phase())
	assert.Equal(t, 0, s.Index())
}

func TestStart_ResumeAt(t *testing.T) {
	s, _ := startedSession(t, WithResumeAt(2))
	assert.Equal(t, 2, s.Index())

	s, _ = startedSession(t, WithResumeAt(7))
	assert.Equal(t, 0, s.Index())
}

func TestOperationsBeforeStart(t *testing.T) {
	s, err := NewSession(testItems())
	require.NoError(t, err)

	_, err = s.Submit("갔다")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Next(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Previous(), ErrInvalidTransition)
	_, err = s.Confirm(Accept)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSubmit_PerfectAdvances(t *testing.T) {
	s, em := startedSession(t)

	out, err := s.Submit("  갔다. ")
	require.NoError(t, err)
	assert.Equal(t, grading.Perfect, out.Verdict)
	assert.True(t, out.Evaluation.IsExactMatch)
	assert.True(t, out.Advanced)
	assert.False(t, out.AwaitingConfirmation)

	assert.Equal(t, 1, s.Index())
	assert.Equal(t, PhaseInProgress, s.Phase())
	assert.Equal(t, grading.Perfect, s.Verdict(0))

	in, ok := s.InputAt(0)
	require.True(t, ok)
	assert.Equal(t, "  갔다. ", in)

	events := em.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "1", events[0].ItemID)
	assert.Equal(t, grading.Perfect, events[0].Verdict)
	assert.Equal(t, 100.0, events[0].Probability)
	assert.Equal(t, s.ID(), events[0].SessionID)
	assert.Equal(t, 1, events[0].Level)
	assert.Equal(t, 2, events[0].Lesson)
}

func TestSubmit_NearMissAwaitsConfirmation(t *testing.T) {
	s, em := startedSession(t, WithResumeAt(1))

	out, err := s.Submit("학교 가다")
	require.NoError(t, err)
	assert.True(t, out.AwaitingConfirmation)
	assert.False(t, out.Advanced)
	assert.Equal(t, grading.Unanswered, out.Verdict)
	assert.Equal(t, grading.Partial, out.Evaluation.Verdict)
	assert.Equal(t, "학교 갔다", out.Evaluation.BestMatch)
	assert.InDelta(t, 67.032, out.Evaluation.Probability, 0.001)

	assert.Equal(t, PhaseAwaitingConfirmation, s.Phase())
	assert.Equal(t, grading.Unanswered, s.Verdict(1))
	assert.Empty(t, em.Events())

	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, "학교 갔다", pending.BestMatch)
}

func TestAwaitingConfirmation_BlocksOtherTransitions(t *testing.T) {
	s, _ := startedSession(t)
	_, err := s.Submit("completely wrong")
	require.NoError(t, err)
	require.Equal(t, PhaseAwaitingConfirmation, s.Phase())

	_, err = s.Submit("갔다")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Next(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Previous(), ErrInvalidTransition)

	var te *TransitionError
	require.ErrorAs(t, s.Next(), &te)
	assert.Equal(t, "next", te.Op)
	assert.Equal(t, PhaseAwaitingConfirmation, te.Phase)

	assert.Equal(t, 0, s.Index())
}

func TestConfirm_Accept(t *testing.T) {
	s, em := startedSession(t)
	_, err := s.Submit("갔어")
	require.NoError(t, err)

	out, err := s.Confirm(Accept)
	require.NoError(t, err)
	assert.Equal(t, grading.Perfect, out.Verdict)
	assert.True(t, out.Advanced)
	assert.Equal(t, grading.Perfect, s.Verdict(0))
	assert.Equal(t, 1, s.Index())

	_, ok := s.Pending()
	assert.False(t, ok)

	events := em.Events()
	require.Len(t, events, 1)
	assert.Equal(t, grading.Perfect, events[0].Verdict)
	assert.Less(t, events[0].Probability, 100.0)
	assert.Equal(t, "갔어", events[0].Input)
}

func TestConfirm_AcceptAsPartial(t *testing.T) {
	s, em := startedSession(t, WithResumeAt(1), WithAcceptAsPartial(true))
	_, err := s.Submit("학교 가다")
	require.NoError(t, err)

	out, err := s.Confirm(Accept)
	require.NoError(t, err)
	assert.Equal(t, grading.Partial, out.Verdict)
	assert.Equal(t, grading.Partial, em.Events()[0].Verdict)
}

func TestConfirm_AcceptAsPartialKeepsPerfectForWrongEvaluations(t *testing.T) {
	s, _ := startedSession(t, WithAcceptAsPartial(true))
	_, err := s.Submit("zzzzzzzzzzzz")
	require.NoError(t, err)

	out, err := s.Confirm(Accept)
	require.NoError(t, err)
	assert.Equal(t, grading.Perfect, out.Verdict)
}

func TestConfirm_WithoutPending(t *testing.T) {
	s, _ := startedSession(t)
	_, err := s.Confirm(Reject)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSubmit_AlreadyGraded(t *testing.T) {
	s, em := startedSession(t)
	_, err := s.Submit("갔다")
	require.NoError(t, err)
	require.NoError(t, s.Previous())

	_, err = s.Submit("갔다")
	assert.ErrorIs(t, err, ErrAlreadyGraded)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, em.Events(), 1)
}

func TestNavigation(t *testing.T) {
	s, _ := startedSession(t)

	require.NoError(t, s.Previous())
	assert.Equal(t, 0, s.Index())

	require.NoError(t, s.Next())
	require.NoError(t, s.Next())
	assert.Equal(t, 2, s.Index())
	assert.Equal(t, PhaseInProgress, s.Phase())

	require.NoError(t, s.Next())
	assert.Equal(t, 3, s.Index())
	assert.Equal(t, PhaseCompleted, s.Phase())

	_, ok := s.Current()
	assert.False(t, ok)

	assert.ErrorIs(t, s.Next(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Previous(), ErrInvalidTransition)
	_, err := s.Submit("x")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 3, s.Index())
}

func TestRevisitRestoresInput(t *testing.T) {
	s, em := startedSession(t)

	_, err := s.Submit("갔다!")
	require.NoError(t, err)
	_, err = s.Submit("학교에 가요")
	require.NoError(t, err)
	_, err = s.Confirm(Reject)
	require.NoError(t, err)
	require.Equal(t, 2, s.Index())

	require.NoError(t, s.Previous())
	require.NoError(t, s.Previous())

	it, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "1", it.ID)

	in, ok := s.InputAt(0)
	require.True(t, ok)
	assert.Equal(t, "갔다!", in)
	in, ok = s.InputAt(1)
	require.True(t, ok)
	assert.Equal(t, "학교에 가요", in)

	_, ok = s.InputAt(2)
	assert.False(t, ok)

	// Navigating does not re-grade anything.
	assert.Len(t, em.Events(), 2)
	assert.Equal(t, grading.Perfect, s.Verdict(0))
	assert.Equal(t, grading.Wrong, s.Verdict(1))
}

func TestScenario_PerfectWrongPerfect(t *testing.T) {
	s, em := startedSession(t)

	out, err := s.Submit("갔다")
	require.NoError(t, err)
	require.Equal(t, grading.Perfect, out.Verdict)

	out, err = s.Submit("집에 가요")
	require.NoError(t, err)
	require.True(t, out.AwaitingConfirmation)
	assert.NotEqual(t, grading.Perfect, out.Evaluation.Verdict)

	_, err = s.Confirm(Reject)
	require.NoError(t, err)

	out, err = s.Submit("안녕하세요")
	require.NoError(t, err)
	require.Equal(t, grading.Perfect, out.Verdict)

	assert.Equal(t, PhaseCompleted, s.Phase())
	assert.Equal(t, []grading.Verdict{grading.Perfect, grading.Wrong, grading.Perfect}, s.Verdicts())

	events := em.Events()
	require.Len(t, events, 3)
	seen := map[string]int{}
	for _, e := range events {
		seen[e.ItemID]++
	}
	assert.Equal(t, map[string]int{"1": 1, "2": 1, "3": 1}, seen)
	assert.Equal(t, grading.Wrong, events[1].Verdict)

	sum := s.Summary()
	assert.Equal(t, Summary{Total: 3, Perfect: 2, Wrong: 1}, sum)
	assert.InDelta(t, 2.0/3.0, sum.PerfectRate(), 1e-9)
}

func TestNext_ReentrantCallIsRejected(t *testing.T) {
	var s *Session
	var inner error
	calls := 0
	observer := func(Transition) {
		calls++
		if calls == 1 {
			// A second press arriving before the first navigation finished.
			inner = s.Next()
		}
	}

	s, _ = startedSession(t, WithObserver(observer))
	require.NoError(t, s.Next())

	assert.ErrorIs(t, inner, ErrNavigationInFlight)
	assert.Equal(t, 1, s.Index())
	assert.Equal(t, 1, calls)

	// The flag is released once the first call returns.
	require.NoError(t, s.Next())
	assert.Equal(t, 2, s.Index())
}

func TestNext_ConcurrentCallIsRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	observer := func(Transition) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	s, _ := startedSession(t, WithObserver(observer))

	done := make(chan error, 1)
	go func() { done <- s.Next() }()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first navigation never reached its observer")
	}

	err := s.Next()
	assert.True(t, errors.Is(err, ErrNavigationInFlight))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, s.Index())
}

func TestObserverSeesTransitions(t *testing.T) {
	var got []Transition
	s, _ := startedSession(t, WithObserver(func(tr Transition) { got = append(got, tr) }))

	_, err := s.Submit("갔다")
	require.NoError(t, err)
	require.NoError(t, s.Previous())
	require.NoError(t, s.Previous()) // no-op at index 0

	assert.Equal(t, []Transition{
		{From: 0, To: 1, Phase: PhaseInProgress},
		{From: 1, To: 0, Phase: PhaseInProgress},
	}, got)
}

func TestGradeEventTimestamp(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s, em := startedSession(t, WithClock(func() time.Time { return at }), WithSessionID("sess-1"))

	_, err := s.Submit("갔다")
	require.NoError(t, err)

	events := em.Events()
	require.Len(t, events, 1)
	assert.Equal(t, at, events[0].At)
	assert.Equal(t, "sess-1", events[0].SessionID)
}

func TestSummaryRates(t *testing.T) {
	assert.Equal(t, 0.0, Summary{Total: 3, Unanswered: 3}.PerfectRate())

	sum := Summary{Total: 4, Perfect: 1, Partial: 1, Wrong: 1, Unanswered: 1}
	assert.Equal(t, 3, sum.Answered())
	assert.InDelta(t, 1.0/3.0, sum.PerfectRate(), 1e-9)
	assert.InDelta(t, 2.0/3.0, sum.AcceptedRate(), 1e-9)
}
