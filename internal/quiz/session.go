package quiz

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/vocabdrill/internal/grading"
	"github.com/abhisek/vocabdrill/internal/textmatch"
)

// Session drives a learner through an ordered list of items.
//
// Every exported method runs its transition to completion before returning.
// Grade events are handed to the Emitter without waiting for delivery, so a
// slow or failing persister never holds up the session.
type Session struct {
	mu sync.Mutex

	// navigating is held for the whole of a Next/Previous call, including
	// observer notification. A second call while it is held is rejected.
	navigating atomic.Bool

	id        string
	items     []Item
	evaluator *grading.Evaluator
	emitter   Emitter
	observer  func(Transition)
	now       func() time.Time
	resumeAt  int

	// acceptAsPartial finalizes accepted near misses as Partial instead of
	// Perfect when the evaluator itself said Partial.
	acceptAsPartial bool

	phase         Phase
	index         int
	verdicts      map[int]grading.Verdict
	probabilities map[int]float64
	inputs        map[int]string
	pending       *grading.Evaluation
}

// Option configures a Session.
type Option func(*Session)

// WithEvaluator sets the evaluator. Default: grading.DefaultConfig().
func WithEvaluator(e *grading.Evaluator) Option {
	return func(s *Session) { s.evaluator = e }
}

// WithEmitter sets where grade events go. Default: discarded.
func WithEmitter(e Emitter) Option {
	return func(s *Session) { s.emitter = e }
}

// WithObserver registers a callback run after every index change. It runs
// outside the session lock, so it may call read accessors.
func WithObserver(fn func(Transition)) Option {
	return func(s *Session) { s.observer = fn }
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithResumeAt makes Start begin at a saved position. Out-of-range
// positions start from the first item.
func WithResumeAt(index int) Option {
	return func(s *Session) { s.resumeAt = index }
}

// WithAcceptAsPartial records accepted near misses as Partial when the
// similarity cleared the threshold.
func WithAcceptAsPartial(enabled bool) Option {
	return func(s *Session) { s.acceptAsPartial = enabled }
}

// WithClock overrides time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession validates items and builds a session in PhaseNotStarted.
// An item without canonical answers is rejected with a *ConfigError.
func NewSession(items []Item, opts ...Option) (*Session, error) {
	for i, it := range items {
		if !it.Submittable() {
			return nil, &ConfigError{
				Index:  i,
				ItemID: it.ID,
				Err:    fmt.Errorf("no canonical answers: %w", textmatch.ErrInvalidInput),
			}
		}
	}

	s := &Session{
		items:         items,
		emitter:       nopEmitter{},
		now:           time.Now,
		verdicts:      make(map[int]grading.Verdict),
		probabilities: make(map[int]float64),
		inputs:        make(map[int]string),
	}
	for _, o := range opts {
		o(s)
	}
	if s.id == "" {
		s.id = uuid.New().String()
	}
	if s.evaluator == nil {
		s.evaluator = grading.NewEvaluator(grading.DefaultConfig())
	}
	if s.emitter == nil {
		s.emitter = nopEmitter{}
	}
	return s, nil
}

// Start moves the session into PhaseInProgress at the first item, or at the
// resume position. A session with no items completes immediately. Observers
// are not notified for the initial position.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseNotStarted {
		return s.transitionErr("start")
	}

	s.index = 0
	if s.resumeAt > 0 && s.resumeAt < len(s.items) {
		s.index = s.resumeAt
	}
	s.phase = PhaseInProgress
	if s.index == len(s.items) {
		s.phase = PhaseCompleted
	}
	return nil
}

// Submit grades raw input against the current item.
//
// A Perfect verdict is finalized and the session advances. Anything else
// parks the session in PhaseAwaitingConfirmation until Confirm is called.
func (s *Session) Submit(raw string) (Outcome, error) {
	out, t, moved, err := s.submit(raw)
	if err != nil {
		return Outcome{}, err
	}
	if moved {
		s.notify(t)
	}
	return out, nil
}

func (s *Session) submit(raw string) (Outcome, Transition, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return Outcome{}, Transition{}, false, s.transitionErr("submit")
	}
	if s.verdicts[s.index] != grading.Unanswered {
		return Outcome{}, Transition{}, false, &TransitionError{Op: "submit", Phase: s.phase, Err: ErrAlreadyGraded}
	}

	idx := s.index
	item := &s.items[idx]
	s.inputs[idx] = raw

	ev, err := s.evaluator.Evaluate(raw, item.Answers)
	if err != nil {
		return Outcome{}, Transition{}, false, fmt.Errorf("submit item %q: %w", item.ID, err)
	}

	out := Outcome{Index: idx, ItemID: item.ID, Evaluation: ev}

	if ev.Verdict == grading.Perfect {
		s.finalize(idx, grading.Perfect, ev.Probability)
		out.Verdict = grading.Perfect
		out.Advanced = true
		return out, s.step(1), true, nil
	}

	s.pending = &ev
	s.phase = PhaseAwaitingConfirmation
	out.AwaitingConfirmation = true
	return out, Transition{}, false, nil
}

// Confirm resolves a pending near miss. Accept finalizes the item as
// Perfect, Reject as Wrong; either way the session advances.
func (s *Session) Confirm(o Override) (Outcome, error) {
	out, t, err := s.confirm(o)
	if err != nil {
		return Outcome{}, err
	}
	s.notify(t)
	return out, nil
}

func (s *Session) confirm(o Override) (Outcome, Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAwaitingConfirmation || s.pending == nil {
		return Outcome{}, Transition{}, s.transitionErr("confirm")
	}

	idx := s.index
	ev := *s.pending

	verdict := grading.Wrong
	if o == Accept {
		verdict = grading.Perfect
		if s.acceptAsPartial && ev.Verdict == grading.Partial {
			verdict = grading.Partial
		}
	}

	s.pending = nil
	s.phase = PhaseInProgress
	s.finalize(idx, verdict, ev.Probability)

	out := Outcome{
		Index:      idx,
		ItemID:     s.items[idx].ID,
		Evaluation: ev,
		Verdict:    verdict,
		Advanced:   true,
	}
	return out, s.step(1), nil
}

// Next moves to the following item. Moving past the last item completes
// the session.
func (s *Session) Next() error {
	return s.navigate("next", 1)
}

// Previous moves back one item. At the first item it is a no-op.
func (s *Session) Previous() error {
	return s.navigate("previous", -1)
}

func (s *Session) navigate(op string, delta int) error {
	if !s.navigating.CompareAndSwap(false, true) {
		return ErrNavigationInFlight
	}
	defer s.navigating.Store(false)

	t, moved, err := s.move(op, delta)
	if err != nil {
		return err
	}
	if moved {
		s.notify(t)
	}
	return nil
}

func (s *Session) move(op string, delta int) (Transition, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return Transition{}, false, s.transitionErr(op)
	}
	t := s.step(delta)
	return t, t.From != t.To, nil
}

// step moves the index by delta within [0, len(items)]. Callers hold mu.
func (s *Session) step(delta int) Transition {
	from := s.index
	to := min(max(from+delta, 0), len(s.items))
	s.index = to
	if to == len(s.items) {
		s.phase = PhaseCompleted
	}
	return Transition{From: from, To: to, Phase: s.phase}
}

// finalize records the verdict and hands a grade event to the emitter.
// Callers hold mu.
func (s *Session) finalize(idx int, v grading.Verdict, probability float64) {
	s.verdicts[idx] = v
	s.probabilities[idx] = probability

	it := &s.items[idx]
	s.emitter.Emit(GradeEvent{
		SessionID:   s.id,
		ItemID:      it.ID,
		Index:       idx,
		Verdict:     v,
		Probability: probability,
		Input:       s.inputs[idx],
		Level:       it.Level,
		Lesson:      it.Lesson,
		At:          s.now(),
	})
}

func (s *Session) notify(t Transition) {
	if s.observer != nil {
		s.observer(t)
	}
}

func (s *Session) transitionErr(op string) error {
	return &TransitionError{Op: op, Phase: s.phase, Err: ErrInvalidTransition}
}

// ID returns the session identifier carried on every grade event.
func (s *Session) ID() string {
	return s.id
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Index returns the current item index; len(Items()) once completed.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Items returns the session's items. Callers must not modify them.
func (s *Session) Items() []Item {
	return s.items
}

// Current returns the item at the current index, or false once completed.
func (s *Session) Current() (*Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.items) {
		return nil, false
	}
	return &s.items[s.index], true
}

// Pending returns the evaluation awaiting confirmation, if any.
func (s *Session) Pending() (grading.Evaluation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return grading.Evaluation{}, false
	}
	return *s.pending, true
}

// Verdict returns the final verdict recorded for item i.
func (s *Session) Verdict(i int) grading.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verdicts[i]
}

// Verdicts returns one verdict per item, Unanswered where nothing is final.
func (s *Session) Verdicts() []grading.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]grading.Verdict, len(s.items))
	for i := range s.items {
		out[i] = s.verdicts[i]
	}
	return out
}

// InputAt returns what the learner typed for item i, if anything.
// Revisiting an item shows this text; it is never re-evaluated.
func (s *Session) InputAt(i int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inputs[i]
	return in, ok
}

// Probability returns the similarity recorded with item i's final verdict.
func (s *Session) Probability(i int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probabilities[i]
}

// Summary tallies the verdicts recorded so far.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{Total: len(s.items)}
	for i := range s.items {
		switch s.verdicts[i] {
		case grading.Perfect:
			sum.Perfect++
		case grading.Partial:
			sum.Partial++
		case grading.Wrong:
			sum.Wrong++
		default:
			sum.Unanswered++
		}
	}
	return sum
}
