package progress

import (
	"context"
	"sync"
	"time"

	"github.com/abhisek/vocabdrill/internal/logger"
	"github.com/abhisek/vocabdrill/internal/quiz"
)

const defaultTimeout = 10 * time.Second

// Dispatcher is a quiz.Emitter that records grade events on a background
// worker. Emit never blocks and never drops an event, and events reach the
// recorder in emission order.
type Dispatcher struct {
	rec       Recorder
	log       *logger.Logger
	onFailure func(*PersistenceError)
	timeout   time.Duration

	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
	queue  []quiz.GradeEvent
	wg     sync.WaitGroup
}

var _ quiz.Emitter = (*Dispatcher)(nil)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger for delivery failures. Default: no-op.
func WithLogger(l *logger.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

// WithFailureHandler registers a callback for failed deliveries. It runs on
// the delivering goroutine.
func WithFailureHandler(fn func(*PersistenceError)) DispatcherOption {
	return func(d *Dispatcher) { d.onFailure = fn }
}

// WithTimeout bounds each RecordGrade call. Default: 10s.
func WithTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = t }
}

// NewDispatcher starts the delivery worker.
func NewDispatcher(rec Recorder, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		rec:     rec,
		log:     logger.Nop(),
		timeout: defaultTimeout,
	}
	d.cond = sync.NewCond(&d.mu)
	for _, o := range opts {
		o(d)
	}

	d.wg.Add(1)
	go d.processLoop()
	return d
}

// Emit appends ev to the delivery queue. The queue is unbounded.
func (d *Dispatcher) Emit(ev quiz.GradeEvent) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.fail(ev, ErrDispatcherClosed)
		return
	}
	d.queue = append(d.queue, ev)
	d.cond.Signal()
	d.mu.Unlock()
}

// Close stops accepting events and waits for queued deliveries, or for
// ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.cond.Broadcast()
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) processLoop() {
	defer d.wg.Done()
	for {
		ev, ok := d.next()
		if !ok {
			return
		}
		d.deliver(ev)
	}
}

// next blocks until an event is queued. It reports false once the
// dispatcher is closed and the queue is drained.
func (d *Dispatcher) next() (quiz.GradeEvent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.queue) == 0 && !d.closed {
		d.cond.Wait()
	}
	if len(d.queue) == 0 {
		return quiz.GradeEvent{}, false
	}
	ev := d.queue[0]
	d.queue[0] = quiz.GradeEvent{}
	d.queue = d.queue[1:]
	return ev, true
}

func (d *Dispatcher) deliver(ev quiz.GradeEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.rec.RecordGrade(ctx, ev); err != nil {
		d.fail(ev, err)
		return
	}
	d.log.Debug("grade recorded",
		"session_id", ev.SessionID,
		"item_id", ev.ItemID,
		"verdict", ev.Verdict.String())
}

func (d *Dispatcher) fail(ev quiz.GradeEvent, err error) {
	perr := &PersistenceError{Event: ev, Err: err}
	d.log.Warn("grade not persisted",
		"session_id", ev.SessionID,
		"item_id", ev.ItemID,
		"verdict", ev.Verdict.String(),
		"error", err)
	if d.onFailure != nil {
		d.onFailure(perr)
	}
}
