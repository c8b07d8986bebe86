package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/arabah/arabah-cli/internal/api"
)

var (
	// ErrInFlight is returned when Run or Retry is called while a pipeline for
	// the same operation is still running.
	ErrInFlight = errors.New("operation already in flight")
	// ErrNotRetryable is returned by Retry outside the failure state.
	ErrNotRetryable = errors.New("operation is not in a retryable state")
	// ErrClosed is returned after the holder released the operation.
	ErrClosed = errors.New("operation closed")
)

// subscriberBuffer sizes each subscriber channel. One attempt publishes at
// most three transitions.
const subscriberBuffer = 32

// Config tunes an Operation. The zero value is usable.
type Config[In any] struct {
	// Name labels log lines.
	Name string
	// Validate rejects input before any network round trip. Its error is
	// published as validationError.
	Validate func(In) error
	// Dispatcher delivers transitions to subscribers. Defaults to Inline.
	Dispatcher Dispatcher
	// MaxAttempts caps retries. Defaults to DefaultMaxAttempts.
	MaxAttempts int
	Logger      *slog.Logger
}

// Operation owns one logical request and its RequestState.
//
// Run starts a fresh invocation; Retry re-runs the cached input while the
// retry budget lasts, then settles in validationError. At most one pipeline
// runs at a time. After Close, late completions are dropped.
type Operation[In, Out any] struct {
	name       string
	pipeline   func(context.Context, In) (Out, error)
	validate   func(In) error
	dispatcher Dispatcher
	logger     *slog.Logger

	mu         sync.Mutex
	current    RequestState[Out]
	seq        uint64
	counter    RetryCounter
	input      In
	inFlight   bool
	closed     bool
	generation uint64
	settled    chan struct{}
	pending    []func()
	flushing   bool

	subMu   sync.Mutex
	subs    map[int]*subscriber[Out]
	nextSub int
}

// subscriber only receives transitions published after the state it was
// handed on Subscribe.
type subscriber[Out any] struct {
	ch   chan RequestState[Out]
	from uint64
}

// New creates an idle operation around pipeline.
func New[In, Out any](pipeline func(context.Context, In) (Out, error), cfg Config[In]) *Operation[In, Out] {
	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = Inline
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	counter := NewRetryCounter()
	if cfg.MaxAttempts > 0 {
		counter.Max = cfg.MaxAttempts
	}
	return &Operation[In, Out]{
		name:       cfg.Name,
		pipeline:   pipeline,
		validate:   cfg.Validate,
		dispatcher: dispatcher,
		logger:     logger,
		current:    NewIdle[Out](),
		counter:    counter,
		subs:       make(map[int]*subscriber[Out]),
	}
}

// State returns the current state.
func (o *Operation[In, Out]) State() RequestState[Out] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Attempts returns how many retries the current invocation has consumed.
func (o *Operation[In, Out]) Attempts() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counter.Attempts
}

// Run starts a fresh invocation with in. The retry budget is reset and in is
// cached for later retries. Validation failures settle immediately.
func (o *Operation[In, Out]) Run(ctx context.Context, in In) error {
	defer o.flush()
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.inFlight {
		return ErrInFlight
	}

	o.counter.Reset()
	o.input = in

	if o.validate != nil {
		if err := o.validate(in); err != nil {
			o.setLocked(Invalid[Out](validationError(err)))
			return nil
		}
	}

	o.startLocked(ctx)
	return nil
}

// Retry re-runs the cached input after a failure.
//
// Once the budget is spent the operation settles in validationError with
// MaxRetryMessage and the pipeline is not invoked. validationError is
// terminal: retrying it republishes the same state.
func (o *Operation[In, Out]) Retry(ctx context.Context) error {
	defer o.flush()
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.inFlight {
		return ErrInFlight
	}

	switch o.current.Phase {
	case Failure:
	case ValidationError:
		o.setLocked(o.current)
		return nil
	default:
		return ErrNotRetryable
	}

	if !o.counter.Consume() {
		o.logger.Debug("retry budget spent", "operation", o.name, "attempts", o.counter.Attempts)
		o.setLocked(Invalid[Out](api.ValidationError(MaxRetryMessage)))
		return nil
	}

	o.setLocked(NewIdle[Out]())
	o.startLocked(ctx)
	return nil
}

// Await blocks until the running pipeline, if any, settles.
func (o *Operation[In, Out]) Await(ctx context.Context) (RequestState[Out], error) {
	o.mu.Lock()
	if !o.inFlight {
		s := o.current
		o.mu.Unlock()
		return s, nil
	}
	settled := o.settled
	o.mu.Unlock()

	select {
	case <-settled:
		return o.State(), nil
	case <-ctx.Done():
		return o.State(), ctx.Err()
	}
}

// Subscribe returns a channel receiving the current state followed by every
// later transition, and a function that stops the subscription.
//
// The current state goes through the dispatcher like any transition, so it
// arrives after deliveries the dispatcher still holds, and those earlier
// deliveries are skipped for this subscriber. The channel is buffered; a
// subscriber that falls more than subscriberBuffer states behind loses the
// states that do not fit, and the operation never blocks on it.
func (o *Operation[In, Out]) Subscribe() (<-chan RequestState[Out], func()) {
	defer o.flush()
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := make(chan RequestState[Out], subscriberBuffer)
	if o.closed {
		close(ch)
		return ch, func() {}
	}

	o.subMu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = &subscriber[Out]{ch: ch, from: o.seq}
	o.subMu.Unlock()

	initial := o.current
	o.pending = append(o.pending, func() { o.deliverTo(id, initial) })

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.subMu.Lock()
			defer o.subMu.Unlock()
			if sub, ok := o.subs[id]; ok {
				delete(o.subs, id)
				close(sub.ch)
			}
		})
	}
}

// Close releases the operation. A pipeline still running completes, but its
// result is dropped and subscribers see no further transitions.
func (o *Operation[In, Out]) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	if o.inFlight {
		o.inFlight = false
		close(o.settled)
	}

	o.subMu.Lock()
	for id, sub := range o.subs {
		delete(o.subs, id)
		close(sub.ch)
	}
	o.subMu.Unlock()
}

// startLocked publishes loading and runs the pipeline on its own goroutine.
func (o *Operation[In, Out]) startLocked(ctx context.Context) {
	o.generation++
	gen := o.generation
	in := o.input
	o.inFlight = true
	o.settled = make(chan struct{})
	o.setLocked(NewLoading[Out]())

	go func() {
		out, err := o.pipeline(ctx, in)
		o.complete(gen, out, err)
	}()
}

func (o *Operation[In, Out]) complete(gen uint64, out Out, err error) {
	o.mu.Lock()
	if o.closed || gen != o.generation {
		o.mu.Unlock()
		o.logger.Debug("dropping stale completion", "operation", o.name)
		return
	}

	o.inFlight = false
	settled := o.settled
	if err != nil {
		o.setLocked(Failed[Out](api.AsError(err)))
	} else {
		o.setLocked(Succeeded(out))
	}
	o.mu.Unlock()

	o.flush()
	close(settled)
}

// setLocked records s and queues its delivery. Deliveries are handed to the
// dispatcher by flush once mu is released.
func (o *Operation[In, Out]) setLocked(s RequestState[Out]) {
	o.seq++
	seq := o.seq
	o.current = s
	o.logger.Debug("request state", "operation", o.name, "state", s.String())
	o.pending = append(o.pending, func() { o.deliver(seq, s) })
}

// flush hands queued deliveries to the dispatcher in publication order
// without holding mu, so a dispatcher that blocks, or a callback that calls
// back into the operation, cannot deadlock it. One goroutine flushes at a
// time and drains whatever others queue meanwhile.
func (o *Operation[In, Out]) flush() {
	o.mu.Lock()
	if o.flushing {
		o.mu.Unlock()
		return
	}
	o.flushing = true
	for len(o.pending) > 0 {
		batch := o.pending
		o.pending = nil
		o.mu.Unlock()
		for _, fn := range batch {
			o.dispatcher.Dispatch(fn)
		}
		o.mu.Lock()
	}
	o.flushing = false
	o.mu.Unlock()
}

func (o *Operation[In, Out]) deliver(seq uint64, s RequestState[Out]) {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	for id, sub := range o.subs {
		if seq <= sub.from {
			continue
		}
		o.send(id, sub, s)
	}
}

func (o *Operation[In, Out]) deliverTo(id int, s RequestState[Out]) {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	if sub, ok := o.subs[id]; ok {
		o.send(id, sub, s)
	}
}

func (o *Operation[In, Out]) send(id int, sub *subscriber[Out], s RequestState[Out]) {
	select {
	case sub.ch <- s:
	default:
		o.logger.Warn("subscriber lagging, transition dropped", "operation", o.name, "subscriber", id, "state", s.String())
	}
}

func validationError(err error) *api.Error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Kind == api.KindValidation {
		return apiErr
	}
	return api.ValidationError(err.Error())
}
