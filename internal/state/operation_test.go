package state

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginInput struct {
	Phone string
}

func failingPipeline(calls *atomic.Int32, err error) func(context.Context, loginInput) (string, error) {
	return func(context.Context, loginInput) (string, error) {
		calls.Add(1)
		return "", err
	}
}

func collect[T any](t *testing.T, ch <-chan RequestState[T], n int) []Phase {
	t.Helper()
	var phases []Phase
	timeout := time.After(2 * time.Second)
	for len(phases) < n {
		select {
		case s, ok := <-ch:
			if !ok {
				return phases
			}
			phases = append(phases, s.Phase)
		case <-timeout:
			t.Fatalf("timed out after %d of %d transitions: %v", len(phases), n, phases)
		}
	}
	return phases
}

func awaitSettled[In, Out any](t *testing.T, op *Operation[In, Out]) RequestState[Out] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := op.Await(ctx)
	require.NoError(t, err)
	return s
}

func TestOperation_Success(t *testing.T) {
	op := New(func(_ context.Context, in loginInput) (string, error) {
		return "otp sent to " + in.Phone, nil
	}, Config[loginInput]{Name: "login"})

	ch, stop := op.Subscribe()
	defer stop()

	require.NoError(t, op.Run(context.Background(), loginInput{Phone: "500000000"}))
	s := awaitSettled(t, op)

	assert.Equal(t, Success, s.Phase)
	assert.Equal(t, "otp sent to 500000000", s.Value)
	assert.Equal(t, []Phase{Idle, Loading, Success}, collect(t, ch, 3))
}

func TestOperation_FailureKeepsErrorKind(t *testing.T) {
	var calls atomic.Int32
	op := New(failingPipeline(&calls, api.NewError(api.KindUnauthorized, "token expired")), Config[loginInput]{})

	require.NoError(t, op.Run(context.Background(), loginInput{}))
	s := awaitSettled(t, op)

	require.Equal(t, Failure, s.Phase)
	assert.True(t, errors.Is(s.Err, api.ErrUnauthorized))
	assert.Equal(t, "token expired", s.Err.Message)
}

func TestOperation_ForeignErrorBecomesNetworkError(t *testing.T) {
	var calls atomic.Int32
	op := New(failingPipeline(&calls, errors.New("connection reset")), Config[loginInput]{})

	require.NoError(t, op.Run(context.Background(), loginInput{}))
	s := awaitSettled(t, op)

	require.Equal(t, Failure, s.Phase)
	assert.Equal(t, api.KindNetworkError, s.Err.Kind)
	assert.Equal(t, "connection reset", s.Err.Message)
}

func TestOperation_RetryBudget(t *testing.T) {
	var calls atomic.Int32
	op := New(failingPipeline(&calls, api.NetworkError("timeout")), Config[loginInput]{Name: "login"})
	ctx := context.Background()

	require.NoError(t, op.Run(ctx, loginInput{Phone: "5"}))
	awaitSettled(t, op)
	require.EqualValues(t, 1, calls.Load())

	for i := 1; i <= DefaultMaxAttempts; i++ {
		require.NoError(t, op.Retry(ctx))
		s := awaitSettled(t, op)
		assert.Equal(t, Failure, s.Phase, "retry %d", i)
		assert.EqualValues(t, i+1, calls.Load(), "retry %d should re-run the pipeline", i)
		assert.Equal(t, i, op.Attempts())
	}

	require.NoError(t, op.Retry(ctx))
	s := op.State()
	require.Equal(t, ValidationError, s.Phase)
	assert.Equal(t, MaxRetryMessage, s.Err.Message)
	assert.True(t, api.IsValidation(s.Err))
	assert.EqualValues(t, DefaultMaxAttempts+1, calls.Load(), "exhausted retry must not invoke the pipeline")

	// validationError is terminal.
	require.NoError(t, op.Retry(ctx))
	assert.Equal(t, ValidationError, op.State().Phase)
	assert.EqualValues(t, DefaultMaxAttempts+1, calls.Load())
}

func TestOperation_RetryTransitions(t *testing.T) {
	var calls atomic.Int32
	op := New(failingPipeline(&calls, api.NetworkError("timeout")), Config[loginInput]{})
	ch, stop := op.Subscribe()
	defer stop()

	ctx := context.Background()
	require.NoError(t, op.Run(ctx, loginInput{}))
	awaitSettled(t, op)
	require.NoError(t, op.Retry(ctx))
	awaitSettled(t, op)

	assert.Equal(t, []Phase{Idle, Loading, Failure, Idle, Loading, Failure}, collect(t, ch, 6))
}

func TestOperation_RetryUsesCachedInput(t *testing.T) {
	var seen []string
	var fail atomic.Bool
	fail.Store(true)
	op := New(func(_ context.Context, in loginInput) (string, error) {
		seen = append(seen, in.Phone)
		if fail.Load() {
			return "", api.NetworkError("timeout")
		}
		return in.Phone, nil
	}, Config[loginInput]{})

	ctx := context.Background()
	require.NoError(t, op.Run(ctx, loginInput{Phone: "555"}))
	awaitSettled(t, op)

	fail.Store(false)
	require.NoError(t, op.Retry(ctx))
	s := awaitSettled(t, op)

	assert.Equal(t, Success, s.Phase)
	assert.Equal(t, []string{"555", "555"}, seen)
}

func TestOperation_FreshRunResetsBudget(t *testing.T) {
	var calls atomic.Int32
	op := New(failingPipeline(&calls, api.NetworkError("timeout")), Config[loginInput]{MaxAttempts: 1})
	ctx := context.Background()

	require.NoError(t, op.Run(ctx, loginInput{}))
	awaitSettled(t, op)
	require.NoError(t, op.Retry(ctx))
	awaitSettled(t, op)
	require.NoError(t, op.Retry(ctx))
	require.Equal(t, ValidationError, op.State().Phase)

	require.NoError(t, op.Run(ctx, loginInput{}))
	awaitSettled(t, op)
	assert.Equal(t, 0, op.Attempts())

	require.NoError(t, op.Retry(ctx))
	s := awaitSettled(t, op)
	assert.Equal(t, Failure, s.Phase)
}

func TestOperation_ValidationShortCircuits(t *testing.T) {
	var calls atomic.Int32
	op := New(failingPipeline(&calls, nil), Config[loginInput]{
		Validate: func(in loginInput) error {
			if in.Phone == "" {
				return errors.New("phone is required")
			}
			return nil
		},
	})

	require.NoError(t, op.Run(context.Background(), loginInput{}))
	s := op.State()

	require.Equal(t, ValidationError, s.Phase)
	assert.Equal(t, "phone is required", s.Err.Message)
	assert.Zero(t, calls.Load())

	require.NoError(t, op.Retry(context.Background()))
	assert.Equal(t, ValidationError, op.State().Phase)
	assert.Zero(t, calls.Load())
}

func TestOperation_ValidationKeepsTypedError(t *testing.T) {
	op := New(func(context.Context, loginInput) (string, error) { return "", nil }, Config[loginInput]{
		Validate: func(loginInput) error { return api.ValidationError("invalid OTP") },
	})
	require.NoError(t, op.Run(context.Background(), loginInput{}))
	assert.Equal(t, "invalid OTP", op.State().Err.Message)
}

func TestOperation_RejectsConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	op := New(func(context.Context, loginInput) (string, error) {
		<-release
		return "done", nil
	}, Config[loginInput]{})

	ctx := context.Background()
	require.NoError(t, op.Run(ctx, loginInput{}))
	assert.ErrorIs(t, op.Run(ctx, loginInput{}), ErrInFlight)
	assert.ErrorIs(t, op.Retry(ctx), ErrInFlight)
	assert.Equal(t, Loading, op.State().Phase)

	close(release)
	assert.Equal(t, Success, awaitSettled(t, op).Phase)
}

func TestOperation_RetryOutsideFailure(t *testing.T) {
	op := New(func(context.Context, loginInput) (string, error) { return "ok", nil }, Config[loginInput]{})

	assert.ErrorIs(t, op.Retry(context.Background()), ErrNotRetryable)

	require.NoError(t, op.Run(context.Background(), loginInput{}))
	awaitSettled(t, op)
	assert.ErrorIs(t, op.Retry(context.Background()), ErrNotRetryable)
}

func TestOperation_CloseDropsLateCompletion(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	op := New(func(context.Context, loginInput) (string, error) {
		defer close(finished)
		<-release
		return "late", nil
	}, Config[loginInput]{})

	require.NoError(t, op.Run(context.Background(), loginInput{}))
	ch, stop := op.Subscribe()
	defer stop()

	op.Close()
	close(release)
	<-finished

	// Give complete() a chance to run.
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, Loading, op.State().Phase)
	assert.Equal(t, []Phase{Loading}, collect(t, ch, 2))
	assert.ErrorIs(t, op.Run(context.Background(), loginInput{}), ErrClosed)
	assert.ErrorIs(t, op.Retry(context.Background()), ErrClosed)

	s, err := op.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Loading, s.Phase)
}

func TestOperation_SubscribeAfterClose(t *testing.T) {
	op := New(func(context.Context, loginInput) (string, error) { return "", nil }, Config[loginInput]{})
	op.Close()
	op.Close()

	ch, stop := op.Subscribe()
	stop()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestOperation_Unsubscribe(t *testing.T) {
	op := New(func(context.Context, loginInput) (string, error) { return "ok", nil }, Config[loginInput]{})
	ch, stop := op.Subscribe()
	<-ch
	stop()
	stop()

	require.NoError(t, op.Run(context.Background(), loginInput{}))
	awaitSettled(t, op)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestOperation_MainQueueDelivery(t *testing.T) {
	q := NewMainQueue(0)
	defer q.Close()

	var calls atomic.Int32
	op := New(failingPipeline(&calls, api.NewError(api.KindServerError, "")), Config[loginInput]{Dispatcher: q})
	ch, stop := op.Subscribe()
	defer stop()

	require.NoError(t, op.Run(context.Background(), loginInput{}))
	awaitSettled(t, op)

	assert.Equal(t, []Phase{Idle, Loading, Failure}, collect(t, ch, 3))
}

func TestOperation_SubscribeWhileDeliveriesQueued(t *testing.T) {
	q := NewMainQueue(8)
	defer q.Close()

	op := New(func(context.Context, loginInput) (string, error) { return "ok", nil }, Config[loginInput]{Dispatcher: q})

	release := make(chan struct{})
	q.Dispatch(func() { <-release })

	require.NoError(t, op.Run(context.Background(), loginInput{}))
	require.Equal(t, Success, awaitSettled(t, op).Phase)

	ch, stop := op.Subscribe()
	defer stop()
	close(release)

	assert.Equal(t, []Phase{Success}, collect(t, ch, 1))

	drained := make(chan struct{})
	q.Dispatch(func() { close(drained) })
	<-drained
	assert.Empty(t, ch, "transitions queued before Subscribe must not replay")

	require.NoError(t, op.Run(context.Background(), loginInput{}))
	awaitSettled(t, op)
	assert.Equal(t, []Phase{Loading, Success}, collect(t, ch, 2))
}

func TestOperation_QueuedCallbackCanReadStateWhileDispatchBlocks(t *testing.T) {
	q := NewMainQueue(1)
	defer q.Close()

	op := New(func(context.Context, loginInput) (string, error) { return "ok", nil }, Config[loginInput]{Dispatcher: q})

	started := make(chan struct{})
	release := make(chan struct{})
	seen := make(chan Phase, 1)
	q.Dispatch(func() {
		close(started)
		<-release
		seen <- op.State().Phase
	})
	<-started
	q.Dispatch(func() {})

	runErr := make(chan error, 1)
	go func() { runErr <- op.Run(context.Background(), loginInput{}) }()

	// Let Run reach the full queue.
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case p := <-seen:
		assert.Contains(t, []Phase{Loading, Success}, p)
	case <-time.After(2 * time.Second):
		t.Fatal("queued callback blocked on the operation")
	}
	require.NoError(t, <-runErr)
	assert.Equal(t, Success, awaitSettled(t, op).Phase)
}

func TestOperation_SlowSubscriberDoesNotBlock(t *testing.T) {
	op := New(func(context.Context, loginInput) (string, error) { return "ok", nil }, Config[loginInput]{})
	ch, stop := op.Subscribe()
	defer stop()

	for range 20 {
		require.NoError(t, op.Run(context.Background(), loginInput{}))
		awaitSettled(t, op)
	}

	assert.Len(t, ch, subscriberBuffer)
	assert.Equal(t, Idle, (<-ch).Phase)
}

func TestOperation_AwaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	op := New(func(context.Context, loginInput) (string, error) {
		<-release
		return "", nil
	}, Config[loginInput]{})
	require.NoError(t, op.Run(context.Background(), loginInput{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	s, err := op.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Loading, s.Phase)
}
