package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/state"
)

// runOperation drives one request through a state.Operation and blocks until
// it settles.
//
// A retryable failure on an interactive terminal is offered again with
// "Retry? [y/N]" until the user declines or the retry budget is spent, which
// settles the operation in validationError. Validation errors are returned as
// they are, without a round trip.
func runOperation[In, Out any](
	cmd *cobra.Command,
	name string,
	in In,
	validate func(In) error,
	pipeline func(context.Context, In) (Out, error),
) (Out, error) {
	ctx := cmd.Context()
	var zero Out

	op := state.New(pipeline, state.Config[In]{
		Name:     name,
		Validate: validate,
		Logger:   slog.Default(),
	})
	defer op.Close()

	updates, stop := op.Subscribe()
	defer stop()

	if err := op.Run(ctx, in); err != nil {
		return zero, err
	}

	for {
		s, err := awaitSettled(ctx, updates)
		if err != nil {
			return zero, err
		}

		switch s.Phase {
		case state.Success:
			return s.Value, nil
		case state.ValidationError:
			return zero, s.Err
		}

		if !s.Retryable() || !s.Err.Kind.Retryable() || !canPrompt(cmd) {
			return zero, s.Err
		}
		if !askRetry(cmd, s) {
			return zero, s.Err
		}
		if err := op.Retry(ctx); err != nil {
			return zero, err
		}
	}
}

// awaitSettled reads transitions until one leaves the pipeline idle.
// The idle state published before a retry is skipped.
func awaitSettled[T any](ctx context.Context, updates <-chan state.RequestState[T]) (state.RequestState[T], error) {
	for {
		select {
		case s, ok := <-updates:
			if !ok {
				return s, state.ErrClosed
			}
			if s.Phase != state.Idle && s.Settled() {
				return s, nil
			}
		case <-ctx.Done():
			return state.RequestState[T]{}, ctx.Err()
		}
	}
}

func askRetry[T any](cmd *cobra.Command, s state.RequestState[T]) bool {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Request failed: %s\n", s.Err.Error())
	answer, err := promptLine(cmd, "Retry? [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
