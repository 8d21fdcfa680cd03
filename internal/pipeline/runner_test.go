package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterState struct {
	visits   []Step
	attempts int
}

func TestRunnerReachesTerminalStep(t *testing.T) {
	r := New[counterState]("test", "first", slog.Default())
	r.AddStep("first", func(_ context.Context, s *counterState) error {
		s.visits = append(s.visits, "first")
		return nil
	}, func(_ *counterState) Step { return "second" })
	r.AddStep("second", func(_ context.Context, s *counterState) error {
		s.visits = append(s.visits, "second")
		return nil
	}, func(_ *counterState) Step { return "done" })

	state := &counterState{}
	terminal, err := r.Run(context.Background(), state, nil)

	require.NoError(t, err)
	assert.Equal(t, Step("done"), terminal)
	assert.Equal(t, []Step{"first", "second"}, state.visits)
}

func TestRunnerRetryLoopIsBoundedByTransition(t *testing.T) {
	const maxAttempts = 3

	r := New[counterState]("test", "generate", slog.Default())
	r.AddStep("generate", func(_ context.Context, s *counterState) error {
		s.attempts++
		return nil
	}, func(s *counterState) Step {
		if s.attempts < maxAttempts {
			return "generate"
		}
		return "failed"
	})

	state := &counterState{}
	terminal, err := r.Run(context.Background(), state, nil)

	require.NoError(t, err)
	assert.Equal(t, Step("failed"), terminal)
	assert.Equal(t, maxAttempts, state.attempts)
}

func TestRunnerStepBudgetGuardsBrokenTables(t *testing.T) {
	r := New[counterState]("test", "loop", slog.Default())
	r.AddStep("loop", func(_ context.Context, s *counterState) error {
		s.attempts++
		return nil
	}, func(_ *counterState) Step { return "loop" })

	_, err := r.Run(context.Background(), &counterState{}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded")
}

func TestRunnerNodeErrorStopsRun(t *testing.T) {
	boom := errors.New("boom")

	r := New[counterState]("test", "first", slog.Default())
	r.AddStep("first", func(_ context.Context, _ *counterState) error {
		return boom
	}, func(_ *counterState) Step { return "done" })

	terminal, err := r.Run(context.Background(), &counterState{}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Step("first"), terminal)
}

func TestRunnerHookSeesEveryCompletedStep(t *testing.T) {
	r := New[counterState]("test", "first", slog.Default())
	r.AddStep("first", func(_ context.Context, _ *counterState) error { return nil },
		func(_ *counterState) Step { return "second" })
	r.AddStep("second", func(_ context.Context, _ *counterState) error { return nil },
		func(_ *counterState) Step { return "done" })

	var observed []Step
	_, err := r.Run(context.Background(), &counterState{}, func(step Step, _ *counterState) {
		observed = append(observed, step)
	})

	require.NoError(t, err)
	assert.Equal(t, []Step{"first", "second"}, observed)
}

func TestRunnerHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r := New[counterState]("test", "first", slog.Default())
	r.AddStep("first", func(_ context.Context, s *counterState) error {
		s.attempts++
		cancel()
		return nil
	}, func(_ *counterState) Step { return "first" })

	state := &counterState{}
	_, err := r.Run(ctx, state, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, state.attempts)
}
