// Package pipeline provides the generic state-machine executor shared by the
// planning and review agents. A pipeline is a set of named steps, a node
// function per step that mutates the typed state, and a transition function
// per step that picks the next step. Steps without a node are terminal.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Step identifies one state of a pipeline's state machine.
type Step string

// Node applies one step's side effects to the state. Errors returned here are
// infrastructure failures; domain-level failures are recorded on the state
// itself and resolved by the transition table.
type Node[S any] func(ctx context.Context, state *S) error

// Transition inspects the state after a node ran and names the next step.
type Transition[S any] func(state *S) Step

// Hook observes each completed step. Used by the streaming plan variant; it
// must not mutate the state.
type Hook[S any] func(step Step, state *S)

// Runner executes a pipeline to a terminal step. The transition table makes
// the retry bounds and terminal states auditable independent of any node's
// internals.
type Runner[S any] struct {
	name        string
	start       Step
	nodes       map[Step]Node[S]
	transitions map[Step]Transition[S]
	maxSteps    int
	logger      *slog.Logger
}

// defaultMaxSteps bounds any single run; generous next to the retry budget so
// it only trips on a broken transition table.
const defaultMaxSteps = 32

// New creates a Runner for the given start step.
func New[S any](name string, start Step, logger *slog.Logger) *Runner[S] {
	return &Runner[S]{
		name:        name,
		start:       start,
		nodes:       make(map[Step]Node[S]),
		transitions: make(map[Step]Transition[S]),
		maxSteps:    defaultMaxSteps,
		logger:      logger,
	}
}

// AddStep registers a node and its transition. Registering the same step twice
// overwrites the previous entry.
func (r *Runner[S]) AddStep(step Step, node Node[S], next Transition[S]) *Runner[S] {
	r.nodes[step] = node
	r.transitions[step] = next
	return r
}

// IsTerminal reports whether the step has no registered node.
func (r *Runner[S]) IsTerminal(step Step) bool {
	_, ok := r.nodes[step]
	return !ok
}

// Run drives the state machine from the start step until a terminal step is
// reached, invoking hook after every completed node. It returns the terminal
// step, or an error when the context is cancelled, a node fails, or the step
// budget is exhausted (a transition-table bug, not a domain outcome).
func (r *Runner[S]) Run(ctx context.Context, state *S, hook Hook[S]) (Step, error) {
	ctx, span := otel.Tracer("pipeline").Start(ctx, r.name)
	defer span.End()

	current := r.start
	for i := 0; ; i++ {
		if r.IsTerminal(current) {
			span.SetAttributes(attribute.String("pipeline.terminal", string(current)), attribute.Int("pipeline.steps", i))
			span.SetStatus(codes.Ok, "pipeline complete")
			return current, nil
		}
		if i >= r.maxSteps {
			err := fmt.Errorf("pipeline %s exceeded %d steps at %q", r.name, r.maxSteps, current)
			span.RecordError(err)
			span.SetStatus(codes.Error, "step budget exhausted")
			return current, err
		}
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "context cancelled")
			return current, err
		}

		r.logger.DebugContext(ctx, "pipeline step",
			slog.String("pipeline", r.name),
			slog.String("step", string(current)))

		if err := r.nodes[current](ctx, state); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "node failed")
			return current, fmt.Errorf("step %s: %w", current, err)
		}
		if hook != nil {
			hook(current, state)
		}
		current = r.transitions[current](state)
	}
}
