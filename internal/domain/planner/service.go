// Package planner implements the planning agent: it turns a free-text trip
// request into a validated, budget-bounded day-by-day itinerary through a
// bounded generate-validate-retry loop.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/seoul-connect-api/internal/domain/venue"
	"github.com/FACorreiaa/seoul-connect-api/internal/llm"
	"github.com/FACorreiaa/seoul-connect-api/internal/pipeline"
	"github.com/FACorreiaa/seoul-connect-api/internal/types"
	"github.com/FACorreiaa/seoul-connect-api/pkg/observability"
)

// defaultMaxAttempts is the generation retry bound.
const defaultMaxAttempts = 3

// Ensure implementation satisfies the interface.
var _ Service = (*ServiceImpl)(nil)

// Service defines the planning contract consumed by the transport layer.
type Service interface {
	Plan(ctx context.Context, req types.TripRequest) (*types.Itinerary, error)
	PlanStream(ctx context.Context, req types.TripRequest, eventCh chan<- types.StreamEvent) error
}

// ServiceImpl provides the implementation for Service. One instance serves
// concurrent invocations; all per-request state lives in planningState.
type ServiceImpl struct {
	logger   *slog.Logger
	aiClient llm.ChatClient
	catalog  venue.Catalog
	nearby   venue.NearbySearch

	maxAttempts       int
	validationEnabled bool

	runner *pipeline.Runner[planningState]
}

// Option configures a ServiceImpl.
type Option func(*ServiceImpl)

// WithMaxAttempts overrides the generation retry bound.
func WithMaxAttempts(n int) Option {
	return func(s *ServiceImpl) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithValidationDisabled turns off the validation stage. Meant for debugging
// only; without it the pipeline has no correctness backstop.
func WithValidationDisabled() Option {
	return func(s *ServiceImpl) { s.validationEnabled = false }
}

// NewService creates a planning service instance.
func NewService(aiClient llm.ChatClient, catalog venue.Catalog, nearby venue.NearbySearch, logger *slog.Logger, opts ...Option) *ServiceImpl {
	s := &ServiceImpl{
		logger:            logger,
		aiClient:          aiClient,
		catalog:           catalog,
		nearby:            nearby,
		maxAttempts:       defaultMaxAttempts,
		validationEnabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.runner = s.buildRunner()
	return s
}

// buildRunner assembles the state machine:
//
//	collect_info → fetch_venues → generate_plan → validate_plan
//	                                   ↑               ↓
//	                                   └── [retry] ────┘→ done | failed
//
// An unparseable request routes collect_info straight to failed.
func (s *ServiceImpl) buildRunner() *pipeline.Runner[planningState] {
	r := pipeline.New[planningState]("planner", stepCollectInfo, s.logger)

	r.AddStep(stepCollectInfo, s.collectInfo, func(st *planningState) pipeline.Step {
		if st.intentFailed {
			return stepFailed
		}
		return stepFetchVenues
	})
	r.AddStep(stepFetchVenues, s.fetchVenues, func(_ *planningState) pipeline.Step {
		return stepGenerate
	})
	r.AddStep(stepGenerate, s.generatePlan, func(st *planningState) pipeline.Step {
		if s.validationEnabled {
			return stepValidate
		}
		return s.routeAfterValidation(st)
	})
	r.AddStep(stepValidate, s.validatePlan, s.routeAfterValidation)

	return r
}

// Plan runs the planning pipeline for one request. On terminal failure the
// returned error is a *types.PlanningFailure carrying the accumulated node
// errors.
func (s *ServiceImpl) Plan(ctx context.Context, req types.TripRequest) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "Plan")
	defer span.End()

	state := newPlanningState(req)
	terminal, err := s.runner.Run(ctx, state, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pipeline aborted")
		observability.PlanOutcomes.WithLabelValues("aborted").Inc()
		return nil, fmt.Errorf("planning pipeline aborted: %w", err)
	}

	span.SetAttributes(
		attribute.String("plan.terminal", string(terminal)),
		attribute.Int("plan.attempts", state.Attempts))

	if terminal == stepDone && state.Draft != nil {
		observability.PlanOutcomes.WithLabelValues("success").Inc()
		span.SetStatus(codes.Ok, "plan generated")
		s.logger.InfoContext(ctx, "plan generated",
			slog.Int("attempts", state.Attempts),
			slog.Int("days", len(state.Draft.Days)),
			slog.Int("total_cost", state.Draft.TotalCost))
		return state.Draft, nil
	}

	observability.PlanOutcomes.WithLabelValues("failure").Inc()
	span.SetStatus(codes.Error, "planning failed")
	s.logger.WarnContext(ctx, "planning failed",
		slog.Int("attempts", state.Attempts),
		slog.Any("errors", state.Errors()))
	return nil, &types.PlanningFailure{Errors: state.Errors(), Attempts: state.Attempts}
}

// PlanStream runs the same pipeline while emitting one progress event per
// completed node and exactly one terminal complete or error event. The
// sequencing and retry semantics are identical to Plan; the hook is purely
// observational.
func (s *ServiceImpl) PlanStream(ctx context.Context, req types.TripRequest, eventCh chan<- types.StreamEvent) error {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "PlanStream")
	defer span.End()

	sendEvent(ctx, eventCh, types.StreamEvent{
		Type:    types.EventTypeStart,
		Message: "planning started",
	})

	state := newPlanningState(req)
	terminal, err := s.runner.Run(ctx, state, func(step pipeline.Step, st *planningState) {
		sendEvent(ctx, eventCh, progressEvent(step, st))
	})

	if err != nil {
		span.RecordError(err)
		observability.PlanOutcomes.WithLabelValues("aborted").Inc()
		sendEvent(ctx, eventCh, types.StreamEvent{
			Type:    types.EventTypeError,
			Error:   err.Error(),
			IsFinal: true,
		})
		return fmt.Errorf("planning pipeline aborted: %w", err)
	}

	if terminal == stepDone && state.Draft != nil {
		observability.PlanOutcomes.WithLabelValues("success").Inc()
		sendEvent(ctx, eventCh, types.StreamEvent{
			Type:    types.EventTypeComplete,
			Message: "plan generated",
			Data:    state.Draft,
			IsFinal: true,
		})
		return nil
	}

	observability.PlanOutcomes.WithLabelValues("failure").Inc()
	failure := &types.PlanningFailure{Errors: state.Errors(), Attempts: state.Attempts}
	sendEvent(ctx, eventCh, types.StreamEvent{
		Type:    types.EventTypeError,
		Error:   failure.Error(),
		IsFinal: true,
	})
	return failure
}

func progressEvent(step pipeline.Step, state *planningState) types.StreamEvent {
	event := types.StreamEvent{Type: string(step)}
	switch step {
	case stepCollectInfo:
		event.Type = types.EventTypeCollectInfo
		event.Message = "trip parameters resolved"
	case stepFetchVenues:
		event.Type = types.EventTypeFetchVenues
		event.Message = fmt.Sprintf("fetched %d attraction, %d dining, %d lodging candidates",
			len(state.Attractions), len(state.Restaurants), len(state.Accommodations))
	case stepGenerate:
		event.Type = types.EventTypeGenerate
		event.Message = fmt.Sprintf("generation attempt %d", state.Attempts)
	case stepValidate:
		event.Type = types.EventTypeValidate
		if state.Draft == nil {
			event.Message = "draft rejected"
		} else {
			event.Message = "draft validated"
		}
	}
	return event
}

// sendEvent delivers an event unless the caller has gone away.
func sendEvent(ctx context.Context, eventCh chan<- types.StreamEvent, event types.StreamEvent) {
	event.EventID = uuid.New().String()
	event.Timestamp = time.Now()
	select {
	case eventCh <- event:
	case <-ctx.Done():
	}
}
