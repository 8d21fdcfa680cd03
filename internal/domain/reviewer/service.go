// Package reviewer implements the review agent: it classifies free-text
// feedback on a generated itinerary and either approves it, rejects it, or
// produces a context-backed modified replacement.
package reviewer

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/seoul-connect-api/internal/domain/venue"
	"github.com/FACorreiaa/seoul-connect-api/internal/llm"
	"github.com/FACorreiaa/seoul-connect-api/internal/pipeline"
	"github.com/FACorreiaa/seoul-connect-api/internal/types"
	"github.com/FACorreiaa/seoul-connect-api/pkg/observability"
)

// MaxIterations is the advisory modification-round bound. The pipeline runs
// once per feedback message; callers use this to refuse further rounds and
// force a full replan instead.
const MaxIterations = 3

// Ensure implementation satisfies the interface.
var _ Service = (*ServiceImpl)(nil)

// Service defines the review contract consumed by the transport layer.
type Service interface {
	Review(ctx context.Context, itinerary *types.Itinerary, feedback string, iteration int) (*types.ReviewOutcome, error)
}

// ServiceImpl provides the implementation for Service. One instance serves
// concurrent invocations; all per-request state lives in reviewState.
type ServiceImpl struct {
	logger     *slog.Logger
	aiClient   llm.ChatClient
	catalog    venue.Catalog
	nearby     venue.NearbySearch
	classifier types.FeedbackClassifier

	runner *pipeline.Runner[reviewState]
}

// NewService creates a review service instance.
func NewService(aiClient llm.ChatClient, catalog venue.Catalog, nearby venue.NearbySearch, logger *slog.Logger) *ServiceImpl {
	s := &ServiceImpl{
		logger:     logger,
		aiClient:   aiClient,
		catalog:    catalog,
		nearby:     nearby,
		classifier: &types.KeywordFeedbackClassifier{},
	}
	s.runner = s.buildRunner()
	return s
}

// buildRunner assembles the state machine:
//
//	parse_feedback → [approve|reject] → done
//	       ↓
//	   [modify] → fetch_context → modify_plan → validate_modification → done
func (s *ServiceImpl) buildRunner() *pipeline.Runner[reviewState] {
	r := pipeline.New[reviewState]("reviewer", stepParseFeedback, s.logger)

	r.AddStep(stepParseFeedback, s.parseFeedback, func(st *reviewState) pipeline.Step {
		if st.FeedbackType == types.FeedbackModify {
			return stepFetchContext
		}
		return stepDone
	})
	r.AddStep(stepFetchContext, s.fetchContext, func(_ *reviewState) pipeline.Step {
		return stepModifyPlan
	})
	r.AddStep(stepModifyPlan, s.modifyPlan, func(_ *reviewState) pipeline.Step {
		return stepValidateMod
	})
	r.AddStep(stepValidateMod, s.validateModification, func(_ *reviewState) pipeline.Step {
		return stepDone
	})

	return r
}

// Review runs the review pipeline once for one feedback message. The iteration
// counter is supplied by the caller and echoed back incremented; the pipeline
// never loops internally.
//
// The outcome maps directly to caller behavior: Approved and Modified carry an
// itinerary to use, Rejected carries none and requires a fresh planning run.
func (s *ServiceImpl) Review(ctx context.Context, itinerary *types.Itinerary, feedback string, iteration int) (*types.ReviewOutcome, error) {
	ctx, span := otel.Tracer("ReviewerService").Start(ctx, "Review")
	defer span.End()

	if itinerary == nil {
		span.SetStatus(codes.Error, "no itinerary")
		return nil, fmt.Errorf("review: %w", types.ErrNoPlan)
	}

	state := newReviewState(itinerary, feedback, iteration)
	if _, err := s.runner.Run(ctx, state, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pipeline aborted")
		return nil, fmt.Errorf("review pipeline aborted: %w", err)
	}

	outcome := &types.ReviewOutcome{Iteration: state.Iteration}
	switch state.FeedbackType {
	case types.FeedbackApprove:
		outcome.Action = types.ReviewApproved
		outcome.Itinerary = state.Original
	case types.FeedbackModify:
		outcome.Action = types.ReviewModified
		outcome.Itinerary = state.Modified
		outcome.Target = state.Target
		outcome.Kind = state.Kind
	default:
		outcome.Action = types.ReviewRejected
	}

	observability.ReviewOutcomes.WithLabelValues(string(outcome.Action)).Inc()
	span.SetAttributes(
		attribute.String("review.action", string(outcome.Action)),
		attribute.Int("review.iteration", outcome.Iteration))
	span.SetStatus(codes.Ok, "review completed")

	s.logger.InfoContext(ctx, "review completed",
		slog.String("action", string(outcome.Action)),
		slog.String("target", outcome.Target),
		slog.Int("iteration", outcome.Iteration))
	return outcome, nil
}
