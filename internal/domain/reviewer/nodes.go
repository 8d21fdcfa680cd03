package reviewer

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/seoul-connect-api/internal/llm"
	"github.com/FACorreiaa/seoul-connect-api/internal/types"
	"github.com/FACorreiaa/seoul-connect-api/pkg/observability"
)

const (
	classifyTemperature float32 = 0
	modifyTemperature   float32 = 0.3

	// contextCandidates bounds the venue lookups backing a modification.
	contextCandidates = 5
)

// defaultAnchor centers context lookups when the plan carries no resolvable
// venue. Seoul City Hall.
var defaultAnchor = types.Location{Latitude: 37.5665, Longitude: 126.9780}

// parseFeedback classifies the feedback text. Unambiguous phrasings resolve
// through the keyword fast path without touching the model; everything else
// goes through the completion service. An unparseable classification defaults
// to reject so ambiguous feedback never silently mutates the plan.
func (s *ServiceImpl) parseFeedback(ctx context.Context, state *reviewState) error {
	ctx, span := otel.Tracer("ReviewerService").Start(ctx, "parseFeedback")
	defer span.End()

	state.Iteration++

	if ft, ok := s.classifier.Classify(ctx, state.Feedback); ok {
		state.FeedbackType = ft
		span.SetAttributes(attribute.String("feedback.type", string(ft)))
		span.SetStatus(codes.Ok, "classified by keyword")
		return nil
	}

	prompt := getParseFeedbackPrompt(state.Original, state.Feedback)
	response, err := s.aiClient.GenerateResponse(ctx, prompt, llm.ConfigWithTemperature(classifyTemperature))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification call failed")
		s.logger.WarnContext(ctx, "feedback classification failed, defaulting to reject",
			slog.Any("error", err))
		state.FeedbackType = types.FeedbackReject
		return nil
	}

	txt, err := llm.ResponseText(response)
	if err != nil {
		span.RecordError(err)
		state.FeedbackType = types.FeedbackReject
		return nil
	}

	var parsed struct {
		FeedbackType     string `json:"feedback_type"`
		TargetSection    string `json:"target_section"`
		ModificationType string `json:"modification_type"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(txt)), &parsed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification JSON unparseable")
		state.FeedbackType = types.FeedbackReject
		return nil
	}

	switch types.FeedbackType(parsed.FeedbackType) {
	case types.FeedbackApprove, types.FeedbackReject, types.FeedbackModify:
		state.FeedbackType = types.FeedbackType(parsed.FeedbackType)
	default:
		state.FeedbackType = types.FeedbackReject
	}

	if state.FeedbackType == types.FeedbackModify {
		state.Target = parsed.TargetSection
		state.Kind = types.NormalizeModificationKind(parsed.ModificationType)
	}

	span.SetAttributes(
		attribute.String("feedback.type", string(state.FeedbackType)),
		attribute.String("feedback.target", state.Target),
		attribute.String("feedback.kind", string(state.Kind)))
	span.SetStatus(codes.Ok, "feedback classified")
	return nil
}

// fetchContext retrieves fresh venue candidates for venue-backed modification
// kinds. Budget, timing and general changes only re-reason over the existing
// plan, so the step is a no-op for them. Provider failures degrade to empty
// candidate lists.
func (s *ServiceImpl) fetchContext(ctx context.Context, state *reviewState) error {
	ctx, span := otel.Tracer("ReviewerService").Start(ctx, "fetchContext")
	defer span.End()

	if !state.Kind.RequiresVenueContext() {
		span.SetStatus(codes.Ok, "no venue context needed")
		return nil
	}

	switch state.Kind {
	case types.ModifyAttraction:
		candidates, err := s.catalog.Search(ctx, state.Feedback, contextCandidates)
		if err != nil {
			observability.VenueSearchErrors.WithLabelValues("catalog").Inc()
			s.logger.WarnContext(ctx, "context attraction search failed",
				slog.Any("error", err))
			return nil
		}
		state.Candidates = candidates
	case types.ModifyDining, types.ModifyLodging:
		anchor := s.resolveAnchor(ctx, state.Original)
		candidates, err := s.nearby.Search(ctx, state.Feedback, anchor, contextCandidates)
		if err != nil {
			observability.VenueSearchErrors.WithLabelValues("nearby").Inc()
			s.logger.WarnContext(ctx, "context nearby search failed",
				slog.Any("error", err))
			return nil
		}
		state.Candidates = candidates
	}

	span.SetAttributes(attribute.Int("context.candidates", len(state.Candidates)))
	span.SetStatus(codes.Ok, "context fetched")
	return nil
}

// resolveAnchor locates the plan geographically: the first activity's venue
// is looked up in the catalog, and a failed or coordinate-less lookup falls
// back to the fixed city-center default.
func (s *ServiceImpl) resolveAnchor(ctx context.Context, it *types.Itinerary) types.Location {
	if it == nil || len(it.Days) == 0 || len(it.Days[0].Activities) == 0 {
		return defaultAnchor
	}

	name := it.Days[0].Activities[0].VenueName
	found, err := s.catalog.Search(ctx, name, 1)
	if err != nil || len(found) == 0 || found[0].Location.IsZero() {
		return defaultAnchor
	}
	return found[0].Location
}

// modifyPlan asks for a complete replacement itinerary. A failed call or
// unparseable response reverts to the original plan; a modification must
// never blank out an existing valid itinerary.
func (s *ServiceImpl) modifyPlan(ctx context.Context, state *reviewState) error {
	ctx, span := otel.Tracer("ReviewerService").Start(ctx, "modifyPlan")
	defer span.End()

	prompt := getModifyPlanPrompt(state)
	response, err := s.aiClient.GenerateResponse(ctx, prompt, llm.ConfigWithTemperature(modifyTemperature))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "modification call failed")
		s.logger.WarnContext(ctx, "plan modification failed, keeping original",
			slog.Any("error", err))
		state.Modified = state.Original
		return nil
	}

	txt, err := llm.ResponseText(response)
	if err != nil {
		span.RecordError(err)
		state.Modified = state.Original
		return nil
	}

	var modified types.Itinerary
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(txt)), &modified); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "modification JSON unparseable")
		s.logger.WarnContext(ctx, "modified plan unparseable, keeping original",
			slog.Any("error", err))
		state.Modified = state.Original
		return nil
	}

	state.Modified = &modified
	span.SetStatus(codes.Ok, "plan modified")
	return nil
}

// validateModification is a structural sanity check, not a re-run of budget
// and time validation. A replacement missing required top-level fields
// reverts to the original.
func (s *ServiceImpl) validateModification(ctx context.Context, state *reviewState) error {
	_, span := otel.Tracer("ReviewerService").Start(ctx, "validateModification")
	defer span.End()

	m := state.Modified
	if m == nil {
		state.Modified = state.Original
		span.SetStatus(codes.Error, "no modified plan, reverted")
		return nil
	}

	if m.Title == "" || m.TotalDays <= 0 || m.TotalCost <= 0 || len(m.Days) == 0 {
		s.logger.WarnContext(ctx, "modified plan structurally incomplete, reverting",
			slog.String("title", m.Title),
			slog.Int("total_days", m.TotalDays),
			slog.Int("total_cost", m.TotalCost),
			slog.Int("days", len(m.Days)))
		state.Modified = state.Original
		span.SetStatus(codes.Error, "incomplete structure, reverted")
		return nil
	}

	span.SetStatus(codes.Ok, "structure verified")
	return nil
}
