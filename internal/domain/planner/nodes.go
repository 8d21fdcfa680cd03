package planner

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/seoul-connect-api/internal/llm"
	"github.com/FACorreiaa/seoul-connect-api/internal/pipeline"
	"github.com/FACorreiaa/seoul-connect-api/internal/types"
	"github.com/FACorreiaa/seoul-connect-api/pkg/observability"
)

const (
	collectTemperature  float32 = 0
	generateTemperature float32 = 0.5

	// diningPerAttraction is the fixed number of dining candidates fetched
	// around each attraction.
	diningPerAttraction = 3

	// lodgingCandidates is the single-batch lodging lookup size.
	lodgingCandidates = 5
)

// collectInfo resolves dates, budget and interests. Fields present in the
// request are kept as-is; only missing ones are inferred from the free text.
// An unparseable inference is terminal for the invocation.
func (s *ServiceImpl) collectInfo(ctx context.Context, state *planningState) error {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "collectInfo")
	defer span.End()

	if !state.missingFields() {
		span.SetStatus(codes.Ok, "request already complete")
		return nil
	}

	prompt := getCollectInfoPrompt(state.Request.Description)
	response, err := s.aiClient.GenerateResponse(ctx, prompt, llm.ConfigWithTemperature(collectTemperature))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "intent extraction failed")
		s.logger.WarnContext(ctx, "failed to extract trip info", slog.Any("error", err))
		state.AppendError("Failed to parse user request. Please provide clearer information.")
		state.intentFailed = true
		return nil
	}

	txt, err := llm.ResponseText(response)
	if err != nil {
		span.RecordError(err)
		state.AppendError("Failed to parse user request. Please provide clearer information.")
		state.intentFailed = true
		return nil
	}

	var parsed struct {
		StartDate *string  `json:"start_date"`
		EndDate   *string  `json:"end_date"`
		Budget    *int     `json:"budget"`
		Interests []string `json:"interests"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(txt)), &parsed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "intent JSON unparseable")
		state.AppendError("Failed to parse user request. Please provide clearer information.")
		state.intentFailed = true
		return nil
	}

	if state.StartDate == "" && parsed.StartDate != nil {
		state.StartDate = *parsed.StartDate
	}
	if state.EndDate == "" && parsed.EndDate != nil {
		state.EndDate = *parsed.EndDate
	}
	if state.Budget <= 0 && parsed.Budget != nil {
		state.Budget = *parsed.Budget
	}
	if len(state.Interests) == 0 {
		state.Interests = parsed.Interests
	}

	span.SetAttributes(
		attribute.String("trip.start", state.StartDate),
		attribute.String("trip.end", state.EndDate),
		attribute.Int("trip.budget", state.Budget),
		attribute.Int("trip.interests", len(state.Interests)))
	span.SetStatus(codes.Ok, "trip info resolved")
	return nil
}

// fetchVenues retrieves candidate venues: one attraction per trip day, a few
// dining options near each attraction, and one batch of lodging candidates
// near the first attraction. Provider failures degrade to empty lists; a plan
// can still be generated without external venue data.
func (s *ServiceImpl) fetchVenues(ctx context.Context, state *planningState) error {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "fetchVenues")
	defer span.End()

	days := types.TripDays(state.StartDate, state.EndDate)
	span.SetAttributes(attribute.Int("trip.days", days))

	query := strings.TrimSpace(strings.Join(state.Interests, " ") + " 관광지")
	attractions, err := s.catalog.Search(ctx, query, days)
	if err != nil {
		observability.VenueSearchErrors.WithLabelValues("catalog").Inc()
		s.logger.WarnContext(ctx, "attraction search failed, continuing without candidates",
			slog.String("query", query), slog.Any("error", err))
		attractions = nil
	}
	state.Attractions = attractions

	if len(attractions) == 0 {
		span.SetStatus(codes.Ok, "no attraction anchors, skipping nearby lookups")
		return nil
	}

	// The per-attraction dining queries and the lodging query are mutually
	// independent, so they fan out concurrently.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, attraction := range attractions {
		g.Go(func() error {
			dining, err := s.nearby.Search(gctx, attraction.Name+" 맛집", attraction.Location, diningPerAttraction)
			if err != nil {
				observability.VenueSearchErrors.WithLabelValues("nearby").Inc()
				s.logger.WarnContext(gctx, "dining search failed",
					slog.String("near", attraction.Name), slog.Any("error", err))
				return nil
			}
			mu.Lock()
			state.Restaurants = append(state.Restaurants, dining...)
			mu.Unlock()
			return nil
		})
	}

	anchor := attractions[0]
	g.Go(func() error {
		lodging, err := s.nearby.Search(gctx, anchor.Name+" 숙박", anchor.Location, lodgingCandidates)
		if err != nil {
			observability.VenueSearchErrors.WithLabelValues("nearby").Inc()
			s.logger.WarnContext(gctx, "lodging search failed",
				slog.String("near", anchor.Name), slog.Any("error", err))
			return nil
		}
		mu.Lock()
		state.Accommodations = append(state.Accommodations, lodging...)
		mu.Unlock()
		return nil
	})

	// Goroutines swallow their own errors, so Wait only reflects context
	// cancellation.
	if err := g.Wait(); err != nil {
		return err
	}

	span.SetAttributes(
		attribute.Int("venues.attractions", len(state.Attractions)),
		attribute.Int("venues.restaurants", len(state.Restaurants)),
		attribute.Int("venues.accommodations", len(state.Accommodations)))
	span.SetStatus(codes.Ok, "venue candidates fetched")
	return nil
}

// generatePlan asks the completion service for a full itinerary draft. The
// attempt counter advances even when the output is unparseable; the attempt
// is consumed either way.
func (s *ServiceImpl) generatePlan(ctx context.Context, state *planningState) error {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "generatePlan")
	defer span.End()

	state.Attempts++
	observability.PlanAttempts.Inc()
	span.SetAttributes(attribute.Int("plan.attempt", state.Attempts))

	days := types.TripDays(state.StartDate, state.EndDate)
	prompt := getGeneratePlanPrompt(state, days)

	response, err := s.aiClient.GenerateResponse(ctx, prompt, llm.ConfigWithTemperature(generateTemperature))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		s.logger.WarnContext(ctx, "plan generation failed",
			slog.Int("attempt", state.Attempts), slog.Any("error", err))
		state.AppendError("Failed to generate valid plan structure.")
		return nil
	}

	txt, err := llm.ResponseText(response)
	if err != nil {
		span.RecordError(err)
		state.AppendError("Failed to generate valid plan structure.")
		return nil
	}

	var draft types.Itinerary
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(txt)), &draft); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan JSON unparseable")
		s.logger.WarnContext(ctx, "generated plan is not valid JSON",
			slog.Int("attempt", state.Attempts), slog.Any("error", err))
		state.AppendError("Failed to generate valid plan structure.")
		return nil
	}

	state.Draft = &draft
	span.SetAttributes(attribute.Int("plan.days", len(draft.Days)), attribute.Int("plan.total_cost", draft.TotalCost))
	span.SetStatus(codes.Ok, "draft generated")
	return nil
}

// validatePlan runs the critical-only validation rules. An invalid draft is
// discarded so the retry router regenerates rather than returning a corrupt
// plan; a valid draft clears the accumulated errors.
func (s *ServiceImpl) validatePlan(ctx context.Context, state *planningState) error {
	_, span := otel.Tracer("PlannerService").Start(ctx, "validatePlan")
	defer span.End()

	if state.Draft == nil {
		state.AppendError("No plan to validate")
		span.SetStatus(codes.Ok, "nothing to validate")
		return nil
	}

	result := Validate(state.Draft, state.Budget)
	if !result.IsValid {
		observability.ValidationFailures.Inc()
		span.SetAttributes(attribute.Int("validation.errors", len(result.Errors)))
		span.SetStatus(codes.Ok, "draft discarded")
		s.logger.InfoContext(ctx, "draft failed validation, discarding",
			slog.Int("attempt", state.Attempts),
			slog.Any("errors", result.Errors))
		state.Draft = nil
		state.AppendError(result.Errors...)
		return nil
	}

	state.resetErrors()
	span.SetStatus(codes.Ok, "draft valid")
	return nil
}

// routeAfterValidation is the retry router: regenerate while errors remain and
// the attempt budget allows, otherwise finish on whichever terminal state the
// draft supports.
func (s *ServiceImpl) routeAfterValidation(state *planningState) pipeline.Step {
	if state.hasErrors() && state.Attempts < s.maxAttempts {
		return stepGenerate
	}
	if state.Draft != nil {
		return stepDone
	}
	return stepFailed
}
