package planner

import (
	"github.com/FACorreiaa/seoul-connect-api/internal/pipeline"
	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

// Pipeline steps. Done and Failed have no node and terminate the run.
const (
	stepCollectInfo pipeline.Step = "collect_info"
	stepFetchVenues pipeline.Step = "fetch_venues"
	stepGenerate    pipeline.Step = "generate_plan"
	stepValidate    pipeline.Step = "validate_plan"
	stepDone        pipeline.Step = "done"
	stepFailed      pipeline.Step = "failed"
)

// planningState is the request-scoped accumulator threaded through one
// planning run. It is created per invocation and discarded afterwards.
type planningState struct {
	Request types.TripRequest

	// Resolved trip parameters; taken from the request when present,
	// inferred from the free text otherwise.
	StartDate string
	EndDate   string
	Budget    int
	Interests []string

	// Candidate venues fetched ahead of generation, partitioned by kind.
	Attractions    []types.VenueCandidate
	Restaurants    []types.VenueCandidate
	Accommodations []types.VenueCandidate

	Draft    *types.Itinerary
	Attempts int

	// intentFailed short-circuits the pipeline after an unparseable request;
	// malformed intent is never retried.
	intentFailed bool

	errs []string
}

func newPlanningState(req types.TripRequest) *planningState {
	return &planningState{
		Request:   req,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Budget:    req.Budget,
		Interests: req.Interests,
	}
}

// AppendError records node errors. The list only grows; it is reset solely
// when validation accepts a fresh draft.
func (s *planningState) AppendError(msgs ...string) {
	s.errs = append(s.errs, msgs...)
}

// Errors returns a copy of the accumulated error messages.
func (s *planningState) Errors() []string {
	out := make([]string, len(s.errs))
	copy(out, s.errs)
	return out
}

func (s *planningState) hasErrors() bool {
	return len(s.errs) > 0
}

// resetErrors is the single permitted clear, applied when a draft passes
// validation so the retry router stops consuming attempts on a good plan.
func (s *planningState) resetErrors() {
	s.errs = nil
}

// missingFields reports whether any trip parameter still needs inference.
func (s *planningState) missingFields() bool {
	return s.StartDate == "" || s.EndDate == "" || s.Budget <= 0 || len(s.Interests) == 0
}
