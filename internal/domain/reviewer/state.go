package reviewer

import (
	"github.com/FACorreiaa/seoul-connect-api/internal/pipeline"
	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

// Pipeline steps. Done has no node and terminates the run; approve and reject
// route to it straight out of parse_feedback.
const (
	stepParseFeedback pipeline.Step = "parse_feedback"
	stepFetchContext  pipeline.Step = "fetch_context"
	stepModifyPlan    pipeline.Step = "modify_plan"
	stepValidateMod   pipeline.Step = "validate_modification"
	stepDone          pipeline.Step = "done"
)

// reviewState is the request-scoped accumulator threaded through one review
// run. Original is never mutated; a modification produces a full replacement
// in Modified or reverts back to Original.
type reviewState struct {
	Original *types.Itinerary
	Feedback string

	FeedbackType types.FeedbackType
	Target       string
	Kind         types.ModificationKind

	// Candidates fetched for venue-backed modification kinds; stays empty
	// for budget, timing and general changes.
	Candidates []types.VenueCandidate

	Modified *types.Itinerary

	Iteration int
}

func newReviewState(original *types.Itinerary, feedback string, iteration int) *reviewState {
	return &reviewState{
		Original:  original,
		Feedback:  feedback,
		Iteration: iteration,
	}
}
