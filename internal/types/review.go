package types

import (
	"context"
	"strings"

	a "github.com/petar-dambovaliev/aho-corasick"
)

// FeedbackType is the classification of a reviewer-feedback message.
type FeedbackType string

const (
	FeedbackApprove FeedbackType = "approve"
	FeedbackReject  FeedbackType = "reject"
	FeedbackModify  FeedbackType = "modify"
)

// ModificationKind is the category of change a feedback message requests.
type ModificationKind string

const (
	ModifyDining     ModificationKind = "dining"
	ModifyAttraction ModificationKind = "attraction"
	ModifyLodging    ModificationKind = "lodging"
	ModifyBudget     ModificationKind = "budget"
	ModifyTiming     ModificationKind = "timing"
	ModifyGeneral    ModificationKind = "general"
)

// NormalizeModificationKind folds the synonym labels the model may emit
// (restaurant/food/meal, activity, hotel/accommodation, time) onto the
// canonical kinds.
func NormalizeModificationKind(raw string) ModificationKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "restaurant", "food", "meal", "dining":
		return ModifyDining
	case "attraction", "activity":
		return ModifyAttraction
	case "accommodation", "hotel", "lodging":
		return ModifyLodging
	case "budget":
		return ModifyBudget
	case "time", "timing", "schedule":
		return ModifyTiming
	default:
		return ModifyGeneral
	}
}

// RequiresVenueContext reports whether the kind needs fresh venue data before
// the plan can be modified. Budget, timing and general changes only re-reason
// over the existing plan.
func (k ModificationKind) RequiresVenueContext() bool {
	switch k {
	case ModifyDining, ModifyAttraction, ModifyLodging:
		return true
	default:
		return false
	}
}

// ReviewAction is the terminal disposition of one review invocation.
type ReviewAction string

const (
	ReviewApproved ReviewAction = "approved"
	ReviewRejected ReviewAction = "rejected"
	ReviewModified ReviewAction = "modified"
)

// ReviewOutcome is the result of running the review pipeline once. Itinerary
// is the original plan for Approved, the replacement for Modified, and nil for
// Rejected (the caller must re-invoke planning).
type ReviewOutcome struct {
	Action    ReviewAction     `json:"action"`
	Itinerary *Itinerary       `json:"itinerary,omitempty"`
	Target    string           `json:"target_section,omitempty"`
	Kind      ModificationKind `json:"modification_kind,omitempty"`
	Iteration int              `json:"iteration"`
}

// FeedbackClassifier classifies raw feedback text ahead of the LLM call.
type FeedbackClassifier interface {
	Classify(ctx context.Context, feedback string) (FeedbackType, bool)
}

// Aho-Corasick matchers for the unambiguous approve/reject phrasings seen in
// user feedback. Korean has no word boundaries to match on, so the phrase
// lists stay specific enough not to fire inside unrelated text.
var (
	feedbackApproveBuilder = a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
	})
	feedbackApproveMatcher = feedbackApproveBuilder.Build([]string{
		"좋아요", "좋습니다", "마음에 들어", "완벽해", "이대로",
		"looks good", "perfect", "approve", "love it",
	})

	feedbackRejectBuilder = a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
	})
	feedbackRejectMatcher = feedbackRejectBuilder.Build([]string{
		"처음부터", "다시 만들어", "별로", "전부 다시", "마음에 안",
		"start over", "reject", "scrap it",
	})
)

// KeywordFeedbackClassifier is a deterministic fast path: empty text and
// unambiguous approve/reject phrases never reach the completion service.
type KeywordFeedbackClassifier struct{}

// Classify returns the matched type and true, or false when the text needs
// model-side classification.
func (c *KeywordFeedbackClassifier) Classify(_ context.Context, feedback string) (FeedbackType, bool) {
	feedback = strings.ToLower(strings.TrimSpace(feedback))
	if feedback == "" {
		return FeedbackReject, true
	}

	iter := feedbackRejectMatcher.Iter(feedback)
	if iter.Next() != nil {
		return FeedbackReject, true
	}

	iter = feedbackApproveMatcher.Iter(feedback)
	if iter.Next() != nil {
		return FeedbackApprove, true
	}

	return "", false
}
