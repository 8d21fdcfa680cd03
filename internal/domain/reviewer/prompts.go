package reviewer

import (
	"encoding/json"
	"fmt"

	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

func getParseFeedbackPrompt(original *types.Itinerary, feedback string) string {
	return fmt.Sprintf(`You are a feedback analysis assistant reviewing travel plan feedback.

Analyze user feedback on a travel plan and determine what needs to be modified.

Original Plan: %s
User Feedback: %s

Analyze and determine:
1. Feedback type:
   - "approve": User is satisfied with the plan
   - "reject": User wants to start over completely
   - "modify": User wants specific changes

2. Target section (if modifying): Which part to modify
   - Examples: "day_1", "day_2", "budget", "accommodation"

3. Modification type (if modifying): What category of change is needed
   - "restaurant", "food", or "meal": User wants different dining options
   - "attraction" or "activity": User wants different tourist spots or activities
   - "accommodation" or "hotel": User wants different lodging
   - "budget": User wants budget adjustments
   - "time": User wants schedule/timing changes
   - "general": Other modifications

Examples:
- "첫째 날 점심을 덜 비싼 곳으로 바꿔줘" → modification_type: "restaurant"
- "더 재미있는 관광지로 바꿔줘" → modification_type: "attraction"
- "더 좋은 호텔로 바꿔줘" → modification_type: "accommodation"
- "예산을 50만원으로 줄여줘" → modification_type: "budget"

Format the response in JSON with the following structure:
{
    "feedback_type": "approve|reject|modify",
    "target_section": "section label or null",
    "modification_type": "category or null",
    "reasoning": "brief explanation"
}`, itineraryJSON(original), feedback)
}

func getModifyPlanPrompt(s *reviewState) string {
	return fmt.Sprintf(`You are a travel plan modification expert.

Modify the travel plan based on user feedback using the provided context data.

Original Plan:
%s

User Feedback: %s

Modification Type: %s

Target Section: %s

Available Context Data (use this for modifications):
%s

Guidelines:
1. Use context data: if venues are provided above, SELECT appropriate options
   from this data rather than inventing new venues
2. Preserve structure: keep unchanged sections exactly as they are
3. Maintain constraints: ensure budget and time constraints are met
4. Consistency: the modified section must flow naturally with the rest of the plan
5. Complete response: return the COMPLETE modified plan with all fields filled in
6. Match original structure: include title, total_days, total_cost, itinerary
   (with daily activities), accommodation, summary

Return the complete modified travel plan as JSON, maintaining all the structure
and fields from the original.`,
		itineraryJSON(s.Original),
		s.Feedback,
		s.Kind,
		s.Target,
		contextJSON(s.Candidates))
}

func itineraryJSON(it *types.Itinerary) string {
	data, err := json.Marshal(it)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func contextJSON(candidates []types.VenueCandidate) string {
	if len(candidates) == 0 {
		return "[]"
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		return "[]"
	}
	return string(data)
}
