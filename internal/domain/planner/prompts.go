package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

func getCollectInfoPrompt(userRequest string) string {
	return fmt.Sprintf(`You are a travel planning assistant analyzing user requests.

Extract structured information from the following user's travel request:

User request: %s

Extract:
- Travel dates (start and end dates in YYYY-MM-DD format)
- Budget amount (total budget in Korean Won)
- Interests and preferences (list of activities or themes the user is interested in)

If any information is not explicitly mentioned, use null for that field.

Format the response in JSON with the following structure:
{
    "start_date": "YYYY-MM-DD or null",
    "end_date": "YYYY-MM-DD or null",
    "budget": budget_as_number_or_null,
    "interests": ["interest", ...] or null
}`, userRequest)
}

func getGeneratePlanPrompt(s *planningState, numDays int) string {
	attractions := candidatesJSON(s.Attractions)
	restaurants := candidatesJSON(s.Restaurants)
	accommodations := candidatesJSON(s.Accommodations)

	return fmt.Sprintf(`You are an expert Seoul travel planner creating detailed itineraries.

Create a comprehensive travel plan based on:
- User Request: %s
- Travel Period: %s to %s (%d days)
- Budget: %d KRW
- Interests: %s

Available venues:
- Attractions: %s
- Restaurants: %s
- Accommodations: %s

Requirements:
1. Use ACTUAL dates from the travel period %s to %s (not placeholders)
   - Example: Day 1 should use "%s", Day 2 should be the next day, etc.
2. Create day-by-day itinerary with specific times in HH:MM format (e.g., "09:30", "14:00")
3. Select venues from the provided lists above when they are given
4. Distribute budget reasonably across days
5. Consider typical opening hours:
   - Museums/Attractions: 10:00-18:00
   - Restaurants: 11:00-22:00
   - Activities should have realistic durations (30-180 minutes)
6. Include breakfast, lunch, and dinner for each day
7. Estimate costs for each activity
8. Create an engaging title and summary for the travel plan
9. Select one accommodation covering the entire trip

Ensure the total cost stays within or close to the budget.

Format the response in JSON with the following structure:
{
    "title": "Title of the travel plan",
    "total_days": %d,
    "total_cost": total_cost_as_number,
    "itinerary": [
        {
            "day": 1,
            "date": "%s",
            "theme": "Theme for the day",
            "activities": [
                {
                    "time": "HH:MM",
                    "venue_name": "Name of the venue",
                    "venue_type": "attraction|dining|lodging|cafe|shopping",
                    "duration_minutes": duration_as_number,
                    "estimated_cost": cost_as_number,
                    "notes": "Brief notes or tips"
                }
            ],
            "daily_cost": daily_cost_as_number
        }
    ],
    "accommodation": {
        "name": "Hotel or accommodation name",
        "cost_per_night": cost_as_number,
        "total_nights": nights_as_number
    },
    "summary": "Brief summary of the plan"
}`,
		s.Request.Description,
		s.StartDate, s.EndDate, numDays,
		s.Budget,
		strings.Join(s.Interests, ", "),
		attractions, restaurants, accommodations,
		s.StartDate, s.EndDate, s.StartDate,
		numDays, s.StartDate)
}

func candidatesJSON(candidates []types.VenueCandidate) string {
	if len(candidates) == 0 {
		return "[]"
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		return "[]"
	}
	return string(data)
}
