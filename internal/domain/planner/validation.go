package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

// Validation thresholds. These are deliberate constants rather than model-side
// judgment so the checks stay deterministic.
const (
	// overlapToleranceMin is how far two same-day activities may overlap
	// before the draft is discarded.
	overlapToleranceMin = 10

	// budgetToleranceRatio is the allowed overshoot of the requested budget.
	budgetToleranceRatio = 1.2
)

// Validate runs the critical-only validation rules against a draft itinerary.
// Soft issues (missing cost breakdowns, unstated travel time, unverified
// opening hours, overlaps within tolerance) are tolerated so usable plans are
// not over-rejected.
func Validate(it *types.Itinerary, budget int) types.ValidationResult {
	issues := criticalIssues(it, budget)
	return types.ValidationResult{IsValid: len(issues) == 0, Errors: issues}
}

func criticalIssues(it *types.Itinerary, budget int) []string {
	if it == nil {
		return []string{"no plan to validate"}
	}

	var issues []string
	if len(it.Days) == 0 {
		return []string{"itinerary has no days"}
	}

	var prevDate time.Time
	for i, day := range it.Days {
		date, dateOK := parseDayDate(day.Date)
		if !dateOK {
			issues = append(issues, fmt.Sprintf("day %d is missing a real date", i+1))
		}

		if day.Day != i+1 {
			issues = append(issues, fmt.Sprintf("day numbers are not contiguous at position %d", i+1))
		}
		if dateOK && i > 0 && !prevDate.IsZero() && !date.Equal(prevDate.AddDate(0, 0, 1)) {
			issues = append(issues, fmt.Sprintf("day %d date does not advance one day from day %d", i+1, i))
		}
		if dateOK {
			prevDate = date
		} else {
			prevDate = time.Time{}
		}

		if len(day.Activities) == 0 {
			issues = append(issues, fmt.Sprintf("day %d has no activities", i+1))
			continue
		}
		issues = append(issues, dayOverlaps(i+1, day.Activities)...)
	}

	if budget > 0 && float64(it.TotalCost) > budgetToleranceRatio*float64(budget) {
		issues = append(issues, fmt.Sprintf(
			"total cost %d exceeds budget %d by more than 20%%", it.TotalCost, budget))
	}

	return issues
}

// dayOverlaps flags any pair of activities whose time windows overlap by more
// than the tolerance. Activities with unparseable times are skipped; a missing
// clock is a soft issue, not a critical one.
func dayOverlaps(dayNum int, activities []types.Activity) []string {
	var issues []string
	tolerance := time.Duration(overlapToleranceMin) * time.Minute

	for i := 0; i < len(activities); i++ {
		startI, okI := activities[i].StartClock()
		if !okI {
			continue
		}
		endI := startI.Add(time.Duration(activities[i].DurationMinutes) * time.Minute)

		for j := i + 1; j < len(activities); j++ {
			startJ, okJ := activities[j].StartClock()
			if !okJ {
				continue
			}
			endJ := startJ.Add(time.Duration(activities[j].DurationMinutes) * time.Minute)

			overlap := minTime(endI, endJ).Sub(maxTime(startI, startJ))
			if overlap > tolerance {
				issues = append(issues, fmt.Sprintf(
					"day %d: %q and %q overlap by more than %d minutes",
					dayNum, activities[i].VenueName, activities[j].VenueName, overlapToleranceMin))
			}
		}
	}
	return issues
}

// parseDayDate rejects empty values, the YYYY-MM-DD placeholder token, and
// anything that does not parse as a calendar date.
func parseDayDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "YYYY") || strings.Contains(raw, "MM") || strings.Contains(raw, "DD") {
		return time.Time{}, false
	}
	t, err := time.Parse(types.DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
