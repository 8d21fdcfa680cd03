package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

func validThreeDayItinerary() *types.Itinerary {
	day := func(n int, date string) types.DayPlan {
		return types.DayPlan{
			Day:   n,
			Date:  date,
			Theme: "역사 탐방",
			Activities: []types.Activity{
				{Time: "09:00", VenueName: "아침 식당", VenueType: types.VenueDining, DurationMinutes: 60, EstimatedCost: 10000},
				{Time: "10:30", VenueName: "경복궁", VenueType: types.VenueAttraction, DurationMinutes: 120, EstimatedCost: 3000},
				{Time: "13:00", VenueName: "점심 식당", VenueType: types.VenueDining, DurationMinutes: 60, EstimatedCost: 15000},
				{Time: "18:30", VenueName: "저녁 식당", VenueType: types.VenueDining, DurationMinutes: 90, EstimatedCost: 25000},
			},
			DailyCost: 53000,
		}
	}
	return &types.Itinerary{
		Title:     "서울 역사 탐방 3일 여행",
		TotalDays: 3,
		TotalCost: 400000,
		Days:      []types.DayPlan{day(1, "2025-01-15"), day(2, "2025-01-16"), day(3, "2025-01-17")},
		Lodging:   &types.LodgingInfo{Name: "서울 호텔", CostPerNight: 80000, TotalNights: 2},
		Summary:   "경복궁을 포함한 서울 역사 여행",
	}
}

func TestValidateAcceptsWellFormedItinerary(t *testing.T) {
	result := Validate(validThreeDayItinerary(), 500000)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateFlagsOverlapBeyondTolerance(t *testing.T) {
	it := validThreeDayItinerary()
	// 10:30+120min ends 12:30; starting lunch at 12:00 overlaps 30 minutes.
	it.Days[0].Activities[2].Time = "12:00"

	result := Validate(it, 500000)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors[0], "overlap")
}

func TestValidateToleratesSmallOverlap(t *testing.T) {
	it := validThreeDayItinerary()
	// 10:30+120min ends 12:30; lunch at 12:21 overlaps 9 minutes.
	it.Days[0].Activities[2].Time = "12:21"

	result := Validate(it, 500000)

	assert.True(t, result.IsValid)
}

func TestValidateBudgetBoundary(t *testing.T) {
	tests := []struct {
		name      string
		totalCost int
		budget    int
		wantValid bool
	}{
		{"well under budget", 400000, 500000, true},
		{"exactly at tolerance", 600000, 500000, true},
		{"just over tolerance", 600001, 500000, false},
		{"no budget constraint", 999999, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it := validThreeDayItinerary()
			it.TotalCost = tc.totalCost

			result := Validate(it, tc.budget)

			assert.Equal(t, tc.wantValid, result.IsValid, "errors: %v", result.Errors)
		})
	}
}

func TestValidateFlagsPlaceholderDates(t *testing.T) {
	it := validThreeDayItinerary()
	it.Days[1].Date = "YYYY-MM-DD"

	result := Validate(it, 500000)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors[0], "missing a real date")
}

func TestValidateFlagsEmptyDay(t *testing.T) {
	it := validThreeDayItinerary()
	it.Days[2].Activities = nil

	result := Validate(it, 500000)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors[0], "no activities")
}

func TestValidateFlagsEmptyItinerary(t *testing.T) {
	result := Validate(&types.Itinerary{Title: "빈 계획"}, 500000)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors[0], "no days")
}

func TestValidateFlagsNonContiguousDays(t *testing.T) {
	it := validThreeDayItinerary()
	it.Days[1].Day = 3

	result := Validate(it, 500000)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors[0], "not contiguous")
}

func TestValidateFlagsDateGaps(t *testing.T) {
	it := validThreeDayItinerary()
	it.Days[1].Date = "2025-01-18"

	result := Validate(it, 500000)

	assert.False(t, result.IsValid)
}

func TestValidateNilItinerary(t *testing.T) {
	result := Validate(nil, 500000)

	assert.False(t, result.IsValid)
}
