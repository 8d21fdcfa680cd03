package types

import (
	"strings"
	"time"
)

// DateLayout is the wire format for all itinerary dates.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for activity start times.
const TimeLayout = "15:04"

// TripRequest is the immutable input to the planning pipeline. Fields other
// than Description are optional; missing ones are inferred from the free text.
type TripRequest struct {
	Description string   `json:"user_request"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Budget      int      `json:"budget,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

// VenueKind categorises a scheduled activity's venue.
type VenueKind string

const (
	VenueAttraction VenueKind = "attraction"
	VenueDining     VenueKind = "dining"
	VenueLodging    VenueKind = "lodging"
	VenueCafe       VenueKind = "cafe"
	VenueShopping   VenueKind = "shopping"
)

// Activity is a single scheduled action within a day.
type Activity struct {
	Time            string    `json:"time"`
	VenueName       string    `json:"venue_name"`
	VenueType       VenueKind `json:"venue_type"`
	DurationMinutes int       `json:"duration_minutes"`
	EstimatedCost   int       `json:"estimated_cost"`
	Notes           string    `json:"notes,omitempty"`
}

// StartClock parses the activity start time. The bool reports whether the
// value was a well-formed HH:MM clock.
func (a Activity) StartClock() (time.Time, bool) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(a.Time))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// EndClock is the implied end time (start plus duration).
func (a Activity) EndClock() (time.Time, bool) {
	start, ok := a.StartClock()
	if !ok {
		return time.Time{}, false
	}
	return start.Add(time.Duration(a.DurationMinutes) * time.Minute), true
}

// DayPlan is one calendar day's worth of activities.
type DayPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Theme      string     `json:"theme"`
	Activities []Activity `json:"activities"`
	DailyCost  int        `json:"daily_cost"`
}

// LodgingInfo is the single lodging selection covering the whole trip.
type LodgingInfo struct {
	Name         string `json:"name"`
	CostPerNight int    `json:"cost_per_night"`
	TotalNights  int    `json:"total_nights"`
}

// Itinerary is the complete generated travel plan artifact. The JSON field
// names are the canonical persisted shape and must round-trip losslessly.
type Itinerary struct {
	Title     string       `json:"title"`
	TotalDays int          `json:"total_days"`
	TotalCost int          `json:"total_cost"`
	Days      []DayPlan    `json:"itinerary"`
	Lodging   *LodgingInfo `json:"accommodation,omitempty"`
	Summary   string       `json:"summary"`
}

// PlanningFailure carries the accumulated node errors of a terminally failed
// planning invocation.
type PlanningFailure struct {
	Errors   []string `json:"errors"`
	Attempts int      `json:"attempts"`
}

func (f *PlanningFailure) Error() string {
	if f == nil || len(f.Errors) == 0 {
		return "planning failed"
	}
	return "planning failed: " + strings.Join(f.Errors, "; ")
}

// ValidationResult is the outcome of running the validation rules against a
// draft itinerary. It is recomputed each time, never persisted.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// TripDays returns the inclusive day count between two YYYY-MM-DD dates.
// Unparseable input degrades to a single day.
func TripDays(startDate, endDate string) int {
	start, err := time.Parse(DateLayout, strings.TrimSpace(startDate))
	if err != nil {
		return 1
	}
	end, err := time.Parse(DateLayout, strings.TrimSpace(endDate))
	if err != nil {
		return 1
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}
