package planner

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

// --- Mocks for Dependencies ---

type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, prompt, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func (m *MockChatClient) Model() string { return "gemini-test" }

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Search(ctx context.Context, query string, limit int) ([]types.VenueCandidate, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.VenueCandidate), args.Error(1)
}

type MockNearby struct {
	mock.Mock
}

func (m *MockNearby) Search(ctx context.Context, query string, near types.Location, limit int) ([]types.VenueCandidate, error) {
	args := m.Called(ctx, query, near, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.VenueCandidate), args.Error(1)
}

// --- Helpers ---

func genaiTextResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func itineraryJSON(t *testing.T, it *types.Itinerary) string {
	t.Helper()
	data, err := json.Marshal(it)
	require.NoError(t, err)
	return string(data)
}

func fullRequest() types.TripRequest {
	return types.TripRequest{
		Description: "서울 3일 여행 계획 세워줘",
		StartDate:   "2025-01-15",
		EndDate:     "2025-01-17",
		Budget:      500000,
		Interests:   []string{"역사", "맛집"},
	}
}

func seoulAttractions() []types.VenueCandidate {
	return []types.VenueCandidate{
		{Name: "경복궁", Category: "attraction", Location: types.Location{Latitude: 37.5796, Longitude: 126.9770}},
		{Name: "북촌 한옥마을", Category: "attraction", Location: types.Location{Latitude: 37.5826, Longitude: 126.9831}},
		{Name: "남산타워", Category: "attraction", Location: types.Location{Latitude: 37.5512, Longitude: 126.9882}},
	}
}

func newTestService(ai *MockChatClient, catalog *MockCatalog, nearby *MockNearby, opts ...Option) *ServiceImpl {
	return NewService(ai, catalog, nearby, slog.Default(), opts...)
}

// --- Tests ---

func TestPlanFullRequestProducesThreeDayItinerary(t *testing.T) {
	ai := new(MockChatClient)
	catalog := new(MockCatalog)
	nearby := new(MockNearby)

	catalog.On("Search", mock.Anything, "역사 맛집 관광지", 3).Return(seoulAttractions(), nil)
	nearby.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]types.VenueCandidate{{Name: "명동교자", Category: "dining"}}, nil)

	ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(genaiTextResponse(itineraryJSON(t, validThreeDayItinerary())), nil).Once()

	service := newTestService(ai, catalog, nearby)
	got, err := service.Plan(context.Background(), fullRequest())

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, len(got.Days))
	assert.Equal(t, "2025-01-15", got.Days[0].Date)
	assert.Equal(t, "2025-01-16", got.Days[1].Date)
	assert.Equal(t, "2025-01-17", got.Days[2].Date)
	for i, day := range got.Days {
		assert.Equal(t, i+1, day.Day)
	}

	// The request was complete, so intent extraction never hit the model.
	ai.AssertNumberOfCalls(t, "GenerateResponse", 1)
	catalog.AssertExpectations(t)
}

func TestPlanSurvivesVenueProviderFailure(t *testing.T) {
	ai := new(MockChatClient)
	catalog := new(MockCatalog)
	nearby := new(MockNearby)

	catalog.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("catalog unavailable"))

	ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(genaiTextResponse(itineraryJSON(t, validThreeDayItinerary())), nil).Once()

	service := newTestService(ai, catalog, nearby)
	got, err := service.Plan(context.Background(), fullRequest())

	require.NoError(t, err)
	require.NotNil(t, got)
	// With no attraction anchors, nearby search is never attempted.
	nearby.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanFailsAfterThreeGenerationAttempts(t *testing.T) {
	ai := new(MockChatClient)
	catalog := new(MockCatalog)
	nearby := new(MockNearby)

	catalog.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return([]types.VenueCandidate{}, nil)

	ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(genaiTextResponse("this is not json"), nil).Times(3)

	service := newTestService(ai, catalog, nearby)
	got, err := service.Plan(context.Background(), fullRequest())

	require.Error(t, err)
	assert.Nil(t, got)

	var failure *types.PlanningFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 3, failure.Attempts)
	assert.NotEmpty(t, failure.Errors)
	ai.AssertNumberOfCalls(t, "GenerateResponse", 3)
}

func TestPlanIntentParseFailureIsTerminalWithoutRetry(t *testing.T) {
	ai := new(MockChatClient)
	catalog := new(MockCatalog)
	nearby := new(MockNearby)

	// The request carries no dates/budget/interests, so extraction runs and
	// returns garbage.
	ai.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Extract structured information")
	}), mock.Anything).Return(genaiTextResponse("not json at all"), nil).Once()

	service := newTestService(ai, catalog, nearby)
	got, err := service.Plan(context.Background(), types.TripRequest{Description: "여행 가고 싶어"})

	require.Error(t, err)
	assert.Nil(t, got)

	var failure *types.PlanningFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 0, failure.Attempts)
	assert.Contains(t, failure.Errors[0], "Failed to parse user request")

	// No venue fetch, no generation: malformed intent is never retried.
	ai.AssertNumberOfCalls(t, "GenerateResponse", 1)
	catalog.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanRetriesOverBudgetDraft(t *testing.T) {
	ai := new(MockChatClient)
	catalog := new(MockCatalog)
	nearby := new(MockNearby)

	catalog.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return([]types.VenueCandidate{}, nil)

	overBudget := validThreeDayItinerary()
	overBudget.TotalCost = 700000 // budget 500000, tolerance tops out at 600000

	ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(genaiTextResponse(itineraryJSON(t, overBudget)), nil).Once()
	ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(genaiTextResponse(itineraryJSON(t, validThreeDayItinerary())), nil).Once()

	service := newTestService(ai, catalog, nearby)
	got, err := service.Plan(context.Background(), fullRequest())

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 400000, got.TotalCost)
	ai.AssertNumberOfCalls(t, "GenerateResponse", 2)
}

func TestPlanCollectInfoFillsOnlyMissingFields(t *testing.T) {
	ai := new(MockChatClient)
	catalog := new(MockCatalog)
	nearby := new(MockNearby)

	// Dates present, budget and interests absent.
	req := types.TripRequest{
		Description: "1월에 서울 여행, 예산은 50만원, 역사 좋아해요",
		StartDate:   "2025-01-15",
		EndDate:     "2025-01-17",
	}

	ai.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Extract structured information")
	}), mock.Anything).Return(genaiTextResponse(
		`{"start_date": "2025-03-01", "end_date": "2025-03-03", "budget": 500000, "interests": ["역사"]}`), nil).Once()

	catalog.On("Search", mock.Anything, "역사 관광지", 3).Return([]types.VenueCandidate{}, nil)

	ai.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "expert Seoul travel planner")
	}), mock.Anything).Return(genaiTextResponse(itineraryJSON(t, validThreeDayItinerary())), nil).Once()

	service := newTestService(ai, catalog, nearby)
	got, err := service.Plan(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, got)
	// The explicit dates survive; the inferred ones are ignored.
	catalog.AssertExpectations(t)
	ai.AssertExpectations(t)
}

func TestPlanStreamEmitsSingleTerminalComplete(t *testing.T) {
	ai := new(MockChatClient)
	catalog := new(MockCatalog)
	nearby := new(MockNearby)

	catalog.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return([]types.VenueCandidate{}, nil)
	ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(genaiTextResponse(itineraryJSON(t, validThreeDayItinerary())), nil).Once()

	service := newTestService(ai, catalog, nearby)
	eventCh := make(chan types.StreamEvent, 32)

	err := service.PlanStream(context.Background(), fullRequest(), eventCh)
	require.NoError(t, err)
	close(eventCh)

	var events []types.StreamEvent
	for ev := range eventCh {
		events = append(events, ev)
	}

	require.NotEmpty(t, events)
	assert.Equal(t, types.EventTypeStart, events[0].Type)

	terminals := 0
	for _, ev := range events {
		if ev.Type == types.EventTypeComplete || ev.Type == types.EventTypeError {
			terminals++
		}
		assert.NotEmpty(t, ev.EventID)
	}
	assert.Equal(t, 1, terminals)

	last := events[len(events)-1]
	assert.Equal(t, types.EventTypeComplete, last.Type)
	assert.True(t, last.IsFinal)
	assert.NotNil(t, last.Data)
}

func TestPlanStreamEmitsSingleTerminalErrorOnFailure(t *testing.T) {
	ai := new(MockChatClient)
	catalog := new(MockCatalog)
	nearby := new(MockNearby)

	catalog.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return([]types.VenueCandidate{}, nil)
	ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(genaiTextResponse("broken output"), nil).Times(3)

	service := newTestService(ai, catalog, nearby)
	eventCh := make(chan types.StreamEvent, 32)

	err := service.PlanStream(context.Background(), fullRequest(), eventCh)
	require.Error(t, err)
	close(eventCh)

	var events []types.StreamEvent
	for ev := range eventCh {
		events = append(events, ev)
	}

	terminals := 0
	for _, ev := range events {
		if ev.Type == types.EventTypeComplete || ev.Type == types.EventTypeError {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)

	last := events[len(events)-1]
	assert.Equal(t, types.EventTypeError, last.Type)
	assert.True(t, last.IsFinal)
}

func TestPlanWithValidationDisabledReturnsUnvalidatedDraft(t *testing.T) {
	ai := new(MockChatClient)
	catalog := new(MockCatalog)
	nearby := new(MockNearby)

	catalog.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return([]types.VenueCandidate{}, nil)

	overBudget := validThreeDayItinerary()
	overBudget.TotalCost = 900000

	ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(genaiTextResponse(itineraryJSON(t, overBudget)), nil).Once()

	service := newTestService(ai, catalog, nearby, WithValidationDisabled())
	got, err := service.Plan(context.Background(), fullRequest())

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 900000, got.TotalCost)
	ai.AssertNumberOfCalls(t, "GenerateResponse", 1)
}
