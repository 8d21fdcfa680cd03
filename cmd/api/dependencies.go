package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/seoul-connect-api/internal/domain/planner"
	"github.com/FACorreiaa/seoul-connect-api/internal/domain/reviewer"
	"github.com/FACorreiaa/seoul-connect-api/internal/domain/venue"
	"github.com/FACorreiaa/seoul-connect-api/internal/llm"
	"github.com/FACorreiaa/seoul-connect-api/internal/types"
	"github.com/FACorreiaa/seoul-connect-api/pkg/config"
)

// venueCacheTTL bounds how long catalog lookups are reused. Venue data is
// slow-moving; an hour keeps repeat planning runs cheap.
const venueCacheTTL = time.Hour

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	AIClient llm.ChatClient
	Catalog  venue.Catalog
	Nearby   venue.NearbySearch

	PlannerService  planner.Service
	ReviewerService reviewer.Service
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initClients(ctx); err != nil {
		return nil, fmt.Errorf("failed to init clients: %w", err)
	}
	deps.initServices()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initClients wires the completion service and the venue search providers.
// Missing Naver credentials degrade to empty search results rather than a
// startup failure; planning still works without venue candidates.
func (d *Dependencies) initClients(ctx context.Context) error {
	aiClient, err := llm.NewGeminiChatClient(ctx, d.Config.Gemini.APIKey, d.Config.Gemini.Model)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}
	d.AIClient = aiClient

	naver, err := venue.NewNaverLocalClient(
		d.Config.Naver.ClientID,
		d.Config.Naver.ClientSecret,
		"", // default endpoint
		d.Logger,
	)
	if err != nil {
		d.Logger.Warn("venue search disabled", "error", err)
		d.Catalog = venue.CatalogFunc(emptyCatalogSearch)
		d.Nearby = emptyNearby{}
		return nil
	}

	d.Catalog = venue.NewCachedCatalog(venue.CatalogFunc(naver.SearchCatalog), venueCacheTTL, d.Logger)
	d.Nearby = naver

	d.Logger.Info("venue search clients initialized")
	return nil
}

// initServices initializes the pipeline services
func (d *Dependencies) initServices() {
	d.PlannerService = planner.NewService(d.AIClient, d.Catalog, d.Nearby, d.Logger)
	d.ReviewerService = reviewer.NewService(d.AIClient, d.Catalog, d.Nearby, d.Logger)

	d.Logger.Info("pipeline services initialized")
}

func emptyCatalogSearch(_ context.Context, _ string, _ int) ([]types.VenueCandidate, error) {
	return nil, nil
}

type emptyNearby struct{}

func (emptyNearby) Search(_ context.Context, _ string, _ types.Location, _ int) ([]types.VenueCandidate, error) {
	return nil, nil
}
