package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

const (
	naverLocalURL = "https://openapi.naver.com/v1/search/local.json"

	// Naver caps display at 5 per request.
	naverMaxDisplay = 5
)

// NaverLocalClient queries the Naver Local Search API. It implements both
// NearbySearch and, as a keyword fallback, Catalog.
type NaverLocalClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewNaverLocalClient creates a client with the given credentials. baseURL is
// overridable for tests; empty selects the production endpoint.
func NewNaverLocalClient(clientID, clientSecret, baseURL string, logger *slog.Logger) (*NaverLocalClient, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("naver API credentials not configured")
	}
	if baseURL == "" {
		baseURL = naverLocalURL
	}
	return &NaverLocalClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}, nil
}

type naverItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

type naverResponse struct {
	Total int         `json:"total"`
	Items []naverItem `json:"items"`
}

// Search implements NearbySearch. The anchor location is accepted for
// interface parity; Naver's local search is keyword-driven, so the query
// itself carries the locality.
func (c *NaverLocalClient) Search(ctx context.Context, query string, _ types.Location, limit int) ([]types.VenueCandidate, error) {
	return c.searchLocal(ctx, query, limit)
}

// SearchCatalog implements Catalog by plain keyword lookup.
func (c *NaverLocalClient) SearchCatalog(ctx context.Context, query string, limit int) ([]types.VenueCandidate, error) {
	return c.searchLocal(ctx, query, limit)
}

func (c *NaverLocalClient) searchLocal(ctx context.Context, query string, limit int) ([]types.VenueCandidate, error) {
	ctx, span := otel.Tracer("NaverLocalClient").Start(ctx, "searchLocal")
	defer span.End()
	span.SetAttributes(attribute.String("naver.query", query), attribute.Int("naver.limit", limit))

	if limit <= 0 || limit > naverMaxDisplay {
		limit = naverMaxDisplay
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(limit))
	params.Set("start", "1")
	params.Set("sort", "random")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build naver request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "naver request failed")
		return nil, fmt.Errorf("naver local search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("naver local search returned status %d", resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, err
	}

	var payload naverResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode naver response: %w", err)
	}

	candidates := make([]types.VenueCandidate, 0, len(payload.Items))
	for _, item := range payload.Items {
		candidates = append(candidates, item.toCandidate())
	}

	span.SetAttributes(attribute.Int("naver.results", len(candidates)))
	span.SetStatus(codes.Ok, "search complete")
	c.logger.InfoContext(ctx, "naver local search",
		slog.String("query", query),
		slog.Int("results", len(candidates)))

	return candidates, nil
}

func (i naverItem) toCandidate() types.VenueCandidate {
	cand := types.VenueCandidate{
		Name:        stripNaverMarkup(i.Title),
		Category:    i.Category,
		Description: i.Description,
		Telephone:   i.Telephone,
		Address:     i.RoadAddress,
	}
	if cand.Address == "" {
		cand.Address = i.Address
	}
	// mapx/mapy are WGS84 degrees scaled by 1e7.
	if x, err := strconv.ParseInt(i.MapX, 10, 64); err == nil {
		cand.Location.Longitude = float64(x) / 1e7
	}
	if y, err := strconv.ParseInt(i.MapY, 10, 64); err == nil {
		cand.Location.Latitude = float64(y) / 1e7
	}
	return cand
}

func stripNaverMarkup(title string) string {
	title = strings.ReplaceAll(title, "<b>", "")
	title = strings.ReplaceAll(title, "</b>", "")
	title = strings.ReplaceAll(title, "&amp;", "&")
	return strings.TrimSpace(title)
}
