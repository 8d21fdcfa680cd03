package venue

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

func TestCachedCatalogCachesResults(t *testing.T) {
	calls := 0
	inner := CatalogFunc(func(_ context.Context, query string, limit int) ([]types.VenueCandidate, error) {
		calls++
		return []types.VenueCandidate{{Name: "경복궁", Category: "attraction"}}, nil
	})

	cached := NewCachedCatalog(inner, time.Minute, slog.Default())
	ctx := context.Background()

	first, err := cached.Search(ctx, "역사 관광지", 3)
	require.NoError(t, err)
	second, err := cached.Search(ctx, "역사 관광지", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCachedCatalogDistinguishesQueries(t *testing.T) {
	calls := 0
	inner := CatalogFunc(func(_ context.Context, query string, _ int) ([]types.VenueCandidate, error) {
		calls++
		return []types.VenueCandidate{{Name: query}}, nil
	})

	cached := NewCachedCatalog(inner, time.Minute, slog.Default())
	ctx := context.Background()

	_, err := cached.Search(ctx, "맛집", 3)
	require.NoError(t, err)
	_, err = cached.Search(ctx, "카페", 3)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestNaverLocalClientParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-id", r.Header.Get("X-Naver-Client-Id"))
		assert.Equal(t, "test-secret", r.Header.Get("X-Naver-Client-Secret"))
		assert.Equal(t, "명동 맛집", r.URL.Query().Get("query"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"items": []map[string]any{
				{
					"title":       "<b>명동교자</b>",
					"category":    "음식점>칼국수",
					"address":     "서울특별시 중구 명동2가",
					"roadAddress": "서울특별시 중구 명동10길 29",
					"telephone":   "02-776-5348",
					"mapx":        "1269847580",
					"mapy":        "375636215",
				},
			},
		})
	}))
	defer server.Close()

	client, err := NewNaverLocalClient("test-id", "test-secret", server.URL, slog.Default())
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "명동 맛집", types.Location{}, 3)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, "명동교자", got.Name)
	assert.Equal(t, "서울특별시 중구 명동10길 29", got.Address)
	assert.InDelta(t, 126.984758, got.Location.Longitude, 1e-6)
	assert.InDelta(t, 37.5636215, got.Location.Latitude, 1e-6)
}

func TestNaverLocalClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewNaverLocalClient("id", "secret", server.URL, slog.Default())
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "맛집", types.Location{}, 3)
	assert.Error(t, err)
}

func TestNewNaverLocalClientRequiresCredentials(t *testing.T) {
	_, err := NewNaverLocalClient("", "", "", slog.Default())
	assert.Error(t, err)
}
