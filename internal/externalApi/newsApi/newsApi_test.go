package newsApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/internal/externalApi"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *NewsApi {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.NewsApi.Url = srv.URL
	cfg.API.NewsApi.ApiKey = "test-key"
	return New(cfg)
}

func TestGetNews(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, "Apple Inc", r.URL.Query().Get("q"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
		_, _ = w.Write([]byte(`{"status": "ok", "articles": [
			{"title": "Apple launches", "description": "new product", "publishedAt": "2025-06-01T10:00:00Z", "url": "https://example.com/a"}
		]}`))
	})

	articles, err := api.GetNews(context.Background(), "AAPL")

	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Apple launches", articles[0].Title)
	assert.Equal(t, "https://example.com/a", articles[0].Url)
}

func TestGetNews_UnknownTickerUsesRawSymbol(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "XYZ", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"status": "ok", "articles": []}`))
	})

	articles, err := api.GetNews(context.Background(), "XYZ")

	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestGetNews_NonOkStatus(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error", "articles": null}`))
	})

	_, err := api.GetNews(context.Background(), "AAPL")

	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}
