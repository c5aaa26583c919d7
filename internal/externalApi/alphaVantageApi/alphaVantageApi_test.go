package alphaVantageApi

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

func newTestClient(t *testing.T, handler http.HandlerFunc) *AlphaVantageApi {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.AlphaVantage.Url = srv.URL
	cfg.API.AlphaVantage.ApiKey = "test-key"
	return New(cfg)
}

func TestGetQuote(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(`{"Global Quote": {"01. symbol": "AAPL", "05. price": "189.5000"}}`))
	})

	quote, err := api.GetQuote(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Ticker)
	assert.Equal(t, "189.5", quote.Price.String())
}

func TestGetQuote_EmptyResponse(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Global Quote": {}}`))
	})

	_, err := api.GetQuote(context.Background(), "NOPE")

	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuote_UnparseablePrice(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Global Quote": {"05. price": "not-a-number"}}`))
	})

	_, err := api.GetQuote(context.Background(), "AAPL")

	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetDailyPrices_SortedAscending(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "compact", r.URL.Query().Get("outputsize"))
		_, _ = w.Write([]byte(`{"Time Series (Daily)": {
			"2025-06-03": {"4. close": "101.00"},
			"2025-06-01": {"4. close": "99.00"},
			"2025-06-02": {"4. close": "100.00"}
		}}`))
	})

	points, err := api.GetDailyPrices(context.Background(), "AAPL")

	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 99.0, points[0].Close)
	assert.Equal(t, 101.0, points[2].Close)
	assert.True(t, points[0].Date.Before(points[1].Date))
	assert.True(t, points[1].Date.Before(points[2].Date))
}

func TestGetDailyPrices_SkipsBadPoints(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Time Series (Daily)": {
			"2025-06-01": {"4. close": "99.00"},
			"not-a-date": {"4. close": "100.00"},
			"2025-06-02": {"4. close": "garbage"}
		}}`))
	})

	points, err := api.GetDailyPrices(context.Background(), "AAPL")

	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 99.0, points[0].Close)
}

func TestGetDailyPrices_EmptySeries(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Note": "rate limited"}`))
	})

	_, err := api.GetDailyPrices(context.Background(), "AAPL")

	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}
