package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/internal/analytics"
	"github.com/mkuznec/portfolio_dashboard/internal/model"
	"github.com/mkuznec/portfolio_dashboard/internal/model/avModel"
	"github.com/mkuznec/portfolio_dashboard/internal/model/newsModel"
	"github.com/mkuznec/portfolio_dashboard/internal/service"
)

type fakeService struct {
	page      model.DashboardPage
	uploadErr error
	getErr    error
	articles  []newsModel.ArticleWithSummary
	points    []avModel.PricePoint
	driveErr  error
}

func (f *fakeService) UploadPortfolio(_ context.Context, _, filename string, _ io.Reader) (model.DashboardPage, error) {
	if f.uploadErr != nil {
		return model.DashboardPage{}, f.uploadErr
	}
	page := f.page
	page.Filename = filename
	return page, nil
}

func (f *fakeService) GetDashboard(_ context.Context, _ string) (model.DashboardPage, error) {
	if f.getErr != nil {
		return model.DashboardPage{}, f.getErr
	}
	return f.page, nil
}

func (f *fakeService) TickerNews(_ context.Context, _ string) ([]newsModel.ArticleWithSummary, error) {
	return f.articles, nil
}

func (f *fakeService) PriceHistory(_ context.Context, _ string) ([]avModel.PricePoint, error) {
	if f.points == nil {
		return nil, service.ErrNotFound
	}
	return f.points, nil
}

func (f *fakeService) PriceChart(_ context.Context, _ string) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (f *fakeService) ExportCSV(_ context.Context, _ string) ([]byte, string, error) {
	if f.getErr != nil {
		return nil, "", f.getErr
	}
	return []byte("Ticker,Sector\n"), ".csv", nil
}

func (f *fakeService) ExportXLSX(_ context.Context, _ string) ([]byte, string, error) {
	return []byte("xlsx"), ".xlsx", nil
}

func (f *fakeService) ExportToDrive(_ context.Context, _ string) (string, error) {
	if f.driveErr != nil {
		return "", f.driveErr
	}
	return "https://drive.google.com/file/d/abc/view", nil
}

func newTestServer(svc *fakeService) *Server {
	cfg := &config.Config{}
	cfg.HTTP.Port = 8080
	return New(cfg, svc)
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleUploadPortfolio(t *testing.T) {
	srv := newTestServer(&fakeService{
		page: model.DashboardPage{
			Holdings: []model.EnrichedHolding{{Holding: model.Holding{Ticker: "AAPL"}, Return: 0.1}},
			Summary:  model.Summary{PortfolioReturn: 0.05},
		},
	})

	body, contentType := multipartBody(t, "holdings.csv", "Ticker,Weight\n")
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "holdings.csv", resp.Filename)
	require.Len(t, resp.Holdings, 1)
	assert.Equal(t, "AAPL", resp.Holdings[0].Ticker)

	// a session cookie is issued on first contact
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionCookie, cookies[0].Name)
}

func TestHandleUploadPortfolio_SchemaError(t *testing.T) {
	srv := newTestServer(&fakeService{
		uploadErr: &analytics.SchemaError{Missing: []string{"Ticker"}},
	})

	body, contentType := multipartBody(t, "bad.csv", "Name\n")
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ticker")
}

func TestHandleUploadPortfolio_MissingFile(t *testing.T) {
	srv := newTestServer(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", bytes.NewBufferString("not multipart"))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetDashboard_NoPortfolio(t *testing.T) {
	srv := newTestServer(&fakeService{getErr: service.ErrNoPortfolio})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetDashboard_UndefinedFiguresAsNull(t *testing.T) {
	srv := newTestServer(&fakeService{
		page: model.DashboardPage{
			Summary: model.Summary{
				PortfolioReturn: 0.1,
				Volatility:      math.NaN(),
				SharpeRatio:     nil,
			},
		},
	})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	summary := resp["summary"].(map[string]any)
	assert.Nil(t, summary["volatility"])
	assert.Nil(t, summary["sharpeRatio"])
	assert.Equal(t, []any{}, summary["riskFlags"])
}

func TestHandleExport_CSV(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolio/export?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "portfolio_report.csv")
}

func TestHandleExport_UnknownFormat(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolio/export?format=pdf", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExportToDrive_Disabled(t *testing.T) {
	srv := newTestServer(&fakeService{driveErr: service.ErrCloudStorageDisabled})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/portfolio/export/drive", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleTickerNews(t *testing.T) {
	srv := newTestServer(&fakeService{
		articles: []newsModel.ArticleWithSummary{
			{Article: newsModel.Article{Title: "Apple launches"}, Summary: "short summary"},
		},
	})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news/AAPL", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var articles []articleDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "short summary", articles[0].Summary)
}

func TestHandlePriceHistory(t *testing.T) {
	srv := newTestServer(&fakeService{
		points: []avModel.PricePoint{
			{Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Close: 100.5},
		},
	})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/AAPL", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var points []pricePointDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, "2025-06-01", points[0].Date)
}

func TestHandlePriceHistory_UnknownTicker(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/UNKNOWN", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePriceChart(t *testing.T) {
	srv := newTestServer(&fakeService{})

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/AAPL", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}
