// Package dashboardService orchestrates the dashboard flows: CSV upload,
// pricing, analytics, news with AI summaries, history, charts and report
// exports. The analytics themselves live in internal/analytics and stay
// pure; this service owns the collaborator boundaries and their degrade
// policies.
package dashboardService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/data/session"
	"github.com/mkuznec/portfolio_dashboard/internal/analytics"
	"github.com/mkuznec/portfolio_dashboard/internal/charts"
	"github.com/mkuznec/portfolio_dashboard/internal/csvloader"
	"github.com/mkuznec/portfolio_dashboard/internal/externalApi"
	"github.com/mkuznec/portfolio_dashboard/internal/model"
	"github.com/mkuznec/portfolio_dashboard/internal/model/avModel"
	"github.com/mkuznec/portfolio_dashboard/internal/model/newsModel"
	"github.com/mkuznec/portfolio_dashboard/internal/service"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

type QuoteApi interface {
	GetQuote(ctx context.Context, ticker string) (avModel.Quote, error)
	GetDailyPrices(ctx context.Context, ticker string) ([]avModel.PricePoint, error)
}

type NewsApi interface {
	GetNews(ctx context.Context, ticker string) ([]newsModel.Article, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

type Cache interface {
	GetQuote(ctx context.Context, ticker string) (avModel.Quote, error)
	SetQuote(ctx context.Context, quote avModel.Quote) error
	GetNews(ctx context.Context, ticker string) ([]newsModel.Article, error)
	SetNews(ctx context.Context, ticker string, articles []newsModel.Article) error
	GetDailyPrices(ctx context.Context, ticker string) ([]avModel.PricePoint, error)
	SetDailyPrices(ctx context.Context, ticker string, points []avModel.PricePoint) error
	TrackTickers(ctx context.Context, tickers []string) error
	TrackedTickers(ctx context.Context) ([]string, error)
}

type Session interface {
	GetSession(ctx context.Context, sessionID string) (model.Session, error)
	SetSession(ctx context.Context, sessionID string, sess model.Session) error
}

type CSVGenerator interface {
	Generate(ctx context.Context, rows []model.ExportRow) (fileBytes []byte, fileExtension string, err error)
}

type XLSXGenerator interface {
	Generate(ctx context.Context, rows []model.ExportRow, summary model.Summary) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (shareLink string, err error)
}

type DashboardService struct {
	cfg          *config.Config
	quoteApi     QuoteApi
	newsApi      NewsApi
	summarizer   Summarizer
	cache        Cache
	session      Session
	csvGen       CSVGenerator
	xlsxGen      XLSXGenerator
	cloudStorage CloudStorage
}

func New(
	cfg *config.Config,
	quoteApi QuoteApi,
	newsApi NewsApi,
	summarizer Summarizer,
	cache Cache,
	sess Session,
	csvGen CSVGenerator,
	xlsxGen XLSXGenerator,
	cloudStorage CloudStorage,
) *DashboardService {
	return &DashboardService{
		cfg:          cfg,
		quoteApi:     quoteApi,
		newsApi:      newsApi,
		summarizer:   summarizer,
		cache:        cache,
		session:      sess,
		csvGen:       csvGen,
		xlsxGen:      xlsxGen,
		cloudStorage: cloudStorage,
	}
}

// UploadPortfolio parses the uploaded CSV, prices it if needed, runs the
// analytics and stores the priced table in the session so later requests
// recompute from the same data.
func (s *DashboardService) UploadPortfolio(ctx context.Context, sessionID, filename string, r io.Reader) (model.DashboardPage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.UploadPortfolio"

	slog.Debug("UploadPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))
	defer func() {
		slog.Debug("UploadPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))
	}()

	p, err := csvloader.Load(r)
	if err != nil {
		slog.Warn("got error from csvloader.Load", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.DashboardPage{}, err
	}

	if p.Shape == model.ShapeFetchPrices {
		s.priceHoldings(ctx, p.Holdings)
	}

	rows, summary, err := analytics.Compute(p, s.cfg.Analytics.RiskFreeRate)
	if err != nil {
		slog.Warn("got error from analytics.Compute", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.DashboardPage{}, err
	}

	sess := model.Session{Filename: filename, Portfolio: p, UploadedAt: time.Now()}
	if err := s.session.SetSession(ctx, sessionID, sess); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.DashboardPage{}, err
	}

	go s.trackTickers(context.WithoutCancel(ctx), p.Holdings)

	return model.DashboardPage{Filename: filename, Holdings: rows, Summary: summary}, nil
}

// GetDashboard recomputes the dashboard from the session's stored table.
// Rerunning on an unchanged table yields identical output.
func (s *DashboardService) GetDashboard(ctx context.Context, sessionID string) (model.DashboardPage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.GetDashboard"

	slog.Debug("GetDashboard start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetDashboard finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return model.DashboardPage{}, err
	}

	rows, summary, err := analytics.Compute(sess.Portfolio, s.cfg.Analytics.RiskFreeRate)
	if err != nil {
		return model.DashboardPage{}, err
	}

	return model.DashboardPage{Filename: sess.Filename, Holdings: rows, Summary: summary}, nil
}

// TickerNews returns recent articles with AI summaries. An unavailable news
// feed degrades to an empty list; an unavailable summarizer degrades each
// summary to its fixed fallback string.
func (s *DashboardService) TickerNews(ctx context.Context, ticker string) ([]newsModel.ArticleWithSummary, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.TickerNews"

	slog.Debug("TickerNews start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		slog.Debug("TickerNews finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	}()

	articles, err := s.cache.GetNews(ctx, ticker)
	if err != nil {
		slog.Warn("can't get news from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

		articles, err = s.newsApi.GetNews(ctx, ticker)
		if err != nil {
			if errors.Is(err, externalApi.ErrNotFound) {
				return []newsModel.ArticleWithSummary{}, nil
			}
			slog.Error("can't get news from newsApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, err
		}

		go s.cache.SetNews(context.WithoutCancel(ctx), ticker, articles)
	}

	out := make([]newsModel.ArticleWithSummary, 0, len(articles))
	for _, a := range articles {
		out = append(out, newsModel.ArticleWithSummary{
			Article: a,
			Summary: s.summarizer.Summarize(ctx, a.Title+". "+a.Description),
		})
	}

	return out, nil
}

// PriceHistory returns the daily close series for a ticker, oldest first.
func (s *DashboardService) PriceHistory(ctx context.Context, ticker string) ([]avModel.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.PriceHistory"

	slog.Debug("PriceHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		slog.Debug("PriceHistory finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	}()

	points, err := s.cache.GetDailyPrices(ctx, ticker)
	if err == nil {
		return points, nil
	}

	slog.Warn("can't get history from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	points, err = s.quoteApi.GetDailyPrices(ctx, ticker)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		slog.Error("can't get history from quoteApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	go s.cache.SetDailyPrices(context.WithoutCancel(ctx), ticker, points)

	return points, nil
}

// PriceChart renders the daily close series as a PNG.
func (s *DashboardService) PriceChart(ctx context.Context, ticker string) ([]byte, error) {
	points, err := s.PriceHistory(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return charts.RenderPriceChart(ticker, points)
}

// ExportCSV renders the export projection of the session's table as
// delimited text.
func (s *DashboardService) ExportCSV(ctx context.Context, sessionID string) (fileBytes []byte, fileExtension string, err error) {
	rows, _, err := s.exportData(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	return s.csvGen.Generate(ctx, rows)
}

// ExportXLSX renders the export projection plus the summary as a workbook.
func (s *DashboardService) ExportXLSX(ctx context.Context, sessionID string) (fileBytes []byte, fileExtension string, err error) {
	rows, summary, err := s.exportData(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	return s.xlsxGen.Generate(ctx, rows, summary)
}

// ExportToDrive uploads the xlsx report to cloud storage and returns a
// share link.
func (s *DashboardService) ExportToDrive(ctx context.Context, sessionID string) (shareLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.ExportToDrive"

	if s.cloudStorage == nil {
		return "", service.ErrCloudStorageDisabled
	}

	fileBytes, ext, err := s.ExportXLSX(ctx, sessionID)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("portfolio_report_%s%s", uuid.NewString(), ext)

	link, err := s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return link, nil
}

// RefreshQuotesCache re-fetches quotes for every tracked ticker. Runs on
// the scheduler; individual ticker failures are logged and skipped.
func (s *DashboardService) RefreshQuotesCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.RefreshQuotesCache"

	tickers, err := s.cache.TrackedTickers(ctx)
	if err != nil {
		return err
	}

	for _, ticker := range tickers {
		quote, err := s.quoteApi.GetQuote(ctx, ticker)
		if err != nil {
			slog.Warn("skip ticker on refresh", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
			continue
		}
		if err := s.cache.SetQuote(ctx, quote); err != nil {
			slog.Warn("can't cache refreshed quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
		}
	}

	return nil
}

// priceHoldings fills CurrentPrice for every row from cache or the live
// quote API. A failed lookup degrades that row's price to zero and never
// aborts the rest of the batch.
func (s *DashboardService) priceHoldings(ctx context.Context, holdings []model.Holding) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.priceHoldings"

	prices := make(map[string]decimal.Decimal, len(holdings))

	for _, h := range holdings {
		if _, seen := prices[h.Ticker]; seen {
			continue
		}

		quote, err := s.lookupQuote(ctx, h.Ticker)
		if err != nil {
			slog.Warn("quote lookup failed, degrading row to zero price", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", h.Ticker), slog.String("err", err.Error()))
		}
		prices[h.Ticker] = analytics.PriceOrZero(quote.Price, err)
	}

	for i := range holdings {
		holdings[i].CurrentPrice = prices[holdings[i].Ticker]
	}
}

func (s *DashboardService) lookupQuote(ctx context.Context, ticker string) (avModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "DashboardService.lookupQuote"

	quote, err := s.cache.GetQuote(ctx, ticker)
	if err == nil {
		return quote, nil
	}

	slog.Debug("quote cache miss", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	quote, err = s.quoteApi.GetQuote(ctx, ticker)
	if err != nil {
		return avModel.Quote{}, err
	}

	go s.cache.SetQuote(context.WithoutCancel(ctx), quote)

	return quote, nil
}

func (s *DashboardService) trackTickers(ctx context.Context, holdings []model.Holding) {
	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		tickers = append(tickers, h.Ticker)
	}
	if err := s.cache.TrackTickers(ctx, tickers); err != nil {
		slog.Warn("can't track tickers", slog.String("err", err.Error()))
	}
}

func (s *DashboardService) getSession(ctx context.Context, sessionID string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	sess, err := s.session.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return model.Session{}, service.ErrNoPortfolio
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}
	return sess, nil
}

func (s *DashboardService) exportData(ctx context.Context, sessionID string) ([]model.ExportRow, model.Summary, error) {
	page, err := s.GetDashboard(ctx, sessionID)
	if err != nil {
		return nil, model.Summary{}, err
	}
	return analytics.ExportRows(page.Holdings), page.Summary, nil
}
