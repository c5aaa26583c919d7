package newsApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/internal/externalApi"
	"github.com/mkuznec/portfolio_dashboard/internal/model/newsModel"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

const pageSize = "5"

// queryByTicker maps well-known tickers to search queries that actually
// match company coverage. Unknown tickers fall back to the raw symbol.
var queryByTicker = map[string]string{
	"AAPL":  "Apple Inc",
	"TSLA":  "Tesla",
	"GOOGL": "Google OR Alphabet",
	"MSFT":  "Microsoft",
	"META":  "Meta OR Facebook",
}

type NewsApi struct {
	client *resty.Client
	apiKey string
}

func New(cfg *config.Config) *NewsApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.NewsApi.Url)
	return &NewsApi{client: client, apiKey: cfg.API.NewsApi.ApiKey}
}

// GetNews fetches the five most recent English articles for a ticker,
// newest first.
func (a *NewsApi) GetNews(ctx context.Context, ticker string) ([]newsModel.Article, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "NewsApi.GetNews"

	slog.Debug("GetNews start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	query, ok := queryByTicker[strings.ToUpper(ticker)]
	if !ok {
		query = ticker
	}

	params := map[string]string{
		"q":        query,
		"language": "en",
		"sortBy":   "publishedAt",
		"pageSize": pageSize,
		"apiKey":   a.apiKey,
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get("/v2/everything")
	if err != nil {
		slog.Error("error while dialing NewsApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	raw := newsModel.RawNewsResponse{}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		slog.Error("can't unmarshal news response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if raw.Status != "ok" {
		slog.Warn("news api returned non-ok status", slog.String("rqID", rqID), slog.String("op", op), slog.String("status", raw.Status))
		return nil, externalApi.ErrNotFound
	}

	articles := make([]newsModel.Article, 0, len(raw.Articles))
	for _, ra := range raw.Articles {
		articles = append(articles, newsModel.Article{
			Title:       ra.Title,
			Description: ra.Description,
			PublishedAt: ra.PublishedAt,
			Url:         ra.Url,
		})
	}

	slog.Debug("GetNews finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("articles", len(articles)))

	return articles, nil
}
