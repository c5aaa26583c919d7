package alphaVantageApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/internal/externalApi"
	"github.com/mkuznec/portfolio_dashboard/internal/model/avModel"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

const (
	priceField = "05. price"
	closeField = "4. close"
	dateLayout = "2006-01-02"
)

type AlphaVantageApi struct {
	client *resty.Client
	apiKey string
}

func New(cfg *config.Config) *AlphaVantageApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.AlphaVantage.Url)
	return &AlphaVantageApi{client: client, apiKey: cfg.API.AlphaVantage.ApiKey}
}

// GetQuote fetches the current price for a ticker via GLOBAL_QUOTE. A
// response without a usable price field maps to externalApi.ErrNotFound.
func (a *AlphaVantageApi) GetQuote(ctx context.Context, ticker string) (avModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlphaVantageApi.GetQuote"

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	params := map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   ticker,
		"apikey":   a.apiKey,
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get("/query")
	if err != nil {
		slog.Error("error while dialing AlphaVantageApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return avModel.Quote{}, err
	}

	raw := avModel.RawGlobalQuote{}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		slog.Error("can't unmarshal GLOBAL_QUOTE response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return avModel.Quote{}, err
	}

	rawPrice, ok := raw.GlobalQuote[priceField]
	if !ok || rawPrice == "" {
		slog.Warn("no usable quote in response", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
		return avModel.Quote{}, externalApi.ErrNotFound
	}

	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		slog.Error("can't parse quote price", slog.String("rqID", rqID), slog.String("op", op), slog.String("price", rawPrice), slog.String("err", err.Error()))
		return avModel.Quote{}, externalApi.ErrNotFound
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	return avModel.Quote{Ticker: ticker, Price: price}, nil
}

// GetDailyPrices fetches the compact TIME_SERIES_DAILY history, sorted by
// date ascending.
func (a *AlphaVantageApi) GetDailyPrices(ctx context.Context, ticker string) ([]avModel.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlphaVantageApi.GetDailyPrices"

	slog.Debug("GetDailyPrices start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	params := map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     ticker,
		"outputsize": "compact",
		"apikey":     a.apiKey,
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get("/query")
	if err != nil {
		slog.Error("error while dialing AlphaVantageApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	raw := avModel.RawDailySeries{}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		slog.Error("can't unmarshal TIME_SERIES_DAILY response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if len(raw.TimeSeries) == 0 {
		return nil, externalApi.ErrNotFound
	}

	points := make([]avModel.PricePoint, 0, len(raw.TimeSeries))
	for dateStr, values := range raw.TimeSeries {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			slog.Warn("skip point with unparseable date", slog.String("rqID", rqID), slog.String("op", op), slog.String("date", dateStr))
			continue
		}

		close, err := decimal.NewFromString(values[closeField])
		if err != nil {
			slog.Warn("skip point with unparseable close", slog.String("rqID", rqID), slog.String("op", op), slog.String("date", dateStr))
			continue
		}

		points = append(points, avModel.PricePoint{Date: date, Close: close.InexactFloat64()})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	slog.Debug("GetDailyPrices finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("points", len(points)))

	return points, nil
}
