package httpserver

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkuznec/portfolio_dashboard/internal/model"
	"github.com/mkuznec/portfolio_dashboard/internal/model/avModel"
	"github.com/mkuznec/portfolio_dashboard/internal/model/newsModel"
)

type dashboardResponse struct {
	Filename string       `json:"filename"`
	Holdings []holdingDTO `json:"holdings"`
	Summary  summaryDTO   `json:"summary"`
}

type holdingDTO struct {
	Ticker         string          `json:"ticker"`
	Sector         string          `json:"sector,omitempty"`
	Weight         float64         `json:"weight"`
	Quantity       float64         `json:"quantity,omitempty"`
	BuyPrice       decimal.Decimal `json:"buyPrice"`
	CurrentPrice   decimal.Decimal `json:"currentPrice"`
	Return         float64         `json:"return"`
	WeightedReturn float64         `json:"weightedReturn"`
	CurrentValue   decimal.Decimal `json:"currentValue"`
	GainLoss       decimal.Decimal `json:"gainLoss"`
}

// summaryDTO is the wire shape of the summary. Volatility is a pointer
// because the computed value is NaN for single-row tables and NaN cannot
// be encoded as JSON; undefined figures travel as null.
type summaryDTO struct {
	PortfolioReturn      float64            `json:"portfolioReturn"`
	Volatility           *float64           `json:"volatility"`
	SharpeRatio          *float64           `json:"sharpeRatio"`
	DiversificationScore float64            `json:"diversificationScore"`
	SectorAllocation     map[string]float64 `json:"sectorAllocation"`
	RiskFlags            []string           `json:"riskFlags"`
}

type articleDTO struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	Url         string `json:"url,omitempty"`
	Summary     string `json:"summary"`
}

type pricePointDTO struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

func toDashboardResponse(page model.DashboardPage) dashboardResponse {
	holdings := make([]holdingDTO, 0, len(page.Holdings))
	for _, h := range page.Holdings {
		holdings = append(holdings, holdingDTO{
			Ticker:         h.Ticker,
			Sector:         h.Sector,
			Weight:         h.Weight,
			Quantity:       h.Quantity,
			BuyPrice:       h.BuyPrice,
			CurrentPrice:   h.CurrentPrice,
			Return:         h.Return,
			WeightedReturn: h.WeightedReturn,
			CurrentValue:   h.CurrentValue,
			GainLoss:       h.GainLoss,
		})
	}

	return dashboardResponse{
		Filename: page.Filename,
		Holdings: holdings,
		Summary:  toSummaryDTO(page.Summary),
	}
}

func toSummaryDTO(s model.Summary) summaryDTO {
	var volatility *float64
	if !math.IsNaN(s.Volatility) {
		volatility = &s.Volatility
	}

	riskFlags := s.RiskFlags
	if riskFlags == nil {
		riskFlags = []string{}
	}

	return summaryDTO{
		PortfolioReturn:      s.PortfolioReturn,
		Volatility:           volatility,
		SharpeRatio:          s.SharpeRatio,
		DiversificationScore: s.DiversificationScore,
		SectorAllocation:     s.SectorAllocation,
		RiskFlags:            riskFlags,
	}
}

func toArticleDTOs(articles []newsModel.ArticleWithSummary) []articleDTO {
	out := make([]articleDTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleDTO{
			Title:       a.Title,
			Description: a.Description,
			PublishedAt: a.PublishedAt,
			Url:         a.Url,
			Summary:     a.Summary,
		})
	}
	return out
}

func toPricePointDTOs(points []avModel.PricePoint) []pricePointDTO {
	out := make([]pricePointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, pricePointDTO{
			Date:  p.Date.Format(time.DateOnly),
			Close: p.Close,
		})
	}
	return out
}
