// Package analytics computes per-holding and aggregate risk/return figures
// over an uploaded holdings table. Every function here is pure: the input
// table is never mutated and rerunning a computation on the same table
// produces the same output.
package analytics

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/mkuznec/portfolio_dashboard/internal/model"
)

const (
	FlagSectorConcentration = "High sector concentration"
	FlagLossMaking          = "Loss-making stock present"
	FlagLargeCapBias        = "Heavy large-cap bias"

	sectorConcentrationLimit = 0.4
	largeCapThreshold        = 1_000_000
	largeCapShareLimit       = 0.5
)

// Validate checks row-level required fields for the table's shape. Column
// presence is enforced earlier, when the CSV is parsed; this guards callers
// that build tables in memory. It returns a *SchemaError naming every
// missing field, before any computation happens.
func Validate(p model.Portfolio) error {
	var missing []string
	for i, h := range p.Holdings {
		if h.Ticker == "" {
			missing = append(missing, fmt.Sprintf("Ticker (row %d)", i+1))
		}
		if p.Shape == model.ShapeSelfContained && h.Sector == "" {
			missing = append(missing, fmt.Sprintf("Sector (row %d)", i+1))
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// Enrich adds the computed columns to every row: Return, WeightedReturn,
// CurrentValue and GainLoss. For fetch-shaped tables the weights are derived
// from each position's share of total current value (rows whose price
// degraded to zero get weight 0). Row order and identity fields are
// preserved as uploaded.
func Enrich(p model.Portfolio) []model.EnrichedHolding {
	rows := make([]model.EnrichedHolding, 0, len(p.Holdings))

	totalValue := decimal.Zero
	for _, h := range p.Holdings {
		qty := decimal.NewFromFloat(h.Quantity)
		value := h.CurrentPrice.Mul(qty)
		totalValue = totalValue.Add(value)

		rows = append(rows, model.EnrichedHolding{
			Holding:      h,
			Return:       HoldingReturn(h.BuyPrice.InexactFloat64(), h.CurrentPrice.InexactFloat64()),
			CurrentValue: value,
			GainLoss:     h.CurrentPrice.Sub(h.BuyPrice).Mul(qty),
		})
	}

	for i := range rows {
		if p.Shape == model.ShapeFetchPrices {
			if totalValue.IsZero() {
				rows[i].Weight = 0
			} else {
				rows[i].Weight = rows[i].CurrentValue.Div(totalValue).InexactFloat64()
			}
		}
		rows[i].WeightedReturn = rows[i].Return * rows[i].Weight
	}

	return rows
}

// Summarize computes the aggregate summary over an enriched table.
//
// PortfolioReturn is the straight sum of weighted returns; weights are taken
// as supplied and not normalized. Volatility is the sample standard
// deviation (n-1 divisor) of the row returns, NaN for fewer than two rows.
// SharpeRatio is nil whenever volatility is zero or undefined.
// DiversificationScore is the raw Herfindahl-Hirschman index over the
// supplied weights; duplicate tickers each contribute their own squared
// weight.
func Summarize(rows []model.EnrichedHolding, hasMarketCap bool, riskFreeRate float64) model.Summary {
	s := model.Summary{
		SectorAllocation: make(map[string]float64, len(rows)),
		RiskFlags:        []string{},
	}

	returns := make([]float64, 0, len(rows))
	for _, r := range rows {
		returns = append(returns, r.Return)
		s.PortfolioReturn += r.WeightedReturn
		s.DiversificationScore += r.Weight * r.Weight
		s.SectorAllocation[r.Sector] += r.Weight
	}

	s.Volatility = sampleVolatility(returns)
	s.SharpeRatio = SharpeRatio(s.PortfolioReturn, riskFreeRate, s.Volatility)
	s.RiskFlags = riskFlags(rows, s.SectorAllocation, hasMarketCap)

	return s
}

func sampleVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return math.NaN()
	}
	return stat.StdDev(returns, nil)
}

// SharpeRatio computes (portfolioReturn - riskFreeRate) / volatility.
// It returns nil when volatility is zero or undefined; the ratio is never
// coerced to zero or infinity.
func SharpeRatio(portfolioReturn, riskFreeRate, volatility float64) *float64 {
	if volatility == 0 || math.IsNaN(volatility) {
		return nil
	}
	sharpe := (portfolioReturn - riskFreeRate) / volatility
	return &sharpe
}

// riskFlags evaluates every check independently; none short-circuits
// another. The returned order is fixed.
func riskFlags(rows []model.EnrichedHolding, sectors map[string]float64, hasMarketCap bool) []string {
	flags := []string{}

	for _, weight := range sectors {
		if weight > sectorConcentrationLimit {
			flags = append(flags, FlagSectorConcentration)
			break
		}
	}

	for _, r := range rows {
		if r.Return < 0 {
			flags = append(flags, FlagLossMaking)
			break
		}
	}

	if hasMarketCap && len(rows) > 0 {
		largeCaps := 0
		for _, r := range rows {
			if r.MarketCap > largeCapThreshold {
				largeCaps++
			}
		}
		if float64(largeCaps)/float64(len(rows)) > largeCapShareLimit {
			flags = append(flags, FlagLargeCapBias)
		}
	}

	return flags
}

// Compute validates the table and produces the enriched rows together with
// the aggregate summary. On a schema violation nothing is computed.
func Compute(p model.Portfolio, riskFreeRate float64) ([]model.EnrichedHolding, model.Summary, error) {
	if err := Validate(p); err != nil {
		return nil, model.Summary{}, err
	}
	rows := Enrich(p)
	return rows, Summarize(rows, p.HasMarketCap, riskFreeRate), nil
}
