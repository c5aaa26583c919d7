package model

// Portfolio is the uploaded holdings table. Row order is preserved as
// uploaded; tickers are not required to be unique and duplicate rows are
// never merged.
type Portfolio struct {
	Holdings     []Holding
	Shape        Shape
	HasMarketCap bool
}

// Summary holds the aggregate figures computed over an enriched table.
// Volatility is NaN when undefined (fewer than two rows); SharpeRatio is
// nil whenever volatility is zero or undefined.
type Summary struct {
	PortfolioReturn      float64
	Volatility           float64
	SharpeRatio          *float64
	DiversificationScore float64
	SectorAllocation     map[string]float64
	RiskFlags            []string
}

// ExportRow is the reduced projection of an enriched holding with returns
// preformatted as percentages.
type ExportRow struct {
	Ticker         string
	Sector         string
	Return         string
	WeightedReturn string
}

type DashboardPage struct {
	Filename string
	Holdings []EnrichedHolding
	Summary  Summary
}
