package model

import "github.com/shopspring/decimal"

// Shape describes which columns the uploaded table carried.
type Shape int

const (
	// ShapeSelfContained tables carry Weight and Current Price themselves.
	ShapeSelfContained Shape = iota
	// ShapeFetchPrices tables carry Quantity and rely on live quotes;
	// weights are derived from current position value.
	ShapeFetchPrices
)

type Holding struct {
	Ticker       string
	Sector       string
	Weight       float64
	Quantity     float64
	BuyPrice     decimal.Decimal
	CurrentPrice decimal.Decimal
	MarketCap    float64
}

type EnrichedHolding struct {
	Holding
	Return         float64
	WeightedReturn float64
	CurrentValue   decimal.Decimal
	GainLoss       decimal.Decimal
}
