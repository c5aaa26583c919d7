package analytics

import "github.com/shopspring/decimal"

// HoldingReturn computes (current - buy) / buy. A zero buy price yields a
// return of 0 rather than an infinity that would poison the aggregates.
func HoldingReturn(buyPrice, currentPrice float64) float64 {
	if buyPrice == 0 {
		return 0
	}
	return (currentPrice - buyPrice) / buyPrice
}

// PriceOrZero degrades a failed quote lookup to a zero price. The row then
// shows a large negative return instead of aborting the whole table.
func PriceOrZero(price decimal.Decimal, err error) decimal.Decimal {
	if err != nil {
		return decimal.Zero
	}
	return price
}
