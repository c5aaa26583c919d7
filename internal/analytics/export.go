package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/mkuznec/portfolio_dashboard/internal/model"
)

// ExportColumns is the fixed column order of the export projection.
var ExportColumns = []string{"Ticker", "Sector", "Return", "WeightedReturn"}

// ExportRows projects the enriched table down to the export view, with both
// return columns formatted as percentages with two decimal digits.
func ExportRows(rows []model.EnrichedHolding) []model.ExportRow {
	out := make([]model.ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.ExportRow{
			Ticker:         r.Ticker,
			Sector:         r.Sector,
			Return:         FormatPercent(r.Return),
			WeightedReturn: FormatPercent(r.WeightedReturn),
		})
	}
	return out
}

// FormatPercent renders a fractional value as a percentage with two decimal
// digits, e.g. 0.1234 -> "12.34%".
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v * 100).StringFixed(2) + "%"
}
