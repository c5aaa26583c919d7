// Package csvloader parses an uploaded holdings CSV into the in-memory
// table the analytics engine consumes. Column presence is validated for the
// detected table shape before any row is parsed.
package csvloader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mkuznec/portfolio_dashboard/internal/analytics"
	"github.com/mkuznec/portfolio_dashboard/internal/model"
)

const (
	colTicker       = "Ticker"
	colSector       = "Sector"
	colWeight       = "Weight"
	colQuantity     = "Quantity"
	colBuyPrice     = "Buy Price"
	colCurrentPrice = "Current Price"
	colMarketCap    = "Market Cap"
)

var (
	selfContainedColumns = []string{colTicker, colWeight, colSector, colBuyPrice, colCurrentPrice}
	fetchShapeColumns    = []string{colTicker, colQuantity, colBuyPrice}
)

// Load reads a holdings CSV. Tables carrying both Weight and Current Price
// columns are self-contained; everything else is treated as the fetch shape
// whose Current Price is filled from live quotes and whose weights are
// derived from position value. Missing required columns for the detected
// shape produce an *analytics.SchemaError naming all of them.
func Load(r io.Reader) (model.Portfolio, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("read holdings csv: %w", err)
	}

	if len(records) == 0 {
		return model.Portfolio{}, &analytics.SchemaError{Missing: selfContainedColumns}
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}

	shape := model.ShapeFetchPrices
	if _, ok := cols[colWeight]; ok {
		if _, ok := cols[colCurrentPrice]; ok {
			shape = model.ShapeSelfContained
		}
	}

	required := fetchShapeColumns
	if shape == model.ShapeSelfContained {
		required = selfContainedColumns
	}

	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return model.Portfolio{}, &analytics.SchemaError{Missing: missing}
	}

	_, hasMarketCap := cols[colMarketCap]

	p := model.Portfolio{
		Holdings:     make([]model.Holding, 0, len(records)-1),
		Shape:        shape,
		HasMarketCap: hasMarketCap,
	}

	for i, record := range records[1:] {
		h, err := parseRow(record, cols, shape)
		if err != nil {
			return model.Portfolio{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		p.Holdings = append(p.Holdings, h)
	}

	return p, nil
}

func parseRow(record []string, cols map[string]int, shape model.Shape) (model.Holding, error) {
	h := model.Holding{
		Ticker: cell(record, cols, colTicker),
		Sector: cell(record, cols, colSector),
	}

	var err error

	if h.BuyPrice, err = parsePrice(cell(record, cols, colBuyPrice), colBuyPrice); err != nil {
		return model.Holding{}, err
	}

	if shape == model.ShapeSelfContained {
		if h.CurrentPrice, err = parsePrice(cell(record, cols, colCurrentPrice), colCurrentPrice); err != nil {
			return model.Holding{}, err
		}
		if h.Weight, err = parseFloat(cell(record, cols, colWeight), colWeight); err != nil {
			return model.Holding{}, err
		}
	}

	if raw := cell(record, cols, colQuantity); raw != "" {
		if h.Quantity, err = parseFloat(raw, colQuantity); err != nil {
			return model.Holding{}, err
		}
	} else if shape == model.ShapeFetchPrices {
		return model.Holding{}, fmt.Errorf("empty %s value", colQuantity)
	}

	if raw := cell(record, cols, colMarketCap); raw != "" {
		if h.MarketCap, err = parseFloat(raw, colMarketCap); err != nil {
			return model.Holding{}, err
		}
	}

	return h, nil
}

func cell(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parsePrice(raw, column string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s value %q", column, raw)
	}
	return d, nil
}

func parseFloat(raw, column string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", column, raw)
	}
	return f, nil
}
