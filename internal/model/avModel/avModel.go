package avModel

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawGlobalQuote mirrors the GLOBAL_QUOTE response envelope.
type RawGlobalQuote struct {
	GlobalQuote map[string]string `json:"Global Quote"`
}

// RawDailySeries mirrors the TIME_SERIES_DAILY response envelope.
type RawDailySeries struct {
	TimeSeries map[string]map[string]string `json:"Time Series (Daily)"`
}

type Quote struct {
	Ticker string
	Price  decimal.Decimal
}

type PricePoint struct {
	Date  time.Time
	Close float64
}
