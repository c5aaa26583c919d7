package xlsxGenerator

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mkuznec/portfolio_dashboard/internal/model"
)

func TestGenerate(t *testing.T) {
	rows := []model.ExportRow{
		{Ticker: "AAPL", Sector: "Technology", Return: "10.00%", WeightedReturn: "6.00%"},
		{Ticker: "JNJ", Sector: "Healthcare", Return: "-5.00%", WeightedReturn: "-2.00%"},
	}
	sharpe := 0.5
	summary := model.Summary{
		PortfolioReturn:      0.04,
		Volatility:           0.08,
		SharpeRatio:          &sharpe,
		DiversificationScore: 0.52,
		SectorAllocation:     map[string]float64{"Technology": 0.6, "Healthcare": 0.4},
		RiskFlags:            []string{"Loss-making stock present"},
	}

	fileBytes, ext, err := New().Generate(context.Background(), rows, summary)

	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)

	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Portfolio", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Ticker", header)

	ticker, err := f.GetCellValue("Portfolio", "A2")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", ticker)

	ret, err := f.GetCellValue("Portfolio", "C3")
	require.NoError(t, err)
	assert.Equal(t, "-5.00%", ret)
}

func TestGenerate_UndefinedFiguresAsNA(t *testing.T) {
	rows := []model.ExportRow{{Ticker: "AAPL", Sector: "Technology", Return: "10.00%", WeightedReturn: "10.00%"}}
	summary := model.Summary{
		PortfolioReturn: 0.10,
		Volatility:      math.NaN(),
		SharpeRatio:     nil,
	}

	fileBytes, _, err := New().Generate(context.Background(), rows, summary)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	require.NoError(t, err)
	defer f.Close()

	// summary block starts below the single data row
	volatility, err := f.GetCellValue("Portfolio", "B6")
	require.NoError(t, err)
	assert.Equal(t, "N/A", volatility)

	sharpe, err := f.GetCellValue("Portfolio", "B7")
	require.NoError(t, err)
	assert.Equal(t, "N/A", sharpe)
}
