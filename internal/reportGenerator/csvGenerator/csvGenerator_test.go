package csvGenerator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznec/portfolio_dashboard/internal/model"
)

func TestGenerate(t *testing.T) {
	rows := []model.ExportRow{
		{Ticker: "AAPL", Sector: "Technology", Return: "10.00%", WeightedReturn: "6.00%"},
		{Ticker: "JNJ", Sector: "Healthcare", Return: "-5.00%", WeightedReturn: "-2.00%"},
	}

	fileBytes, ext, err := New().Generate(context.Background(), rows)

	require.NoError(t, err)
	assert.Equal(t, ".csv", ext)
	assert.Equal(t,
		"Ticker,Sector,Return,WeightedReturn\n"+
			"AAPL,Technology,10.00%,6.00%\n"+
			"JNJ,Healthcare,-5.00%,-2.00%\n",
		string(fileBytes),
	)
}

func TestGenerate_EmptyTable(t *testing.T) {
	fileBytes, _, err := New().Generate(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "Ticker,Sector,Return,WeightedReturn\n", string(fileBytes))
}
