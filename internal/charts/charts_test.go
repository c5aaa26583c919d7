package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznec/portfolio_dashboard/internal/model/avModel"
)

func TestRenderPriceChart(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2025, 6, n, 0, 0, 0, 0, time.UTC)
	}

	points := []avModel.PricePoint{
		{Date: day(1), Close: 100},
		{Date: day(2), Close: 101.5},
		{Date: day(3), Close: 99.8},
	}

	png, err := RenderPriceChart("AAPL", points)

	require.NoError(t, err)
	require.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestRenderPriceChart_TooFewPoints(t *testing.T) {
	_, err := RenderPriceChart("AAPL", []avModel.PricePoint{{Date: time.Now(), Close: 100}})
	assert.Error(t, err)
}
