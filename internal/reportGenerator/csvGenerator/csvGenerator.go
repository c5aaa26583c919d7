package csvGenerator

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"

	"github.com/mkuznec/portfolio_dashboard/internal/analytics"
	"github.com/mkuznec/portfolio_dashboard/internal/model"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

type CSVGenerator struct{}

func New() *CSVGenerator {
	return &CSVGenerator{}
}

// Generate renders the export projection as delimited text with the fixed
// column order Ticker, Sector, Return, WeightedReturn.
func (g *CSVGenerator) Generate(ctx context.Context, rows []model.ExportRow) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CSVGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("rows", len(rows)))

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(analytics.ExportColumns); err != nil {
		return nil, "", fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		if err := w.Write([]string{row.Ticker, row.Sector, row.Return, row.WeightedReturn}); err != nil {
			return nil, "", fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		slog.Error("got error while flushing csv", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate finished", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".csv", nil
}
