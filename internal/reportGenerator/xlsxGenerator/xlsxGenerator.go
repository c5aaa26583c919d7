package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mkuznec/portfolio_dashboard/internal/analytics"
	"github.com/mkuznec/portfolio_dashboard/internal/model"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

const sheetName = "Portfolio"

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders the export projection plus the aggregate summary as a
// single-sheet xlsx workbook.
func (g *XLSXGenerator) Generate(ctx context.Context, rows []model.ExportRow, summary model.Summary) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("rows", len(rows)))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if _, err := f.NewSheet(sheetName); err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return nil, "", err
	}

	for i, column := range analytics.ExportColumns {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellStr(sheetName, cellName, column)
	}
	if err := f.SetCellStyle(sheetName, "A1", "D1", headerStyle); err != nil {
		return nil, "", fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range rows {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", i+2), row.Ticker)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", i+2), row.Sector)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", i+2), row.Return)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", i+2), row.WeightedReturn)
	}

	g.fillSummary(f, summary, len(rows)+3, headerStyle)

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate finished", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSummary(f *excelize.File, summary model.Summary, startRow int, headerStyle int) {
	row := startRow

	_ = f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "Summary")
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
	row++

	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "Portfolio Return")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), analytics.FormatPercent(summary.PortfolioReturn))
	row++

	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "Volatility")
	if math.IsNaN(summary.Volatility) {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), "N/A")
	} else {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), summary.Volatility)
	}
	row++

	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "Sharpe Ratio")
	if summary.SharpeRatio == nil {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), "N/A")
	} else {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), *summary.SharpeRatio)
	}
	row++

	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "Diversification Score")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), summary.DiversificationScore)
	row++

	for sector, weight := range summary.SectorAllocation {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "Sector: "+sector)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), weight)
		row++
	}

	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "Risk Flags")
	if len(summary.RiskFlags) == 0 {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), "no major risks detected")
	} else {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), strings.Join(summary.RiskFlags, "; "))
	}
}
