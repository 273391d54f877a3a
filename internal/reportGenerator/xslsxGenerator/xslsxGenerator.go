package xslsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	holdingsSheet   = "Портфель"
	historicalSheet = "История цен"
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, summary model.PortfolioSummary) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	if len(summary.Holdings) == 0 {
		return nil, "", errors.New("empty portfolio")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillHoldings(f, summary); err != nil {
		slog.Error("got error while filling holdings sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := g.fillHistorical(f, summary); err != nil {
		slog.Error("got error while filling historical sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	// Удаляем лист по умолчанию "Sheet1"
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
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
			Color:   []string{color},
		},
	})
}

func (g *XSLSXGenerator) fillHoldings(f *excelize.File, summary model.PortfolioSummary) error {
	if _, err := f.NewSheet(holdingsSheet); err != nil {
		return err
	}

	headers := []string{"тикер", "название", "биржа", "валюта", "цена", "изменение за день, %", "вес, %", "доступно, %", "кол-во акций", "сумма"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellStr(holdingsSheet, cell, h)
	}

	styleID, err := headerStyle(f, "#cfe2f3") // Светло-голубой цвет
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(holdingsSheet, "A1", "J1", styleID); err != nil {
		return fmt.Errorf("ошибка применения стиля: %w", err)
	}

	for i, h := range summary.Holdings {
		row := i + 2
		_ = f.SetCellStr(holdingsSheet, fmt.Sprintf("A%d", row), h.Ticker)
		_ = f.SetCellStr(holdingsSheet, fmt.Sprintf("B%d", row), h.Name)
		_ = f.SetCellStr(holdingsSheet, fmt.Sprintf("C%d", row), h.Exchange)
		_ = f.SetCellStr(holdingsSheet, fmt.Sprintf("D%d", row), h.Currency)
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("E%d", row), h.CurrentPrice.InexactFloat64())
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("F%d", row), h.DayChange().Round(2).InexactFloat64())
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("G%d", row), h.PortfolioPercentage.InexactFloat64())
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("H%d", row), h.AvailablePercentage.InexactFloat64())
		_ = f.SetCellInt(holdingsSheet, fmt.Sprintf("I%d", row), h.EstimatedShares)
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("J%d", row), h.CurrentPrice.Mul(decimal.NewFromInt(h.EstimatedShares)).InexactFloat64())

		// цвет тикера как на графике
		if color := strings.TrimSpace(h.DisplayColor); color != "" {
			tickerStyle, err := headerStyle(f, color)
			if err == nil {
				_ = f.SetCellStyle(holdingsSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), tickerStyle)
			}
		}
	}

	totalRow := len(summary.Holdings) + 3
	_ = f.SetCellStr(holdingsSheet, fmt.Sprintf("A%d", totalRow), "итого")
	_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("G%d", totalRow), summary.TotalPercentage.InexactFloat64())
	_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("J%d", totalRow), summary.TotalValue.InexactFloat64())

	return nil
}

// fillHistorical пишет цены по датам, по колонке на тикер
func (g *XSLSXGenerator) fillHistorical(f *excelize.File, summary model.PortfolioSummary) error {
	if _, err := f.NewSheet(historicalSheet); err != nil {
		return err
	}

	_ = f.SetCellStr(historicalSheet, "A1", "дата")

	rows := make(map[string]int)
	dates := make([]string, 0)
	for col, h := range summary.Holdings {
		cell, _ := excelize.CoordinatesToCellName(col+2, 1)
		_ = f.SetCellStr(historicalSheet, cell, h.Ticker)

		for _, point := range h.HistoricalData {
			date := point.Date.Format("2006-01-02")
			row, ok := rows[date]
			if !ok {
				dates = append(dates, date)
				row = len(dates) + 1
				rows[date] = row
				_ = f.SetCellStr(historicalSheet, fmt.Sprintf("A%d", row), date)
			}
			cell, _ := excelize.CoordinatesToCellName(col+2, row)
			_ = f.SetCellValue(historicalSheet, cell, point.Price.InexactFloat64())
		}
	}

	styleID, err := headerStyle(f, "#d9ead3") // Светло-зеленый цвет
	if err != nil {
		return err
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(summary.Holdings)+1, 1)
	if err := f.SetCellStyle(historicalSheet, "A1", lastCell, styleID); err != nil {
		return fmt.Errorf("ошибка применения стиля: %w", err)
	}

	return nil
}
