package telebotConverter

import (
	"testing"

	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/model/tg/tgCallback"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(decimal.RequireFromString("1234.5"), "usd"))
	assert.Equal(t, "$10.00", FormatMoney(decimal.NewFromInt(10), ""))
}

func TestPortfolioSummaryResponse(t *testing.T) {
	summary := model.PortfolioSummary{
		TotalValue:      decimal.NewFromInt(10000),
		TotalPercentage: decimal.NewFromInt(60),
		ChartWindow:     model.ChartWindow{Period: model.PeriodYear, Interval: model.IntervalWeek},
		Holdings: []model.HoldingView{{
			Holding: model.Holding{
				Ticker:              "ABC",
				Name:                "ABC Corp",
				Currency:            "USD",
				CurrentPrice:        decimal.NewFromInt(110),
				PreviousClosePrice:  decimal.NewFromInt(100),
				PortfolioPercentage: decimal.NewFromInt(60),
			},
			AvailablePercentage: decimal.NewFromInt(100),
			EstimatedShares:     54,
		}},
	}

	text, markup := PortfolioSummaryResponse(summary)

	assert.Contains(t, text, "**ABC** (ABC Corp)")
	assert.Contains(t, text, "$110.00 (+10.00%)")
	assert.Contains(t, text, "**54 шт.**")

	require.Len(t, markup.InlineKeyboard, 3)
	assert.Equal(t, tgCallback.RefreshPrefix+"ABC", markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, tgCallback.DeletePrefix+"ABC", markup.InlineKeyboard[0][1].Unique)
	assert.Equal(t, "• год", markup.InlineKeyboard[1][2].Text)
}

func TestPortfolioSummaryResponse_Empty(t *testing.T) {
	text, markup := PortfolioSummaryResponse(model.PortfolioSummary{})

	assert.Contains(t, text, "Портфель пуст")
	assert.Len(t, markup.InlineKeyboard, 2)
}

func TestParsePeriodCallback(t *testing.T) {
	window, ok := ParsePeriodCallback(tgCallback.PeriodPrefix + "M:1d")
	require.True(t, ok)
	assert.Equal(t, model.ChartWindow{Period: model.PeriodMonth, Interval: model.IntervalDay}, window)

	_, ok = ParsePeriodCallback("period:x")
	assert.False(t, ok)
	_, ok = ParsePeriodCallback("period:d:1wk")
	assert.False(t, ok)
}
