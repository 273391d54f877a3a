package dbConverter

import (
	"testing"

	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedPortfolioItemsRoundTrip(t *testing.T) {
	items := []model.PortfolioItem{
		{Ticker: "XYZ", PortfolioPercentage: decimal.NewFromInt(40)},
		{Ticker: "ABC", PortfolioPercentage: decimal.RequireFromString("12.5")},
	}

	dbItems := ConvertToSharedPortfolioItems("key-1", items)
	require.Len(t, dbItems, 2)
	assert.Equal(t, "key-1", dbItems[0].PortfolioID)
	assert.Equal(t, 1, dbItems[0].Ordinal)
	assert.Equal(t, 2, dbItems[1].Ordinal)

	assert.Equal(t, items, ConvertSharedPortfolioItems(dbItems))
}

func TestSharedPortfolioItems_KeepsPrecision(t *testing.T) {
	items := []model.PortfolioItem{
		{Ticker: "ABC", PortfolioPercentage: decimal.RequireFromString("33.333333")},
		{Ticker: "XYZ", PortfolioPercentage: decimal.RequireFromString("1250000.123456789")},
	}

	got := ConvertSharedPortfolioItems(ConvertToSharedPortfolioItems("key-1", items))
	require.Len(t, got, 2)
	assert.Equal(t, "33.333333", got[0].PortfolioPercentage.String())
	assert.Equal(t, "1250000.123456789", got[1].PortfolioPercentage.String())
}
