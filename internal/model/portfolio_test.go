package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioItemJSON(t *testing.T) {
	items := []PortfolioItem{
		{Ticker: "ABC", PortfolioPercentage: decimal.NewFromInt(25)},
		{Ticker: "XYZ", PortfolioPercentage: decimal.RequireFromString("33.333333")},
	}

	data, err := json.Marshal(items)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"ticker":"ABC","portfolioPercentage":25},{"ticker":"XYZ","portfolioPercentage":33.333333}]`, string(data))
	assert.NotContains(t, string(data), `"25"`)

	var got []PortfolioItem
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.True(t, items[1].PortfolioPercentage.Equal(got[1].PortfolioPercentage))
}

func TestPortfolioItemJSON_QuotedInput(t *testing.T) {
	var got []PortfolioItem
	require.NoError(t, json.Unmarshal([]byte(`[{"ticker":"ABC","portfolioPercentage":"12.5"}]`), &got))
	require.Len(t, got, 1)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got[0].PortfolioPercentage))
}
