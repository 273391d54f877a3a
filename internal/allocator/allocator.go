package allocator

import (
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/shopspring/decimal"
)

// missingPriceDivisor keeps the estimate finite when a holding has no price yet.
var missingPriceDivisor = decimal.NewFromInt(99999999)

var hundred = decimal.NewFromInt(100)

// AvailablePercentage returns the largest weight ticker could take without the total
// exceeding 100: its own weight plus the remaining headroom, within [0,100].
// Holdings must be the live state, it is recomputed on every call.
func AvailablePercentage(holdings []model.Holding, ticker string) decimal.Decimal {
	total := decimal.Zero
	own := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.PortfolioPercentage)
		if h.Ticker == ticker {
			own = h.PortfolioPercentage
		}
	}

	available := hundred.Sub(total).Add(own)
	if available.IsNegative() {
		return decimal.Zero
	}
	if available.GreaterThan(hundred) {
		return hundred
	}
	return available
}

// EstimatedShares returns floor(totalValue * percentage / 100 / price).
func EstimatedShares(totalValue, percentage, price decimal.Decimal) int64 {
	if !price.IsPositive() {
		price = missingPriceDivisor
	}

	shares := totalValue.Mul(percentage).Div(hundred).Div(price).Floor()
	if shares.IsNegative() {
		return 0
	}
	return shares.IntPart()
}
