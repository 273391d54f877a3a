package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type PricePoint struct {
	Date  time.Time
	Price decimal.Decimal
}

// Holding is one tracked ticker of a portfolio. Ticker is the identity key.
type Holding struct {
	Ticker              string
	Name                string
	Currency            string
	Exchange            string
	CurrentPrice        decimal.Decimal
	PreviousClosePrice  decimal.Decimal
	PortfolioPercentage decimal.Decimal
	DisplayColor        string
	HistoricalData      []PricePoint // nil пока не загружена история
}

// Clone returns a copy that shares no mutable state with h.
func (h Holding) Clone() Holding {
	h.HistoricalData = slices.Clone(h.HistoricalData)
	return h
}

func (h Holding) DayChange() decimal.Decimal {
	if h.PreviousClosePrice.IsZero() {
		return decimal.Zero
	}
	return h.CurrentPrice.Sub(h.PreviousClosePrice).Div(h.PreviousClosePrice).Mul(decimal.NewFromInt(100))
}

// HoldingView is a holding enriched with the values derived from the rest of the portfolio.
type HoldingView struct {
	Holding
	AvailablePercentage decimal.Decimal
	EstimatedShares     int64
}
