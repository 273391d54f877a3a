package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioItem is the persisted projection of a Holding.
type PortfolioItem struct {
	Ticker              string          `json:"ticker"`
	PortfolioPercentage decimal.Decimal `json:"portfolioPercentage"`
}

// MarshalJSON writes the percentage as a bare JSON number. Both the number and the quoted
// form are accepted back by decimal.Decimal.
func (i PortfolioItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Ticker              string      `json:"ticker"`
		PortfolioPercentage json.Number `json:"portfolioPercentage"`
	}{
		Ticker:              i.Ticker,
		PortfolioPercentage: json.Number(i.PortfolioPercentage.String()),
	})
}

type Period string

const (
	PeriodYear  Period = "y"
	PeriodMonth Period = "M"
	PeriodWeek  Period = "w"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodYear, PeriodMonth, PeriodWeek:
		return true
	}
	return false
}

// StartDate returns the beginning of the lookback window ending at now.
func (p Period) StartDate(now time.Time) time.Time {
	switch p {
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

type Interval string

const (
	IntervalDay   Interval = "1d"
	IntervalWeek  Interval = "1wk"
	IntervalMonth Interval = "1mo"
)

func (i Interval) Valid() bool {
	switch i {
	case IntervalDay, IntervalWeek, IntervalMonth:
		return true
	}
	return false
}

// ChartWindow is the lookback period and sampling interval used for historical data.
type ChartWindow struct {
	Period   Period
	Interval Interval
}

type PortfolioSummary struct {
	Holdings        []HoldingView
	TotalValue      decimal.Decimal
	TotalPercentage decimal.Decimal
	ChartWindow     ChartWindow
}
