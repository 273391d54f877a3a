package model

import "github.com/shopspring/decimal"

type Quote struct {
	Ticker             string
	Name               string
	Currency           string
	Exchange           string
	CurrentPrice       decimal.Decimal
	PreviousClosePrice decimal.Decimal
}

// IsEmpty reports whether the quote carries no usable payload.
func (q Quote) IsEmpty() bool {
	return q.Ticker == "" && q.Name == "" && q.CurrentPrice.IsZero()
}
