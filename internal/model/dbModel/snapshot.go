package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type SharedPortfolio struct {
	PortfolioID string    `db:"portfolio_id"`
	CreatedAt   time.Time `db:"dt_create"`
}

type SharedPortfolioItem struct {
	PortfolioID         string          `db:"portfolio_id"`
	Ordinal             int             `db:"ordinal"`
	Ticker              string          `db:"ticker"`
	PortfolioPercentage decimal.Decimal `db:"portfolio_percentage"`
}
