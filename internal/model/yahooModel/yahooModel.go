package yahooModel

import "github.com/shopspring/decimal"

type ChartResponse struct {
	Chart Chart `json:"chart"`
}

type Chart struct {
	Result []ChartResult `json:"result"`
	Error  *ChartError   `json:"error"`
}

type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type ChartResult struct {
	Meta       Meta       `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators Indicators `json:"indicators"`
}

type Meta struct {
	Symbol             string              `json:"symbol"`
	Currency           string              `json:"currency"`
	ExchangeName       string              `json:"exchangeName"`
	FullExchangeName   string              `json:"fullExchangeName"`
	LongName           string              `json:"longName"`
	ShortName          string              `json:"shortName"`
	RegularMarketPrice decimal.NullDecimal `json:"regularMarketPrice"`
	PreviousClose      decimal.NullDecimal `json:"previousClose"`
	ChartPreviousClose decimal.NullDecimal `json:"chartPreviousClose"`
}

type Indicators struct {
	Quote    []QuoteIndicator    `json:"quote"`
	AdjClose []AdjCloseIndicator `json:"adjclose"`
}

// в массивах бывают null на неторговые дни
type QuoteIndicator struct {
	Open  []decimal.NullDecimal `json:"open"`
	Close []decimal.NullDecimal `json:"close"`
}

type AdjCloseIndicator struct {
	AdjClose []decimal.NullDecimal `json:"adjclose"`
}
