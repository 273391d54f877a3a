package yahooApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_builder/config"
	"github.com/KotFed0t/portfolio_builder/internal/externalApi"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteBody = `{"chart":{"result":[{"meta":{"symbol":"ABC","currency":"USD","exchangeName":"NMS",
"fullExchangeName":"NasdaqGS","longName":"ABC Corp","regularMarketPrice":101.5,"chartPreviousClose":99.5},
"timestamp":[1700000000],"indicators":{"quote":[{"open":[100.0],"close":[101.5]}]}}],"error":null}}`

const quoteNoCloseBody = `{"chart":{"result":[{"meta":{"symbol":"XYZ","currency":"USD","shortName":"XYZ Inc",
"exchangeName":"NYQ","regularMarketPrice":50},"timestamp":[1700000000],
"indicators":{"quote":[{"open":[48.25],"close":[50]}]}}],"error":null}}`

const historicalBody = `{"chart":{"result":[{"meta":{"symbol":"ABC","regularMarketPrice":101.5},
"timestamp":[1700000000,1700604800,1701209600],
"indicators":{"quote":[{"open":[1,2,3],"close":[10,null,12]}],"adjclose":[{"adjclose":[9.5,null,11.5]}]}}],"error":null}}`

const notFoundBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestApi(t *testing.T, handler http.HandlerFunc) *YahooApi {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Timeout = time.Second
	cfg.API.YahooApi.Url = srv.URL
	return New(cfg)
}

func TestYahooApi_GetQuote(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/ABC", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(quoteBody))
	})

	quote, err := api.GetQuote(context.Background(), "ABC")
	require.NoError(t, err)

	assert.Equal(t, "ABC", quote.Ticker)
	assert.Equal(t, "ABC Corp", quote.Name)
	assert.Equal(t, "USD", quote.Currency)
	assert.Equal(t, "NasdaqGS", quote.Exchange)
	assert.True(t, quote.CurrentPrice.Equal(decimal.RequireFromString("101.5")))
	assert.True(t, quote.PreviousClosePrice.Equal(decimal.RequireFromString("99.5")))
}

func TestYahooApi_GetQuote_PreviousCloseFallsBackToOpen(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(quoteNoCloseBody))
	})

	quote, err := api.GetQuote(context.Background(), "XYZ")
	require.NoError(t, err)

	assert.Equal(t, "XYZ Inc", quote.Name)
	assert.Equal(t, "NYQ", quote.Exchange)
	assert.True(t, quote.PreviousClosePrice.Equal(decimal.RequireFromString("48.25")))
}

func TestYahooApi_GetQuote_NotFound(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(notFoundBody))
	})

	_, err := api.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestYahooApi_GetQuote_ChartErrorWithOkStatus(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(notFoundBody))
	})

	_, err := api.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestYahooApi_GetQuote_ServerError(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := api.GetQuote(context.Background(), "ABC")
	require.Error(t, err)
	assert.NotErrorIs(t, err, externalApi.ErrNotFound)
}

func TestYahooApi_GetHistorical(t *testing.T) {
	start := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)

	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1wk", r.URL.Query().Get("interval"))
		assert.Equal(t, "1698796800", r.URL.Query().Get("period1"))
		_, _ = w.Write([]byte(historicalBody))
	})

	points, err := api.GetHistorical(context.Background(), "ABC", start, model.IntervalWeek)
	require.NoError(t, err)

	// null пропускается, берется adjclose
	require.Len(t, points, 2)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), points[0].Date)
	assert.True(t, points[0].Price.Equal(decimal.RequireFromString("9.5")))
	assert.True(t, points[1].Price.Equal(decimal.RequireFromString("11.5")))
}
