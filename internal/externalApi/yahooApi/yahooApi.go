package yahooApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/KotFed0t/portfolio_builder/config"
	"github.com/KotFed0t/portfolio_builder/internal/externalApi"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/model/yahooModel"
	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const chartUrl = "/v8/finance/chart/{ticker}"

type YahooApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url).
		SetHeader("User-Agent", "Mozilla/5.0")
	return &YahooApi{client: client}
}

func (a *YahooApi) GetQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)
	params := map[string]string{
		"interval": "1d",
		"range":    "1d",
	}

	slog.Debug("start YahooApi.GetQuote request", slog.String("rqID", rqId), slog.String("ticker", ticker))

	result, err := a.getChart(ctx, ticker, params)
	if err != nil {
		return model.Quote{}, err
	}

	quote, err := a.parseQuote(result)
	if err != nil {
		slog.Error("can't parse raw quote", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return model.Quote{}, err
	}

	slog.Debug("YahooApi.GetQuote request complete", slog.String("rqID", rqId), slog.String("ticker", ticker))

	return quote, nil
}

func (a *YahooApi) GetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval) ([]model.PricePoint, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)
	params := map[string]string{
		"period1":  strconv.FormatInt(startDate.Unix(), 10),
		"period2":  strconv.FormatInt(time.Now().Unix(), 10),
		"interval": string(interval),
		"events":   "history",
	}

	slog.Debug("start YahooApi.GetHistorical request", slog.String("rqID", rqId), slog.String("ticker", ticker), slog.Any("params", params))

	result, err := a.getChart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}

	points, err := a.parseHistorical(result)
	if err != nil {
		slog.Error("can't parse raw historical data", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return nil, err
	}

	slog.Debug("YahooApi.GetHistorical request complete", slog.String("rqID", rqId), slog.Int("points", len(points)))

	return points, nil
}

func (a *YahooApi) getChart(ctx context.Context, ticker string, params map[string]string) (yahooModel.ChartResult, error) {
	rqId := utils.GetRequestIDFromCtx(ctx)

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("ticker", ticker).
		SetQueryParams(params).
		Get(chartUrl)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return yahooModel.ChartResult{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		slog.Warn("ticker not found in YahooApi", slog.String("rqID", rqId), slog.String("ticker", ticker))
		return yahooModel.ChartResult{}, externalApi.ErrNotFound
	}

	if resp.IsError() {
		slog.Error("unexpected YahooApi status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqId))
		return yahooModel.ChartResult{}, fmt.Errorf("yahoo api responded with status %d", resp.StatusCode())
	}

	rawChart := yahooModel.ChartResponse{}
	err = json.Unmarshal(resp.Body(), &rawChart)
	if err != nil {
		slog.Error("can't unmarshall response into yahooModel.ChartResponse", slog.String("err", err.Error()), slog.String("rqID", rqId))
		return yahooModel.ChartResult{}, err
	}

	if rawChart.Chart.Error != nil {
		slog.Warn("YahooApi returned chart error", slog.String("rqID", rqId), slog.Any("chartError", rawChart.Chart.Error))
		return yahooModel.ChartResult{}, externalApi.ErrNotFound
	}

	if len(rawChart.Chart.Result) == 0 {
		return yahooModel.ChartResult{}, externalApi.ErrNotFound
	}

	return rawChart.Chart.Result[0], nil
}

func (a *YahooApi) parseQuote(result yahooModel.ChartResult) (model.Quote, error) {
	meta := result.Meta
	if meta.Symbol == "" || !meta.RegularMarketPrice.Valid {
		return model.Quote{}, externalApi.ErrNotFound
	}

	quote := model.Quote{
		Ticker:       meta.Symbol,
		Name:         meta.LongName,
		Currency:     meta.Currency,
		Exchange:     meta.FullExchangeName,
		CurrentPrice: meta.RegularMarketPrice.Decimal,
	}

	if quote.Name == "" {
		quote.Name = meta.ShortName
	}

	if quote.Exchange == "" {
		quote.Exchange = meta.ExchangeName
	}

	// если нет цены закрытия, берем цену открытия
	switch {
	case meta.PreviousClose.Valid:
		quote.PreviousClosePrice = meta.PreviousClose.Decimal
	case meta.ChartPreviousClose.Valid:
		quote.PreviousClosePrice = meta.ChartPreviousClose.Decimal
	case len(result.Indicators.Quote) > 0 && len(result.Indicators.Quote[0].Open) > 0 && result.Indicators.Quote[0].Open[0].Valid:
		quote.PreviousClosePrice = result.Indicators.Quote[0].Open[0].Decimal
	}

	return quote, nil
}

func (a *YahooApi) parseHistorical(result yahooModel.ChartResult) ([]model.PricePoint, error) {
	if len(result.Timestamp) == 0 {
		return []model.PricePoint{}, nil
	}

	var closes []decimal.NullDecimal
	switch {
	case len(result.Indicators.AdjClose) > 0:
		closes = result.Indicators.AdjClose[0].AdjClose
	case len(result.Indicators.Quote) > 0:
		closes = result.Indicators.Quote[0].Close
	default:
		return nil, errors.New("no price indicators in chart result")
	}

	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("lengths timestamp %d != prices %d", len(result.Timestamp), len(closes))
	}

	points := make([]model.PricePoint, 0, len(closes))
	for i, ts := range result.Timestamp {
		if !closes[i].Valid {
			continue
		}
		points = append(points, model.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Price: closes[i].Decimal,
		})
	}

	return points, nil
}
