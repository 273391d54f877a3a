package quoteService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_builder/internal/externalApi"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errCacheMiss = errors.New("cache miss")

type MockQuoteApi struct {
	mock.Mock
}

func (m *MockQuoteApi) GetQuote(ctx context.Context, ticker string) (model.Quote, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(model.Quote), args.Error(1)
}

func (m *MockQuoteApi) GetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval) ([]model.PricePoint, error) {
	args := m.Called(ctx, ticker, startDate, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PricePoint), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetQuote(ctx context.Context, ticker string) (model.Quote, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(model.Quote), args.Error(1)
}

func (m *MockCache) SetQuote(ctx context.Context, quote model.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockCache) GetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval) ([]model.PricePoint, error) {
	args := m.Called(ctx, ticker, startDate, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PricePoint), args.Error(1)
}

func (m *MockCache) SetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval, points []model.PricePoint) error {
	args := m.Called(ctx, ticker, startDate, interval, points)
	return args.Error(0)
}

func TestGetQuote_FromCache(t *testing.T) {
	ctx := context.Background()
	api := new(MockQuoteApi)
	cache := new(MockCache)

	cached := model.Quote{Ticker: "ABC", CurrentPrice: decimal.NewFromInt(100)}
	cache.On("GetQuote", ctx, "ABC").Return(cached, nil)

	svc := New(api, cache)
	quote, err := svc.GetQuote(ctx, "ABC")

	require.NoError(t, err)
	assert.Equal(t, cached, quote)
	api.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
}

func TestGetQuote_CacheMissFetchesAndStores(t *testing.T) {
	ctx := context.Background()
	api := new(MockQuoteApi)
	cache := new(MockCache)

	fetched := model.Quote{Ticker: "abc", Name: "ABC Corp", CurrentPrice: decimal.NewFromInt(100)}
	cache.On("GetQuote", ctx, "ABC").Return(model.Quote{}, errCacheMiss)
	api.On("GetQuote", ctx, "ABC").Return(fetched, nil)
	cache.On("SetQuote", ctx, mock.MatchedBy(func(q model.Quote) bool { return q.Ticker == "ABC" })).Return(nil)

	svc := New(api, cache)
	quote, err := svc.GetQuote(ctx, "ABC")

	require.NoError(t, err)
	assert.Equal(t, "ABC", quote.Ticker)
	assert.Equal(t, "ABC Corp", quote.Name)
	cache.AssertExpectations(t)
}

func TestGetQuote_NotFound(t *testing.T) {
	ctx := context.Background()
	api := new(MockQuoteApi)
	cache := new(MockCache)

	cache.On("GetQuote", ctx, "NOPE").Return(model.Quote{}, errCacheMiss)
	api.On("GetQuote", ctx, "NOPE").Return(model.Quote{}, externalApi.ErrNotFound)

	svc := New(api, cache)
	_, err := svc.GetQuote(ctx, "NOPE")

	assert.ErrorIs(t, err, service.ErrNotFound)
	cache.AssertNotCalled(t, "SetQuote", mock.Anything, mock.Anything)
}

func TestGetQuote_EmptyPayloadIsNotFound(t *testing.T) {
	ctx := context.Background()
	api := new(MockQuoteApi)
	cache := new(MockCache)

	cache.On("GetQuote", ctx, "ABC").Return(model.Quote{}, errCacheMiss)
	api.On("GetQuote", ctx, "ABC").Return(model.Quote{}, nil)

	svc := New(api, cache)
	_, err := svc.GetQuote(ctx, "ABC")

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetQuote_CacheWriteFailureIgnored(t *testing.T) {
	ctx := context.Background()
	api := new(MockQuoteApi)
	cache := new(MockCache)

	cache.On("GetQuote", ctx, "ABC").Return(model.Quote{}, errCacheMiss)
	api.On("GetQuote", ctx, "ABC").Return(model.Quote{Ticker: "ABC", CurrentPrice: decimal.NewFromInt(1)}, nil)
	cache.On("SetQuote", ctx, mock.Anything).Return(errors.New("redis down"))

	svc := New(api, cache)
	_, err := svc.GetQuote(ctx, "ABC")

	assert.NoError(t, err)
}

func TestGetHistorical(t *testing.T) {
	ctx := context.Background()
	api := new(MockQuoteApi)
	cache := new(MockCache)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []model.PricePoint{{Date: start, Price: decimal.NewFromInt(10)}}

	cache.On("GetHistorical", ctx, "ABC", start, model.IntervalWeek).Return(nil, errCacheMiss)
	api.On("GetHistorical", ctx, "ABC", start, model.IntervalWeek).Return(points, nil)
	cache.On("SetHistorical", ctx, "ABC", start, model.IntervalWeek, points).Return(nil)

	svc := New(api, cache)
	got, err := svc.GetHistorical(ctx, "ABC", start, model.IntervalWeek)

	require.NoError(t, err)
	assert.Equal(t, points, got)
	cache.AssertExpectations(t)
}

func TestGetHistorical_ApiFailure(t *testing.T) {
	ctx := context.Background()
	api := new(MockQuoteApi)
	cache := new(MockCache)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cache.On("GetHistorical", ctx, "ABC", start, model.IntervalDay).Return(nil, errCacheMiss)
	api.On("GetHistorical", ctx, "ABC", start, model.IntervalDay).Return(nil, errors.New("timeout"))

	svc := New(api, cache)
	_, err := svc.GetHistorical(ctx, "ABC", start, model.IntervalDay)

	assert.Error(t, err)
	cache.AssertNotCalled(t, "SetHistorical", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshQuote_BypassesCache(t *testing.T) {
	ctx := context.Background()
	api := new(MockQuoteApi)
	cache := new(MockCache)

	fresh := model.Quote{Ticker: "ABC", CurrentPrice: decimal.NewFromInt(110)}
	api.On("GetQuote", ctx, "ABC").Return(fresh, nil)
	cache.On("SetQuote", ctx, fresh).Return(nil)

	svc := New(api, cache)
	quote, err := svc.RefreshQuote(ctx, "ABC")

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(110).Equal(quote.CurrentPrice))
	cache.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}
