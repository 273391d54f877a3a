package registry

import (
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSyncer struct {
	calls [][]model.PortfolioItem
}

func (s *recordingSyncer) Sync(items []model.PortfolioItem) {
	s.calls = append(s.calls, items)
}

func (s *recordingSyncer) last() []model.PortfolioItem {
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

func holding(ticker string, pct int64) model.Holding {
	return model.Holding{
		Ticker:              ticker,
		Name:                ticker + " Corp",
		CurrentPrice:        decimal.NewFromInt(100),
		PortfolioPercentage: decimal.NewFromInt(pct),
		DisplayColor:        "#ff0000",
	}
}

func TestRegistry_InsertDuplicateRejected(t *testing.T) {
	syncer := &recordingSyncer{}
	r := New(syncer)

	require.True(t, r.Insert("ABC", holding("ABC", 10), false))
	assert.False(t, r.Insert("ABC", holding("ABC", 50), false))

	h, ok := r.Get("ABC")
	require.True(t, ok)
	assert.True(t, h.PortfolioPercentage.Equal(decimal.NewFromInt(10)))
	assert.Len(t, syncer.calls, 1, "rejected insert must not sync")
}

func TestRegistry_UpsertReplacesWholesale(t *testing.T) {
	r := New(nil)

	first := holding("ABC", 10)
	first.HistoricalData = []model.PricePoint{{Date: time.Now(), Price: decimal.NewFromInt(1)}}
	require.True(t, r.Insert("ABC", first, false))

	second := holding("ABC", 20)
	second.Name = "Renamed"
	require.True(t, r.Insert("ABC", second, true))

	h, _ := r.Get("ABC")
	assert.Equal(t, "Renamed", h.Name)
	assert.Nil(t, h.HistoricalData)
	assert.True(t, h.PortfolioPercentage.Equal(decimal.NewFromInt(20)))
}

func TestRegistry_UpsertKeepsIncarnation(t *testing.T) {
	r := New(nil)

	r.Insert("ABC", holding("ABC", 10), false)
	before, _ := r.Incarnation("ABC")

	r.Insert("ABC", holding("ABC", 20), true)
	after, _ := r.Incarnation("ABC")
	assert.Equal(t, before, after)

	r.Delete("ABC")
	_, ok := r.Incarnation("ABC")
	assert.False(t, ok)

	r.Insert("ABC", holding("ABC", 20), false)
	reborn, _ := r.Incarnation("ABC")
	assert.NotEqual(t, before, reborn)
}

func TestRegistry_DeleteSyncsProjection(t *testing.T) {
	syncer := &recordingSyncer{}
	r := New(syncer)

	r.Insert("ABC", holding("ABC", 10), false)
	r.Insert("XYZ", holding("XYZ", 30), false)
	r.Delete("ABC")

	_, ok := r.Get("ABC")
	assert.False(t, ok)
	require.Len(t, syncer.last(), 1)
	assert.Equal(t, "XYZ", syncer.last()[0].Ticker)

	calls := len(syncer.calls)
	r.Delete("NOPE")
	assert.Len(t, syncer.calls, calls, "deleting an absent ticker is a no-op")
}

func TestRegistry_SetPercentage(t *testing.T) {
	syncer := &recordingSyncer{}
	r := New(syncer)
	r.Insert("ABC", holding("ABC", 0), false)

	r.SetPercentage("ABC", decimal.NewFromInt(60))
	h, _ := r.Get("ABC")
	assert.True(t, h.PortfolioPercentage.Equal(decimal.NewFromInt(60)))
	assert.True(t, syncer.last()[0].PortfolioPercentage.Equal(decimal.NewFromInt(60)))

	calls := len(syncer.calls)
	r.SetPercentage("NOPE", decimal.NewFromInt(10))
	assert.Len(t, syncer.calls, calls)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SetPercentageClamp(t *testing.T) {
	tests := []struct {
		name  string
		clamp bool
		in    string
		want  string
	}{
		{name: "clamp above", clamp: true, in: "150", want: "100"},
		{name: "clamp below", clamp: true, in: "-5", want: "0"},
		{name: "in range", clamp: true, in: "42.5", want: "42.5"},
		{name: "permissive", clamp: false, in: "150", want: "150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(nil, WithClamp(tt.clamp))
			r.Insert("ABC", holding("ABC", 0), false)
			r.SetPercentage("ABC", decimal.RequireFromString(tt.in))

			h, _ := r.Get("ABC")
			assert.True(t, h.PortfolioPercentage.Equal(decimal.RequireFromString(tt.want)), h.PortfolioPercentage.String())
		})
	}
}

func TestRegistry_ListAndProjection(t *testing.T) {
	r := New(nil)
	r.Insert("XYZ", holding("XYZ", 40), false)
	r.Insert("ABC", holding("ABC", 60), false)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "ABC", list[0].Ticker)
	assert.Equal(t, "XYZ", list[1].Ticker)

	assert.Equal(t, []string{"ABC", "XYZ"}, r.Tickers())
	assert.True(t, r.TotalPercentage().Equal(decimal.NewFromInt(100)))

	projection := r.Projection()
	require.Len(t, projection, 2)
	assert.Equal(t, "ABC", projection[0].Ticker)
	assert.True(t, projection[1].PortfolioPercentage.Equal(decimal.NewFromInt(40)))
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := New(nil)
	h := holding("ABC", 10)
	h.HistoricalData = []model.PricePoint{{Price: decimal.NewFromInt(1)}}
	r.Insert("ABC", h, false)

	got, _ := r.Get("ABC")
	got.HistoricalData[0].Price = decimal.NewFromInt(999)
	got.Name = "changed"

	again, _ := r.Get("ABC")
	assert.True(t, again.HistoricalData[0].Price.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "ABC Corp", again.Name)
}
