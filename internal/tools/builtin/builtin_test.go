package builtin

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helios/internal/adapters/broker"
	"helios/internal/tools"
	"helios/internal/tools/shared"
	"helios/pkg/logger"
)

// stubBroker returns fixed data and records placed orders.
type stubBroker struct {
	placed []broker.OrderRequest
}

func (s *stubBroker) Name() string { return "stub" }

func (s *stubBroker) GetAccount(ctx context.Context) (*broker.Account, error) {
	return &broker.Account{
		ID:             "acct-1",
		Cash:           decimal.NewFromInt(2500),
		BuyingPower:    decimal.NewFromInt(5000),
		Equity:         decimal.NewFromInt(10000),
		PortfolioValue: decimal.NewFromInt(10000),
		Currency:       "USD",
		CreatedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (s *stubBroker) GetPositions(ctx context.Context) ([]broker.Position, error) {
	return []broker.Position{
		{
			Symbol:      "AAPL",
			Qty:         decimal.NewFromInt(10),
			Side:        "long",
			MarketValue: decimal.NewFromInt(1850),
			CostBasis:   decimal.NewFromInt(1700),
		},
	}, nil
}

func (s *stubBroker) GetPortfolioHistory(ctx context.Context, period, timeframe string) (*broker.PortfolioHistory, error) {
	return &broker.PortfolioHistory{Timeframe: timeframe}, nil
}

func (s *stubBroker) PlaceOrder(ctx context.Context, req *broker.OrderRequest) (*broker.Order, error) {
	s.placed = append(s.placed, *req)
	return &broker.Order{
		ID:     "ord-1",
		Symbol: req.Symbol,
		Qty:    req.Qty,
		Side:   req.Side,
		Type:   req.Type,
		Status: "accepted",
	}, nil
}

func (s *stubBroker) GetOrders(ctx context.Context, status broker.OrderStatusFilter, limit int) ([]broker.Order, error) {
	return nil, nil
}

func (s *stubBroker) CancelOrder(ctx context.Context, orderID string) error { return nil }

func (s *stubBroker) GetBars(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]broker.Bar, error) {
	return []broker.Bar{{Timestamp: start, Volume: 100}}, nil
}

func (s *stubBroker) GetLatestQuote(ctx context.Context, symbol string) (*broker.Quote, error) {
	return &broker.Quote{Symbol: symbol, BidPrice: decimal.NewFromFloat(187.2)}, nil
}

func (s *stubBroker) GetClock(ctx context.Context) (*broker.Clock, error) {
	return &broker.Clock{IsOpen: true, Timestamp: time.Now()}, nil
}

func fixture(t *testing.T) (*tools.Registry, *stubBroker) {
	t.Helper()
	b := &stubBroker{}
	registry := tools.NewRegistry()
	require.NoError(t, RegisterAll(registry, shared.Deps{Broker: b, Log: logger.Get()}))
	return registry, b
}

func TestRegisterAll(t *testing.T) {
	registry, _ := fixture(t)

	assert.Len(t, registry.List(), 11)
	assert.Equal(t, []string{"account", "portfolio", "trading", "market_data"}, registry.Categories())

	// every registered tool exports a schema
	assert.Len(t, registry.ExportSchema(), 11)
}

func TestAccountTools(t *testing.T) {
	registry, _ := fixture(t)

	result, err := registry.Execute(context.Background(), "get_account", nil)
	require.NoError(t, err)

	m, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "acct-1", m["id"])
	assert.Equal(t, 2500.0, m["cash"])
}

func TestTradingTools(t *testing.T) {
	registry, b := fixture(t)

	t.Run("market order", func(t *testing.T) {
		_, err := registry.Execute(context.Background(), "place_market_order", map[string]interface{}{
			"symbol": "AAPL",
			"qty":    5.0,
		})
		require.NoError(t, err)
		require.Len(t, b.placed, 1)
		assert.Equal(t, broker.SideBuy, b.placed[0].Side) // default side
		assert.Equal(t, broker.OrderTypeMarket, b.placed[0].Type)
	})

	t.Run("invalid side", func(t *testing.T) {
		_, err := registry.Execute(context.Background(), "place_market_order", map[string]interface{}{
			"symbol": "AAPL",
			"qty":    5.0,
			"side":   "hold",
		})
		require.Error(t, err)
		var execErr *tools.ExecutionError
		assert.ErrorAs(t, err, &execErr)
	})

	t.Run("limit order requires limit_price", func(t *testing.T) {
		_, err := registry.Execute(context.Background(), "place_limit_order", map[string]interface{}{
			"symbol": "AAPL",
			"qty":    5.0,
		})
		var paramErr *tools.InvalidParametersError
		assert.ErrorAs(t, err, &paramErr)
	})
}

func TestPortfolioTools(t *testing.T) {
	registry, _ := fixture(t)

	result, err := registry.Execute(context.Background(), "get_portfolio_summary", map[string]interface{}{
		"tickers": []interface{}{"AAPL", "MSFT"},
	})
	require.NoError(t, err)

	m := result.(map[string]interface{})
	positions := m["positions"].(map[string]map[string]interface{})
	require.Contains(t, positions, "AAPL")
	require.Contains(t, positions, "MSFT")
	assert.Equal(t, 10.0, positions["AAPL"]["long"])
	assert.Equal(t, 170.0, positions["AAPL"]["long_cost_basis"])
	assert.Equal(t, 0.0, positions["MSFT"]["long"])
}

func TestMarketDataTools(t *testing.T) {
	registry, _ := fixture(t)

	t.Run("get_bars date validation", func(t *testing.T) {
		_, err := registry.Execute(context.Background(), "get_bars", map[string]interface{}{
			"symbol":     "AAPL",
			"start_date": "2024-03-05",
			"end_date":   "2024-03-01",
		})
		assert.Error(t, err)

		_, err = registry.Execute(context.Background(), "get_bars", map[string]interface{}{
			"symbol":     "AAPL",
			"start_date": "not a date",
			"end_date":   "2024-03-01",
		})
		assert.Error(t, err)
	})

	t.Run("get_clock", func(t *testing.T) {
		result, err := registry.Execute(context.Background(), "get_clock", nil)
		require.NoError(t, err)
		m := result.(map[string]interface{})
		assert.Equal(t, true, m["is_open"])
	})
}
