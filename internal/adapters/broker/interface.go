package broker

import (
	"context"
	"time"
)

// Broker defines the unified contract the trading-API adapter must satisfy.
// All operations return either a result or an *APIError carrying a Category.
type Broker interface {
	Name() string

	// Account
	GetAccount(ctx context.Context) (*Account, error)
	GetPositions(ctx context.Context) ([]Position, error)
	GetPortfolioHistory(ctx context.Context, period, timeframe string) (*PortfolioHistory, error)

	// Trading
	PlaceOrder(ctx context.Context, req *OrderRequest) (*Order, error)
	GetOrders(ctx context.Context, status OrderStatusFilter, limit int) ([]Order, error)
	CancelOrder(ctx context.Context, orderID string) error

	// Market data
	GetBars(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]Bar, error)
	GetLatestQuote(ctx context.Context, symbol string) (*Quote, error)
	GetClock(ctx context.Context) (*Clock, error)
}
