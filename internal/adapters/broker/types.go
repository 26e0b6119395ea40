package broker

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderType distinguishes market and limit orders.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OrderStatusFilter narrows order listings.
type OrderStatusFilter string

const (
	OrdersOpen   OrderStatusFilter = "open"
	OrdersClosed OrderStatusFilter = "closed"
	OrdersAll    OrderStatusFilter = "all"
)

// Account is a snapshot of the trading account.
type Account struct {
	ID               string
	Cash             decimal.Decimal
	BuyingPower      decimal.Decimal
	Equity           decimal.Decimal
	PortfolioValue   decimal.Decimal
	Currency         string
	PatternDayTrader bool
	TradingBlocked   bool
	AccountBlocked   bool
	CreatedAt        time.Time
}

// Position is one open position.
type Position struct {
	Symbol         string
	Qty            decimal.Decimal
	Side           string
	MarketValue    decimal.Decimal
	AvgEntryPrice  decimal.Decimal
	CurrentPrice   decimal.Decimal
	UnrealizedPL   decimal.Decimal
	UnrealizedPLPC decimal.Decimal
	CostBasis      decimal.Decimal
}

// OrderRequest describes an order to be placed.
type OrderRequest struct {
	Symbol     string
	Qty        decimal.Decimal
	Side       OrderSide
	Type       OrderType
	LimitPrice decimal.Decimal // Required for limit orders
	TimeInForce string         // Defaults to "day"
}

// Order is the broker's view of a placed order.
type Order struct {
	ID         string
	Symbol     string
	Qty        decimal.Decimal
	Side       OrderSide
	Type       OrderType
	Status     string
	LimitPrice decimal.Decimal
	CreatedAt  time.Time
}

// Bar is one OHLCV candle.
type Bar struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64
}

// Quote is the latest bid/ask for a symbol.
type Quote struct {
	Symbol    string
	AskPrice  decimal.Decimal
	AskSize   int64
	BidPrice  decimal.Decimal
	BidSize   int64
	Timestamp time.Time
}

// Clock reports whether the market is open.
type Clock struct {
	Timestamp time.Time
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// PortfolioHistory is the account's equity curve over a period.
type PortfolioHistory struct {
	Timestamps    []time.Time
	Equity        []decimal.Decimal
	ProfitLoss    []decimal.Decimal
	ProfitLossPct []decimal.Decimal
	BaseValue     decimal.Decimal
	Timeframe     string
}
