package alpaca

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helios/internal/adapters/broker"
)

func newTestClient(t *testing.T, handler http.Handler) broker.Broker {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		APIKey:      "key",
		SecretKey:   "secret",
		BaseURL:     srv.URL,
		DataBaseURL: srv.URL,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	c, err := NewClient(Config{APIKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "alpaca", c.Name())
}

func TestClient_GetAccount(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "secret", r.Header.Get("APCA-API-SECRET-KEY"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "acct-1",
			"cash": "2500.50",
			"buying_power": "5001.00",
			"equity": "10000",
			"portfolio_value": "10000",
			"currency": "USD",
			"pattern_day_trader": false,
			"trading_blocked": false,
			"account_blocked": false,
			"created_at": "2024-01-02T15:04:05Z"
		}`))
	}))

	acct, err := c.GetAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acct-1", acct.ID)
	assert.True(t, acct.Cash.Equal(decimal.RequireFromString("2500.50")))
	assert.Equal(t, "USD", acct.Currency)
	assert.Equal(t, 2024, acct.CreatedAt.Year())
}

func TestClient_PlaceOrder(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/orders", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "ord-1",
			"symbol": "AAPL",
			"qty": "10",
			"side": "buy",
			"type": "limit",
			"status": "accepted",
			"limit_price": "185.50",
			"created_at": "2024-03-01T10:00:00Z"
		}`))
	}))

	order, err := c.PlaceOrder(context.Background(), &broker.OrderRequest{
		Symbol:     "AAPL",
		Qty:        decimal.NewFromInt(10),
		Side:       broker.SideBuy,
		Type:       broker.OrderTypeLimit,
		LimitPrice: decimal.RequireFromString("185.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, broker.SideBuy, order.Side)
	assert.True(t, order.LimitPrice.Equal(decimal.RequireFromString("185.50")))
}

func TestClient_ErrorClassification(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		category broker.Category
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"access key verification failed"}`, broker.CategoryAuthFailed},
		{"forbidden", http.StatusForbidden, `{"message":"forbidden"}`, broker.CategoryAuthFailed},
		{"rate limited", http.StatusTooManyRequests, `{"message":"rate limit exceeded"}`, broker.CategoryRateLimited},
		{"not found", http.StatusNotFound, `{"message":"order not found"}`, broker.CategoryNotFound},
		{"market closed", http.StatusUnprocessableEntity, `{"message":"market is closed"}`, broker.CategoryMarketClosed},
		{"server error", http.StatusInternalServerError, `{"message":"internal"}`, broker.CategoryUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))

			_, err := c.GetAccount(context.Background())
			require.Error(t, err)
			assert.Equal(t, tc.category, broker.CategoryOf(err))
		})
	}
}

func TestClient_GetBars(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/stocks/AAPL/bars", r.URL.Path)
		assert.Equal(t, "1Day", r.URL.Query().Get("timeframe"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"bars": [
				{"t": "2024-03-01T05:00:00Z", "o": 180.1, "h": 182.5, "l": 179.8, "c": 181.9, "v": 1000000},
				{"t": "2024-03-04T05:00:00Z", "o": 182.0, "h": 184.0, "l": 181.5, "c": 183.2, "v": 900000}
			]
		}`))
	}))

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	bars, err := c.GetBars(context.Background(), "AAPL", "1Day", start, end)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(1000000), bars[0].Volume)
	assert.True(t, bars[1].Close.Equal(decimal.NewFromFloat(183.2)))
}

func TestParseHelpers(t *testing.T) {
	assert.True(t, parseDecimal("12.34").Equal(decimal.RequireFromString("12.34")))
	assert.True(t, parseDecimal("").IsZero())
	assert.True(t, parseDecimal("garbage").IsZero())

	assert.Equal(t, 2024, parseTime("2024-06-01T00:00:00Z").Year())
	assert.True(t, parseTime("").IsZero())
}
