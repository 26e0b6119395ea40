package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"helios/internal/adapters/broker"
	"helios/internal/tools"
	"helios/internal/tools/shared"
)

// NewPlaceMarketOrderTool returns a tool that submits a market order.
func NewPlaceMarketOrderTool(deps shared.Deps) *tools.Descriptor {
	params := []tools.Parameter{
		{Name: "symbol", Type: tools.TypeString, Required: true, Description: "Ticker symbol to trade"},
		{Name: "qty", Type: tools.TypeNumber, Required: true, Description: "Number of shares"},
		{Name: "side", Type: tools.TypeString, Default: "buy", Description: "Order direction: buy or sell"},
	}

	return tools.New(
		"place_market_order",
		"Place a market order to buy or sell shares at the current price",
		"trading",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("place_market_order: broker not configured")
			}

			symbol, _ := args["symbol"].(string)
			qty := numberArg(args["qty"])
			side, _ := args["side"].(string)
			if qty <= 0 {
				return nil, fmt.Errorf("place_market_order: qty must be positive")
			}
			orderSide, err := parseSide(side)
			if err != nil {
				return nil, fmt.Errorf("place_market_order: %w", err)
			}

			deps.Log.Infow("Tool: place_market_order called", "symbol", symbol, "qty", qty, "side", side)

			order, err := deps.Broker.PlaceOrder(ctx, &broker.OrderRequest{
				Symbol: symbol,
				Qty:    decimal.NewFromFloat(qty),
				Side:   orderSide,
				Type:   broker.OrderTypeMarket,
			})
			if err != nil {
				return nil, fmt.Errorf("place_market_order: %w", err)
			}

			return orderResult(order), nil
		},
	)
}

// numberArg reads a validated number argument. Integer-typed values still
// arrive as float64 from JSON decoding but may be native ints in tests.
func numberArg(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func parseSide(s string) (broker.OrderSide, error) {
	switch s {
	case "buy":
		return broker.SideBuy, nil
	case "sell":
		return broker.SideSell, nil
	default:
		return "", fmt.Errorf("side must be buy or sell, got %q", s)
	}
}

func orderResult(order *broker.Order) map[string]interface{} {
	result := map[string]interface{}{
		"id":         order.ID,
		"symbol":     order.Symbol,
		"qty":        order.Qty.InexactFloat64(),
		"side":       string(order.Side),
		"type":       string(order.Type),
		"status":     order.Status,
		"created_at": order.CreatedAt.Format(time.RFC3339),
	}
	if !order.LimitPrice.IsZero() {
		result["limit_price"] = order.LimitPrice.InexactFloat64()
	}
	return result
}
