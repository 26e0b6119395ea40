package trading

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"helios/internal/adapters/broker"
	"helios/internal/tools"
	"helios/internal/tools/shared"
)

// NewPlaceLimitOrderTool returns a tool that submits a limit order.
func NewPlaceLimitOrderTool(deps shared.Deps) *tools.Descriptor {
	params := []tools.Parameter{
		{Name: "symbol", Type: tools.TypeString, Required: true, Description: "Ticker symbol to trade"},
		{Name: "qty", Type: tools.TypeNumber, Required: true, Description: "Number of shares"},
		{Name: "limit_price", Type: tools.TypeNumber, Required: true, Description: "Limit price per share"},
		{Name: "side", Type: tools.TypeString, Default: "buy", Description: "Order direction: buy or sell"},
	}

	return tools.New(
		"place_limit_order",
		"Place a limit order to buy or sell shares at a specified price",
		"trading",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("place_limit_order: broker not configured")
			}

			symbol, _ := args["symbol"].(string)
			qty := numberArg(args["qty"])
			limitPrice := numberArg(args["limit_price"])
			side, _ := args["side"].(string)
			if qty <= 0 {
				return nil, fmt.Errorf("place_limit_order: qty must be positive")
			}
			if limitPrice <= 0 {
				return nil, fmt.Errorf("place_limit_order: limit_price must be positive")
			}
			orderSide, err := parseSide(side)
			if err != nil {
				return nil, fmt.Errorf("place_limit_order: %w", err)
			}

			deps.Log.Infow("Tool: place_limit_order called", "symbol", symbol, "qty", qty, "limit_price", limitPrice, "side", side)

			order, err := deps.Broker.PlaceOrder(ctx, &broker.OrderRequest{
				Symbol:     symbol,
				Qty:        decimal.NewFromFloat(qty),
				Side:       orderSide,
				Type:       broker.OrderTypeLimit,
				LimitPrice: decimal.NewFromFloat(limitPrice),
			})
			if err != nil {
				return nil, fmt.Errorf("place_limit_order: %w", err)
			}

			return orderResult(order), nil
		},
	)
}
