package trading

import (
	"context"
	"fmt"

	"helios/internal/tools"
	"helios/internal/tools/shared"
)

// NewCancelOrderTool returns a tool that cancels an order by ID.
func NewCancelOrderTool(deps shared.Deps) *tools.Descriptor {
	params := []tools.Parameter{
		{Name: "order_id", Type: tools.TypeString, Required: true, Description: "ID of the order to cancel"},
	}

	return tools.New(
		"cancel_order",
		"Cancel an open order by its ID",
		"trading",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("cancel_order: broker not configured")
			}

			orderID, _ := args["order_id"].(string)
			if orderID == "" {
				return nil, fmt.Errorf("cancel_order: order_id must not be empty")
			}

			deps.Log.Infow("Tool: cancel_order called", "order_id", orderID)

			if err := deps.Broker.CancelOrder(ctx, orderID); err != nil {
				return nil, fmt.Errorf("cancel_order: %w", err)
			}

			return map[string]interface{}{
				"order_id": orderID,
				"status":   "canceled",
			}, nil
		},
	)
}
