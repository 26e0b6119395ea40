package trading

import (
	"context"
	"fmt"

	"helios/internal/adapters/broker"
	"helios/internal/tools"
	"helios/internal/tools/shared"
)

// NewGetOrdersTool returns a tool that lists orders by status.
func NewGetOrdersTool(deps shared.Deps) *tools.Descriptor {
	params := []tools.Parameter{
		{Name: "status", Type: tools.TypeString, Default: "open", Description: "Order status filter: open, closed or all"},
		{Name: "limit", Type: tools.TypeInteger, Default: 50, Description: "Maximum number of orders to return"},
	}

	return tools.New(
		"get_orders",
		"List orders filtered by status",
		"trading",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("get_orders: broker not configured")
			}

			status, _ := args["status"].(string)
			limit := int(numberArg(args["limit"]))
			filter, err := parseStatusFilter(status)
			if err != nil {
				return nil, fmt.Errorf("get_orders: %w", err)
			}

			deps.Log.Debugw("Tool: get_orders called", "status", status, "limit", limit)

			orders, err := deps.Broker.GetOrders(ctx, filter, limit)
			if err != nil {
				return nil, fmt.Errorf("get_orders: %w", err)
			}

			result := make([]map[string]interface{}, 0, len(orders))
			for i := range orders {
				result = append(result, orderResult(&orders[i]))
			}
			return result, nil
		},
	)
}

func parseStatusFilter(s string) (broker.OrderStatusFilter, error) {
	switch s {
	case "open":
		return broker.OrdersOpen, nil
	case "closed":
		return broker.OrdersClosed, nil
	case "all":
		return broker.OrdersAll, nil
	default:
		return "", fmt.Errorf("status must be open, closed or all, got %q", s)
	}
}
