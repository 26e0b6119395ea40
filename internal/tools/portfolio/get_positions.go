package portfolio

import (
	"context"
	"fmt"

	"helios/internal/tools"
	"helios/internal/tools/shared"
)

// NewGetPositionsTool returns a tool that lists open positions, optionally
// filtered to a set of symbols.
func NewGetPositionsTool(deps shared.Deps) *tools.Descriptor {
	params := []tools.Parameter{
		{Name: "symbols", Type: tools.TypeArray, Description: "Restrict the listing to these symbols"},
	}

	return tools.New(
		"get_positions",
		"Get current open positions with market value and unrealized P/L",
		"portfolio",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("get_positions: broker not configured")
			}

			filter := symbolFilter(args["symbols"])
			deps.Log.Debugw("Tool: get_positions called", "filter", len(filter))

			positions, err := deps.Broker.GetPositions(ctx)
			if err != nil {
				return nil, fmt.Errorf("get_positions: %w", err)
			}

			result := make([]map[string]interface{}, 0, len(positions))
			for _, p := range positions {
				if len(filter) > 0 && !filter[p.Symbol] {
					continue
				}
				result = append(result, map[string]interface{}{
					"symbol":          p.Symbol,
					"qty":             p.Qty.InexactFloat64(),
					"side":            p.Side,
					"market_value":    p.MarketValue.InexactFloat64(),
					"avg_entry_price": p.AvgEntryPrice.InexactFloat64(),
					"current_price":   p.CurrentPrice.InexactFloat64(),
					"unrealized_pl":   p.UnrealizedPL.InexactFloat64(),
					"unrealized_plpc": p.UnrealizedPLPC.InexactFloat64(),
					"cost_basis":      p.CostBasis.InexactFloat64(),
				})
			}

			return result, nil
		},
	)
}

// symbolFilter converts an optional JSON array argument into a lookup set.
func symbolFilter(raw interface{}) map[string]bool {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			set[s] = true
		}
	}
	return set
}
