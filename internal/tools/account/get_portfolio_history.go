package account

import (
	"context"
	"fmt"
	"time"

	"helios/internal/tools"
	"helios/internal/tools/shared"
)

// NewGetPortfolioHistoryTool returns a tool that fetches the account's
// equity curve.
func NewGetPortfolioHistoryTool(deps shared.Deps) *tools.Descriptor {
	params := []tools.Parameter{
		{Name: "period", Type: tools.TypeString, Default: "1M", Description: "History window, e.g. 1D, 1W, 1M, 1A"},
		{Name: "timeframe", Type: tools.TypeString, Default: "1D", Description: "Resolution of the data points, e.g. 1Min, 1H, 1D"},
	}

	return tools.New(
		"get_portfolio_history",
		"Get historical portfolio equity and profit/loss over a period",
		"account",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("get_portfolio_history: broker not configured")
			}

			period, _ := args["period"].(string)
			timeframe, _ := args["timeframe"].(string)
			deps.Log.Debugw("Tool: get_portfolio_history called", "period", period, "timeframe", timeframe)

			history, err := deps.Broker.GetPortfolioHistory(ctx, period, timeframe)
			if err != nil {
				return nil, fmt.Errorf("get_portfolio_history: %w", err)
			}

			timestamps := make([]string, 0, len(history.Timestamps))
			for _, ts := range history.Timestamps {
				timestamps = append(timestamps, ts.Format(time.RFC3339))
			}
			equity := make([]float64, 0, len(history.Equity))
			for _, v := range history.Equity {
				equity = append(equity, v.InexactFloat64())
			}
			profitLoss := make([]float64, 0, len(history.ProfitLoss))
			for _, v := range history.ProfitLoss {
				profitLoss = append(profitLoss, v.InexactFloat64())
			}
			profitLossPct := make([]float64, 0, len(history.ProfitLossPct))
			for _, v := range history.ProfitLossPct {
				profitLossPct = append(profitLossPct, v.InexactFloat64())
			}

			return map[string]interface{}{
				"timestamp":       timestamps,
				"equity":          equity,
				"profit_loss":     profitLoss,
				"profit_loss_pct": profitLossPct,
				"base_value":      history.BaseValue.InexactFloat64(),
				"timeframe":       history.Timeframe,
			}, nil
		},
	)
}
