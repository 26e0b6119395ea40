package account

import (
	"context"
	"fmt"
	"time"

	"helios/internal/tools"
	"helios/internal/tools/shared"
)

// NewGetAccountTool returns a tool that fetches the trading account snapshot.
func NewGetAccountTool(deps shared.Deps) *tools.Descriptor {
	return tools.New(
		"get_account",
		"Get trading account information including cash, buying power and equity",
		"account",
		nil,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("get_account: broker not configured")
			}

			deps.Log.Debug("Tool: get_account called")

			acct, err := deps.Broker.GetAccount(ctx)
			if err != nil {
				return nil, fmt.Errorf("get_account: %w", err)
			}

			return map[string]interface{}{
				"id":                 acct.ID,
				"cash":               acct.Cash.InexactFloat64(),
				"buying_power":       acct.BuyingPower.InexactFloat64(),
				"equity":             acct.Equity.InexactFloat64(),
				"portfolio_value":    acct.PortfolioValue.InexactFloat64(),
				"currency":           acct.Currency,
				"pattern_day_trader": acct.PatternDayTrader,
				"trading_blocked":    acct.TradingBlocked,
				"account_blocked":    acct.AccountBlocked,
				"created_at":         acct.CreatedAt.Format(time.RFC3339),
			}, nil
		},
	)
}
