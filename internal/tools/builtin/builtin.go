// Package builtin wires every built-in tool into a registry.
package builtin

import (
	"helios/internal/tools"
	"helios/internal/tools/account"
	"helios/internal/tools/marketdata"
	"helios/internal/tools/portfolio"
	"helios/internal/tools/shared"
	"helios/internal/tools/trading"
)

// RegisterAll registers every built-in tool. Registration stops at the
// first failure so a misdeclared tool surfaces at startup instead of at
// execution time.
func RegisterAll(registry *tools.Registry, deps shared.Deps) error {
	log := deps.Log.With("component", "tool_registration")

	descriptors := []*tools.Descriptor{
		// Account
		account.NewGetAccountTool(deps),
		account.NewGetPortfolioHistoryTool(deps),

		// Portfolio
		portfolio.NewGetPositionsTool(deps),
		portfolio.NewGetPortfolioSummaryTool(deps),

		// Trading
		trading.NewPlaceMarketOrderTool(deps),
		trading.NewPlaceLimitOrderTool(deps),
		trading.NewGetOrdersTool(deps),
		trading.NewCancelOrderTool(deps),

		// Market data
		marketdata.NewGetBarsTool(deps),
		marketdata.NewGetLatestQuoteTool(deps),
		marketdata.NewGetClockTool(deps),
	}

	for _, d := range descriptors {
		if err := registry.Register(d); err != nil {
			return err
		}
	}

	log.Infow("Registered built-in tools", "count", len(descriptors))
	return nil
}
