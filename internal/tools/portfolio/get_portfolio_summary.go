package portfolio

import (
	"context"
	"fmt"

	"helios/internal/tools"
	"helios/internal/tools/shared"
)

// NewGetPortfolioSummaryTool returns a tool that assembles a per-ticker
// portfolio breakdown: account totals plus long/short exposure for each
// requested symbol, including zero rows for symbols with no position.
func NewGetPortfolioSummaryTool(deps shared.Deps) *tools.Descriptor {
	params := []tools.Parameter{
		{Name: "tickers", Type: tools.TypeArray, Required: true, Description: "Symbols to include in the breakdown"},
	}

	return tools.New(
		"get_portfolio_summary",
		"Get account totals with a per-ticker long/short position breakdown",
		"portfolio",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("get_portfolio_summary: broker not configured")
			}

			rawTickers, _ := args["tickers"].([]interface{})
			tickers := make([]string, 0, len(rawTickers))
			for _, t := range rawTickers {
				if s, ok := t.(string); ok && s != "" {
					tickers = append(tickers, s)
				}
			}
			if len(tickers) == 0 {
				return nil, fmt.Errorf("get_portfolio_summary: tickers must contain at least one symbol")
			}

			deps.Log.Debugw("Tool: get_portfolio_summary called", "tickers", tickers)

			acct, err := deps.Broker.GetAccount(ctx)
			if err != nil {
				return nil, fmt.Errorf("get_portfolio_summary: account: %w", err)
			}
			positions, err := deps.Broker.GetPositions(ctx)
			if err != nil {
				return nil, fmt.Errorf("get_portfolio_summary: positions: %w", err)
			}

			byTicker := make(map[string]map[string]interface{}, len(tickers))
			for _, t := range tickers {
				byTicker[t] = map[string]interface{}{
					"long":              0.0,
					"short":             0.0,
					"long_cost_basis":   0.0,
					"short_cost_basis":  0.0,
					"short_margin_used": 0.0,
				}
			}

			for _, p := range positions {
				entry, ok := byTicker[p.Symbol]
				if !ok {
					continue
				}
				qty := p.Qty.InexactFloat64()
				costPerShare := 0.0
				if qty > 0 {
					costPerShare = p.CostBasis.InexactFloat64() / qty
				}
				switch p.Side {
				case "long":
					entry["long"] = qty
					entry["long_cost_basis"] = costPerShare
				case "short":
					entry["short"] = qty
					entry["short_cost_basis"] = costPerShare
					entry["short_margin_used"] = p.MarketValue.InexactFloat64()
				}
			}

			return map[string]interface{}{
				"cash":            acct.Cash.InexactFloat64(),
				"buying_power":    acct.BuyingPower.InexactFloat64(),
				"portfolio_value": acct.PortfolioValue.InexactFloat64(),
				"positions":       byTicker,
			}, nil
		},
	)
}
