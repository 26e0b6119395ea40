package marketdata

import (
	"context"
	"fmt"
	"time"

	"helios/internal/tools"
	"helios/internal/tools/shared"
)

const quoteCacheTTL = 5 * time.Second

// NewGetLatestQuoteTool returns a tool that fetches the latest bid/ask
// quote for a symbol.
func NewGetLatestQuoteTool(deps shared.Deps) *tools.Descriptor {
	params := []tools.Parameter{
		{Name: "symbol", Type: tools.TypeString, Required: true, Description: "Ticker symbol"},
	}

	return tools.New(
		"get_latest_quote",
		"Get the latest bid/ask quote for a symbol",
		"market_data",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("get_latest_quote: broker not configured")
			}

			symbol, _ := args["symbol"].(string)

			cacheKey := "quote:" + symbol
			if deps.HasCache() {
				var cached map[string]interface{}
				if err := deps.Cache.Get(ctx, cacheKey, &cached); err == nil {
					deps.Log.Debugw("Tool: get_latest_quote cache hit", "symbol", symbol)
					return cached, nil
				}
			}

			deps.Log.Debugw("Tool: get_latest_quote called", "symbol", symbol)

			quote, err := deps.Broker.GetLatestQuote(ctx, symbol)
			if err != nil {
				return nil, fmt.Errorf("get_latest_quote: %w", err)
			}

			result := map[string]interface{}{
				"symbol":    quote.Symbol,
				"ask_price": quote.AskPrice.InexactFloat64(),
				"ask_size":  quote.AskSize,
				"bid_price": quote.BidPrice.InexactFloat64(),
				"bid_size":  quote.BidSize,
				"timestamp": quote.Timestamp.Format(time.RFC3339),
			}

			if deps.HasCache() {
				if err := deps.Cache.Set(ctx, cacheKey, result, quoteCacheTTL); err != nil {
					deps.Log.Warnw("Tool: get_latest_quote cache write failed", "error", err)
				}
			}

			return result, nil
		},
	)
}
