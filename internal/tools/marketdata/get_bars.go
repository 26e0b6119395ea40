package marketdata

import (
	"context"
	"fmt"
	"time"

	"helios/internal/tools"
	"helios/internal/tools/shared"
)

const barsCacheTTL = 5 * time.Minute

// NewGetBarsTool returns a tool that fetches historical OHLCV bars.
// Results are cached per symbol/timeframe/range when a cache is wired.
func NewGetBarsTool(deps shared.Deps) *tools.Descriptor {
	params := []tools.Parameter{
		{Name: "symbol", Type: tools.TypeString, Required: true, Description: "Ticker symbol"},
		{Name: "start_date", Type: tools.TypeString, Required: true, Description: "Range start, YYYY-MM-DD"},
		{Name: "end_date", Type: tools.TypeString, Required: true, Description: "Range end, YYYY-MM-DD"},
		{Name: "timeframe", Type: tools.TypeString, Default: "1Day", Description: "Bar resolution, e.g. 1Min, 1Hour, 1Day"},
	}

	return tools.New(
		"get_bars",
		"Get historical OHLCV price bars for a symbol over a date range",
		"market_data",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("get_bars: broker not configured")
			}

			symbol, _ := args["symbol"].(string)
			startDate, _ := args["start_date"].(string)
			endDate, _ := args["end_date"].(string)
			timeframe, _ := args["timeframe"].(string)

			start, err := time.Parse("2006-01-02", startDate)
			if err != nil {
				return nil, fmt.Errorf("get_bars: invalid start_date %q", startDate)
			}
			end, err := time.Parse("2006-01-02", endDate)
			if err != nil {
				return nil, fmt.Errorf("get_bars: invalid end_date %q", endDate)
			}
			if end.Before(start) {
				return nil, fmt.Errorf("get_bars: end_date before start_date")
			}

			cacheKey := fmt.Sprintf("bars:%s:%s:%s:%s", symbol, timeframe, startDate, endDate)
			if deps.HasCache() {
				var cached []map[string]interface{}
				if err := deps.Cache.Get(ctx, cacheKey, &cached); err == nil {
					deps.Log.Debugw("Tool: get_bars cache hit", "symbol", symbol)
					return cached, nil
				}
			}

			deps.Log.Debugw("Tool: get_bars called", "symbol", symbol, "timeframe", timeframe)

			bars, err := deps.Broker.GetBars(ctx, symbol, timeframe, start, end)
			if err != nil {
				return nil, fmt.Errorf("get_bars: %w", err)
			}

			result := make([]map[string]interface{}, 0, len(bars))
			for _, b := range bars {
				result = append(result, map[string]interface{}{
					"timestamp": b.Timestamp.Format(time.RFC3339),
					"open":      b.Open.InexactFloat64(),
					"high":      b.High.InexactFloat64(),
					"low":       b.Low.InexactFloat64(),
					"close":     b.Close.InexactFloat64(),
					"volume":    b.Volume,
				})
			}

			if deps.HasCache() {
				if err := deps.Cache.Set(ctx, cacheKey, result, barsCacheTTL); err != nil {
					deps.Log.Warnw("Tool: get_bars cache write failed", "error", err)
				}
			}

			return result, nil
		},
	)
}
