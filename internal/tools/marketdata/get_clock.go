package marketdata

import (
	"context"
	"fmt"
	"time"

	"helios/internal/tools"
	"helios/internal/tools/shared"
)

// NewGetClockTool returns a tool that reports market open/close state.
func NewGetClockTool(deps shared.Deps) *tools.Descriptor {
	return tools.New(
		"get_clock",
		"Get the current market clock: open state and next open/close times",
		"market_data",
		nil,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasBroker() {
				return nil, fmt.Errorf("get_clock: broker not configured")
			}

			deps.Log.Debug("Tool: get_clock called")

			clock, err := deps.Broker.GetClock(ctx)
			if err != nil {
				return nil, fmt.Errorf("get_clock: %w", err)
			}

			return map[string]interface{}{
				"timestamp":  clock.Timestamp.Format(time.RFC3339),
				"is_open":    clock.IsOpen,
				"next_open":  clock.NextOpen.Format(time.RFC3339),
				"next_close": clock.NextClose.Format(time.RFC3339),
			}, nil
		},
	)
}
