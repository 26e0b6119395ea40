package shared

import (
	"context"
	"time"

	"helios/internal/adapters/broker"
	"helios/pkg/logger"
)

// Cache interface to avoid a hard dependency on the Redis adapter.
// A nil Cache disables caching entirely.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// Deps bundles dependencies required by concrete tool implementations.
type Deps struct {
	Broker broker.Broker
	Cache  Cache
	Log    *logger.Logger
}

// HasBroker reports whether the trading API adapter is wired.
func (d Deps) HasBroker() bool {
	return d.Broker != nil
}

// HasCache reports whether a cache backend is available.
func (d Deps) HasCache() bool {
	return d.Cache != nil
}
