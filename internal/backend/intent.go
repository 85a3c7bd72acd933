package backend

import (
	"context"
	"fmt"
	"time"

	"agenda/internal/cache"
	"agenda/internal/config"
	"agenda/internal/intent"
	"agenda/internal/log"
)

const cacheSweepInterval = time.Minute

// NewResolver builds the HTTP resolver wrapped in the configured cache. It
// returns a nil resolver when smart search is disabled. cleanup is never nil.
func NewResolver(ctx context.Context, cfg *config.Config, logger *log.Logger) (intent.Resolver, func(), error) {
	noop := func() {}
	if !cfg.IntentEnabled() {
		logger.InfoContext(ctx, "Intent resolver disabled")
		return nil, noop, nil
	}

	var resolver intent.Resolver = intent.NewHTTPResolver(cfg.IntentURL, cfg.IntentAPIKey, nil)

	switch cfg.IntentCache {
	case "memory":
		lru := cache.NewLRUCache[intent.Response](cfg.IntentCacheSize, cfg.IntentCacheTTL)
		manager := cache.NewManager(logger)
		manager.Register(lru)
		manager.StartCleanup(cacheSweepInterval)
		return intent.NewCachedResolver(resolver, lru), manager.Stop, nil
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		c := cache.NewRedisCache[intent.Response](client, "agenda:intent:", cfg.IntentCacheTTL, logger)
		return intent.NewCachedResolver(resolver, c), func() { _ = client.Close() }, nil
	default:
		return resolver, noop, nil
	}
}
