package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/user-directory/internal/cache"
)

// StartCachePruner periodically drops expired listing entries that are never
// read again. It stops when ctx is done. A non-positive interval disables it.
func StartCachePruner(ctx context.Context, qc *cache.QueryCache, interval time.Duration, logger *zap.Logger) {
	if qc == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := qc.Prune(); removed > 0 {
					logger.Debug("pruned expired listing cache entries", zap.Int("removed", removed))
				}
			}
		}
	}()
}
