package relay

import (
	"context"
	"time"

	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

// Sweep llama TryRemoveExpiredEntries cada interval hasta que ctx se cancela.
// onSweep (opcional) recibe el conteo tras cada pasada, para métricas.
func Sweep(ctx context.Context, r Relay, interval time.Duration, onSweep func(remaining int)) error {
	if interval <= 0 {
		interval = DefaultTTL
	}
	log := logger.From(ctx).With(logger.Component("relay.sweeper"))
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			removed, err := r.TryRemoveExpiredEntries(ctx)
			if err != nil {
				log.Warn("relay sweep failed", logger.Err(err))
				continue
			}
			if removed > 0 {
				log.Debug("relay swept", logger.Int("removed", removed))
			}
			if onSweep != nil {
				if n, err := r.EntriesCount(ctx); err == nil {
					onSweep(n)
				}
			}
		}
	}
}
