package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"chronos/internal/platform/config"
)

func Connect(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = int32(max(cfg.DBMaxConns, 2))
	poolCfg.MinConns = 2
	poolCfg.ConnConfig.ConnectTimeout = cfg.StoreTimeout
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Bounded caps a single store call at timeout so a stalled database surfaces as
// ErrUnavailable instead of blocking the kiosk.
func Bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
