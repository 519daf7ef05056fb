package db

import (
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/academiahub/backend/internal/observability/metrics"
)

func StartPoolMetrics(pool *pgxpool.Pool, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			stat := pool.Stat()
			metrics.DBPoolAcquiredConns.Set(float64(stat.AcquiredConns()))
			metrics.DBPoolIdleConns.Set(float64(stat.IdleConns()))
			metrics.DBPoolTotalConns.Set(float64(stat.TotalConns()))
		}
	}()
}
