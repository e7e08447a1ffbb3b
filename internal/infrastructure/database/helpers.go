package database

import (
	"context"
	"fmt"
	"time"

	"holyfit-backend/pkg/logger"
)

// PoolStats is a point-in-time view of the pgx pool.
type PoolStats struct {
	AcquiredConns     int32 `json:"acquired_conns"`
	IdleConns         int32 `json:"idle_conns"`
	TotalConns        int32 `json:"total_conns"`
	MaxConns          int32 `json:"max_conns"`
	AcquireCount      int64 `json:"acquire_count"`
	EmptyAcquireCount int64 `json:"empty_acquire_count"`
	AvgAcquireMillis  int64 `json:"avg_acquire_ms"`
}

func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	raw := db.Pool.Stat()
	stats := &PoolStats{
		AcquiredConns:     raw.AcquiredConns(),
		IdleConns:         raw.IdleConns(),
		TotalConns:        raw.TotalConns(),
		MaxConns:          raw.MaxConns(),
		AcquireCount:      raw.AcquireCount(),
		EmptyAcquireCount: raw.EmptyAcquireCount(),
	}
	if raw.AcquireCount() > 0 {
		stats.AvgAcquireMillis = (raw.AcquireDuration() / time.Duration(raw.AcquireCount())).Milliseconds()
	}
	return stats, nil
}

// MonitorPoolHealth logs pool usage every interval and warns when the pool
// runs above 80% of its connections. Blocks until ctx is done.
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := db.Stats()
			if err != nil {
				logger.Error("[DATABASE] Failed to read pool stats", err)
				continue
			}

			fields := map[string]interface{}{
				"acquired": stats.AcquiredConns,
				"idle":     stats.IdleConns,
				"total":    stats.TotalConns,
				"max":      stats.MaxConns,
				"avg_ms":   stats.AvgAcquireMillis,
			}
			if stats.MaxConns > 0 && stats.AcquiredConns*10 >= stats.MaxConns*8 {
				logger.Warn("[DATABASE] Pool near capacity", fields)
				continue
			}
			logger.Debug(fmt.Sprintf("[DATABASE] pool %d/%d in use", stats.AcquiredConns, stats.MaxConns))
		}
	}
}
