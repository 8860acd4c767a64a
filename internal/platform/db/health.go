package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolHealth is the connection pool snapshot reported by the health endpoint.
type PoolHealth struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
	Healthy       bool  `json:"healthy"`
}

// SnapshotPool reads the current pool statistics.
func SnapshotPool(pool *pgxpool.Pool) *PoolHealth {
	stat := pool.Stat()
	return &PoolHealth{
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
		Healthy:       stat.TotalConns() > 0,
	}
}

// HealthHandler pings the database and reports service health with a pool
// snapshot and the ping round-trip time.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		start := time.Now()
		err := pool.Ping(ctx)
		pingMs := time.Since(start).Milliseconds()
		health := SnapshotPool(pool)

		if err != nil {
			health.Healthy = false
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "unavailable",
				"error":    err.Error(),
				"database": health,
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"ping_ms":  pingMs,
			"database": health,
		})
	}
}
