package handler

import (
	"context"
	"net/http"
	"time"

	"cajapos/internal/infra"
	"cajapos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// breaker reports the state of an outbound circuit breaker.
type breaker interface {
	CircuitState() infra.CBState
}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// The SMTP breaker is informational and does not affect the status code.
func Health(db *gorm.DB, rdb *redis.Client, mail breaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if rdb != nil && redisStatus == "connected" {
			dlq := gin.H{}
			for _, q := range []string{worker.QueueLiquidacion, worker.QueueReporte} {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dlq[q] = n
				}
			}
			body["dlq"] = dlq
		}
		if mail != nil {
			body["smtp"] = mail.CircuitState().String()
		}
		c.JSON(status, body)
	}
}
