package handler

import (
	"context"
	"net/http"
	"time"

	"vendimax/internal/infra"
	"vendimax/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// Redis is optional: without it the status reads "disabled" and jobs run inline.
func Health(db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer, dispatcher *worker.Dispatcher) gin.HandlerFunc {
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

		mailStatus := "disabled"
		if mailer.Enabled() {
			mailStatus = mailer.BreakerState()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"smtp":  mailStatus,
		}
		if dispatcher != nil {
			if dlq, err := dispatcher.DLQLengths(ctx); err == nil {
				body["dlq"] = dlq
			}
		}
		c.JSON(status, body)
	}
}
