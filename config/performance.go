package config

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// SlowRequestThreshold marks requests logged as slow.
const SlowRequestThreshold = 200 * time.Millisecond

func PerformanceLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", latency,
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.Last().Err)
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", attrs...)
		case latency > SlowRequestThreshold:
			log.Warn("slow request", attrs...)
		default:
			log.Info("request", attrs...)
		}
	}
}
