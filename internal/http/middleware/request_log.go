package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oyster-ai/oyster-backend/internal/platform/ctxutil"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

// RequestLogger writes one line per request. Health probes and scrapes log at
// debug so they do not drown out enrichment traffic.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes_in", c.Request.ContentLength,
			"bytes_out", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		}
		if runID := c.Writer.Header().Get(HeaderRunID); runID != "" {
			fields = append(fields, "run_id", runID)
		}
		fields = append(fields, ctxutil.TraceFields(c.Request.Context())...)
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case route == "/healthcheck" || route == "/metrics":
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
