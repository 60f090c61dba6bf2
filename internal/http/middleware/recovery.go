package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyster-ai/oyster-backend/internal/platform/ctxutil"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

// Recovery turns a handler panic into a 500 with the flat error body.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		if log != nil {
			fields := append([]interface{}{"panic", fmt.Sprint(rec), "path", c.Request.URL.Path}, ctxutil.TraceFields(c.Request.Context())...)
			log.Error("handler panic", fields...)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

// BodyLimit caps request bodies at max bytes. Non-positive max disables it.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
