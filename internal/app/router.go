package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/oyster-ai/oyster-backend/internal/http"
	"github.com/oyster-ai/oyster-backend/internal/observability"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.ServiceName
	}
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		HealthHandler:   handlers.Health,
		EnrichHandler:   handlers.Enrich,
		RunHandler:      handlers.Runs,
	})
}
