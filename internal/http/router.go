package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/oyster-ai/oyster-backend/internal/http/handlers"
	httpMW "github.com/oyster-ai/oyster-backend/internal/http/middleware"
	"github.com/oyster-ai/oyster-backend/internal/observability"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	Metrics         *observability.Metrics
	ServiceName     string
	CORSOrigins     []string
	MaxRequestBytes int64

	HealthHandler *httpH.HealthHandler
	EnrichHandler *httpH.EnrichHandler
	RunHandler    *httpH.RunHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.Recovery(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.BodyLimit(cfg.MaxRequestBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Enrichment
	if cfg.EnrichHandler != nil {
		r.POST("/enrich-course", cfg.EnrichHandler.EnrichCourse)
	}

	api := r.Group("/api")
	{
		if cfg.EnrichHandler != nil {
			api.POST("/enrich-course", cfg.EnrichHandler.EnrichCourse)
			api.GET("/capabilities", cfg.EnrichHandler.Capabilities)
		}
		if cfg.RunHandler != nil {
			api.GET("/enrichment-runs", cfg.RunHandler.ListRuns)
			api.GET("/enrichment-runs/:id", cfg.RunHandler.GetRun)
		}
	}

	return r
}
