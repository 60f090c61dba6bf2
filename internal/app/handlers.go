package app

import (
	httpH "github.com/oyster-ai/oyster-backend/internal/http/handlers"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Enrich *httpH.EnrichHandler
	Runs   *httpH.RunHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Enrich: httpH.NewEnrichHandler(log, services.Enrichment),
		Runs:   httpH.NewRunHandler(services.Enrichment),
	}
}
