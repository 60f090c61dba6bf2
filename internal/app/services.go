package app

import (
	"fmt"

	"github.com/oyster-ai/oyster-backend/internal/enrich"
	"github.com/oyster-ai/oyster-backend/internal/observability"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
	rediscache "github.com/oyster-ai/oyster-backend/internal/platform/redis"
	"github.com/oyster-ai/oyster-backend/internal/repos"
	"github.com/oyster-ai/oyster-backend/internal/services"
)

type Services struct {
	Orchestrator *enrich.Orchestrator
	Enrichment   services.EnrichmentService
	RunRecorder  *services.RunRecorder
}

// wireAdapters resolves capabilities once. Nil clients stay nil interfaces.
func wireAdapters(log *logger.Logger, cfg Config, clients Clients) (enrich.Adapters, error) {
	adapters := enrich.Adapters{LLM: clients.LLM}

	if clients.YouTube != nil {
		var cache rediscache.ResourceCache
		if clients.Redis != nil {
			c, err := rediscache.NewResourceCache(log, clients.Redis, cfg.Redis.ResourceTTL)
			if err != nil {
				return enrich.Adapters{}, fmt.Errorf("init resource cache: %w", err)
			}
			cache = c
		}
		vs, err := services.NewCachedVideoSearch(log, clients.YouTube, cache)
		if err != nil {
			return enrich.Adapters{}, fmt.Errorf("init video search: %w", err)
		}
		adapters.VideoSearch = vs
	}
	if clients.TTS != nil {
		adapters.Speech = clients.TTS
	}
	return adapters, nil
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	adapters, err := wireAdapters(log, cfg, clients)
	if err != nil {
		return Services{}, err
	}

	var observer enrich.Observer = enrich.NopObserver{}
	if metrics != nil {
		observer = enrich.MultiObserver{metrics}
	}
	orch, err := enrich.New(log, adapters, enrich.Options{
		AdapterConcurrency: cfg.Enrich.AdapterConcurrency,
		AdapterTimeout:     cfg.Enrich.AdapterTimeout,
		SpeechTimeout:      cfg.Enrich.SpeechTimeout,
		Observer:           observer,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init orchestrator: %w", err)
	}
	caps := orch.Capabilities()
	log.Info("Enrichment capabilities resolved", "llm", caps.LLM, "video_search", caps.VideoSearch, "speech", caps.Speech)

	var (
		runs     repos.EnrichmentRunRepo
		recorder *services.RunRecorder
	)
	if clients.DB != nil {
		runs = repos.NewEnrichmentRunRepo(clients.DB.DB(), log)
		recorder, err = services.NewRunRecorder(log, runs)
		if err != nil {
			return Services{}, fmt.Errorf("init run recorder: %w", err)
		}
	}

	var audio services.AudioStore
	if clients.AudioBucket != nil {
		audio = clients.AudioBucket
	}
	enrichment, err := services.NewEnrichmentService(log, orch, audio, recorder, runs, cfg.OpenAI.Model)
	if err != nil {
		return Services{}, fmt.Errorf("init enrichment service: %w", err)
	}

	return Services{
		Orchestrator: orch,
		Enrichment:   enrichment,
		RunRecorder:  recorder,
	}, nil
}
