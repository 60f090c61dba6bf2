package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oyster-ai/oyster-backend/internal/db"
	"github.com/oyster-ai/oyster-backend/internal/platform/gcp"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
	"github.com/oyster-ai/oyster-backend/internal/platform/openai"
	rediscache "github.com/oyster-ai/oyster-backend/internal/platform/redis"
	"github.com/oyster-ai/oyster-backend/internal/platform/youtube"
)

// Clients holds external connections. Every field except LLM may be nil, which
// turns the matching capability off.
type Clients struct {
	LLM         openai.Client
	YouTube     *youtube.Client
	TTS         *gcp.TextToSpeech
	AudioBucket gcp.AudioBucket
	Redis       goredis.UniversalClient
	DB          *db.Service
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	// OpenAI
	llm, err := openai.NewClient(log, openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Timeout:     cfg.OpenAI.Timeout,
		MaxRetries:  cfg.OpenAI.MaxRetries,
		Temperature: cfg.OpenAI.Temperature,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	c.LLM = llm

	// YouTube
	if strings.TrimSpace(cfg.YouTube.APIKey) != "" {
		yt, err := youtube.NewClient(ctx, log, youtube.Config{
			APIKey:        cfg.YouTube.APIKey,
			MaxResults:    cfg.YouTube.MaxResults,
			RatePerSecond: cfg.YouTube.RatePerSecond,
		})
		if err != nil {
			log.Warn("video search disabled", "error", err)
		} else {
			c.YouTube = yt
		}
	} else {
		log.Info("video search disabled (YOUTUBE_API_KEY not set)")
	}

	// Gcp
	creds := cfg.Speech.Credentials()
	if creds.Configured() {
		tts, err := gcp.NewTextToSpeech(ctx, log, gcp.TextToSpeechConfig{
			LanguageCode: cfg.Speech.LanguageCode,
			VoiceName:    cfg.Speech.VoiceName,
			SpeakingRate: cfg.Speech.SpeakingRate,
			MaxRetries:   3,
			Credentials:  creds,
		})
		if err != nil {
			log.Warn("speech synthesis disabled", "error", err)
		} else {
			c.TTS = tts
		}
	} else {
		log.Info("speech synthesis disabled (no Google credentials configured)")
	}

	if strings.TrimSpace(cfg.Storage.AudioBucket) != "" {
		storageCfg, err := gcp.ResolveObjectStorageConfig(cfg.Storage.Mode, cfg.Storage.EmulatorHost)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("object storage config: %w", err)
		}
		bucket, err := gcp.NewAudioBucket(ctx, log, gcp.AudioBucketConfig{
			Bucket:        cfg.Storage.AudioBucket,
			CDNDomain:     cfg.Storage.AudioCDN,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			Storage:       storageCfg,
			Credentials:   creds,
		})
		if err != nil {
			log.Warn("narration upload disabled", "error", err)
		} else {
			c.AudioBucket = bucket
		}
	}

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		rdb, err := rediscache.NewClient(ctx, rediscache.ResourceCacheConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("resource cache disabled", "error", err)
		} else {
			c.Redis = rdb
		}
	}

	// Database
	if cfg.Database.Configured() {
		dbs, err := db.Open(log, db.Config{
			URL:        cfg.Database.URL,
			Host:       cfg.Database.Host,
			Port:       cfg.Database.Port,
			User:       cfg.Database.User,
			Password:   cfg.Database.Password,
			Name:       cfg.Database.Name,
			SQLitePath: cfg.Database.SQLitePath,
		})
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init database: %w", err)
		}
		c.DB = dbs
	} else {
		log.Info("run history disabled (no database configured)")
	}

	return c, nil
}

func (c Clients) Close() {
	if c.TTS != nil {
		_ = c.TTS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
