package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oyster-ai/oyster-backend/internal/platform/envutil"
	"github.com/oyster-ai/oyster-backend/internal/platform/gcp"
)

type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64         `yaml:"max_request_bytes"`
	CORSOrigins       []string      `yaml:"cors_origins"`
}

type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	Temperature *float64      `yaml:"temperature"`
}

type YouTubeConfig struct {
	APIKey        string  `yaml:"api_key"`
	MaxResults    int     `yaml:"max_results"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

type SpeechConfig struct {
	CredentialsJSON string  `yaml:"credentials_json"`
	CredentialsFile string  `yaml:"credentials_file"`
	LanguageCode    string  `yaml:"language_code"`
	VoiceName       string  `yaml:"voice_name"`
	SpeakingRate    float64 `yaml:"speaking_rate"`
}

type StorageConfig struct {
	Mode          string `yaml:"mode"`
	EmulatorHost  string `yaml:"emulator_host"`
	PublicBaseURL string `yaml:"public_base_url"`
	AudioBucket   string `yaml:"audio_bucket"`
	AudioCDN      string `yaml:"audio_cdn_domain"`
}

type RedisConfig struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	ResourceTTL time.Duration `yaml:"resource_ttl"`
}

type DatabaseConfig struct {
	URL        string `yaml:"url"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Configured reports whether run history has somewhere to go.
func (d DatabaseConfig) Configured() bool {
	return strings.TrimSpace(d.URL) != "" || strings.TrimSpace(d.Host) != "" || strings.TrimSpace(d.SQLitePath) != ""
}

type EnrichConfig struct {
	AdapterConcurrency int           `yaml:"adapter_concurrency"`
	AdapterTimeout     time.Duration `yaml:"adapter_timeout"`
	SpeechTimeout      time.Duration `yaml:"speech_timeout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	Headers     string  `yaml:"headers"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	LogMode     string `yaml:"log_mode"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`

	HTTP     HTTPConfig     `yaml:"http"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Speech   SpeechConfig   `yaml:"speech"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Enrich   EnrichConfig   `yaml:"enrich"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Otel     OtelConfig     `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		LogMode:     "development",
		ServiceName: "oyster-backend",
		Environment: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       2 * time.Minute,
			ShutdownTimeout:   15 * time.Second,
			MaxRequestBytes:   10 << 20,
		},
		OpenAI: OpenAIConfig{
			Model:      "gpt-4o-mini",
			Timeout:    180 * time.Second,
			MaxRetries: 4,
		},
		YouTube: YouTubeConfig{MaxResults: 3, RatePerSecond: 5},
		Speech:  SpeechConfig{LanguageCode: "en-US", SpeakingRate: 1.0},
		Redis:   RedisConfig{ResourceTTL: 24 * time.Hour},
		Database: DatabaseConfig{
			Port: "5432",
			User: "postgres",
			Name: "oyster",
		},
		Enrich: EnrichConfig{
			AdapterConcurrency: 8,
			AdapterTimeout:     60 * time.Second,
			SpeechTimeout:      2 * time.Minute,
		},
		Otel: OtelConfig{SampleRatio: 1.0},
	}
}

// LoadConfig layers defaults, an optional YAML file, then environment variables.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(os.Getenv("OYSTER_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)
	cfg.Version = envutil.String("APP_VERSION", cfg.Version)

	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.ShutdownTimeout = envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
	cfg.HTTP.MaxRequestBytes = int64(envutil.Int("MAX_REQUEST_BYTES", int(cfg.HTTP.MaxRequestBytes)))
	if origins := envutil.String("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.HTTP.CORSOrigins = splitList(origins)
	}

	cfg.OpenAI.APIKey = envutil.String("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.BaseURL = envutil.String("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.OpenAI.Model = envutil.String("OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.Timeout = envutil.Duration("OPENAI_TIMEOUT_SECONDS", cfg.OpenAI.Timeout)
	cfg.OpenAI.MaxRetries = envutil.Int("OPENAI_MAX_RETRIES", cfg.OpenAI.MaxRetries)
	if raw := envutil.String("OPENAI_TEMPERATURE", ""); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.OpenAI.Temperature = &f
		}
	}

	cfg.YouTube.APIKey = envutil.String("YOUTUBE_API_KEY", cfg.YouTube.APIKey)
	cfg.YouTube.MaxResults = envutil.Int("YOUTUBE_MAX_RESULTS", cfg.YouTube.MaxResults)
	cfg.YouTube.RatePerSecond = envutil.Float("YOUTUBE_RATE_PER_SECOND", cfg.YouTube.RatePerSecond)

	cfg.Speech.CredentialsJSON = envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", cfg.Speech.CredentialsJSON)
	cfg.Speech.CredentialsFile = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", cfg.Speech.CredentialsFile)
	cfg.Speech.LanguageCode = envutil.String("TTS_LANGUAGE_CODE", cfg.Speech.LanguageCode)
	cfg.Speech.VoiceName = envutil.String("TTS_VOICE_NAME", cfg.Speech.VoiceName)
	cfg.Speech.SpeakingRate = envutil.Float("TTS_SPEAKING_RATE", cfg.Speech.SpeakingRate)

	cfg.Storage.Mode = envutil.String("OBJECT_STORAGE_MODE", cfg.Storage.Mode)
	cfg.Storage.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", cfg.Storage.EmulatorHost)
	cfg.Storage.PublicBaseURL = envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", cfg.Storage.PublicBaseURL)
	cfg.Storage.AudioBucket = envutil.String("AUDIO_GCS_BUCKET_NAME", cfg.Storage.AudioBucket)
	cfg.Storage.AudioCDN = envutil.String("AUDIO_CDN_DOMAIN", cfg.Storage.AudioCDN)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.ResourceTTL = envutil.Duration("RESOURCE_CACHE_TTL", cfg.Redis.ResourceTTL)

	cfg.Database.URL = envutil.String("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Host = envutil.String("POSTGRES_HOST", cfg.Database.Host)
	cfg.Database.Port = envutil.String("POSTGRES_PORT", cfg.Database.Port)
	cfg.Database.User = envutil.String("POSTGRES_USER", cfg.Database.User)
	cfg.Database.Password = envutil.String("POSTGRES_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = envutil.String("POSTGRES_NAME", cfg.Database.Name)
	cfg.Database.SQLitePath = envutil.String("SQLITE_PATH", cfg.Database.SQLitePath)

	cfg.Enrich.AdapterConcurrency = envutil.Int("ENRICH_ADAPTER_CONCURRENCY", cfg.Enrich.AdapterConcurrency)
	cfg.Enrich.AdapterTimeout = envutil.Duration("ENRICH_ADAPTER_TIMEOUT", cfg.Enrich.AdapterTimeout)
	cfg.Enrich.SpeechTimeout = envutil.Duration("ENRICH_SPEECH_TIMEOUT", cfg.Enrich.SpeechTimeout)

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = envutil.String("METRICS_ADDR", cfg.Metrics.Addr)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio)
}

func (c Config) validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http addr is required")
	}
	if c.Enrich.AdapterConcurrency < 0 {
		return fmt.Errorf("invalid ENRICH_ADAPTER_CONCURRENCY=%d", c.Enrich.AdapterConcurrency)
	}
	return nil
}

func (s SpeechConfig) Credentials() gcp.Credentials {
	return gcp.Credentials{JSON: s.CredentialsJSON, File: s.CredentialsFile}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
