package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

// AudioBucket stores narration audio and hands out public URLs for it.
type AudioBucket interface {
	Upload(ctx context.Context, key string, data []byte) (publicURL string, err error)
	PublicURL(key string) string
}

type AudioBucketConfig struct {
	Bucket    string
	CDNDomain string
	// PublicBaseURL overrides the storage.googleapis.com host, e.g. for the emulator.
	PublicBaseURL string
	Storage       ObjectStorageConfig
	Credentials   Credentials
}

// objectURLs renders the public URL of an object. A CDN domain wins, then the
// emulator media endpoint, then a base URL, then storage.googleapis.com.
type objectURLs struct {
	bucket   string
	cdn      string
	base     string
	emulator bool
}

func (u objectURLs) For(key string) string {
	switch {
	case u.cdn != "":
		return "https://" + u.cdn + "/" + key
	case u.emulator && u.base != "":
		return u.base + "/storage/v1/b/" + url.PathEscape(u.bucket) + "/o/" + url.PathEscape(key) + "?alt=media"
	case u.base != "":
		return u.base + "/" + u.bucket + "/" + key
	default:
		return "https://storage.googleapis.com/" + u.bucket + "/" + key
	}
}

type audioBucket struct {
	log    *logger.Logger
	handle *storage.BucketHandle
	urls   objectURLs
}

func NewAudioBucket(ctx context.Context, log *logger.Logger, cfg AudioBucketConfig) (AudioBucket, error) {
	if err := ValidateObjectStorageConfig(cfg.Storage); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	name := strings.TrimSpace(cfg.Bucket)
	if name == "" {
		return nil, errors.New("missing AUDIO_GCS_BUCKET_NAME")
	}
	publicBaseURL, publicBaseSource, err := resolvePublicBaseURL(cfg.PublicBaseURL, cfg.Storage)
	if err != nil {
		return nil, err
	}
	client, err := newStorageClientForMode(ctx, cfg.Storage, cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog := log.With("service", "AudioBucket")
	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Storage.Mode,
		"mode_source", cfg.Storage.ModeSource(),
		"emulator_host", cfg.Storage.EmulatorHost,
		"public_base_source", publicBaseSource,
		"bucket", name,
	)

	return &audioBucket{
		log:    serviceLog,
		handle: client.Bucket(name),
		urls: objectURLs{
			bucket:   name,
			cdn:      strings.TrimSpace(cfg.CDNDomain),
			base:     publicBaseURL,
			emulator: cfg.Storage.IsEmulatorMode(),
		},
	}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg ObjectStorageConfig, creds Credentials) (*storage.Client, error) {
	switch storageCfg.Mode {
	case ObjectStorageModeGCS:
		opts := creds.ClientOptions()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		// The storage client only honours the emulator through the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Value: string(storageCfg.Mode)}
	}
}

func resolvePublicBaseURL(raw string, storageCfg ObjectStorageConfig) (baseURL string, source string, err error) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		parsed, parseErr := url.Parse(raw)
		if parseErr != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
			return "", "", fmt.Errorf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443", raw)
		}
		return strings.TrimRight(raw, "/"), "object_storage_public_base_url", nil
	}
	if storageCfg.IsEmulatorMode() {
		return strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"), "storage_emulator_host", nil
	}
	return "", "gcs_default", nil
}

func contentTypeForKey(key string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(key, "?", 2)[0]))
	if ct, ok := audioContentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

var audioContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".json": "application/json",
}

func objectKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}

// Upload writes a new object and fails if the key already exists.
func (b *audioBucket) Upload(ctx context.Context, key string, data []byte) (string, error) {
	key = objectKey(key)
	if key == "" {
		return "", errors.New("object key required")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.handle.Object(key).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentTypeForKey(key)
	w.CacheControl = "public, max-age=86400"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %q: %w", key, err)
	}
	b.log.Debug("Uploaded narration", "key", key, "bytes", len(data))
	return b.urls.For(key), nil
}

func (b *audioBucket) PublicURL(key string) string {
	return b.urls.For(objectKey(key))
}
