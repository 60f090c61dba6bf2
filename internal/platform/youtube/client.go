// Package youtube searches the YouTube Data API for topic videos.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

const (
	DefaultMaxResults    = 3
	DefaultRatePerSecond = 5
	watchURLPrefix       = "https://www.youtube.com/watch?v="
)

type Config struct {
	APIKey        string
	MaxResults    int
	RatePerSecond float64
	// Options are appended after the API key; tests use them to point at a fake endpoint.
	Options []option.ClientOption
}

type Client struct {
	log        *logger.Logger
	svc        *yt.Service
	maxResults int64
	limiter    *rate.Limiter
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("missing YOUTUBE_API_KEY")
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = DefaultRatePerSecond
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	opts := append([]option.ClientOption{option.WithAPIKey(key)}, cfg.Options...)
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &Client{
		log:        log.With("service", "YouTubeClient"),
		svc:        svc,
		maxResults: int64(maxResults),
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// Search returns embeddable videos for query. A blank query or no hits yields an
// empty slice and no error.
func (c *Client) Search(ctx context.Context, query string) ([]course.VideoResource, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []course.VideoResource{}, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.svc.Search.List([]string{"id", "snippet"}).
		Q(query).
		Type("video").
		VideoEmbeddable("true").
		SafeSearch("strict").
		MaxResults(c.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search %q: %w", query, err)
	}

	out := make([]course.VideoResource, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		out = append(out, course.VideoResource{
			Title:       html.UnescapeString(item.Snippet.Title),
			URL:         watchURLPrefix + item.Id.VideoId,
			Description: html.UnescapeString(item.Snippet.Description),
		})
	}
	c.log.Debug("YouTube search", "query", query, "results", len(out))
	return out, nil
}
