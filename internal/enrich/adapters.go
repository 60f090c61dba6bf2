package enrich

import (
	"context"
	"fmt"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
)

// LLM is the completion service. openai.Client satisfies it.
type LLM interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

// VideoSearch finds videos for a query. An empty result is not an error.
type VideoSearch interface {
	Search(ctx context.Context, query string) ([]course.VideoResource, error)
}

// Speech turns text into encoded audio bytes (MP3).
type Speech interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Adapters is decided once at startup. A nil optional adapter means the
// capability is not configured and is never called.
type Adapters struct {
	LLM         LLM
	VideoSearch VideoSearch
	Speech      Speech
}

type Capabilities struct {
	LLM         bool `json:"llm"`
	VideoSearch bool `json:"videoSearch"`
	Speech      bool `json:"speech"`
}

func (a Adapters) Capabilities() Capabilities {
	return Capabilities{
		LLM:         a.LLM != nil,
		VideoSearch: a.VideoSearch != nil,
		Speech:      a.Speech != nil,
	}
}

const (
	AdapterVideoSearch = "video_search"
	AdapterQuestions   = "llm_questions"
	AdapterSummary     = "llm_summary"
	AdapterCapstone    = "llm_capstone"
	AdapterSpeech      = "speech"
)

// AdapterError wraps any failure of an external collaborator call, including
// timeouts and limiter waits.
type AdapterError struct {
	Adapter string
	Err     error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s adapter: %v", e.Adapter, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }
