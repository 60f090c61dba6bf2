package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oyster-ai/oyster-backend/internal/platform/httpx"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

// maxTTSInputBytes is the Text-to-Speech per-request input limit.
const maxTTSInputBytes = 5000

type TextToSpeechConfig struct {
	LanguageCode string
	VoiceName    string
	SpeakingRate float64
	MaxRetries   int
	Credentials  Credentials
}

// TextToSpeech synthesizes narration as MP3. Long text is split on sentence
// boundaries and the MP3 chunks are concatenated.
type TextToSpeech struct {
	log        *logger.Logger
	client     *texttospeech.Client
	synth      func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)
	cfg        TextToSpeechConfig
	chunkLimit int
	backoff    time.Duration
}

func NewTextToSpeech(ctx context.Context, log *logger.Logger, cfg TextToSpeechConfig) (*TextToSpeech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	c, err := texttospeech.NewClient(ctx, cfg.Credentials.ClientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("texttospeech client: %w", err)
	}
	t := newTextToSpeech(log, cfg, func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
		return c.SynthesizeSpeech(ctx, req)
	})
	t.client = c
	return t, nil
}

func newTextToSpeech(
	log *logger.Logger,
	cfg TextToSpeechConfig,
	synth func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error),
) *TextToSpeech {
	if strings.TrimSpace(cfg.LanguageCode) == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.SpeakingRate <= 0 {
		cfg.SpeakingRate = 1.0
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &TextToSpeech{
		log:        log.With("service", "gcp.TextToSpeech"),
		synth:      synth,
		cfg:        cfg,
		chunkLimit: maxTTSInputBytes,
		backoff:    750 * time.Millisecond,
	}
}

func (t *TextToSpeech) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Close()
}

func (t *TextToSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty narration text")
	}
	chunks := splitForSpeech(text, t.chunkLimit)

	var out bytes.Buffer
	for i, chunk := range chunks {
		req := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: t.cfg.LanguageCode,
				Name:         strings.TrimSpace(t.cfg.VoiceName),
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
				SpeakingRate:  t.cfg.SpeakingRate,
			},
		}
		resp, err := t.retry(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out.Write(resp.GetAudioContent())
	}
	t.log.Debug("Synthesized narration", "chunks", len(chunks), "bytes", out.Len())
	return out.Bytes(), nil
}

func (t *TextToSpeech) retry(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	backoff := httpx.Backoff{Initial: t.backoff, Max: 10 * time.Second}
	var last error
	for attempt := 0; attempt <= t.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := t.synth(ctx, req)
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == t.cfg.MaxRetries {
			break
		}
		t.log.Warn("texttospeech retrying", "attempt", attempt+1, "code", code.String())
		if err := httpx.Sleep(ctx, httpx.JitterSleep(backoff.Next())); err != nil {
			return nil, err
		}
	}
	return nil, last
}

// splitForSpeech breaks text into chunks of at most limit bytes, preferring
// sentence ends, then whitespace, then a rune boundary.
func splitForSpeech(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(text) > limit {
		cut := lastSentenceEnd(text[:limit])
		if cut <= 0 {
			cut = strings.LastIndexAny(text[:limit], " \n\t")
		}
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		if chunk := strings.TrimSpace(text[:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// lastSentenceEnd returns the index just past the last ". ", "! " or "? " in s.
func lastSentenceEnd(s string) int {
	best := -1
	for _, p := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
		if i := strings.LastIndex(s, p); i >= 0 && i+1 > best {
			best = i + 1
		}
	}
	return best
}
