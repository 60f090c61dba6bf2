package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oyster-ai/oyster-backend/internal/observability"
	"github.com/oyster-ai/oyster-backend/internal/platform/httpx"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
	"github.com/oyster-ai/oyster-backend/internal/platform/promptstyle"
)

// Client is the OpenAI Responses API client used for course enrichment.
type Client interface {
	// Structured outputs (json_schema, strict)
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)

	// Plain text (no schema)
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// Temperature is omitted from requests when nil.
	Temperature *float64
	HTTPClient  *http.Client
}

const (
	DefaultBaseURL    = "https://api.openai.com"
	DefaultModel      = "gpt-4o-mini"
	DefaultTimeout    = 180 * time.Second
	DefaultMaxRetries = 4

	responsesPath = "/v1/responses"
	// A model that rejected temperature is sent requests without it for this long.
	noTempTTL = 24 * time.Hour
)

// ErrRefused wraps a model refusal.
var ErrRefused = errors.New("model refused")

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	temperature *float64
	noTemp      sync.Map // model -> time.Time of the rejection
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &client{
		log:            log.With("service", "OpenAIClient", "model", model),
		baseURL:        baseURL,
		apiKey:         apiKey,
		model:          model,
		httpClient:     httpClient,
		maxRetries:     max(cfg.MaxRetries, 0),
		initialBackoff: 1 * time.Second,
		maxBackoff:     10 * time.Second,
		temperature:    cfg.Temperature,
	}, nil
}

func (c *client) modelIsNoTemp(model string) bool {
	v, ok := c.noTemp.Load(strings.ToLower(model))
	return ok && time.Since(v.(time.Time)) < noTempTTL
}

// APIError is a non-2xx response. Type, Param, Code and Message come from the
// error envelope when the body carries one.
type APIError struct {
	StatusCode int
	RequestID  string
	Type       string
	Param      string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("openai http %d (request %s): %s", e.StatusCode, e.RequestID, msg)
	}
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, msg)
}

func (e *APIError) HTTPStatusCode() int { return e.StatusCode }

func (e *APIError) rejectsTemperature() bool {
	if e.StatusCode != http.StatusBadRequest {
		return false
	}
	if e.Param == "temperature" {
		return true
	}
	msg := strings.ToLower(e.Message)
	if !strings.Contains(msg, "temperature") {
		return false
	}
	for _, needle := range []string{"unsupported", "not supported", "does not support", "only the default"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

func newAPIError(resp *http.Response, raw []byte) *APIError {
	e := &APIError{StatusCode: resp.StatusCode, RequestID: resp.Header.Get("x-request-id")}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Error) == 0 {
		e.Message = strings.TrimSpace(string(raw))
		return e
	}
	var detail struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Param   string `json:"param"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		e.Message, e.Type, e.Param, e.Code = detail.Message, detail.Type, detail.Param, detail.Code
		return e
	}
	// Some proxies send {"error": "text"}.
	_ = json.Unmarshal(envelope.Error, &e.Message)
	return e
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type textOptions struct {
	Format map[string]any `json:"format,omitempty"`
}

type responsesRequest struct {
	Model       string         `json:"model"`
	Input       []inputMessage `json:"input"`
	Text        *textOptions   `json:"text,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Status            string `json:"status"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details"`
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// text returns the assistant output, or an error for refusals, truncated
// responses and empty output.
func (r *responsesResponse) text() (string, error) {
	refusal := r.Refusal
	var out strings.Builder
	for _, item := range r.Output {
		for _, part := range item.Content {
			switch {
			case part.Type == "refusal" && refusal == "":
				refusal = part.Refusal
			case part.Type == "output_text" && item.Type == "message" && item.Role == "assistant":
				out.WriteString(part.Text)
			}
		}
	}
	if refusal != "" {
		return "", fmt.Errorf("%w: %s", ErrRefused, refusal)
	}
	if r.Status == "incomplete" {
		reason := "unknown"
		if r.IncompleteDetails != nil && r.IncompleteDetails.Reason != "" {
			reason = r.IncompleteDetails.Reason
		}
		return "", fmt.Errorf("incomplete response: %s", reason)
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", errors.New("no output_text found in response")
	}
	return out.String(), nil
}

func (c *client) newRequest(system, user string) *responsesRequest {
	req := &responsesRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if c.temperature != nil && !c.modelIsNoTemp(c.model) {
		req.Temperature = c.temperature
	}
	return req
}

func (c *client) post(ctx context.Context, req *responsesRequest) (*http.Response, *responsesResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+responsesPath, &buf)
	if err != nil {
		return nil, nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, err
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return resp, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil, newAPIError(resp, raw)
	}
	var out responsesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return resp, nil, fmt.Errorf("openai decode error: %w", err)
	}
	return resp, &out, nil
}

// call posts req with retries on transient failures.
func (c *client) call(ctx context.Context, req *responsesRequest) (*responsesResponse, error) {
	backoff := httpx.Backoff{Initial: c.initialBackoff, Max: c.maxBackoff}
	start := time.Now()
	metrics := observability.Current()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, out, err := c.post(ctx, req)
		if err == nil {
			metrics.ObserveLLMRequest(req.Model, "responses", strconv.Itoa(resp.StatusCode), time.Since(start), out.Usage.InputTokens, out.Usage.OutputTokens)
			return out, nil
		}
		if !httpx.IsRetryableError(err) || attempt >= c.maxRetries {
			metrics.ObserveLLMRequest(req.Model, "responses", statusLabel(err), time.Since(start), 0, 0)
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff.Next(), c.maxBackoff))
		c.log.Warn("OpenAI request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return nil, err
		}
	}
}

// callWithTempFallback resends once without temperature when the model rejects it.
func (c *client) callWithTempFallback(ctx context.Context, req *responsesRequest) (*responsesResponse, error) {
	out, err := c.call(ctx, req)
	var apiErr *APIError
	if err == nil || req.Temperature == nil || !errors.As(err, &apiErr) || !apiErr.rejectsTemperature() {
		return out, err
	}
	c.noTemp.Store(strings.ToLower(req.Model), time.Now())
	c.log.Warn("Model rejected temperature; retrying without it")
	req.Temperature = nil
	return c.call(ctx, req)
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}
	req := c.newRequest(promptstyle.ApplySystem(system, promptstyle.ModeJSON), user)
	req.Text = &textOptions{Format: map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}}

	resp, err := c.callWithTempFallback(ctx, req)
	if err != nil {
		return nil, err
	}
	text, err := resp.text()
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return obj, nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	req := c.newRequest(promptstyle.ApplySystem(system, promptstyle.ModeText), user)
	resp, err := c.callWithTempFallback(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.text()
}

func statusLabel(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return strconv.Itoa(apiErr.StatusCode)
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
