package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/oyster-ai/oyster-backend/internal/enrich"
	"github.com/oyster-ai/oyster-backend/internal/platform/envutil"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec
	llmCost     *CounterVec

	adapterCalls   *CounterVec
	adapterLatency *HistogramVec

	enrichRuns      *CounterVec
	enrichDuration  *HistogramVec
	enrichTopics    *Counter
	enrichResources *Counter
	enrichQuestions *Counter
	enrichDegraded  *CounterVec

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	llmCostInputPer1K  float64
	llmCostOutputPer1K float64
}

var (
	initOnce sync.Once
	instance *Metrics
)

var _ enrich.Observer = (*Metrics)(nil)

// Current returns the process-wide metrics, or nil when metrics are disabled.
func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	if d := envutil.Duration("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second); d > 0 {
		return d
	}
	return 10 * time.Second
}

// Init builds the process-wide metrics once. It returns nil when disabled.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

// New builds an unregistered Metrics value.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("oy_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"oy_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		),
		apiInflight: NewGauge("oy_api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("oy_llm_requests_total", "LLM requests by model/endpoint/status.", []string{"model", "endpoint", "status"}),
		llmLatency: NewHistogramVec(
			"oy_llm_request_duration_seconds",
			"LLM request latency in seconds by model/endpoint/status.",
			[]string{"model", "endpoint", "status"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		),
		llmTokens: NewCounterVec("oy_llm_tokens_total", "LLM tokens by model/direction.", []string{"model", "direction"}),
		llmCost:   NewCounterVec("oy_llm_cost_usd_total", "Estimated LLM cost (USD) by model/direction.", []string{"model", "direction"}),
		adapterCalls: NewCounterVec(
			"oy_adapter_calls_total",
			"Enrichment adapter calls by adapter/outcome.",
			[]string{"adapter", "outcome"},
		),
		adapterLatency: NewHistogramVec(
			"oy_adapter_call_duration_seconds",
			"Enrichment adapter call latency in seconds by adapter/outcome.",
			[]string{"adapter", "outcome"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		enrichRuns: NewCounterVec("oy_enrich_runs_total", "Course enrichment runs by status.", []string{"status"}),
		enrichDuration: NewHistogramVec(
			"oy_enrich_run_duration_seconds",
			"Course enrichment run duration in seconds by status.",
			[]string{"status"},
			[]float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		),
		enrichTopics:    NewCounter("oy_enrich_topics_total", "Topics enriched."),
		enrichResources: NewCounter("oy_enrich_resources_total", "Video resources attached to topics."),
		enrichQuestions: NewCounter("oy_enrich_questions_total", "Self-check questions attached to topics."),
		enrichDegraded: NewCounterVec(
			"oy_enrich_degraded_total",
			"Enrichment fields degraded to empty, placeholder or absent, by field.",
			[]string{"field"},
		),
		dbStats:            NewGaugeVec("oy_db_stats", "Database connection pool stats.", []string{"metric"}),
		redisUp:            NewGauge("oy_redis_up", "Redis connectivity (1=up, 0=down)."),
		redisPing:          NewGauge("oy_redis_ping_seconds", "Redis ping latency in seconds."),
		llmCostInputPer1K:  envutil.Float("LLM_COST_INPUT_PER_1K", 0),
		llmCostOutputPer1K: envutil.Float("LLM_COST_OUTPUT_PER_1K", 0),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens, m.llmCost,
		m.adapterCalls, m.adapterLatency,
		m.enrichRuns, m.enrichDuration, m.enrichTopics, m.enrichResources, m.enrichQuestions, m.enrichDegraded,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method, route, status = orDefault(method, "UNKNOWN"), orDefault(route, "unknown"), orDefault(status, "0")
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveLLMRequest records one logical LLM call (retries included) and, when
// per-1K prices are configured, its estimated cost.
func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model, endpoint, status = orDefault(model, "unknown"), orDefault(endpoint, "unknown"), orDefault(status, "0")
	m.llmRequests.Inc(model, endpoint, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model, endpoint, status)
	}
	for _, t := range []struct {
		direction string
		tokens    int
		per1K     float64
	}{
		{"input", inputTokens, m.llmCostInputPer1K},
		{"output", outputTokens, m.llmCostOutputPer1K},
	} {
		if t.tokens <= 0 {
			continue
		}
		m.llmTokens.Add(float64(t.tokens), model, t.direction)
		if t.per1K > 0 {
			m.llmCost.Add(float64(t.tokens)/1000*t.per1K, model, t.direction)
		}
	}
}

func (m *Metrics) ObserveAdapterCall(adapter string, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	adapter, outcome = orDefault(adapter, "unknown"), orDefault(outcome, "unknown")
	m.adapterCalls.Inc(adapter, outcome)
	m.adapterLatency.Observe(dur.Seconds(), adapter, outcome)
}

func (m *Metrics) ObserveRun(stats enrich.Stats, dur time.Duration, err error) {
	if m == nil {
		return
	}
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	m.enrichRuns.Inc(status)
	m.enrichDuration.Observe(dur.Seconds(), status)
	if err != nil {
		return
	}
	m.enrichTopics.Add(float64(stats.Topics))
	m.enrichResources.Add(float64(stats.Resources))
	m.enrichQuestions.Add(float64(stats.Questions))
	if stats.ResourceFailures > 0 {
		m.enrichDegraded.Add(float64(stats.ResourceFailures), "resources")
	}
	if stats.QuestionFailures > 0 {
		m.enrichDegraded.Add(float64(stats.QuestionFailures), "questions")
	}
	if stats.SummaryFailed {
		m.enrichDegraded.Inc("summary")
	}
	if stats.AudioFailed {
		m.enrichDegraded.Inc("audio")
	}
	if stats.CapstoneFailed {
		m.enrichDegraded.Inc("capstone")
	}
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go every(ctx, scrapeInterval(), func() {
		sqlDB, err := db.DB()
		if err != nil {
			if log != nil {
				log.Warn("metrics: db stats unavailable", "error", err)
			}
			return
		}
		stats := sqlDB.Stats()
		for name, v := range map[string]float64{
			"open_connections":      float64(stats.OpenConnections),
			"in_use":                float64(stats.InUse),
			"idle":                  float64(stats.Idle),
			"wait_count":            float64(stats.WaitCount),
			"wait_duration_seconds": stats.WaitDuration.Seconds(),
			"max_open_connections":  float64(stats.MaxOpenConnections),
		} {
			m.dbStats.Set(v, name)
		}
	})
}

// StartRedisCollector pings through the shared client; it does not close it.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go every(ctx, scrapeInterval(), func() {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			if log != nil {
				log.Warn("metrics: redis ping failed", "error", err)
			}
			return
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(start).Seconds())
	})
}

// every runs fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
