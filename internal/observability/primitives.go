package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Metric primitives rendered in Prometheus text exposition format.
// Series are written in sorted label order so scrapes are stable.

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// series is a set of float values keyed by rendered label set.
type series struct {
	name   string
	help   string
	kind   string
	labels []string

	mu   sync.RWMutex
	vals map[string]float64
}

func newSeries(name, help, kind string, labels []string) *series {
	return &series{name: name, help: help, kind: kind, labels: labels, vals: map[string]float64{}}
}

func (s *series) update(values []string, fn func(float64) float64) {
	key := renderLabels(s.labels, values)
	s.mu.Lock()
	s.vals[key] = fn(s.vals[key])
	s.mu.Unlock()
}

func (s *series) get(values []string) float64 {
	key := renderLabels(s.labels, values)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vals[key]
}

func (s *series) write(w io.Writer) error {
	if err := writeHeader(w, s.name, s.help, s.kind); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range sortedKeys(s.vals) {
		if _, err := fmt.Fprintf(w, "%s%s %s\n", s.name, key, formatFloat(s.vals[key])); err != nil {
			return err
		}
	}
	return nil
}

// CounterVec is a monotonically increasing value per label set.
type CounterVec struct{ s *series }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{s: newSeries(name, help, "counter", labels)}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

// Add ignores negative deltas.
func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil || v < 0 {
		return
	}
	c.s.update(values, func(cur float64) float64 { return cur + v })
}

// Value returns the current value for one label combination.
func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.s.get(values)
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.s.write(w)
}

// Counter is an unlabeled CounterVec.
type Counter struct{ vec *CounterVec }

func NewCounter(name, help string) *Counter {
	return &Counter{vec: NewCounterVec(name, help, nil)}
}

func (c *Counter) Inc() { c.Add(1) }

func (c *Counter) Add(v float64) {
	if c == nil {
		return
	}
	c.vec.Add(v)
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	return c.vec.Value()
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.vec.WritePrometheus(w)
}

// GaugeVec is a settable value per label set.
type GaugeVec struct{ s *series }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{s: newSeries(name, help, "gauge", labels)}
}

func (g *GaugeVec) Set(v float64, values ...string) {
	if g == nil {
		return
	}
	g.s.update(values, func(float64) float64 { return v })
}

func (g *GaugeVec) Add(v float64, values ...string) {
	if g == nil {
		return
	}
	g.s.update(values, func(cur float64) float64 { return cur + v })
}

func (g *GaugeVec) Value(values ...string) float64 {
	if g == nil {
		return 0
	}
	return g.s.get(values)
}

func (g *GaugeVec) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.s.write(w)
}

// Gauge is an unlabeled GaugeVec.
type Gauge struct{ vec *GaugeVec }

func NewGauge(name, help string) *Gauge {
	return &Gauge{vec: NewGaugeVec(name, help, nil)}
}

func (g *Gauge) Set(v float64) {
	if g == nil {
		return
	}
	g.vec.Set(v)
}

func (g *Gauge) Inc() {
	if g == nil {
		return
	}
	g.vec.Add(1)
}

func (g *Gauge) Dec() {
	if g == nil {
		return
	}
	g.vec.Add(-1)
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.vec.Value()
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.vec.WritePrometheus(w)
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// HistogramVec tracks observations per label set in fixed upper-bound buckets.
type HistogramVec struct {
	name    string
	help    string
	labels  []string
	buckets []float64

	mu    sync.RWMutex
	dists map[string]*distribution
}

// distribution holds per-bucket (non-cumulative) counts. The extra final slot
// is the +Inf overflow.
type distribution struct {
	counts []uint64
	sum    float64
}

func (d *distribution) total() uint64 {
	var n uint64
	for _, c := range d.counts {
		n += c
	}
	return n
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	bounds := append([]float64(nil), buckets...)
	sort.Float64s(bounds)
	return &HistogramVec{name: name, help: help, labels: labels, buckets: bounds, dists: map[string]*distribution{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	key := renderLabels(h.labels, values)
	// First bucket whose upper bound is >= v; len(buckets) means +Inf.
	idx := sort.SearchFloat64s(h.buckets, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	d := h.dists[key]
	if d == nil {
		d = &distribution{counts: make([]uint64, len(h.buckets)+1)}
		h.dists[key] = d
	}
	d.counts[idx]++
	d.sum += v
}

// Count returns the number of observations for one label combination.
func (h *HistogramVec) Count(values ...string) uint64 {
	if h == nil {
		return 0
	}
	key := renderLabels(h.labels, values)
	h.mu.RLock()
	defer h.mu.RUnlock()
	if d := h.dists[key]; d != nil {
		return d.total()
	}
	return 0
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := writeHeader(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, key := range sortedKeys(h.dists) {
		d := h.dists[key]
		var cumulative uint64
		for i, c := range d.counts {
			cumulative += c
			le := "+Inf"
			if i < len(h.buckets) {
				le = formatFloat(h.buckets[i])
			}
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, appendLabel(key, "le", le), cumulative); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %s\n%s_count%s %d\n", h.name, key, formatFloat(d.sum), h.name, key, cumulative); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, name, help, kind string) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// renderLabels produces {a="x",b="y"}. Missing values render as "unknown";
// no names renders as the empty string.
func renderLabels(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	pairs := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) {
			val = values[i]
		}
		pairs[i] = name + `="` + labelEscaper.Replace(val) + `"`
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func appendLabel(rendered, name, val string) string {
	pair := name + `="` + labelEscaper.Replace(val) + `"`
	if rendered == "" {
		return "{" + pair + "}"
	}
	return strings.TrimSuffix(rendered, "}") + "," + pair + "}"
}
