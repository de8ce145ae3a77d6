// Package metrics keeps engine counters in a registry that renders the
// Prometheus text exposition format and JSON.
//
// A metric is identified by its name and labels. Registering the same
// name and labels twice returns the existing metric, so callers can look
// labelled series up on demand instead of declaring them all upfront.
package metrics

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/sjson"
)

// MetricType represents the type of metric.
type MetricType int

const (
	TypeCounter MetricType = iota
	TypeGauge
	TypeHistogram
)

func (t MetricType) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	case TypeHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// Labels are the label pairs of one series.
type Labels map[string]string

// String renders the labels as {k="v",...} in key order.
func (l Labels) String() string {
	if len(l) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(strconv.Quote(l[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// with returns a copy of l plus one extra pair.
func (l Labels) with(k, v string) Labels {
	out := make(Labels, len(l)+1)
	for lk, lv := range l {
		out[lk] = lv
	}
	out[k] = v
	return out
}

type series interface {
	writeText(w io.Writer, name string)
	appendJSON(doc []byte, path string) ([]byte, error)
}

// Counter is a monotonically increasing counter.
type Counter struct {
	labels Labels
	value  atomic.Uint64
}

func (c *Counter) Inc()          { c.value.Add(1) }
func (c *Counter) Add(v uint64)  { c.value.Add(v) }
func (c *Counter) Value() uint64 { return c.value.Load() }

func (c *Counter) writeText(w io.Writer, name string) {
	fmt.Fprintf(w, "%s%s %d\n", name, c.labels, c.Value())
}

func (c *Counter) appendJSON(doc []byte, path string) ([]byte, error) {
	doc, err := sjson.SetBytes(doc, path+".labels", map[string]string(c.labels))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(doc, path+".value", c.Value())
}

// Gauge is a value that can go up and down.
type Gauge struct {
	labels Labels
	value  atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.value.Store(v) }
func (g *Gauge) Add(v int64)  { g.value.Add(v) }
func (g *Gauge) Value() int64 { return g.value.Load() }

func (g *Gauge) writeText(w io.Writer, name string) {
	fmt.Fprintf(w, "%s%s %d\n", name, g.labels, g.Value())
}

func (g *Gauge) appendJSON(doc []byte, path string) ([]byte, error) {
	doc, err := sjson.SetBytes(doc, path+".labels", map[string]string(g.labels))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(doc, path+".value", g.Value())
}

// DurationBuckets are upper bounds in seconds for load and lookup times.
var DurationBuckets = []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// Histogram tracks the distribution of values.
type Histogram struct {
	labels  Labels
	buckets []float64

	mu     sync.Mutex
	counts []uint64 // per bucket, not cumulative; last is +Inf
	sum    float64
	count  uint64
}

func newHistogram(labels Labels, buckets []float64) *Histogram {
	if buckets == nil {
		buckets = DurationBuckets
	}
	sorted := append([]float64(nil), buckets...)
	sort.Float64s(sorted)
	return &Histogram{
		labels:  labels,
		buckets: sorted,
		counts:  make([]uint64, len(sorted)+1),
	}
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[sort.SearchFloat64s(h.buckets, v)]++
	h.sum += v
	h.count++
}

// ObserveDuration records d in seconds.
func (h *Histogram) ObserveDuration(d time.Duration) {
	h.Observe(d.Seconds())
}

// Count returns the number of observations.
func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Sum returns the sum of observations.
func (h *Histogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

// Quantile estimates the q-th quantile (0..1) by linear interpolation
// inside the bucket that holds it.
func (h *Histogram) Quantile(q float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return 0
	}
	target := uint64(math.Ceil(float64(h.count) * q))
	var seen uint64
	for i, n := range h.counts {
		if n == 0 || seen+n < target {
			seen += n
			continue
		}
		if i == len(h.buckets) {
			return h.buckets[len(h.buckets)-1]
		}
		lower := 0.0
		if i > 0 {
			lower = h.buckets[i-1]
		}
		return lower + (h.buckets[i]-lower)*float64(target-seen)/float64(n)
	}
	return h.buckets[len(h.buckets)-1]
}

func (h *Histogram) writeText(w io.Writer, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var cumulative uint64
	for i, le := range h.buckets {
		cumulative += h.counts[i]
		fmt.Fprintf(w, "%s_bucket%s %d\n", name, h.labels.with("le", strconv.FormatFloat(le, 'g', -1, 64)), cumulative)
	}
	fmt.Fprintf(w, "%s_bucket%s %d\n", name, h.labels.with("le", "+Inf"), h.count)
	fmt.Fprintf(w, "%s_sum%s %g\n", name, h.labels, h.sum)
	fmt.Fprintf(w, "%s_count%s %d\n", name, h.labels, h.count)
}

func (h *Histogram) appendJSON(doc []byte, path string) ([]byte, error) {
	h.mu.Lock()
	sum, count := h.sum, h.count
	h.mu.Unlock()

	doc, err := sjson.SetBytes(doc, path+".labels", map[string]string(h.labels))
	if err != nil {
		return nil, err
	}
	if doc, err = sjson.SetBytes(doc, path+".sum", sum); err != nil {
		return nil, err
	}
	if doc, err = sjson.SetBytes(doc, path+".count", count); err != nil {
		return nil, err
	}
	return sjson.SetBytes(doc, path+".p50", h.Quantile(0.5))
}

type family struct {
	name   string
	help   string
	typ    MetricType
	series map[string]series
}

// Registry holds all registered metrics.
type Registry struct {
	namespace string

	mu       sync.RWMutex
	families map[string]*family
}

// NewRegistry creates a registry. Metric names are prefixed with
// namespace and an underscore.
func NewRegistry(namespace string) *Registry {
	return &Registry{namespace: namespace, families: make(map[string]*family)}
}

func (r *Registry) fullName(name string) string {
	if r.namespace == "" {
		return name
	}
	return r.namespace + "_" + name
}

func (r *Registry) lookup(name, help string, typ MetricType, labels Labels, create func() series) series {
	full := r.fullName(name)
	key := labels.String()

	r.mu.RLock()
	f, ok := r.families[full]
	if ok {
		if s, ok := f.series[key]; ok {
			r.mu.RUnlock()
			return s
		}
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok = r.families[full]
	if !ok {
		f = &family{name: full, help: help, typ: typ, series: make(map[string]series)}
		r.families[full] = f
	}
	if f.typ != typ {
		panic(fmt.Sprintf("metrics: %s registered as %s and %s", full, f.typ, typ))
	}
	s, ok := f.series[key]
	if !ok {
		s = create()
		f.series[key] = s
	}
	return s
}

// Counter returns the counter for name and labels, creating it.
func (r *Registry) Counter(name, help string, labels Labels) *Counter {
	return r.lookup(name, help, TypeCounter, labels, func() series {
		return &Counter{labels: labels}
	}).(*Counter)
}

// Gauge returns the gauge for name and labels, creating it.
func (r *Registry) Gauge(name, help string, labels Labels) *Gauge {
	return r.lookup(name, help, TypeGauge, labels, func() series {
		return &Gauge{labels: labels}
	}).(*Gauge)
}

// Histogram returns the histogram for name and labels, creating it. A
// nil buckets slice means DurationBuckets.
func (r *Registry) Histogram(name, help string, labels Labels, buckets []float64) *Histogram {
	return r.lookup(name, help, TypeHistogram, labels, func() series {
		return newHistogram(labels, buckets)
	}).(*Histogram)
}

// sorted returns families and their series in name order.
func (r *Registry) sorted() []*family {
	out := make([]*family, 0, len(r.families))
	for _, f := range r.families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func seriesKeys(f *family) []string {
	keys := make([]string, 0, len(f.series))
	for k := range f.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WritePrometheus writes the text exposition format.
func (r *Registry) WritePrometheus(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.sorted() {
		fmt.Fprintf(w, "# HELP %s %s\n", f.name, f.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", f.name, f.typ)
		for _, k := range seriesKeys(f) {
			f.series[k].writeText(w, f.name)
		}
	}
	return nil
}

// JSON renders every metric as {"name": {"type", "help", "series": [...]}}.
func (r *Registry) JSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc := []byte("{}")
	var err error
	for _, f := range r.sorted() {
		base := strings.ReplaceAll(f.name, ".", `\.`)
		if doc, err = sjson.SetBytes(doc, base+".type", f.typ.String()); err != nil {
			return nil, err
		}
		if doc, err = sjson.SetBytes(doc, base+".help", f.help); err != nil {
			return nil, err
		}
		for i, k := range seriesKeys(f) {
			if doc, err = f.series[k].appendJSON(doc, base+".series."+strconv.Itoa(i)); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

// HTTPHandler serves JSON when the client asks for it and the text
// format otherwise.
func (r *Registry) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.Contains(req.Header.Get("Accept"), "application/json") {
			doc, err := r.JSON()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write(doc)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.WritePrometheus(w)
	})
}
