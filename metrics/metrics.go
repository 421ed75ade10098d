// Package metrics keeps in-process counters and gauges for reader activity.
package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType represents different types of metrics
type MetricType int

const (
	Counter MetricType = iota
	Gauge
)

func (t MetricType) String() string {
	switch t {
	case Counter:
		return "counter"
	case Gauge:
		return "gauge"
	default:
		return "unknown"
	}
}

// Metric describes a registered metric.
type Metric struct {
	Name        string
	Type        MetricType
	Description string
}

// MetricValue is the current value of one labelled series.
type MetricValue struct {
	Value     float64
	Timestamp time.Time
	Labels    map[string]string
}

// Registry stores and manages metrics. Counters accumulate per label set,
// gauges keep the last value per label set. Values for unregistered names or
// mismatched types are dropped.
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
	values  map[string]map[string]*MetricValue
}

func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]Metric),
		values:  make(map[string]map[string]*MetricValue),
	}
}

func (r *Registry) Register(metric Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics[metric.Name] = metric
}

func (r *Registry) Add(name string, delta float64, labels map[string]string) {
	r.record(name, Counter, labels, func(v *MetricValue) {
		v.Value += delta
	})
}

func (r *Registry) Set(name string, value float64, labels map[string]string) {
	r.record(name, Gauge, labels, func(v *MetricValue) {
		v.Value = value
	})
}

func (r *Registry) record(name string, typ MetricType, labels map[string]string, update func(*MetricValue)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	metric, ok := r.metrics[name]
	if !ok || metric.Type != typ {
		return
	}

	series, ok := r.values[name]
	if !ok {
		series = make(map[string]*MetricValue)
		r.values[name] = series
	}

	key := labelKey(labels)
	v, ok := series[key]
	if !ok {
		v = &MetricValue{Labels: copyLabels(labels)}
		series[key] = v
	}
	update(v)
	v.Timestamp = time.Now()
}

// Value returns the value of the series with exactly the given labels.
func (r *Registry) Value(name string, labels map[string]string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[name][labelKey(labels)]
	if !ok {
		return 0, false
	}
	return v.Value, true
}

// Total sums every series of a metric.
func (r *Registry) Total(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, v := range r.values[name] {
		total += v.Value
	}
	return total
}

func (r *Registry) GetMetrics() map[string][]MetricValue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string][]MetricValue, len(r.values))
	for name, series := range r.values {
		values := make([]MetricValue, 0, len(series))
		for _, v := range series {
			cp := *v
			cp.Labels = copyLabels(v.Labels)
			values = append(values, cp)
		}
		sort.Slice(values, func(i, j int) bool {
			return labelKey(values[i].Labels) < labelKey(values[j].Labels)
		})
		result[name] = values
	}
	return result
}

func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
		sb.WriteByte(0)
	}
	return sb.String()
}

func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	cp := make(map[string]string, len(labels))
	for k, v := range labels {
		cp[k] = v
	}
	return cp
}
