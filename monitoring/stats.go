package monitoring

import (
	"github.com/davidvella/fortio/metrics"
)

const (
	RecordsRead = "records_read_total"
	BytesRead   = "bytes_read_total"
	Errors      = "errors_total"
)

type Stats interface {
	RecordRead(payloadBytes int)
	RecordError(kind string)
}

// stats collects reader statistics into a metrics registry.
type stats struct {
	registry *metrics.Registry
}

func NewStats(registry *metrics.Registry) Stats {
	registry.Register(metrics.Metric{
		Name:        RecordsRead,
		Type:        metrics.Counter,
		Description: "Total number of records read",
	})

	registry.Register(metrics.Metric{
		Name:        BytesRead,
		Type:        metrics.Counter,
		Description: "Total payload bytes read",
	})

	registry.Register(metrics.Metric{
		Name:        Errors,
		Type:        metrics.Counter,
		Description: "Total number of errors by kind",
	})

	return &stats{registry: registry}
}

func (s *stats) RecordRead(payloadBytes int) {
	s.registry.Add(RecordsRead, 1, nil)
	s.registry.Add(BytesRead, float64(payloadBytes), nil)
}

func (s *stats) RecordError(kind string) {
	s.registry.Add(Errors, 1, map[string]string{
		"kind": kind,
	})
}

type nopStats struct{}

func (nopStats) RecordRead(int)     {}
func (nopStats) RecordError(string) {}

// NopStats discards everything.
var NopStats Stats = nopStats{}
