package recordio

import (
	"encoding/binary"

	"github.com/davidvella/fortio/monitoring"
)

const (
	defaultPad        = 4
	defaultBufferSize = 64 * 1024
)

// options defines all configuration options for a Reader.
type options struct {
	pad           int
	order         binary.ByteOrder
	bufferSize    int
	maxRecordSize int64
	logger        monitoring.Logger
	stats         monitoring.Stats
}

// Option is a function that configures a Reader.
type Option func(*options)

// WithPad sets the marker width in bytes. gfortran writes 4 byte markers
// unless built with -frecord-marker=8.
func WithPad(pad int) Option {
	return func(o *options) {
		o.pad = pad
	}
}

// WithByteOrder sets the byte order of markers and decoded values.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		o.order = order
	}
}

// WithBufferSize sets the read buffer size.
func WithBufferSize(size int) Option {
	return func(o *options) {
		o.bufferSize = size
	}
}

// WithMaxRecordSize rejects records whose marker announces more than size
// payload bytes. Zero disables the limit.
func WithMaxRecordSize(size int64) Option {
	return func(o *options) {
		o.maxRecordSize = size
	}
}

// WithLogger sets the logger used for framing errors and end of stream.
func WithLogger(l monitoring.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithStats sets the collector for read counts and errors.
func WithStats(s monitoring.Stats) Option {
	return func(o *options) {
		o.stats = s
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		pad:        defaultPad,
		order:      binary.NativeEndian,
		bufferSize: defaultBufferSize,
		logger:     monitoring.NopLogger,
		stats:      monitoring.NopStats,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.order == nil {
		o.order = binary.NativeEndian
	}
	if o.bufferSize <= 0 {
		o.bufferSize = defaultBufferSize
	}
	if o.logger == nil {
		o.logger = monitoring.NopLogger
	}
	if o.stats == nil {
		o.stats = monitoring.NopStats
	}
	return o
}
