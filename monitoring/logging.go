// Package monitoring provides JSON line logging and reader statistics.
package monitoring

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Component string         `json:"component"`
	EventType string         `json:"event_type"`
	Details   map[string]any `json:"details,omitempty"`
}

type Logger interface {
	Log(level LogLevel, eventType string, message string, details map[string]any)
}

// JSONLogger writes one JSON object per line. Entries below the minimum level
// are discarded.
type JSONLogger struct {
	mu        sync.Mutex
	enc       *json.Encoder
	component string
	minLevel  LogLevel
	now       func() time.Time
}

func NewLogger(component string, w io.Writer, minLevel LogLevel) *JSONLogger {
	return &JSONLogger{
		enc:       json.NewEncoder(w),
		component: component,
		minLevel:  minLevel,
		now:       time.Now,
	}
}

func (l *JSONLogger) Log(level LogLevel, eventType string, message string, details map[string]any) {
	if level < l.minLevel {
		return
	}

	entry := LogEntry{
		Timestamp: l.now(),
		Level:     level.String(),
		Message:   message,
		Component: l.component,
		EventType: eventType,
		Details:   details,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	//nolint:errcheck // logging must not fail the caller
	l.enc.Encode(entry)
}

type nopLogger struct{}

func (nopLogger) Log(LogLevel, string, string, map[string]any) {}

// NopLogger discards everything.
var NopLogger Logger = nopLogger{}
