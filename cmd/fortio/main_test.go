package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davidvella/fortio/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fort.10")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func frame(payloads ...[]byte) []byte {
	var buf bytes.Buffer
	for _, p := range payloads {
		binary.Write(&buf, binary.NativeEndian, int32(len(p)))
		buf.Write(p)
		binary.Write(&buf, binary.NativeEndian, int32(len(p)))
	}
	return buf.Bytes()
}

func TestRun_Records(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		args     func(path string) []string
		wantOut  string
		wantCode int
	}{
		{
			name: "three records",
			data: frame(make([]byte, 4), []byte{}, make([]byte, 16)),
			args: func(path string) []string {
				return []string{"--records", path}
			},
			wantOut:  "(4, 0, 16)\n",
			wantCode: exitOK,
		},
		{
			name: "single record",
			data: frame([]byte("abc")),
			args: func(path string) []string {
				return []string{"-records", path}
			},
			wantOut:  "(3,)\n",
			wantCode: exitOK,
		},
		{
			name: "empty file",
			data: nil,
			args: func(path string) []string {
				return []string{"--records", path}
			},
			wantOut:  "()\n",
			wantCode: exitOK,
		},
		{
			name: "flag after filename",
			data: frame([]byte("ab"), []byte("cd")),
			args: func(path string) []string {
				return []string{path, "--records"}
			},
			wantOut:  "(2, 2)\n",
			wantCode: exitOK,
		},
		{
			name: "without flag prints nothing",
			data: frame([]byte("abc")),
			args: func(path string) []string {
				return []string{path}
			},
			wantCode: exitOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.data)
			var stdout, stderr bytes.Buffer

			code := run(tt.args(path), &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantOut, stdout.String())
			assert.Empty(t, stderr.String())
		})
	}
}

func TestRun_Errors(t *testing.T) {
	truncated := writeFile(t, append(frame([]byte("abc")), 9, 0, 0, 0, 'x'))

	tests := []struct {
		name      string
		args      []string
		wantCode  int
		wantEvent string
	}{
		{
			name:      "missing file",
			args:      []string{"--records", filepath.Join(t.TempDir(), "missing")},
			wantCode:  exitError,
			wantEvent: "records_failed",
		},
		{
			name:      "truncated file",
			args:      []string{"--records", truncated},
			wantCode:  exitError,
			wantEvent: "records_failed",
		},
		{
			name:     "no filename",
			args:     []string{"--records"},
			wantCode: exitUsage,
		},
		{
			name:     "two filenames",
			args:     []string{"--records", "a", "b"},
			wantCode: exitUsage,
		},
		{
			name:     "unknown flag",
			args:     []string{"--pad", "8", "a"},
			wantCode: exitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, stdout.String())
			if tt.wantEvent == "" {
				assert.NotEmpty(t, stderr.String())
				return
			}

			lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
			var last monitoring.LogEntry
			require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
			assert.Equal(t, tt.wantEvent, last.EventType)
			assert.Equal(t, "ERROR", last.Level)
			assert.Equal(t, "fortio", last.Component)
		})
	}
}

func TestRun_TruncatedLogsFramingError(t *testing.T) {
	path := writeFile(t, append(frame([]byte("abc")), 9, 0))
	var stdout, stderr bytes.Buffer

	code := run([]string{"--records", path}, &stdout, &stderr)
	assert.Equal(t, exitError, code)

	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	require.Len(t, lines, 2)

	var first monitoring.LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "framing_error", first.EventType)
	assert.Equal(t, 11.0, first.Details["offset"])
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitOK, run([]string{"-h"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: fortio")
}

func TestFormatTuple(t *testing.T) {
	assert.Equal(t, "()", formatTuple(nil))
	assert.Equal(t, "(7,)", formatTuple([]int{7}))
	assert.Equal(t, "(4, 0, 16)", formatTuple([]int{4, 0, 16}))
}
