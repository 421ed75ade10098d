package recordio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/davidvella/fortio/monitoring"
)

// Common errors that can be returned by Reader and Record operations.
var (
	ErrTruncatedMarker  = errors.New("recordio: truncated record marker")
	ErrTruncatedPayload = errors.New("recordio: truncated record payload")
	ErrMarkerMismatch   = errors.New("recordio: leading and trailing record markers differ")
	ErrNegativeLength   = errors.New("recordio: negative record length")
	ErrRecordTooLarge   = errors.New("recordio: record exceeds maximum size")
	ErrOutOfRange       = errors.New("recordio: read past end of record")
	ErrUnknownFormat    = errors.New("recordio: unknown element format")
	ErrInvalidLabel     = errors.New("recordio: label must be a string or []byte")
	ErrInvalidPad       = errors.New("recordio: marker width must be 4 or 8 bytes")
	ErrNoRecord         = errors.New("recordio: no record has been read")
	ErrNotSeekable      = errors.New("recordio: underlying stream does not support seeking")
	ErrClosed           = errors.New("recordio: reader already closed")
)

// State is the position of a Reader in its lifecycle.
type State int

const (
	StateOpen State = iota
	StateExhausted
	StateErrored
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateExhausted:
		return "exhausted"
	case StateErrored:
		return "errored"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Reader iterates over the records of a Fortran unformatted sequential
// stream. It is not safe for concurrent use.
type Reader struct {
	buf     *bufferedReader
	closer  io.Closer
	name    string
	framing Framing
	opts    options
	state   State
	err     error
	rec     *Record
	count   int
}

// NewReader reads records from r. The Reader does not close r.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	if r == nil {
		return nil, errors.New("recordio: reader cannot be nil")
	}

	o := buildOptions(opts)
	framing, err := framingFrom(o)
	if err != nil {
		return nil, err
	}

	return &Reader{
		buf:     newBufferedReader(r, o.bufferSize),
		framing: framing,
		opts:    o,
	}, nil
}

// Open opens the named file for reading. The file is closed by Close.
func Open(path string, opts ...Option) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recordio: failed to open file: %w", err)
	}

	reader, err := NewReader(file, opts...)
	if err != nil {
		file.Close()
		return nil, err
	}

	reader.closer = file
	reader.name = path
	return reader, nil
}

// Next reads the next record. It returns io.EOF, unwrapped, when the stream
// ends cleanly on a record boundary. Any other error leaves the Reader in
// StateErrored and is returned again by later calls.
func (r *Reader) Next() (*Record, error) {
	switch r.state {
	case StateClosed:
		return nil, ErrClosed
	case StateExhausted:
		return nil, io.EOF
	case StateErrored:
		return nil, r.err
	}

	start := r.buf.offset
	rec, err := r.readRecord(start)
	if err == io.EOF {
		r.state = StateExhausted
		r.opts.logger.Log(monitoring.DEBUG, "end_of_stream", "no more records", map[string]any{
			"name":    r.name,
			"offset":  start,
			"records": r.count,
		})
		return nil, io.EOF
	}
	if err != nil {
		r.state = StateErrored
		r.err = err
		r.opts.stats.RecordError(errorKind(err))
		r.opts.logger.Log(monitoring.ERROR, "framing_error", err.Error(), map[string]any{
			"name":   r.name,
			"offset": start,
			"record": r.count,
		})
		return nil, err
	}

	r.rec = rec
	r.count++
	r.opts.stats.RecordRead(rec.Len())
	return rec, nil
}

func (r *Reader) readRecord(start int64) (*Record, error) {
	pad := r.framing.Pad

	head := make([]byte, pad)
	if _, err := io.ReadFull(r.buf, head); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, readError(err, "leading marker", start)
	}

	size, err := r.framing.Length(head)
	if err != nil {
		return nil, fmt.Errorf("%w at offset %d", err, start)
	}

	payload, n, err := r.readPayload(size)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w at offset %d: got %d of %d bytes",
				ErrTruncatedPayload, start, n, size)
		}
		return nil, fmt.Errorf("recordio: error reading payload at offset %d: %w", start, err)
	}

	tail := make([]byte, pad)
	if _, err := io.ReadFull(r.buf, tail); err != nil {
		return nil, readError(err, "trailing marker", start)
	}

	if !bytes.Equal(head, tail) {
		return nil, fmt.Errorf("%w at offset %d: leading %x, trailing %x",
			ErrMarkerMismatch, start, head, tail)
	}

	return NewRecord(payload, r.framing.Order), nil
}

// readPayload reads size bytes. Payloads larger than the read buffer are
// accumulated in steps, so memory follows the bytes actually present rather
// than the announced size.
func (r *Reader) readPayload(size int64) ([]byte, int64, error) {
	if size <= int64(r.opts.bufferSize) {
		b := make([]byte, size)
		n, err := io.ReadFull(r.buf, b)
		return b, int64(n), err
	}

	var buf bytes.Buffer
	buf.Grow(r.opts.bufferSize)
	n, err := io.CopyN(&buf, r.buf, size)
	return buf.Bytes(), n, err
}

func readError(err error, what string, start int64) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %s of record at offset %d", ErrTruncatedMarker, what, start)
	}
	return fmt.Errorf("recordio: error reading %s at offset %d: %w", what, start, err)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrTruncatedMarker):
		return "truncated_marker"
	case errors.Is(err, ErrTruncatedPayload):
		return "truncated_payload"
	case errors.Is(err, ErrMarkerMismatch):
		return "marker_mismatch"
	case errors.Is(err, ErrNegativeLength):
		return "negative_length"
	case errors.Is(err, ErrRecordTooLarge):
		return "record_too_large"
	default:
		return "io"
	}
}

// Records returns an iterator over the remaining records. A framing or I/O
// error is yielded once with a nil record and ends the iteration; a clean
// end of stream ends it silently.
func (r *Reader) Records() iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		for {
			rec, err := r.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Current returns the most recently read record, or nil.
func (r *Reader) Current() *Record {
	return r.rec
}

// RecordLen returns the payload length of the most recently read record.
func (r *Reader) RecordLen() (int, error) {
	if r.rec == nil {
		return 0, ErrNoRecord
	}
	return r.rec.Len(), nil
}

// Read decodes n values of format f from the current record, continuing
// from that record's cursor.
func (r *Reader) Read(n int, f Format) ([]any, error) {
	if r.rec == nil {
		return nil, ErrNoRecord
	}
	return r.rec.Read(n, f)
}

// Count returns the number of records read so far.
func (r *Reader) Count() int {
	return r.count
}

// State returns the lifecycle state of the Reader.
func (r *Reader) State() State {
	return r.state
}

// Framing returns the marker layout used by the Reader.
func (r *Reader) Framing() Framing {
	return r.framing
}

// Name returns the path given to Open, or "" for NewReader.
func (r *Reader) Name() string {
	return r.name
}

// Tell returns the offset of the next unread byte.
func (r *Reader) Tell() int64 {
	return r.buf.offset
}

// Seek repositions the underlying stream, which must implement io.Seeker.
// The offset should be a record boundary. A successful Seek returns the
// Reader to StateOpen and forgets the current record.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.state == StateClosed {
		return 0, ErrClosed
	}

	pos, err := r.buf.Seek(offset, whence)
	if err != nil {
		return pos, fmt.Errorf("recordio: seek failed: %w", err)
	}

	r.state = StateOpen
	r.err = nil
	r.rec = nil
	return pos, nil
}

// Close releases the file opened by Open. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.state == StateClosed {
		return nil
	}

	r.state = StateClosed
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
