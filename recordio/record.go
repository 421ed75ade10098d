package recordio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Scalar lists the element types Decode can produce.
type Scalar interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 |
		~float32 | ~float64 | ~bool
}

// Record is the payload of one record with a cursor for sequential decoding.
// The payload never changes; the cursor only moves forward. A Record is not
// safe for concurrent decoding.
type Record struct {
	data  []byte
	loc   int
	order binary.ByteOrder
}

// NewRecord wraps data without copying it. The caller must not modify data
// afterwards.
func NewRecord(data []byte, order binary.ByteOrder) *Record {
	if order == nil {
		order = binary.NativeEndian
	}
	return &Record{data: data, order: order}
}

// Len returns the payload length in bytes.
func (r *Record) Len() int {
	return len(r.data)
}

// Offset returns the cursor position.
func (r *Record) Offset() int {
	return r.loc
}

// Remaining returns the number of payload bytes after the cursor.
func (r *Record) Remaining() int {
	return len(r.data) - r.loc
}

// Bytes returns a copy of the whole payload.
func (r *Record) Bytes() []byte {
	return bytes.Clone(r.data)
}

// Contains reports whether pattern occurs anywhere in the payload.
func (r *Record) Contains(pattern []byte) bool {
	return bytes.Contains(r.data, pattern)
}

// Read decodes n consecutive values of format f starting at the cursor.
func (r *Record) Read(n int, f Format) ([]any, error) {
	switch f {
	case Int8:
		return readAs[int8](r, n)
	case Uint8, Char:
		return readAs[uint8](r, n)
	case Bool:
		return readAs[bool](r, n)
	case Int16:
		return readAs[int16](r, n)
	case Uint16:
		return readAs[uint16](r, n)
	case Int32:
		return readAs[int32](r, n)
	case Uint32:
		return readAs[uint32](r, n)
	case Int64:
		return readAs[int64](r, n)
	case Uint64:
		return readAs[uint64](r, n)
	case Float32:
		return readAs[float32](r, n)
	case Float64:
		return readAs[float64](r, n)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

// Decode reads n consecutive values of type T starting at the cursor and
// advances the cursor past them. If fewer bytes remain than requested the
// cursor does not move and the error wraps ErrOutOfRange.
func Decode[T Scalar](r *Record, n int) ([]T, error) {
	var zero T
	b, err := r.take(n, binary.Size(zero))
	if err != nil {
		return nil, err
	}

	out := make([]T, n)
	if err := binary.Read(bytes.NewReader(b), r.order, out); err != nil {
		return nil, fmt.Errorf("recordio: error decoding %d values: %w", n, err)
	}
	return out, nil
}

// ReadBytes returns a copy of the next n payload bytes.
func (r *Record) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n, 1)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

// ReadString reads n bytes of CHARACTER data.
func (r *Record) ReadString(n int) (string, error) {
	b, err := r.take(n, 1)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip advances the cursor by n bytes.
func (r *Record) Skip(n int) error {
	_, err := r.take(n, 1)
	return err
}

func (r *Record) take(n, size int) ([]byte, error) {
	remaining := len(r.data) - r.loc
	if n < 0 || size <= 0 || n > remaining/size {
		return nil, fmt.Errorf("%w: %d x %d bytes at offset %d, %d remaining",
			ErrOutOfRange, n, size, r.loc, remaining)
	}

	width := n * size
	b := r.data[r.loc : r.loc+width]
	r.loc += width
	return b, nil
}

func readAs[T Scalar](r *Record, n int) ([]any, error) {
	values, err := Decode[T](r, n)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out, nil
}
