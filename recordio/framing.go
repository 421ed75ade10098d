package recordio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Framing describes how record markers are encoded.
type Framing struct {
	Pad           int
	Order         binary.ByteOrder
	MaxRecordSize int64
}

// NewFraming resolves the marker layout from reader options.
func NewFraming(opts ...Option) (Framing, error) {
	return framingFrom(buildOptions(opts))
}

func framingFrom(o options) (Framing, error) {
	if o.pad != 4 && o.pad != 8 {
		return Framing{}, fmt.Errorf("%w: %d", ErrInvalidPad, o.pad)
	}
	return Framing{Pad: o.pad, Order: o.order, MaxRecordSize: o.maxRecordSize}, nil
}

// Length decodes a marker into a payload length and checks it against the
// framing limits.
func (f Framing) Length(marker []byte) (int64, error) {
	if len(marker) != f.Pad {
		return 0, fmt.Errorf("%w: got %d bytes, want %d", ErrTruncatedMarker, len(marker), f.Pad)
	}

	var size int64
	switch f.Pad {
	case 4:
		size = int64(int32(f.Order.Uint32(marker)))
	case 8:
		size = int64(f.Order.Uint64(marker))
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidPad, f.Pad)
	}

	if size < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeLength, size)
	}
	if (f.MaxRecordSize > 0 && size > f.MaxRecordSize) || size > math.MaxInt {
		return 0, fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, size)
	}
	return size, nil
}

// RecordSize returns the on-disk size of a record with the given payload length.
func (f Framing) RecordSize(length int64) int64 {
	return length + 2*int64(f.Pad)
}
