package recordio

import (
	"fmt"
)

// Format is a fixed-width scalar encoding used to decode record payloads.
type Format uint8

const (
	Invalid Format = iota
	Int8
	Uint8
	Char
	Bool
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

var formatInfo = [...]struct {
	name string
	size int
}{
	Invalid: {"invalid", 0},
	Int8:    {"int8", 1},
	Uint8:   {"uint8", 1},
	Char:    {"char", 1},
	Bool:    {"bool", 1},
	Int16:   {"int16", 2},
	Uint16:  {"uint16", 2},
	Int32:   {"int32", 4},
	Uint32:  {"uint32", 4},
	Int64:   {"int64", 8},
	Uint64:  {"uint64", 8},
	Float32: {"float32", 4},
	Float64: {"float64", 8},
}

// formatCodes follows the struct module letters with standard sizes.
var formatCodes = map[string]Format{
	"b": Int8,
	"B": Uint8,
	"c": Char,
	"?": Bool,
	"h": Int16,
	"H": Uint16,
	"i": Int32,
	"I": Uint32,
	"l": Int32,
	"L": Uint32,
	"q": Int64,
	"Q": Uint64,
	"f": Float32,
	"d": Float64,
}

// Size returns the encoded width in bytes, or 0 for an invalid format.
func (f Format) Size() int {
	if !f.valid() {
		return 0
	}
	return formatInfo[f].size
}

func (f Format) String() string {
	if int(f) >= len(formatInfo) {
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
	return formatInfo[f].name
}

func (f Format) valid() bool {
	return f > Invalid && int(f) < len(formatInfo)
}

// ParseFormat maps a single struct-style letter such as "i" or "d" to a Format.
func ParseFormat(code string) (Format, error) {
	f, ok := formatCodes[code]
	if !ok {
		return Invalid, fmt.Errorf("%w: %q", ErrUnknownFormat, code)
	}
	return f, nil
}
