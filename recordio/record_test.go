package recordio_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/davidvella/fortio/recordio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(order binary.ByteOrder, values ...any) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		if err := binary.Write(&buf, order, v); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

func TestDecode_Int32(t *testing.T) {
	rec := recordio.NewRecord(encode(binary.LittleEndian, []int32{1, -2, 3}), binary.LittleEndian)

	got, err := recordio.Decode[int32](rec, 3)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, -2, 3}, got)
	assert.Equal(t, 12, rec.Offset())
	assert.Equal(t, 0, rec.Remaining())
}

func TestRecord_ReadFormats(t *testing.T) {
	tests := []struct {
		name   string
		order  binary.ByteOrder
		data   []byte
		n      int
		format recordio.Format
		want   []any
	}{
		{
			name:   "int8",
			data:   []byte{0xff, 0x01},
			n:      2,
			format: recordio.Int8,
			want:   []any{int8(-1), int8(1)},
		},
		{
			name:   "char",
			data:   []byte("ab"),
			n:      2,
			format: recordio.Char,
			want:   []any{byte('a'), byte('b')},
		},
		{
			name:   "bool",
			data:   []byte{1, 0},
			n:      2,
			format: recordio.Bool,
			want:   []any{true, false},
		},
		{
			name:   "int16 big endian",
			order:  binary.BigEndian,
			data:   []byte{0xff, 0xfe},
			n:      1,
			format: recordio.Int16,
			want:   []any{int16(-2)},
		},
		{
			name:   "uint32 little endian",
			order:  binary.LittleEndian,
			data:   []byte{1, 0, 0, 0, 0, 0, 0, 0x80},
			n:      2,
			format: recordio.Uint32,
			want:   []any{uint32(1), uint32(0x80000000)},
		},
		{
			name:   "int64",
			order:  binary.LittleEndian,
			data:   encode(binary.LittleEndian, int64(-1<<40)),
			n:      1,
			format: recordio.Int64,
			want:   []any{int64(-1 << 40)},
		},
		{
			name:   "float32",
			order:  binary.LittleEndian,
			data:   encode(binary.LittleEndian, []float32{1.5, -0.25}),
			n:      2,
			format: recordio.Float32,
			want:   []any{float32(1.5), float32(-0.25)},
		},
		{
			name:   "float64 big endian",
			order:  binary.BigEndian,
			data:   encode(binary.BigEndian, []float64{math.Pi, 6.02e23}),
			n:      2,
			format: recordio.Float64,
			want:   []any{math.Pi, 6.02e23},
		},
		{
			name:   "zero count",
			data:   []byte{1, 2, 3},
			n:      0,
			format: recordio.Int32,
			want:   []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recordio.NewRecord(tt.data, tt.order)

			got, err := rec.Read(tt.n, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.n*tt.format.Size(), rec.Offset())
		})
	}
}

func TestRecord_SequentialReads(t *testing.T) {
	order := binary.LittleEndian
	data := encode(order, int32(3), []float64{1, 2, 3})
	data = append(data, []byte("NAME    ")...)
	rec := recordio.NewRecord(data, order)

	n, err := recordio.Decode[int32](rec, 1)
	require.NoError(t, err)

	values, err := recordio.Decode[float64](rec, int(n[0]))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, values)

	name, err := rec.ReadString(8)
	require.NoError(t, err)
	assert.Equal(t, "NAME    ", name)
	assert.Equal(t, rec.Len(), rec.Offset())
}

func TestRecord_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		read func(rec *recordio.Record) error
	}{
		{
			name: "decode past end",
			read: func(rec *recordio.Record) error {
				_, err := recordio.Decode[int32](rec, 2)
				return err
			},
		},
		{
			name: "negative count",
			read: func(rec *recordio.Record) error {
				_, err := rec.Read(-1, recordio.Int8)
				return err
			},
		},
		{
			name: "bytes past end",
			read: func(rec *recordio.Record) error {
				_, err := rec.ReadBytes(5)
				return err
			},
		},
		{
			name: "string past end",
			read: func(rec *recordio.Record) error {
				_, err := rec.ReadString(5)
				return err
			},
		},
		{
			name: "skip past end",
			read: func(rec *recordio.Record) error {
				return rec.Skip(5)
			},
		},
		{
			name: "huge count",
			read: func(rec *recordio.Record) error {
				_, err := recordio.Decode[float64](rec, math.MaxInt/4)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recordio.NewRecord([]byte{1, 2, 3, 4, 5, 6}, binary.LittleEndian)
			require.NoError(t, rec.Skip(2))

			err := tt.read(rec)
			assert.ErrorIs(t, err, recordio.ErrOutOfRange)
			assert.Equal(t, 2, rec.Offset())
		})
	}
}

func TestRecord_UnknownFormat(t *testing.T) {
	rec := recordio.NewRecord([]byte{1, 2, 3, 4}, nil)

	_, err := rec.Read(1, recordio.Invalid)
	assert.ErrorIs(t, err, recordio.ErrUnknownFormat)

	_, err = rec.Read(1, recordio.Format(200))
	assert.ErrorIs(t, err, recordio.ErrUnknownFormat)
	assert.Equal(t, 0, rec.Offset())
}

func TestRecord_BytesIsACopy(t *testing.T) {
	rec := recordio.NewRecord([]byte("abc"), nil)

	b := rec.Bytes()
	b[0] = 'z'
	assert.Equal(t, []byte("abc"), rec.Bytes())

	read, err := rec.ReadBytes(2)
	require.NoError(t, err)
	read[0] = 'z'
	assert.Equal(t, []byte("abc"), rec.Bytes())
}

func TestRecord_Contains(t *testing.T) {
	rec := recordio.NewRecord([]byte("header\x00data"), nil)

	assert.True(t, rec.Contains([]byte("der\x00d")))
	assert.True(t, rec.Contains(nil))
	assert.False(t, rec.Contains([]byte("missing")))
}

type celsius float32

func TestDecode_NamedType(t *testing.T) {
	rec := recordio.NewRecord(encode(binary.LittleEndian, float32(21.5)), binary.LittleEndian)

	got, err := recordio.Decode[celsius](rec, 1)
	require.NoError(t, err)
	assert.Equal(t, []celsius{21.5}, got)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		code    string
		want    recordio.Format
		size    int
		wantErr bool
	}{
		{code: "b", want: recordio.Int8, size: 1},
		{code: "B", want: recordio.Uint8, size: 1},
		{code: "c", want: recordio.Char, size: 1},
		{code: "?", want: recordio.Bool, size: 1},
		{code: "h", want: recordio.Int16, size: 2},
		{code: "H", want: recordio.Uint16, size: 2},
		{code: "i", want: recordio.Int32, size: 4},
		{code: "I", want: recordio.Uint32, size: 4},
		{code: "l", want: recordio.Int32, size: 4},
		{code: "L", want: recordio.Uint32, size: 4},
		{code: "q", want: recordio.Int64, size: 8},
		{code: "Q", want: recordio.Uint64, size: 8},
		{code: "f", want: recordio.Float32, size: 4},
		{code: "d", want: recordio.Float64, size: 8},
		{code: "x", wantErr: true},
		{code: "ii", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := recordio.ParseFormat(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, recordio.ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.size, got.Size())
		})
	}
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "float64", recordio.Float64.String())
	assert.Equal(t, "invalid", recordio.Invalid.String())
	assert.Equal(t, "Format(99)", recordio.Format(99).String())
	assert.Equal(t, 0, recordio.Format(99).Size())
}
