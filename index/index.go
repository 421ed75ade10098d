// Package index maps the records of a Fortran unformatted file to their byte
// offsets so individual records can be read without scanning the whole file.
//
// Build walks the markers only, skipping payloads, and validates every record
// the same way recordio.Reader does. The resulting Index is read-only and
// safe for concurrent use; Record reads through io.ReaderAt so several
// goroutines can decode different records of one file at once.
package index

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/davidvella/fortio/recordio"
	"github.com/google/btree"
)

var (
	ErrRecordNotFound = errors.New("index: record not found")
	ErrInconsistent   = errors.New("index: entries do not describe a contiguous file")
)

const degree = 32

// Entry locates one record. Offset is the position of the leading marker.
type Entry struct {
	Number int   `msgpack:"n"`
	Offset int64 `msgpack:"o"`
	Length int64 `msgpack:"l"`
}

// Index holds the entries of one file ordered by number and by offset.
type Index struct {
	framing  recordio.Framing
	size     int64
	byNumber *btree.BTreeG[Entry]
	byOffset *btree.BTreeG[Entry]
}

func newIndex(framing recordio.Framing, size int64) *Index {
	return &Index{
		framing: framing,
		size:    size,
		byNumber: btree.NewG[Entry](degree, func(a, b Entry) bool {
			return a.Number < b.Number
		}),
		byOffset: btree.NewG[Entry](degree, func(a, b Entry) bool {
			return a.Offset < b.Offset
		}),
	}
}

func (idx *Index) insert(e Entry) {
	idx.byNumber.ReplaceOrInsert(e)
	idx.byOffset.ReplaceOrInsert(e)
}

// Build scans size bytes of r and indexes every record.
func Build(ctx context.Context, r io.ReaderAt, size int64, opts ...recordio.Option) (*Index, error) {
	framing, err := recordio.NewFraming(opts...)
	if err != nil {
		return nil, err
	}

	idx := newIndex(framing, size)
	pad := int64(framing.Pad)
	head := make([]byte, pad)
	tail := make([]byte, pad)

	for offset, n := int64(0), 0; offset < size; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if err := readMarker(r, head, offset, size); err != nil {
			return nil, fmt.Errorf("%w: leading marker of record at offset %d", err, offset)
		}

		length, err := framing.Length(head)
		if err != nil {
			return nil, fmt.Errorf("%w at offset %d", err, offset)
		}

		if length > size-offset-pad {
			return nil, fmt.Errorf("%w at offset %d: got %d of %d bytes",
				recordio.ErrTruncatedPayload, offset, size-offset-pad, length)
		}
		end := offset + pad + length

		if err := readMarker(r, tail, end, size); err != nil {
			return nil, fmt.Errorf("%w: trailing marker of record at offset %d", err, offset)
		}

		if !bytes.Equal(head, tail) {
			return nil, fmt.Errorf("%w at offset %d: leading %x, trailing %x",
				recordio.ErrMarkerMismatch, offset, head, tail)
		}

		idx.insert(Entry{Number: n, Offset: offset, Length: length})
		offset = end + pad
	}

	return idx, nil
}

func readMarker(r io.ReaderAt, b []byte, offset, size int64) error {
	if offset+int64(len(b)) > size {
		return recordio.ErrTruncatedMarker
	}

	section := io.NewSectionReader(r, offset, int64(len(b)))
	if _, err := io.ReadFull(section, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return recordio.ErrTruncatedMarker
		}
		return fmt.Errorf("index: error reading marker: %w", err)
	}
	return nil
}

// BuildFile opens path and indexes the whole file.
func BuildFile(ctx context.Context, path string, opts ...recordio.Option) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("index: failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("index: failed to stat file: %w", err)
	}

	return Build(ctx, file, info.Size(), opts...)
}

// FromEntries rebuilds an Index from previously built entries. The entries
// must be numbered from zero and lie back to back, ending at size.
func FromEntries(framing recordio.Framing, size int64, entries []Entry) (*Index, error) {
	idx := newIndex(framing, size)

	var offset int64
	for i, e := range entries {
		if e.Number != i || e.Offset != offset || e.Length < 0 {
			return nil, fmt.Errorf("%w: entry %d", ErrInconsistent, i)
		}
		idx.insert(e)
		offset += framing.RecordSize(e.Length)
	}

	if offset != size {
		return nil, fmt.Errorf("%w: entries cover %d of %d bytes", ErrInconsistent, offset, size)
	}
	return idx, nil
}

// Len returns the number of records.
func (idx *Index) Len() int {
	return idx.byNumber.Len()
}

// Size returns the indexed file size in bytes.
func (idx *Index) Size() int64 {
	return idx.size
}

// Framing returns the marker layout the Index was built with.
func (idx *Index) Framing() recordio.Framing {
	return idx.framing
}

// Entry returns the n-th record, counting from zero.
func (idx *Index) Entry(n int) (Entry, bool) {
	return idx.byNumber.Get(Entry{Number: n})
}

// Locate returns the record whose bytes, markers included, cover offset.
func (idx *Index) Locate(offset int64) (Entry, bool) {
	var found Entry
	var ok bool
	idx.byOffset.DescendLessOrEqual(Entry{Offset: offset}, func(e Entry) bool {
		found, ok = e, true
		return false
	})

	if !ok || offset >= found.Offset+idx.framing.RecordSize(found.Length) {
		return Entry{}, false
	}
	return found, true
}

// All iterates the entries in file order.
func (idx *Index) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		idx.byNumber.Ascend(func(e Entry) bool {
			return yield(e)
		})
	}
}

// Entries returns every entry in file order.
func (idx *Index) Entries() []Entry {
	entries := make([]Entry, 0, idx.Len())
	for e := range idx.All() {
		entries = append(entries, e)
	}
	return entries
}

// Lengths returns the payload length of every record in file order.
func (idx *Index) Lengths() []int {
	lengths := make([]int, 0, idx.Len())
	for e := range idx.All() {
		lengths = append(lengths, int(e.Length))
	}
	return lengths
}

// Record reads the payload of the n-th record from r, which must be the
// file the Index was built from.
func (idx *Index) Record(r io.ReaderAt, n int) (*recordio.Record, error) {
	e, ok := idx.Entry(n)
	if !ok {
		return nil, fmt.Errorf("%w: %d of %d", ErrRecordNotFound, n, idx.Len())
	}

	payload := make([]byte, e.Length)
	section := io.NewSectionReader(r, e.Offset+int64(idx.framing.Pad), e.Length)
	if _, err := io.ReadFull(section, payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w at offset %d", recordio.ErrTruncatedPayload, e.Offset)
		}
		return nil, fmt.Errorf("index: error reading record %d: %w", n, err)
	}

	return recordio.NewRecord(payload, idx.framing.Order), nil
}
