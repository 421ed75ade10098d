package recordio

import (
	"bufio"
	"io"
)

// bufferedReader wraps a stream in a bufio.Reader and keeps the logical
// offset of the next unread byte, which differs from the position of the
// underlying stream by whatever is buffered.
type bufferedReader struct {
	reader *bufio.Reader
	src    io.Reader
	offset int64
}

func newBufferedReader(r io.Reader, size int) *bufferedReader {
	return &bufferedReader{
		reader: bufio.NewReaderSize(r, size),
		src:    r,
	}
}

func (b *bufferedReader) Read(p []byte) (n int, err error) {
	n, err = b.reader.Read(p)
	b.offset += int64(n)
	return n, err
}

func (b *bufferedReader) Seek(offset int64, whence int) (int64, error) {
	seeker, ok := b.src.(io.Seeker)
	if !ok {
		return b.offset, ErrNotSeekable
	}

	// The source is ahead of the logical offset by the buffered bytes.
	if whence == io.SeekCurrent {
		offset += b.offset
		whence = io.SeekStart
	}

	pos, err := seeker.Seek(offset, whence)
	if err != nil {
		return b.offset, err
	}

	b.reader.Reset(b.src)
	b.offset = pos
	return pos, nil
}
