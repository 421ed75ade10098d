// Package storage persists record indexes so large files only need to be
// scanned once.
package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/davidvella/fortio/index"
	"github.com/davidvella/fortio/recordio"
)

var ErrNotFound = errors.New("storage: snapshot not found")

// Snapshot is the persisted index of one file together with what is needed
// to tell whether the file has changed since.
type Snapshot struct {
	Path    string        `msgpack:"path"`
	Size    int64         `msgpack:"size"`
	ModTime time.Time     `msgpack:"mtime"`
	Pad     int           `msgpack:"pad"`
	Order   string        `msgpack:"order"`
	Entries []index.Entry `msgpack:"entries"`
}

// Store defines the interface for persistent snapshot storage.
type Store interface {
	// Save stores a snapshot, replacing any snapshot with the same path.
	Save(ctx context.Context, snap Snapshot) error

	// Load returns the snapshot stored for path or ErrNotFound.
	Load(ctx context.Context, path string) (Snapshot, error)

	// Delete removes the snapshot for path. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error

	// List returns the paths of all stored snapshots in sorted order.
	List(ctx context.Context) ([]string, error)

	Close() error
}

// OrderName names a byte order by behaviour, so NativeEndian and the
// explicit order it stands for compare equal.
func OrderName(order binary.ByteOrder) string {
	if order.Uint16([]byte{1, 0}) == 1 {
		return "little"
	}
	return "big"
}

func (s Snapshot) matches(info os.FileInfo, framing recordio.Framing) bool {
	return s.Size == info.Size() &&
		s.ModTime.Equal(info.ModTime()) &&
		s.Pad == framing.Pad &&
		s.Order == OrderName(framing.Order)
}

// Resolve returns the index of the file at path. A stored snapshot is used
// when the file size, modification time and framing still match; otherwise
// the file is scanned and the new snapshot saved.
func Resolve(ctx context.Context, store Store, path string, opts ...recordio.Option) (*index.Index, error) {
	framing, err := recordio.NewFraming(opts...)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to resolve path: %w", err)
	}

	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("storage: failed to stat file: %w", err)
	}

	snap, err := store.Load(ctx, abs)
	switch {
	case err == nil && snap.matches(info, framing):
		if idx, err := index.FromEntries(framing, snap.Size, snap.Entries); err == nil {
			return idx, nil
		}
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("storage: failed to load snapshot: %w", err)
	}

	idx, err := index.Build(ctx, file, info.Size(), opts...)
	if err != nil {
		return nil, err
	}

	err = store.Save(ctx, Snapshot{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Pad:     framing.Pad,
		Order:   OrderName(framing.Order),
		Entries: idx.Entries(),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to save snapshot: %w", err)
	}

	return idx, nil
}
