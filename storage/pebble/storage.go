package pebble

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/davidvella/fortio/storage"
	"github.com/vmihailenco/msgpack/v5"
)

var snapshotPrefix = []byte("idx\x00")

// Storage implements storage.Store using Pebble. Values are msgpack encoded
// snapshots keyed by file path.
type Storage struct {
	db *pebble.DB
}

// StorageOptions configures the storage
type StorageOptions struct {
	Path         string
	CacheSize    int64
	MaxOpenFiles int
}

func NewStorage(opts StorageOptions) (*Storage, error) {
	pebbleOpts := &pebble.Options{
		MaxOpenFiles: opts.MaxOpenFiles,
	}
	if opts.CacheSize > 0 {
		cache := pebble.NewCache(opts.CacheSize)
		defer cache.Unref()
		pebbleOpts.Cache = cache
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := pebble.Open(opts.Path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}

	return &Storage{db: db}, nil
}

func (p *Storage) Close() error {
	return p.db.Close()
}

func snapshotKey(path string) []byte {
	key := make([]byte, 0, len(snapshotPrefix)+len(path))
	key = append(key, snapshotPrefix...)
	return append(key, path...)
}

func (p *Storage) Save(_ context.Context, snap storage.Snapshot) error {
	value, err := msgpack.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	return p.db.Set(snapshotKey(snap.Path), value, pebble.Sync)
}

func (p *Storage) Load(_ context.Context, path string) (storage.Snapshot, error) {
	value, closer, err := p.db.Get(snapshotKey(path))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return storage.Snapshot{}, storage.ErrNotFound
		}
		return storage.Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	defer closer.Close()

	var snap storage.Snapshot
	if err := msgpack.Unmarshal(value, &snap); err != nil {
		return storage.Snapshot{}, fmt.Errorf("failed to deserialize snapshot: %w", err)
	}
	return snap, nil
}

func (p *Storage) Delete(_ context.Context, path string) error {
	return p.db.Delete(snapshotKey(path), pebble.Sync)
}

func (p *Storage) List(_ context.Context) ([]string, error) {
	upper := append([]byte(nil), snapshotPrefix...)
	upper[len(upper)-1]++

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: snapshotPrefix,
		UpperBound: upper,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over snapshots: %w", err)
	}
	defer iter.Close()

	var paths []string
	for iter.First(); iter.Valid(); iter.Next() {
		paths = append(paths, string(iter.Key()[len(snapshotPrefix):]))
	}
	return paths, iter.Error()
}
