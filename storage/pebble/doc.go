// Package pebble stores index snapshots in a Pebble database.
//
//	store, err := pebble.NewStorage(pebble.StorageOptions{Path: "/var/cache/fortio/index"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	idx, err := storage.Resolve(ctx, store, "fort.10")
package pebble
