// Package pebblestore owns the on-disk Pebble instance behind the party-search
// store. It applies the configured fsync policy to every batch commit, exposes
// snapshots for consistent full scans, and reports read and commit latency
// through an optional MetricsHook.
//
// Partition writes go through a single batch:
//
//	b := db.NewBatch()
//	defer b.Close()
//	_ = b.Delete(oldRow, nil)
//	_ = b.Set(newRow, encoded, nil)
//	_ = b.Set(marker, markerValue, nil)
//	if err := db.CommitBatch(ctx, b); err != nil {
//		return err
//	}
package pebblestore
