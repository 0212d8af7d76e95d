// Package snapshot holds the process-wide read cache of all party search
// partitions.
//
// Reads call Get, which returns the present Snapshot or waits on the single
// in-flight load. The write path calls Refresh after a successful store
// commit and does not report success until the new Snapshot is installed.
//
//	cache := snapshot.NewCache(snapshot.FromStore(store), snapshot.Options{Logger: logger})
//	snap, err := cache.Get(ctx)
//	agg, ok := snap.Partition(key)
package snapshot
