// Package runtime wires storage, config, and the shared party search
// components into a single server instance. Services receive the Runtime and
// pull the store, cache, hub and catalog from it; nothing is global.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	snap, _ := rt.Cache().Get(context.Background())
//	_ = snap.All()
package runtime
