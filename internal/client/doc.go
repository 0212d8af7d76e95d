// Package client is the viewer side of the live feed.
//
// An Aggregator keeps the latest copy of every partition, keyed by the
// combined "{map}-{district}" key, and derives grouped views from it. A
// Client owns the WebSocket connection: it loads reference data and the bulk
// baseline after each Open, holds live frames until that first load
// completes, and reconnects with exponential backoff after unclean closes.
package client
