// Package id provides short, time-sortable identifiers for live feed
// subscribers and HTTP requests.
//
// # Format
//
// An ID is 12 bytes: a 48-bit millisecond timestamp, a 16-bit node number
// and a 32-bit counter, all big-endian. Byte order therefore matches creation
// order within a process, and the node number keeps IDs from different
// server processes apart.
//
//	g := id.NewGenerator(1)
//	sub := g.Next()
//	s := sub.String() // 24 hex chars
//	back, _ := id.Parse(s)
package id
