// Package partition defines the party search data model and its Pebble-backed
// store.
//
// A partition is the (map, district) pair where searches are grouped. Each
// stored entry is one row keyed by its sender:
//   - ps/{map}-{district}-{language}/{sender}  entry row (JSON)
//   - pm/{map}-{district}-{language}           partition marker
//
// The marker is rewritten by every ApplyChanges batch so a partition that was
// emptied by a submission is still reported by Partitions.
//
//	st := partition.NewStore(db)
//	_ = st.ApplyChanges(ctx, key, []string{"Bob"}, []partition.Entry{alice})
//	aggs, _ := partition.Collect(st.Partitions(ctx), st.QueryAll(ctx))
package partition
