package snapshot

import (
	"slices"
	"time"

	"github.com/rzbill/partysearch/internal/partition"
)

// Snapshot is an immutable point-in-time copy of every stored partition.
// It is never patched; a write produces a new Snapshot.
type Snapshot struct {
	aggs     []partition.Aggregate
	index    map[partition.Key]int
	loadedAt time.Time
}

// New builds a Snapshot over aggs. The slice must not be modified afterwards.
func New(aggs []partition.Aggregate) *Snapshot {
	index := make(map[partition.Key]int, len(aggs))
	for i, a := range aggs {
		index[a.Key] = i
	}
	return &Snapshot{aggs: aggs, index: index, loadedAt: time.Now()}
}

// All returns every partition, including partitions with no entries.
func (s *Snapshot) All() []partition.Aggregate { return slices.Clone(s.aggs) }

// Len is the number of partitions.
func (s *Snapshot) Len() int { return len(s.aggs) }

// LoadedAt is when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Partition looks up a single partition. The second result is false when the
// partition was never written.
func (s *Snapshot) Partition(k partition.Key) (partition.Aggregate, bool) {
	i, ok := s.index[k]
	if !ok {
		return partition.Aggregate{}, false
	}
	return s.aggs[i], true
}

// ByMap returns the partitions of one map.
func (s *Snapshot) ByMap(mapID int) []partition.Aggregate {
	return s.filter(func(a partition.Aggregate) bool { return a.Key.MapID == mapID })
}

// ByCombinedKey returns every language variant of one map district, the set
// that shares the wire key "{map}-{district}".
func (s *Snapshot) ByCombinedKey(mapID, district int) []partition.Aggregate {
	return s.filter(func(a partition.Aggregate) bool {
		return a.Key.MapID == mapID && a.Key.District.Number == district
	})
}

// BySender returns the partitions holding an entry from sender.
func (s *Snapshot) BySender(sender string) []partition.Aggregate {
	return s.filter(func(a partition.Aggregate) bool {
		return slices.ContainsFunc(a.Entries, func(e partition.Entry) bool { return e.Sender == sender })
	})
}

func (s *Snapshot) filter(keep func(partition.Aggregate) bool) []partition.Aggregate {
	out := []partition.Aggregate{}
	for _, a := range s.aggs {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
