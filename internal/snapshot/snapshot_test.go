package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rzbill/partysearch/internal/partition"
)

func TestSnapshotFilters(t *testing.T) {
	ascalon := partition.Key{MapID: 148, District: partition.District{Number: 2}}
	s := New([]partition.Aggregate{
		{Key: forge, Entries: []partition.Entry{{Sender: "Alice"}, {Sender: "Bob"}}},
		{Key: ascalon, Entries: []partition.Entry{{Sender: "Bob"}}},
		{Key: partition.Key{MapID: 20, District: partition.District{Number: 3}}, Entries: []partition.Entry{}},
	})

	assert.Len(t, s.All(), 3)
	assert.Len(t, s.ByMap(20), 2)
	assert.Empty(t, s.ByMap(999))
	assert.Len(t, s.BySender("Bob"), 2)
	assert.Len(t, s.BySender("Alice"), 1)
	assert.NotNil(t, s.BySender("nobody"))
	assert.Empty(t, s.BySender("nobody"))

	assert.Len(t, s.ByCombinedKey(20, 1), 1)
	assert.Len(t, s.ByCombinedKey(148, 2), 1)
	assert.Empty(t, s.ByCombinedKey(148, 1))

	agg, ok := s.Partition(ascalon)
	assert.True(t, ok)
	assert.Equal(t, "Bob", agg.Entries[0].Sender)
}
