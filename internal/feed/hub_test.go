package feed

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/partysearch/internal/partition"
)

var forge = partition.Key{MapID: 20, District: partition.District{Number: 1}}

func TestPublishReachesEverySubscriber(t *testing.T) {
	h := NewHub(Options{})
	a := h.Subscribe()
	b := h.Subscribe()
	defer a.Close()
	defer b.Close()
	require.NotEqual(t, a.ID(), b.ID())

	agg := partition.Aggregate{Key: forge, Entries: []partition.Entry{{Sender: "Alice", PartySize: 4, SearchType: partition.SearchMission}}}
	require.NoError(t, h.Publish(FromAggregates(agg)))

	for _, s := range []*Subscription{a, b} {
		var msg Message
		require.NoError(t, json.Unmarshal(<-s.C(), &msg))
		require.Len(t, msg.Searches, 1)
		assert.Equal(t, "20-1", msg.Searches[0].CombinedKey())
		assert.Equal(t, []Party{{Sender: "Alice", PartySize: 4, SearchType: int(partition.SearchMission)}}, msg.Searches[0].Parties)
	}
}

func TestPublishDropsForFullSubscriber(t *testing.T) {
	h := NewHub(Options{Buffer: 1})
	slow := h.Subscribe()
	defer slow.Close()

	require.NoError(t, h.Publish(Message{}))
	require.NoError(t, h.Publish(Message{}))
	assert.Len(t, slow.C(), 1)
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	h := NewHub(Options{})
	s := h.Subscribe()
	assert.Equal(t, 1, h.Len())
	s.Close()
	s.Close()
	assert.Equal(t, 0, h.Len())
	_, open := <-s.C()
	assert.False(t, open)
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	h := NewHub(Options{})
	s := h.Subscribe()
	h.Close()
	_, open := <-s.C()
	assert.False(t, open)

	late := h.Subscribe()
	_, open = <-late.C()
	assert.False(t, open)
	late.Close()
}

func TestEmptyPartitionEncodesEmptyParties(t *testing.T) {
	b, err := json.Marshal(FromAggregates(partition.Aggregate{Key: forge}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Searches":[{"map_id":20,"district":1,"parties":[]}]}`, string(b))
}

func TestFromAggregatesMergesLanguageVariants(t *testing.T) {
	german := partition.Key{MapID: 20, District: partition.District{Number: 1, Language: partition.LanguageGerman}}
	ascalon := partition.Key{MapID: 148, District: partition.District{Number: 1}}
	msg := FromAggregates(
		partition.Aggregate{Key: forge, Entries: []partition.Entry{{Sender: "Alice"}}},
		partition.Aggregate{Key: ascalon, Entries: []partition.Entry{}},
		partition.Aggregate{Key: german, Entries: []partition.Entry{{Sender: "Bob"}}},
	)
	require.Len(t, msg.Searches, 2)
	assert.Equal(t, "20-1", msg.Searches[0].CombinedKey())
	require.Len(t, msg.Searches[0].Parties, 2)
	assert.Equal(t, "Alice", msg.Searches[0].Parties[0].Sender)
	assert.Equal(t, "Bob", msg.Searches[0].Parties[1].Sender)
	assert.Equal(t, "148-1", msg.Searches[1].CombinedKey())
	assert.NotNil(t, msg.Searches[1].Parties)
}
