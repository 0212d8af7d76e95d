package client

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/partysearch/internal/feed"
	"github.com/rzbill/partysearch/internal/reference"
)

func search(mapID, district int, parties ...feed.Party) feed.Search {
	if parties == nil {
		parties = []feed.Party{}
	}
	return feed.Search{MapID: mapID, District: district, Parties: parties}
}

func TestApplyReplacesWholePartition(t *testing.T) {
	a := NewAggregator()
	a.Apply(feed.Message{Searches: []feed.Search{
		search(20, 1, feed.Party{Sender: "A"}, feed.Party{Sender: "B"}),
		search(55, 2, feed.Party{Sender: "C"}),
	}})
	a.Apply(feed.Message{Searches: []feed.Search{search(20, 1, feed.Party{Sender: "B", Message: "new"})}})

	got, ok := a.Partition("20-1")
	require.True(t, ok)
	assert.Empty(t, cmp.Diff([]feed.Party{{Sender: "B", Message: "new"}}, got.Parties))

	other, ok := a.Partition("55-2")
	require.True(t, ok)
	assert.Len(t, other.Parties, 1, "untouched partition must survive")
}

func TestEmptyPartitionClearsActivity(t *testing.T) {
	a := NewAggregator()
	a.Apply(feed.Message{Searches: []feed.Search{search(20, 1, feed.Party{Sender: "A"})}})
	require.True(t, a.Active(20))

	a.Apply(feed.Message{Searches: []feed.Search{search(20, 1)}})
	assert.False(t, a.Active(20))
	assert.Equal(t, 1, a.Len(), "emptied partition stays indexed")
}

func TestResetDropsPartitionsMissingFromBaseline(t *testing.T) {
	a := NewAggregator()
	a.Apply(feed.Message{Searches: []feed.Search{search(20, 1, feed.Party{Sender: "A"})}})
	a.Reset(feed.Message{Searches: []feed.Search{search(55, 1, feed.Party{Sender: "B"})}})
	_, ok := a.Partition("20-1")
	assert.False(t, ok)
	assert.True(t, a.Active(55))
}

func TestViewGroupsByMapDistrictAndType(t *testing.T) {
	a := NewAggregator()
	a.SetCatalog(reference.New([]reference.Map{{ID: 20, Name: "Droknar's Forge"}, {ID: 55, Name: "Lion's Arch"}}, nil))
	a.Apply(feed.Message{Searches: []feed.Search{
		search(20, 2, feed.Party{Sender: "Z", SearchType: 3}),
		search(20, 1, feed.Party{Sender: "B", SearchType: 1}, feed.Party{Sender: "A", SearchType: 1}, feed.Party{Sender: "C", SearchType: 3}),
		search(55, 1),
	}})

	want := []MapView{{
		MapID: 20, Name: "Droknar's Forge",
		Districts: []DistrictView{
			{District: 1, Groups: []TypeGroup{
				{SearchType: 1, Parties: []feed.Party{{Sender: "A", SearchType: 1}, {Sender: "B", SearchType: 1}}},
				{SearchType: 3, Parties: []feed.Party{{Sender: "C", SearchType: 3}}},
			}},
			{District: 2, Groups: []TypeGroup{{SearchType: 3, Parties: []feed.Party{{Sender: "Z", SearchType: 3}}}}},
		},
	}}
	assert.Empty(t, cmp.Diff(want, a.View(ViewOptions{})))

	assert.Len(t, a.View(ViewOptions{MapName: "droknar's forge"}), 1)
	assert.Empty(t, a.View(ViewOptions{MapName: "Lion's Arch"}), "map without parties has no view")
	assert.Empty(t, a.View(ViewOptions{MapName: "Nowhere"}))
}

func TestViewAppliesFilter(t *testing.T) {
	a := NewAggregator()
	a.Apply(feed.Message{Searches: []feed.Search{
		search(20, 1, feed.Party{Sender: "A", Level: 20, Message: "wts ecto"}, feed.Party{Sender: "B", Level: 5}),
	}})
	f, err := CompileFilter(`level >= 20 && message.contains("ecto")`)
	require.NoError(t, err)

	v := a.View(ViewOptions{Filter: f})
	require.Len(t, v, 1)
	require.Len(t, v[0].Districts[0].Groups[0].Parties, 1)
	assert.Equal(t, "A", v[0].Districts[0].Groups[0].Parties[0].Sender)
}
