package feed

import "github.com/rzbill/partysearch/internal/partition"

// Message is the live feed frame. Every Search carries the complete current
// entry set of one partition so receivers can replace, never merge.
type Message struct {
	Searches []Search `json:"Searches"`
}

// Search is one partition on the wire.
type Search struct {
	MapID    int     `json:"map_id"`
	District int     `json:"district"`
	Parties  []Party `json:"parties"`
}

// CombinedKey is the client index key "{map_id}-{district}".
func (s Search) CombinedKey() string { return partition.CombinedKey(s.MapID, s.District) }

// Party is one entry on the wire.
type Party struct {
	Sender     string `json:"sender"`
	SearchType int    `json:"search_type"`
	Primary    int    `json:"primary"`
	Secondary  int    `json:"secondary"`
	Level      int    `json:"level"`
	PartySize  int    `json:"party_size"`
	HeroCount  int    `json:"hero_count"`
	HardMode   int    `json:"hardmode"`
	Message    string `json:"message"`
	PartyID    int    `json:"party_id"`
}

// FromAggregates converts partitions into a single frame. Partitions that
// differ only in district language share a combined key, so they are merged
// into one Search in first-seen order. Parties is never null so an emptied
// partition clears the receiver's copy.
func FromAggregates(aggs ...partition.Aggregate) Message {
	msg := Message{Searches: make([]Search, 0, len(aggs))}
	slot := make(map[string]int, len(aggs))
	for _, a := range aggs {
		key := a.Key.Combined()
		i, ok := slot[key]
		if !ok {
			i = len(msg.Searches)
			slot[key] = i
			msg.Searches = append(msg.Searches, Search{MapID: a.Key.MapID, District: a.Key.District.Number, Parties: make([]Party, 0, len(a.Entries))})
		}
		for _, e := range a.Entries {
			msg.Searches[i].Parties = append(msg.Searches[i].Parties, PartyFromEntry(e))
		}
	}
	return msg
}

// PartyFromEntry converts one stored entry to its wire form.
func PartyFromEntry(e partition.Entry) Party {
	return Party{
		Sender:     e.Sender,
		SearchType: int(e.SearchType),
		Primary:    e.Primary,
		Secondary:  e.Secondary,
		Level:      e.Level,
		PartySize:  e.PartySize,
		HeroCount:  e.HeroCount,
		HardMode:   int(e.HardMode),
		Message:    e.Message,
		PartyID:    e.PartyID,
	}
}
