package client

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/rzbill/partysearch/internal/feed"
	"github.com/rzbill/partysearch/internal/reference"
)

// Aggregator is the local aggregated view. Partitions are only ever replaced
// whole.
type Aggregator struct {
	mu      sync.RWMutex
	index   map[string]feed.Search
	catalog *reference.Catalog
}

func NewAggregator() *Aggregator {
	return &Aggregator{index: make(map[string]feed.Search), catalog: reference.New(nil, nil)}
}

// SetCatalog installs the reference data used to name maps.
func (a *Aggregator) SetCatalog(c *reference.Catalog) {
	if c == nil {
		return
	}
	a.mu.Lock()
	a.catalog = c
	a.mu.Unlock()
}

// Catalog returns the installed reference data.
func (a *Aggregator) Catalog() *reference.Catalog {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.catalog
}

// Apply replaces every partition carried by msg. Partitions not in msg are
// untouched.
func (a *Aggregator) Apply(msg feed.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range msg.Searches {
		a.put(s)
	}
}

// Reset discards the index and loads msg as the new baseline.
func (a *Aggregator) Reset(msg feed.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.index = make(map[string]feed.Search, len(msg.Searches))
	for _, s := range msg.Searches {
		a.put(s)
	}
}

func (a *Aggregator) put(s feed.Search) {
	s.Parties = slices.Clone(s.Parties)
	if s.Parties == nil {
		s.Parties = []feed.Party{}
	}
	a.index[s.CombinedKey()] = s
}

// Partition returns the stored copy for a combined key.
func (a *Aggregator) Partition(key string) (feed.Search, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.index[key]
	if !ok {
		return feed.Search{}, false
	}
	s.Parties = slices.Clone(s.Parties)
	return s, true
}

// Len is the number of known partitions, including empty ones.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.index)
}

// Active reports whether any district of mapID currently has parties.
func (a *Aggregator) Active(mapID int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, s := range a.index {
		if s.MapID == mapID && len(s.Parties) > 0 {
			return true
		}
	}
	return false
}

// ViewOptions narrows View. The zero value selects everything.
type ViewOptions struct {
	// MapName matches a catalog map name, case-insensitively. Unknown names
	// select nothing.
	MapName string
	Filter  *PartyFilter
}

// MapView is every district of one map that has visible parties.
type MapView struct {
	MapID     int
	Name      string
	Districts []DistrictView
}

type DistrictView struct {
	District int
	Groups   []TypeGroup
}

// TypeGroup holds the parties of one search type, sorted by sender.
type TypeGroup struct {
	SearchType int
	Parties    []feed.Party
}

// View groups the visible parties by map, district and search type. Maps and
// districts are ordered by id; empty groups are omitted.
func (a *Aggregator) View(opts ViewOptions) []MapView {
	a.mu.RLock()
	defer a.mu.RUnlock()

	wantMap := -1
	if name := strings.TrimSpace(opts.MapName); name != "" {
		m, ok := a.catalog.MapByName(name)
		if !ok {
			return []MapView{}
		}
		wantMap = m.ID
	}

	byMap := map[int]map[int]map[int][]feed.Party{}
	for _, s := range a.index {
		if wantMap >= 0 && s.MapID != wantMap {
			continue
		}
		for _, p := range s.Parties {
			if !opts.Filter.Match(s, p) {
				continue
			}
			districts, ok := byMap[s.MapID]
			if !ok {
				districts = map[int]map[int][]feed.Party{}
				byMap[s.MapID] = districts
			}
			types, ok := districts[s.District]
			if !ok {
				types = map[int][]feed.Party{}
				districts[s.District] = types
			}
			types[p.SearchType] = append(types[p.SearchType], p)
		}
	}

	out := make([]MapView, 0, len(byMap))
	for mapID, districts := range byMap {
		mv := MapView{MapID: mapID}
		if m, ok := a.catalog.MapByID(mapID); ok {
			mv.Name = m.Name
		}
		for district, types := range districts {
			dv := DistrictView{District: district}
			for st, parties := range types {
				sort.Slice(parties, func(i, j int) bool { return parties[i].Sender < parties[j].Sender })
				dv.Groups = append(dv.Groups, TypeGroup{SearchType: st, Parties: parties})
			}
			sort.Slice(dv.Groups, func(i, j int) bool { return dv.Groups[i].SearchType < dv.Groups[j].SearchType })
			mv.Districts = append(mv.Districts, dv)
		}
		sort.Slice(mv.Districts, func(i, j int) bool { return mv.Districts[i].District < mv.Districts[j].District })
		out = append(out, mv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MapID < out[j].MapID })
	return out
}
