package partition

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	pebblestore "github.com/rzbill/partysearch/internal/storage/pebble"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	st := NewStore(db)
	st.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return st
}

func collectAll(t *testing.T, st *Store) []Aggregate {
	t.Helper()
	aggs, err := Collect(st.Partitions(context.Background()), st.QueryAll(context.Background()))
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	for _, a := range aggs {
		sort.Slice(a.Entries, func(i, j int) bool { return a.Entries[i].Sender < a.Entries[j].Sender })
	}
	return aggs
}

var forge = Key{MapID: 20, District: District{Number: 1, Language: LanguageEnglish}}

func TestApplyChangesRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := Entry{Sender: "Alice", PartySize: 4, PartyMaxSize: 8, SearchType: SearchMission, HardMode: HardModeUnspecified, DistrictNumber: 1}
	bob := Entry{Sender: "Bob", PartySize: 2, Message: "wts ecto", SearchType: SearchTrade}
	if err := st.ApplyChanges(ctx, forge, nil, []Entry{alice, bob}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	aggs := collectAll(t, st)
	if len(aggs) != 1 {
		t.Fatalf("want 1 partition, got %d", len(aggs))
	}
	if aggs[0].Key != forge {
		t.Fatalf("key: %+v", aggs[0].Key)
	}
	if len(aggs[0].Entries) != 2 || aggs[0].Entries[0] != alice || aggs[0].Entries[1] != bob {
		t.Fatalf("entries: %+v", aggs[0].Entries)
	}
}

func TestApplyChangesDeletesAndKeepsEmptyPartition(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	a := Entry{Sender: "A"}
	b := Entry{Sender: "B"}
	if err := st.ApplyChanges(ctx, forge, nil, []Entry{a, b}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := st.ApplyChanges(ctx, forge, []string{"A", "B"}, nil); err != nil {
		t.Fatalf("apply delete: %v", err)
	}

	aggs := collectAll(t, st)
	if len(aggs) != 1 {
		t.Fatalf("emptied partition should remain known, got %d", len(aggs))
	}
	if aggs[0].Entries == nil || len(aggs[0].Entries) != 0 {
		t.Fatalf("want empty non-nil entries, got %#v", aggs[0].Entries)
	}
}

func TestPartitionsAreIsolatedByLanguage(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	german := Key{MapID: 20, District: District{Number: 1, Language: LanguageGerman}}
	if err := st.ApplyChanges(ctx, forge, nil, []Entry{{Sender: "A"}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := st.ApplyChanges(ctx, german, nil, []Entry{{Sender: "A", Message: "hallo"}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := len(collectAll(t, st)); got != 2 {
		t.Fatalf("want 2 partitions, got %d", got)
	}
}

func TestApplyChangesCancelledContextWritesNothing(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := st.ApplyChanges(ctx, forge, nil, []Entry{{Sender: "A"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := len(collectAll(t, st)); got != 0 {
		t.Fatalf("cancelled batch visible: %d partitions", got)
	}
}

func TestQueryAllStopsEarly(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if err := st.ApplyChanges(ctx, forge, nil, []Entry{{Sender: "A"}, {Sender: "B"}, {Sender: "C"}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	n := 0
	for _, err := range st.QueryAll(ctx) {
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		n++
		if n == 1 {
			break
		}
	}
	if n != 1 {
		t.Fatalf("iteration did not stop: %d", n)
	}
}

func TestCombinedKey(t *testing.T) {
	if got := forge.Combined(); got != "20-1" {
		t.Fatalf("combined: %q", got)
	}
	if got := forge.String(); got != "20-1-0" {
		t.Fatalf("string: %q", got)
	}
}
