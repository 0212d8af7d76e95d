package partition

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/partysearch/internal/storage/pebble"
)

// Store persists partition rows in Pebble. It is a plain atomic-batch
// executor: callers decide which rows change.
type Store struct {
	db  *pebblestore.DB
	now func() time.Time
}

// NewStore returns a Store over db.
func NewStore(db *pebblestore.DB) *Store {
	return &Store{db: db, now: time.Now}
}

type rowRecord struct {
	MapID            int        `json:"map_id"`
	District         int        `json:"district"`
	Language         Language   `json:"language"`
	Sender           string     `json:"sender"`
	PartyID          int        `json:"party_id"`
	PartySize        int        `json:"party_size"`
	PartyMaxSize     int        `json:"party_max_size"`
	HeroCount        int        `json:"hero_count"`
	HardMode         HardMode   `json:"hardmode"`
	Level            int        `json:"level"`
	Primary          int        `json:"primary"`
	Secondary        int        `json:"secondary"`
	SearchType       SearchType `json:"search_type"`
	Message          string     `json:"message"`
	DistrictNumber   int        `json:"district_number"`
	DistrictLanguage Language   `json:"district_language"`
	UpdatedAtMs      int64      `json:"updated_at_ms"`
}

func newRowRecord(k Key, e Entry, nowMs int64) rowRecord {
	return rowRecord{
		MapID:            k.MapID,
		District:         k.District.Number,
		Language:         k.District.Language,
		Sender:           e.Sender,
		PartyID:          e.PartyID,
		PartySize:        e.PartySize,
		PartyMaxSize:     e.PartyMaxSize,
		HeroCount:        e.HeroCount,
		HardMode:         e.HardMode,
		Level:            e.Level,
		Primary:          e.Primary,
		Secondary:        e.Secondary,
		SearchType:       e.SearchType,
		Message:          e.Message,
		DistrictNumber:   e.DistrictNumber,
		DistrictLanguage: e.DistrictLanguage,
		UpdatedAtMs:      nowMs,
	}
}

func (r rowRecord) row() Row {
	return Row{
		Key: Key{MapID: r.MapID, District: District{Number: r.District, Language: r.Language}},
		Entry: Entry{
			Sender:           r.Sender,
			PartyID:          r.PartyID,
			PartySize:        r.PartySize,
			PartyMaxSize:     r.PartyMaxSize,
			HeroCount:        r.HeroCount,
			HardMode:         r.HardMode,
			Level:            r.Level,
			Primary:          r.Primary,
			Secondary:        r.Secondary,
			SearchType:       r.SearchType,
			Message:          r.Message,
			DistrictNumber:   r.DistrictNumber,
			DistrictLanguage: r.DistrictLanguage,
		},
	}
}

type markerRecord struct {
	MapID       int      `json:"map_id"`
	District    int      `json:"district"`
	Language    Language `json:"language"`
	UpdatedAtMs int64    `json:"updated_at_ms"`
}

// ApplyChanges deletes the rows of toDelete and upserts toUpsert for partition
// k in a single atomic batch. The partition marker is refreshed in the same
// batch so an emptied partition remains known.
func (s *Store) ApplyChanges(ctx context.Context, k Key, toDelete []string, toUpsert []Entry) error {
	b := s.db.NewBatch()
	defer b.Close()

	for _, sender := range toDelete {
		if err := b.Delete(rowKey(k, sender), nil); err != nil {
			return fmt.Errorf("stage delete %q: %w", sender, err)
		}
	}
	nowMs := s.now().UnixMilli()
	for _, e := range toUpsert {
		val, err := json.Marshal(newRowRecord(k, e, nowMs))
		if err != nil {
			return fmt.Errorf("encode row %q: %w", e.Sender, err)
		}
		if err := b.Set(rowKey(k, e.Sender), val, nil); err != nil {
			return fmt.Errorf("stage upsert %q: %w", e.Sender, err)
		}
	}
	marker, err := json.Marshal(markerRecord{MapID: k.MapID, District: k.District.Number, Language: k.District.Language, UpdatedAtMs: nowMs})
	if err != nil {
		return err
	}
	if err := b.Set(markerKey(k), marker, nil); err != nil {
		return fmt.Errorf("stage marker: %w", err)
	}

	if err := s.db.CommitBatch(ctx, b); err != nil {
		return fmt.Errorf("commit partition %s: %w", k, err)
	}
	return nil
}

// QueryAll lazily yields every stored row across all partitions from a
// consistent Pebble snapshot. Iteration stops at the first error.
func (s *Store) QueryAll(ctx context.Context) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		scanPrefix(ctx, s.db, rowPrefix, func(key, val []byte) bool {
			var rec rowRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				yield(Row{}, fmt.Errorf("decode row %q: %w", key, err))
				return false
			}
			return yield(rec.row(), nil)
		}, func(err error) { yield(Row{}, err) })
	}
}

// Partitions lazily yields the key of every partition ever written, including
// partitions whose entry set is now empty.
func (s *Store) Partitions(ctx context.Context) iter.Seq2[Key, error] {
	return func(yield func(Key, error) bool) {
		scanPrefix(ctx, s.db, markerPrefix, func(key, val []byte) bool {
			var rec markerRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				yield(Key{}, fmt.Errorf("decode marker %q: %w", key, err))
				return false
			}
			return yield(Key{MapID: rec.MapID, District: District{Number: rec.District, Language: rec.Language}}, nil)
		}, func(err error) { yield(Key{}, err) })
	}
}

// scanPrefix walks every key under prefix on a snapshot, calling fn until it
// returns false. Scan errors are reported through fail.
func scanPrefix(ctx context.Context, db *pebblestore.DB, prefix []byte, fn func(key, val []byte) bool, fail func(error)) {
	snap := db.NewSnapshot()
	defer snap.Close()

	it, err := snap.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: pebblestore.PrefixUpperBound(prefix)})
	if err != nil {
		fail(err)
		return
	}
	defer it.Close()

	start := time.Now()
	n := 0
	defer func() { db.ObserveRead(time.Since(start), n) }()
	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			fail(err)
			return
		}
		val := it.Value()
		n += len(val)
		if !fn(it.Key(), val) {
			return
		}
	}
	if err := it.Error(); err != nil {
		fail(err)
	}
}
