package pebblestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
)

type testMetrics struct {
	mu           sync.Mutex
	read         int
	batchCommits int
	batchOps     int
	batchErrs    int
}

func (m *testMetrics) ObserveRead(_ time.Duration, bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.read += bytes
}

func (m *testMetrics) ObserveBatchCommit(_ time.Duration, numOps int, _ int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCommits++
	m.batchOps += numOps
	if err != nil {
		m.batchErrs++
	}
}

func newTestDB(t *testing.T) (*DB, *testMetrics) {
	t.Helper()
	metrics := &testMetrics{}
	db, err := Open(Options{
		DataDir:       t.TempDir(),
		Fsync:         FsyncModeInterval,
		FsyncInterval: 2 * time.Millisecond,
		Metrics:       metrics,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, metrics
}

func TestBatchCommitIsAtomicAndObserved(t *testing.T) {
	db, metrics := newTestDB(t)

	b := db.NewBatch()
	if err := b.Set([]byte("a"), []byte("1"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := b.Set([]byte("b"), []byte("2"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if _, err := db.Get([]byte("a")); !errors.Is(err, pebble.ErrNotFound) {
		t.Fatalf("uncommitted batch visible: %v", err)
	}
	if err := db.CommitBatch(context.Background(), b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b.Close()

	got, err := db.Get([]byte("b"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "2" {
		t.Fatalf("got %q", got)
	}
	if metrics.batchCommits != 1 || metrics.batchOps != 2 {
		t.Fatalf("commit metrics: commits=%d ops=%d", metrics.batchCommits, metrics.batchOps)
	}
	if metrics.read == 0 {
		t.Fatalf("expected read metrics")
	}
}

func TestCommitBatchHonorsCancelledContext(t *testing.T) {
	db, _ := newTestDB(t)
	b := db.NewBatch()
	defer b.Close()
	_ = b.Set([]byte("k"), []byte("v"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := db.CommitBatch(ctx, b); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := db.Get([]byte("k")); !errors.Is(err, pebble.ErrNotFound) {
		t.Fatalf("cancelled batch was applied: %v", err)
	}
}

func TestParseFsyncMode(t *testing.T) {
	tests := []struct {
		in   string
		want FsyncMode
		err  bool
	}{
		{"", FsyncModeAlways, false},
		{"always", FsyncModeAlways, false},
		{"Interval", FsyncModeInterval, false},
		{"never", FsyncModeNever, false},
		{"sometimes", FsyncModeUnspecified, true},
	}
	for _, tt := range tests {
		got, err := ParseFsyncMode(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Fatalf("ParseFsyncMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestPrefixUpperBound(t *testing.T) {
	if got := PrefixUpperBound([]byte("ps/")); string(got) != "ps0" {
		t.Fatalf("got %q", got)
	}
	if got := PrefixUpperBound([]byte{0xff, 0xff}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := PrefixUpperBound([]byte{'a', 0xff}); string(got) != "b" {
		t.Fatalf("got %q", got)
	}
}
