package snapshot

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rzbill/partysearch/internal/partition"
	"github.com/rzbill/partysearch/pkg/log"
)

const defaultLoadTimeout = 5 * time.Second

// Loader produces the full set of partitions from durable storage.
type Loader func(ctx context.Context) ([]partition.Aggregate, error)

// Source is the read side of the partition store.
type Source interface {
	Partitions(ctx context.Context) iter.Seq2[partition.Key, error]
	QueryAll(ctx context.Context) iter.Seq2[partition.Row, error]
}

// FromStore returns a Loader that scans src.
func FromStore(src Source) Loader {
	return func(ctx context.Context) ([]partition.Aggregate, error) {
		return partition.Collect(src.Partitions(ctx), src.QueryAll(ctx))
	}
}

// Metrics observes cache loads. Optional.
type Metrics interface {
	ObserveLoad(elapsed time.Duration, partitions int, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveLoad(time.Duration, int, error) {}

// Options configures a Cache.
type Options struct {
	// LoadTimeout bounds a single load. Defaults to 5s.
	LoadTimeout time.Duration
	Logger      log.Logger
	Metrics     Metrics
}

// Cache serves the current Snapshot and collapses concurrent loads into one.
//
// The cache has no expiry. Refresh discards the current snapshot and bumps a
// generation; a load only installs its result if the generation it was
// started for is still current, so a slow load that raced a write can never
// overwrite the newer state. Failed loads are returned to every waiter of
// that load and are not cached.
type Cache struct {
	load    Loader
	timeout time.Duration
	logger  log.Logger
	metrics Metrics

	group singleflight.Group

	mu  sync.Mutex
	gen uint64
	cur *Snapshot
}

// NewCache returns an empty cache backed by load.
func NewCache(load Loader, opts Options) *Cache {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}
	return &Cache{
		load:    load,
		timeout: opts.LoadTimeout,
		logger:  opts.Logger.With(log.Component("snapshot")),
		metrics: opts.Metrics,
	}
}

// Get returns the present snapshot, or joins the in-flight load, or starts one.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	if s := c.cur; s != nil {
		c.mu.Unlock()
		return s, nil
	}
	gen := c.gen
	c.mu.Unlock()
	return c.flight(ctx, gen)
}

// Refresh invalidates the current snapshot and returns a freshly loaded one.
// The result reflects every write committed before Refresh was called.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	c.gen++
	c.cur = nil
	gen := c.gen
	c.mu.Unlock()
	return c.flight(ctx, gen)
}

func (c *Cache) flight(ctx context.Context, gen uint64) (*Snapshot, error) {
	ch := c.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		c.mu.Lock()
		if c.gen == gen && c.cur != nil {
			s := c.cur
			c.mu.Unlock()
			return s, nil
		}
		c.mu.Unlock()

		// The load is shared, so it must outlive the caller that started it.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		start := time.Now()
		aggs, err := c.load(lctx)
		c.metrics.ObserveLoad(time.Since(start), len(aggs), err)
		if err != nil {
			c.logger.Warn("snapshot load failed", log.Err(err), log.Dur("elapsed", time.Since(start)))
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		s := New(aggs)

		c.mu.Lock()
		if c.gen == gen {
			c.cur = s
		}
		c.mu.Unlock()
		c.logger.Debug("snapshot loaded", log.Int("partitions", len(aggs)), log.Dur("elapsed", time.Since(start)))
		return s, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}
