package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	cfgpkg "github.com/rzbill/partysearch/internal/config"
	"github.com/rzbill/partysearch/internal/feed"
	"github.com/rzbill/partysearch/internal/metrics"
	"github.com/rzbill/partysearch/internal/partition"
	"github.com/rzbill/partysearch/internal/reference"
	"github.com/rzbill/partysearch/internal/snapshot"
	pebblestore "github.com/rzbill/partysearch/internal/storage/pebble"
	"github.com/rzbill/partysearch/pkg/id"
	logpkg "github.com/rzbill/partysearch/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	// DataDir and Fsync override Config.Storage when set.
	DataDir string
	Fsync   pebblestore.FsyncMode
	Config  cfgpkg.Config
	Logger  logpkg.Logger
	// Metrics is optional; a private registry is created when nil.
	Metrics *metrics.Metrics
}

// Runtime wires storage, the snapshot cache, the live feed hub and the
// reference catalog for a single server process.
type Runtime struct {
	db      *pebblestore.DB
	config  cfgpkg.Config
	logger  logpkg.Logger
	metrics *metrics.Metrics
	store   *partition.Store
	cache   *snapshot.Cache
	hub     *feed.Hub
	catalog *reference.Catalog
	ids     *id.Generator
	closed  atomic.Bool
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = cfg.Storage.DataDir
	}
	fsync := opts.Fsync
	if fsync == pebblestore.FsyncModeUnspecified {
		var err error
		if fsync, err = pebblestore.ParseFsyncMode(cfg.Storage.Fsync); err != nil {
			return nil, err
		}
	}

	catalog := reference.Builtin()
	if cfg.Reference.Path != "" {
		c, err := reference.Load(cfg.Reference.Path)
		if err != nil {
			return nil, fmt.Errorf("load reference catalog: %w", err)
		}
		catalog = c
	}

	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       dataDir,
		Fsync:         fsync,
		FsyncInterval: cfg.Storage.FsyncInterval(),
		Metrics:       m,
	})
	if err != nil {
		return nil, err
	}

	ids := id.NewGenerator(cfg.Server.NodeID)
	store := partition.NewStore(db)
	rt := &Runtime{
		db:      db,
		config:  cfg,
		logger:  logger,
		metrics: m,
		store:   store,
		cache: snapshot.NewCache(snapshot.FromStore(store), snapshot.Options{
			LoadTimeout: cfg.Cache.LoadTimeout(),
			Logger:      logger,
			Metrics:     m,
		}),
		hub: feed.NewHub(feed.Options{
			Buffer:  cfg.Feed.SubscriberBuffer,
			Logger:  logger,
			Metrics: m,
			IDs:     ids,
		}),
		catalog: catalog,
		ids:     ids,
	}
	logger.Info("runtime opened", logpkg.Str("data_dir", dataDir), logpkg.Str("fsync", cfg.Storage.Fsync), logpkg.Int("maps", len(catalog.Maps())))
	return rt, nil
}

// Close ends every live feed subscription and closes storage. Later calls
// are no-ops.
func (r *Runtime) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	if r.hub != nil {
		r.hub.Close()
	}
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil || r.closed.Load() {
		return errors.New("db not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the root logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }

// Metrics returns the collectors shared by every component.
func (r *Runtime) Metrics() *metrics.Metrics { return r.metrics }

// Store returns the partition store.
func (r *Runtime) Store() *partition.Store { return r.store }

// Cache returns the process-wide snapshot cache.
func (r *Runtime) Cache() *snapshot.Cache { return r.cache }

// Hub returns the live feed hub.
func (r *Runtime) Hub() *feed.Hub { return r.hub }

// Catalog returns the reference catalog.
func (r *Runtime) Catalog() *reference.Catalog { return r.catalog }

// IDs returns the process id generator.
func (r *Runtime) IDs() *id.Generator { return r.ids }
