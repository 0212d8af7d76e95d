package partysearchsvc

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rzbill/partysearch/internal/feed"
	"github.com/rzbill/partysearch/internal/metrics"
	"github.com/rzbill/partysearch/internal/partition"
	"github.com/rzbill/partysearch/internal/reconcile"
	"github.com/rzbill/partysearch/internal/runtime"
	"github.com/rzbill/partysearch/internal/snapshot"
	logpkg "github.com/rzbill/partysearch/pkg/log"
)

const (
	msgNoChanges = "no changes necessary"
	msgApplied   = "changes applied"
	msgRejected  = "transaction rejected"
)

// Service runs the submission pipeline (validate, diff, write, refresh,
// broadcast) and the snapshot-backed reads.
type Service struct {
	rt       *runtime.Runtime
	store    *partition.Store
	cache    *snapshot.Cache
	hub      *feed.Hub
	metrics  *metrics.Metrics
	logger   logpkg.Logger
	validate *validator.Validate
}

// New returns a Service using the runtime logger.
func New(rt *runtime.Runtime) *Service { return NewWithLogger(rt, nil) }

// NewWithLogger returns a Service using the provided logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = rt.Logger()
	}
	return &Service{
		rt:       rt,
		store:    rt.Store(),
		cache:    rt.Cache(),
		hub:      rt.Hub(),
		metrics:  rt.Metrics(),
		logger:   logger.With(logpkg.Component("partysearch")),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// PostResult describes an accepted submission.
type PostResult struct {
	Key      partition.Key
	Changed  bool
	Deleted  int
	Upserted int
	Message  string
}

// Post replaces the entry set of one partition. An unchanged resubmission
// performs no write. On success the cache already reflects the write and the
// new partition state has been offered to every live subscriber.
func (s *Service) Post(ctx context.Context, req *PostRequest) (PostResult, error) {
	if req == nil {
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return PostResult{}, fail(FailureInvalidPayload, "empty request")
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		f := validationFailure(err)
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		s.logger.Debug("submission rejected", logpkg.Str("kind", f.Kind.String()), logpkg.Str("reason", f.Message))
		return PostResult{}, f
	}
	key := req.key()
	logger := s.logger.With(logpkg.Str("partition", key.String()))

	snap, err := s.cache.Get(ctx)
	if err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeRejected)
		logger.Error("read current partition", logpkg.Err(err))
		return PostResult{}, fail(FailureUnspecified, msgRejected)
	}
	var existing []partition.Entry
	if agg, ok := snap.Partition(key); ok {
		existing = agg.Entries
	}

	ch := reconcile.Diff(existing, req.entries())
	if ch.Empty() {
		s.metrics.ObserveSubmission(metrics.OutcomeNoop)
		logger.Debug("no change detected, skipping write")
		return PostResult{Key: key, Message: msgNoChanges}, nil
	}

	start := time.Now()
	if err := s.store.ApplyChanges(ctx, key, ch.ToDelete, ch.ToUpsert); err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeRejected)
		logger.Error("apply changes", logpkg.Err(err))
		return PostResult{}, fail(FailureUnspecified, msgRejected)
	}
	snap, err = s.cache.Refresh(ctx)
	if err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeRejected)
		logger.Error("refresh snapshot after write", logpkg.Err(err))
		return PostResult{}, fail(FailureUnspecified, "changes stored but snapshot refresh failed")
	}
	s.metrics.ObserveSubmission(metrics.OutcomeApplied)
	logger.Info("partition updated",
		logpkg.Int("deleted", len(ch.ToDelete)),
		logpkg.Int("upserted", len(ch.ToUpsert)),
		logpkg.Dur("elapsed", time.Since(start)))

	slot := snap.ByCombinedKey(key.MapID, key.District.Number)
	if len(slot) == 0 {
		slot = []partition.Aggregate{{Key: key}}
	}
	s.broadcast(key, slot)

	return PostResult{
		Key:      key,
		Changed:  true,
		Deleted:  len(ch.ToDelete),
		Upserted: len(ch.ToUpsert),
		Message:  msgApplied,
	}, nil
}

// broadcast publishes the full state of the combined key that key belongs
// to, every language variant included.
func (s *Service) broadcast(key partition.Key, slot []partition.Aggregate) {
	if err := s.hub.Publish(feed.FromAggregates(slot...)); err != nil {
		s.logger.Warn("broadcast partition", logpkg.Str("partition", key.Combined()), logpkg.Err(err))
	}
}

// Query returns the entries of one partition. A partition with no entries,
// whether never written or emptied by a later submission, is
// EntriesNotFound. An unreadable snapshot is Unavailable.
func (s *Service) Query(ctx context.Context, q QueryRequest) ([]partition.Entry, error) {
	q.normalize()
	if err := s.validate.StructCtx(ctx, q); err != nil {
		return nil, validationFailure(err)
	}
	key, err := q.key()
	if err != nil {
		return nil, err
	}
	snap, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Error("query partition", logpkg.Str("partition", key.String()), logpkg.Err(err))
		return nil, fail(FailureUnavailable, "party searches are temporarily unavailable")
	}
	agg, ok := snap.Partition(key)
	if !ok || len(agg.Entries) == 0 {
		return nil, fail(FailureEntriesNotFound, "no entries for %s", key)
	}
	return agg.Entries, nil
}

// List returns every partition. Read failures degrade to an empty result.
func (s *Service) List(ctx context.Context) []partition.Aggregate {
	return s.read(ctx, "list", (*snapshot.Snapshot).All)
}

// ByMap returns the partitions of one map. Read failures degrade to an empty
// result.
func (s *Service) ByMap(ctx context.Context, mapID int) []partition.Aggregate {
	return s.read(ctx, "by_map", func(snap *snapshot.Snapshot) []partition.Aggregate { return snap.ByMap(mapID) })
}

// BySender returns the partitions where sender advertises. Read failures
// degrade to an empty result.
func (s *Service) BySender(ctx context.Context, sender string) []partition.Aggregate {
	return s.read(ctx, "by_sender", func(snap *snapshot.Snapshot) []partition.Aggregate { return snap.BySender(sender) })
}

func (s *Service) read(ctx context.Context, op string, pick func(*snapshot.Snapshot) []partition.Aggregate) []partition.Aggregate {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Error("bulk read failed, returning empty result", logpkg.Operation(op), logpkg.Err(err))
		return []partition.Aggregate{}
	}
	return pick(snap)
}
