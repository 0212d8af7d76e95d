package feed

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rzbill/partysearch/pkg/id"
	"github.com/rzbill/partysearch/pkg/log"
)

const defaultBuffer = 16

// Metrics observes hub activity. Optional.
type Metrics interface {
	SetSubscribers(n int)
	ObserveBroadcast(delivered, dropped int)
}

type noopMetrics struct{}

func (noopMetrics) SetSubscribers(int)        {}
func (noopMetrics) ObserveBroadcast(int, int) {}

// Options configures a Hub.
type Options struct {
	// Buffer is the per-subscriber queue length. Defaults to 16.
	Buffer  int
	Logger  log.Logger
	Metrics Metrics
	IDs     *id.Generator
}

// Hub fans encoded frames out to live subscribers. Publish never blocks: a
// subscriber whose queue is full misses the frame.
type Hub struct {
	buffer  int
	logger  log.Logger
	metrics Metrics
	ids     *id.Generator

	mu     sync.RWMutex
	subs   map[id.ID]*Subscription
	closed bool
}

// NewHub returns an empty hub.
func NewHub(opts Options) *Hub {
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}
	if opts.IDs == nil {
		opts.IDs = id.NewGenerator(0)
	}
	return &Hub{
		buffer:  opts.Buffer,
		logger:  opts.Logger.With(log.Component("feed")),
		metrics: opts.Metrics,
		ids:     opts.IDs,
		subs:    make(map[id.ID]*Subscription),
	}
}

// Subscription is one registered receiver.
type Subscription struct {
	id  id.ID
	ch  chan []byte
	hub *Hub
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() string { return s.id.String() }

// C yields encoded frames. It is closed when the subscription ends.
func (s *Subscription) C() <-chan []byte { return s.ch }

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() { s.hub.remove(s.id) }

// Subscribe registers a new receiver. On a closed hub the returned
// subscription's channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{id: h.ids.Next(), ch: make(chan []byte, h.buffer), hub: h}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.ch)
		return s
	}
	h.subs[s.id] = s
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.SetSubscribers(n)
	h.logger.Debug("subscriber added", log.Str("subscriber", s.ID()), log.Int("subscribers", n))
	return s
}

func (h *Hub) remove(sid id.ID) {
	h.mu.Lock()
	s, ok := h.subs[sid]
	if ok {
		delete(h.subs, sid)
		close(s.ch)
	}
	n := len(h.subs)
	h.mu.Unlock()
	if ok {
		h.metrics.SetSubscribers(n)
		h.logger.Debug("subscriber removed", log.Str("subscriber", sid.String()), log.Int("subscribers", n))
	}
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish encodes msg once and offers it to every subscriber.
func (h *Hub) Publish(msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode feed message: %w", err)
	}
	delivered, dropped := 0, 0
	h.mu.RLock()
	for _, s := range h.subs {
		select {
		case s.ch <- b:
			delivered++
		default:
			dropped++
		}
	}
	h.mu.RUnlock()
	h.metrics.ObserveBroadcast(delivered, dropped)
	if dropped > 0 {
		h.logger.Warn("feed frames dropped", log.Int("dropped", dropped), log.Int("delivered", delivered))
	}
	return nil
}

// Close ends every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for sid, s := range h.subs {
		delete(h.subs, sid)
		close(s.ch)
	}
	h.mu.Unlock()
	h.metrics.SetSubscribers(0)
}
