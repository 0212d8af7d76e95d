package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/rzbill/partysearch/internal/feed"
	logpkg "github.com/rzbill/partysearch/pkg/log"
)

const (
	initialRetry = 1 * time.Second
	maxRetry     = 30 * time.Second
	readLimit    = 4 << 20
	inboxSize    = 256
)

// Conn is the subset of *websocket.Conn the client uses.
type Conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// DialFunc opens a live feed connection.
type DialFunc func(ctx context.Context, url string) (Conn, error)

// DialWebSocket is the default DialFunc.
func DialWebSocket(ctx context.Context, url string) (Conn, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c.SetReadLimit(readLimit)
	return c, nil
}

// Options configures a Client. API is required.
type Options struct {
	API          *API
	Dial         DialFunc
	Clock        clockwork.Clock
	Logger       logpkg.Logger
	Aggregator   *Aggregator
	PingInterval time.Duration
	// OnUpdate runs on the processing goroutine after every applied frame.
	OnUpdate func(*Aggregator)
	// OnState observes every state transition.
	OnState func(State)
}

// Client keeps an Aggregator in sync with the live feed.
type Client struct {
	api    *API
	dial   DialFunc
	clock  clockwork.Clock
	logger logpkg.Logger
	agg    *Aggregator
	ping   time.Duration

	onUpdate func(*Aggregator)
	onState  func(State)
	onWait   func(time.Duration)

	mu    sync.Mutex
	state State

	ready     chan struct{}
	readyOnce sync.Once
	refs      atomic.Bool
	session   atomic.Uint64
	inbox     chan update
}

type updateKind int

const (
	updOpened updateKind = iota
	updFrame
	updBaseline
	updPrimeFailed
)

type update struct {
	kind    updateKind
	session uint64
	msg     feed.Message
}

func New(opts Options) (*Client, error) {
	if opts.API == nil {
		return nil, errors.New("client: API is required")
	}
	c := &Client{
		api:      opts.API,
		dial:     opts.Dial,
		clock:    opts.Clock,
		logger:   opts.Logger,
		agg:      opts.Aggregator,
		ping:     opts.PingInterval,
		onUpdate: opts.OnUpdate,
		onState:  opts.OnState,
		ready:    make(chan struct{}),
		inbox:    make(chan update, inboxSize),
	}
	if c.dial == nil {
		c.dial = DialWebSocket
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.logger == nil {
		c.logger = logpkg.NewNopLogger()
	}
	c.logger = c.logger.With(logpkg.Component("client"))
	if c.agg == nil {
		c.agg = NewAggregator()
	}
	return c, nil
}

// Aggregator returns the view kept in sync by c.
func (c *Client) Aggregator() *Aggregator { return c.agg }

// Ready is closed once reference data and the first baseline are applied.
func (c *Client) Ready() <-chan struct{} { return c.ready }

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	if c.onState != nil {
		c.onState(s)
	}
}

func newBackoff(clock clockwork.Clock) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.RandomizationFactor = 0
	b.InitialInterval = initialRetry
	b.Multiplier = 2
	b.MaxInterval = maxRetry
	b.MaxElapsedTime = 0 // never stop
	b.Clock = clock
	b.Reset()
	return b
}

// Run connects and keeps the feed flowing until ctx is done or the server
// closes the connection normally. Both count as clean closes and return nil.
// Run must be called at most once.
func (c *Client) Run(ctx context.Context) error {
	url, err := c.api.LiveFeedURL()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.process(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	b := newBackoff(c.clock)
	for {
		clean, err := c.connect(ctx, url, b)
		if clean {
			c.setState(StateClosedClean)
			return nil
		}
		c.setState(StateClosedUnclean)
		wait := b.NextBackOff()
		c.logger.Warn("live feed closed, reconnecting", logpkg.Dur("retry_in", wait), logpkg.Err(err))
		if c.onWait != nil {
			c.onWait(wait)
		}
		select {
		case <-ctx.Done():
			c.setState(StateClosedClean)
			return nil
		case <-c.clock.After(wait):
		}
	}
}

// connect runs one connection attempt to completion.
func (c *Client) connect(ctx context.Context, url string, b backoff.BackOff) (bool, error) {
	c.setState(StateConnecting)
	conn, err := c.dial(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return true, nil
		}
		return false, err
	}
	n := c.session.Add(1)
	c.setState(StateOpen)
	b.Reset()
	c.logger.Info("live feed open", logpkg.Str("url", url))

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !c.enqueue(sctx, update{kind: updOpened, session: n}) {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		return true, nil
	}
	go c.prime(sctx, n)
	if c.ping > 0 {
		go c.keepalive(sctx, conn)
	}

	for {
		typ, data, err := conn.Read(sctx)
		if err != nil {
			if ctx.Err() != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return true, nil
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return true, nil
			}
			_ = conn.Close(websocket.StatusInternalError, "")
			return false, err
		}
		if typ != websocket.MessageText || strings.TrimSpace(string(data)) == "pong" {
			continue
		}
		var msg feed.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("skipping malformed frame", logpkg.Err(err))
			continue
		}
		c.enqueue(sctx, update{kind: updFrame, session: n, msg: msg})
	}
}

func (c *Client) enqueue(ctx context.Context, u update) bool {
	select {
	case c.inbox <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

// prime loads reference data (once) and the baseline for session n.
func (c *Client) prime(ctx context.Context, n uint64) {
	if !c.refs.Load() {
		cat, err := c.api.Catalog(ctx)
		if err != nil {
			c.logger.Warn("reference data load failed", logpkg.Err(err))
			c.enqueue(ctx, update{kind: updPrimeFailed, session: n})
			return
		}
		c.agg.SetCatalog(cat)
		c.refs.Store(true)
	}
	base, err := c.api.Baseline(ctx)
	if err != nil {
		c.logger.Warn("baseline load failed", logpkg.Err(err))
		c.enqueue(ctx, update{kind: updPrimeFailed, session: n})
		return
	}
	c.enqueue(ctx, update{kind: updBaseline, session: n, msg: base})
}

func (c *Client) keepalive(ctx context.Context, conn Conn) {
	t := c.clock.NewTicker(c.ping)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			if err := conn.Write(ctx, websocket.MessageText, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// process is the only goroutine that mutates the aggregator. After each Open
// it holds frames until that session's baseline is applied, then replays
// them.
func (c *Client) process(ctx context.Context) {
	var (
		current uint64
		holding = true
		pending = newHeldFrames()
	)
	for {
		var u update
		select {
		case <-ctx.Done():
			return
		case u = <-c.inbox:
		}
		switch u.kind {
		case updOpened:
			current = u.session
			holding = true
			pending.reset()
		case updFrame:
			if u.session != current {
				continue
			}
			if holding {
				pending.hold(u.msg)
				continue
			}
			c.apply(u.msg, false)
		case updBaseline:
			if u.session != current {
				continue
			}
			c.apply(u.msg, true)
			c.replay(pending)
			holding = false
			c.readyOnce.Do(func() { close(c.ready) })
		case updPrimeFailed:
			if u.session != current || !c.isReady() {
				continue
			}
			// Keep the previous view and resume live updates.
			c.replay(pending)
			holding = false
		}
	}
}

func (c *Client) replay(pending *heldFrames) {
	if msg, ok := pending.drain(); ok {
		c.apply(msg, false)
	}
}

// heldFrames keeps the latest Search per combined key while the client waits
// for a baseline. Every Search carries its slot's full state, so the latest
// one per key stands for all earlier ones and memory is bounded by the number
// of slots.
type heldFrames struct {
	order []string
	byKey map[string]feed.Search
}

func newHeldFrames() *heldFrames {
	return &heldFrames{byKey: make(map[string]feed.Search)}
}

func (h *heldFrames) hold(msg feed.Message) {
	for _, s := range msg.Searches {
		k := s.CombinedKey()
		if _, ok := h.byKey[k]; !ok {
			h.order = append(h.order, k)
		}
		h.byKey[k] = s
	}
}

func (h *heldFrames) len() int { return len(h.byKey) }

// drain returns the held searches in first-arrival order and empties h.
func (h *heldFrames) drain() (feed.Message, bool) {
	if len(h.order) == 0 {
		return feed.Message{}, false
	}
	msg := feed.Message{Searches: make([]feed.Search, 0, len(h.order))}
	for _, k := range h.order {
		msg.Searches = append(msg.Searches, h.byKey[k])
	}
	h.reset()
	return msg, true
}

func (h *heldFrames) reset() {
	h.order = h.order[:0]
	clear(h.byKey)
}

func (c *Client) isReady() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

func (c *Client) apply(msg feed.Message, baseline bool) {
	if baseline {
		c.agg.Reset(msg)
	} else {
		c.agg.Apply(msg)
	}
	if c.onUpdate != nil {
		c.onUpdate(c.agg)
	}
}
