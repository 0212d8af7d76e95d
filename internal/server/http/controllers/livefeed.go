package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/rzbill/partysearch/internal/feed"
	"github.com/rzbill/partysearch/internal/runtime"
	logpkg "github.com/rzbill/partysearch/pkg/log"
)

const writeTimeout = 10 * time.Second

// LiveFeedController upgrades viewers to a WebSocket and forwards every
// frame published on the hub.
type LiveFeedController struct {
	hub          *feed.Hub
	origins      []string
	pingInterval time.Duration
	trusted      []netip.Prefix
	logger       logpkg.Logger
}

// NewLiveFeedController creates a live feed controller.
func NewLiveFeedController(rt *runtime.Runtime, logger logpkg.Logger) *LiveFeedController {
	cfg := rt.Config().Feed
	trusted, _ := rt.Config().RateLimit.TrustedPrefixes()
	return &LiveFeedController{
		hub:          rt.Hub(),
		origins:      cfg.OriginPatterns,
		pingInterval: cfg.PingInterval(),
		trusted:      trusted,
		logger:       logger.With(logpkg.Component("livefeed")),
	}
}

// RegisterRoutes registers GET /party-search/live-feed.
func (c *LiveFeedController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /party-search/live-feed", c.handleLiveFeed)
}

// wsSink writes frames to one WebSocket connection.
type wsSink struct {
	conn *websocket.Conn
}

// Send writes one text frame within writeTimeout.
func (s wsSink) Send(ctx context.Context, b []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.conn.Write(ctx, websocket.MessageText, b)
}

// Ping sends a transport ping and waits for the pong.
func (s wsSink) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.conn.Ping(ctx)
}

func (c *LiveFeedController) handleLiveFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: c.origins})
	if err != nil {
		c.logger.Debug("websocket upgrade failed", logpkg.Err(err))
		return
	}
	defer conn.CloseNow()

	sub := c.hub.Subscribe()
	defer sub.Close()
	logger := c.logger.With(logpkg.Str("subscriber", sub.ID()), logpkg.Str("remote", clientIP(r, c.trusted)))
	logger.Debug("live feed connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sink := wsSink{conn: conn}
	go c.readLoop(ctx, cancel, sink, logger)

	var tick <-chan time.Time
	if c.pingInterval > 0 {
		t := time.NewTicker(c.pingInterval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-sub.C():
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := sink.Send(ctx, frame); err != nil {
				logger.Debug("live feed write failed", logpkg.Err(err))
				return
			}
		case <-tick:
			if err := sink.Ping(ctx); err != nil {
				logger.Debug("live feed ping failed", logpkg.Err(err))
				return
			}
		}
	}
}

// readLoop answers text "ping" frames with "pong" and ends the session when
// the peer goes away. Viewers send nothing else.
func (c *LiveFeedController) readLoop(ctx context.Context, cancel context.CancelFunc, sink wsSink, logger logpkg.Logger) {
	defer cancel()
	for {
		typ, data, err := sink.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				logger.Debug("live feed read failed", logpkg.Err(err))
			}
			return
		}
		if typ == websocket.MessageText && strings.TrimSpace(string(data)) == "ping" {
			if err := sink.Send(ctx, []byte("pong")); err != nil {
				return
			}
		}
	}
}
