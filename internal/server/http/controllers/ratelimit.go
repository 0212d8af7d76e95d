package controllers

import (
	"math"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiterPool keeps one token bucket per client address. A pool built with
// rps <= 0 allows everything.
type limiterPool struct {
	rps     rate.Limit
	burst   int
	trusted []netip.Prefix
	now     func() time.Time

	mu      sync.Mutex
	clients map[string]*limiterEntry
	swept   time.Time
}

func newLimiterPool(rps float64, burst int, trusted []netip.Prefix) *limiterPool {
	if burst <= 0 {
		burst = int(math.Max(1, math.Ceil(rps)))
	}
	return &limiterPool{
		rps:     rate.Limit(rps),
		burst:   burst,
		trusted: trusted,
		now:     time.Now,
		clients: make(map[string]*limiterEntry),
	}
}

func (p *limiterPool) enabled() bool { return p.rps > 0 }

// allow reports whether key may proceed now and, if not, how long to wait.
func (p *limiterPool) allow(key string) (bool, time.Duration) {
	if !p.enabled() {
		return true, 0
	}
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()

	if now.Sub(p.swept) > limiterIdleTTL {
		for k, e := range p.clients {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(p.clients, k)
			}
		}
		p.swept = now
	}
	e, ok := p.clients[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(p.rps, p.burst)}
		p.clients[key] = e
	}
	e.lastSeen = now
	res := e.lim.ReserveN(now, 1)
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, d
	}
	return true, 0
}

type rateLimitObserver interface {
	ObserveRateLimited()
}

// middleware rejects requests over the per-client budget with 429.
func (p *limiterPool) middleware(obs rateLimitObserver, next http.Handler) http.Handler {
	if !p.enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := p.allow(clientIP(r, p.trusted))
		if !ok {
			obs.ObserveRateLimited()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
