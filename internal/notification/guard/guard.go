// Package guard provides a flood guard observer for the notification
// gateway. It cancels events for a recipient once they exceed a token bucket
// rate, so a burst of identical game events does not flood a client.
package guard

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"mcnotify/internal/notification"
	logx "mcnotify/pkg/logx"
)

// Config controls the flood guard.
type Config struct {
	Enabled     bool
	PerSecond   float64
	Burst       int
	PerCategory bool // one bucket per recipient and category instead of per recipient
	IdleTTL     time.Duration
	MaxEntries  int
	Exempt      []string // category names never limited
}

type bucket struct {
	lim  *rate.Limiter
	last time.Time
}

// Guard is a notification.Observer backed by per-recipient limiters.
//
// It is safe for concurrent use.
type Guard struct {
	mu      sync.Mutex
	cfg     Config
	exempt  map[notification.Category]bool
	buckets map[string]*bucket
	dropped uint64

	log logx.Logger
	now func() time.Time
}

func New(cfg Config, log logx.Logger) *Guard {
	if log.IsZero() {
		log = logx.Nop()
	}
	g := &Guard{log: log, now: time.Now}
	g.applyLocked(cfg)
	return g
}

func (g *Guard) Enabled() bool {
	g.mu.Lock()
	en := g.cfg.Enabled
	g.mu.Unlock()
	return en
}

// Apply swaps the limits. Existing buckets are discarded when the rate changes.
func (g *Guard) Apply(cfg Config) {
	g.mu.Lock()
	g.applyLocked(cfg)
	g.mu.Unlock()
}

func (g *Guard) applyLocked(cfg Config) {
	// Defaults
	if cfg.PerSecond <= 0 {
		cfg.PerSecond = 4
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 8
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 2 * time.Minute
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 4096
	}

	exempt := map[notification.Category]bool{}
	for _, name := range cfg.Exempt {
		if c, ok := notification.ParseCategory(name); ok {
			exempt[c] = true
		} else {
			g.log.Warn("flood guard: unknown exempt category", logx.String("category", name))
		}
	}

	if g.cfg.PerSecond != cfg.PerSecond || g.cfg.Burst != cfg.Burst || g.cfg.PerCategory != cfg.PerCategory {
		g.buckets = map[string]*bucket{}
	}
	if g.buckets == nil {
		g.buckets = map[string]*bucket{}
	}
	g.cfg = cfg
	g.exempt = exempt
}

// Observe cancels ev when its recipient is over the limit.
func (g *Guard) Observe(ev *notification.Event) {
	if ev == nil || ev.Cancelled() {
		return
	}
	g.mu.Lock()
	if !g.cfg.Enabled || g.exempt[ev.Category] {
		g.mu.Unlock()
		return
	}
	allowed := g.allowLocked(g.key(ev), g.now())
	if !allowed {
		g.dropped++
	}
	g.mu.Unlock()

	if !allowed {
		g.log.Debug("notification rate limited",
			logx.String("player", ev.Recipient.Name),
			logx.String("category", string(ev.Category)),
		)
		ev.Cancel()
	}
}

// Dropped returns how many events the guard has cancelled.
func (g *Guard) Dropped() uint64 {
	g.mu.Lock()
	n := g.dropped
	g.mu.Unlock()
	return n
}

// Len returns the number of tracked buckets.
func (g *Guard) Len() int {
	g.mu.Lock()
	n := len(g.buckets)
	g.mu.Unlock()
	return n
}

func (g *Guard) key(ev *notification.Event) string {
	var b strings.Builder
	b.WriteString(ev.Recipient.ID.String())
	if g.cfg.PerCategory {
		b.WriteByte('|')
		b.WriteString(string(ev.Category))
	}
	return b.String()
}

func (g *Guard) allowLocked(key string, now time.Time) bool {
	b, ok := g.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(g.cfg.PerSecond), g.cfg.Burst)}
		g.buckets[key] = b
	}
	b.last = now
	allowed := b.lim.AllowN(now, 1)
	if len(g.buckets) > g.cfg.MaxEntries {
		g.pruneLocked(now)
	}
	return allowed
}

// pruneLocked drops idle buckets, then the least recently used ones until
// within MaxEntries. A bucket idle longer than IdleTTL is full again anyway.
func (g *Guard) pruneLocked(now time.Time) {
	for k, b := range g.buckets {
		if now.Sub(b.last) > g.cfg.IdleTTL {
			delete(g.buckets, k)
		}
	}
	for len(g.buckets) > g.cfg.MaxEntries {
		var (
			minKey string
			minT   time.Time
			set    bool
		)
		for k, b := range g.buckets {
			if !set || b.last.Before(minT) {
				minKey, minT, set = k, b.last, true
			}
		}
		if !set {
			break
		}
		delete(g.buckets, minKey)
	}
}
