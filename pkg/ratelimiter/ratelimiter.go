package ratelimiter

import (
	"fmt"
	"sync"
	"time"
)

// Config describes a token bucket.
type Config struct {
	// Capacity is the burst size.
	Capacity int `env:"RATE_LIMIT_BURST" envDefault:"20"`
	// RefillRate tokens are added every RefillInterval, up to Capacity.
	RefillRate     int           `env:"RATE_LIMIT_REFILL" envDefault:"10"`
	RefillInterval time.Duration `env:"RATE_LIMIT_INTERVAL" envDefault:"1m"`
}

func (c Config) validate() error {
	if c.Capacity <= 0 || c.RefillRate <= 0 || c.RefillInterval <= 0 {
		return fmt.Errorf("%w: capacity, refill rate and interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Result is the outcome of Allow.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}

// RetryAfter is how long a denied caller should wait.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// Limiter keeps one in-memory token bucket per key.
type Limiter struct {
	cfg     Config
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*bucket
}

func New(cfg Config) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Limiter{cfg: cfg, now: time.Now, buckets: make(map[string]*bucket)}, nil
}

// Allow takes one token from the bucket of key.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.cfg.Capacity, lastRefill: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.lastRefill); elapsed >= l.cfg.RefillInterval {
		intervals := int(elapsed / l.cfg.RefillInterval)
		b.tokens = min(l.cfg.Capacity, b.tokens+intervals*l.cfg.RefillRate)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * l.cfg.RefillInterval)
	}

	res := Result{
		Limit:   l.cfg.Capacity,
		ResetAt: b.lastRefill.Add(l.cfg.RefillInterval),
	}
	if b.tokens > 0 {
		b.tokens--
		res.Allowed = true
	}
	res.Remaining = b.tokens
	return res
}

// Prune drops buckets that have refilled completely.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.buckets {
		missing := l.cfg.Capacity - b.tokens
		intervals := (missing + l.cfg.RefillRate - 1) / l.cfg.RefillRate
		if now.Sub(b.lastRefill) >= time.Duration(intervals)*l.cfg.RefillInterval {
			delete(l.buckets, key)
		}
	}
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
