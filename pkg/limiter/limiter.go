package limiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PerKey throttles events independently per string key. Used to slow
// down repeated login attempts against a single account.
type PerKey struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	every    time.Duration
	burst    int
}

func NewPerKey(every time.Duration, burst int) *PerKey {
	return &PerKey{
		limiters: make(map[string]*rate.Limiter),
		every:    every,
		burst:    burst,
	}
}

// Allow reports whether an event for the given key may happen now.
func (p *PerKey) Allow(key string) bool {
	p.mu.Lock()
	l, ok := p.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(p.every), p.burst)
		p.limiters[key] = l
	}
	p.mu.Unlock()

	return l.Allow()
}

// Forget drops the limiter state for the key, e.g. after a
// successful login.
func (p *PerKey) Forget(key string) {
	p.mu.Lock()
	delete(p.limiters, key)
	p.mu.Unlock()
}
