package middleware

import (
	"RoleChat/internal/app_errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	l        *rate.Limiter
	lastSeen time.Time
}

// LimiterPool hands out one token bucket per key and forgets keys idle for
// longer than ttl.
type LimiterPool struct {
	mu     sync.Mutex
	m      map[string]*limiterEntry
	rps    rate.Limit
	burst  int
	ttl    time.Duration
	stopCh chan struct{}
	once   sync.Once
}

func NewLimiterPool(rps float64, burst int, ttl time.Duration) *LimiterPool {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &LimiterPool{
		m:      make(map[string]*limiterEntry),
		rps:    rate.Limit(rps),
		burst:  burst,
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
}

func (p *LimiterPool) get(key string, now time.Time) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.m[key]; ok {
		e.lastSeen = now
		return e.l
	}
	l := rate.NewLimiter(p.rps, p.burst)
	p.m[key] = &limiterEntry{l: l, lastSeen: now}
	return l
}

func (p *LimiterPool) Allow(key string) bool {
	return p.get(key, time.Now()).Allow()
}

// StartCleanup evicts idle keys every period until Stop is called.
func (p *LimiterPool) StartCleanup(period time.Duration) {
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.evict(time.Now().Add(-p.ttl))
			case <-p.stopCh:
				return
			}
		}
	}()
}

func (p *LimiterPool) evict(cutoff time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, e := range p.m {
		if e.lastSeen.Before(cutoff) {
			delete(p.m, k)
		}
	}
}

func (p *LimiterPool) Stop() {
	p.once.Do(func() { close(p.stopCh) })
}

// RateLimit rejects callers that exceed the pool's rate, keyed by client IP.
func RateLimit(pool *LimiterPool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !pool.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": app_errors.ErrTooManyRequests.Error()})
			return
		}
		c.Next()
	}
}
