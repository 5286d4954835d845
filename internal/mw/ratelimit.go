package mw

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an address is remembered after its last request.
const idleLimiterTTL = 10 * time.Minute

type visitorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter stores a rate limiter for each IP address.
type IPRateLimiter struct {
	ips map[string]*visitorLimiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
	now func() time.Time
}

// NewIPRateLimiter creates a new IPRateLimiter.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*visitorLimiter),
		r:   r,
		b:   b,
		now: time.Now,
	}
}

// Allow reports whether ip may make another request now.
func (i *IPRateLimiter) Allow(ip string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, ok := i.ips[ip]
	if !ok {
		v = &visitorLimiter{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = v
	}
	v.lastSeen = i.now()
	return v.limiter.AllowN(v.lastSeen, 1)
}

// Prune forgets addresses idle for longer than idleLimiterTTL.
func (i *IPRateLimiter) Prune() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := i.now().Add(-idleLimiterTTL)
	removed := 0
	for ip, v := range i.ips {
		if v.lastSeen.Before(cutoff) {
			delete(i.ips, ip)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked addresses.
func (i *IPRateLimiter) Size() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}

// Middleware rejects requests over the limit with 429. message is the JSON
// error text.
func (i *IPRateLimiter) Middleware(message func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !i.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": message(c)})
			return
		}
		c.Next()
	}
}

// RunJanitor prunes idle addresses every interval until ctx is cancelled.
func (i *IPRateLimiter) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := i.Prune(); n > 0 {
				log.Printf("INFO: [RateLimit] forgot %d idle addresses", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
