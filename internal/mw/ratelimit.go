package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterIdle is how long a client's bucket survives without requests.
const limiterIdle = 10 * time.Minute

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(c *gin.Context) string

// ByIP charges requests to the client address.
func ByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByCaller charges requests to the signed-in user, falling back to the
// client address before the identity middleware has run.
func ByCaller(c *gin.Context) string {
	if id, ok := CurrentIdentity(c); ok && id.UID != "" {
		return "uid:" + id.UID
	}
	return ByIP(c)
}

// Limiters hands out one token bucket per key. Buckets expire after idle
// so that a long-running process does not keep one per address forever.
type Limiters struct {
	mu      sync.Mutex
	buckets *cache.Cache
	r       rate.Limit
	b       int
	idle    time.Duration
}

// NewLimiters creates a bucket set allowing r requests per second with bursts of b.
func NewLimiters(r rate.Limit, b int, idle time.Duration) *Limiters {
	return &Limiters{
		buckets: cache.New(idle, idle),
		r:       r,
		b:       b,
		idle:    idle,
	}
}

// Get returns the bucket for key, creating it on first use. Every lookup
// pushes the bucket's expiry out again.
func (l *Limiters) Get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.buckets.Get(key)
	if !ok {
		limiter = rate.NewLimiter(l.r, l.b)
	}
	l.buckets.Set(key, limiter, l.idle)
	return limiter.(*rate.Limiter)
}

// Len returns the number of live buckets.
func (l *Limiters) Len() int {
	return l.buckets.ItemCount()
}

// Limit rejects requests whose bucket is empty with 429.
func Limit(l *Limiters, key KeyFunc, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if !l.Get(k).Allow() {
			zap.L().Debug("rate limit exceeded", zap.String("key", k), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

// RateLimiter limits every request by client address.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	return Limit(NewLimiters(r, b, limiterIdle), ByIP, "too many requests")
}

// ClickLimiter limits booking clicks per signed-in user. It belongs behind
// Identity.
func ClickLimiter(r rate.Limit, b int) gin.HandlerFunc {
	return Limit(NewLimiters(r, b, limiterIdle), ByCaller, "too many booking requests")
}
