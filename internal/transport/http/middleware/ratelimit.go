package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "go-user-admin/internal/transport/http/response"
)

// KeyFunc 决定令牌桶归属
type KeyFunc func(c *gin.Context) string

func ClientIP(c *gin.Context) string { return c.ClientIP() }

// 空闲超过 bucketIdle 的桶会在下次清扫时回收
const bucketIdle = 10 * time.Minute

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// buckets 按 key 分桶，定期清掉空闲桶
type buckets struct {
	mu        sync.Mutex
	m         map[string]*bucket
	rps       rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newBuckets(rps rate.Limit, burst int, idle time.Duration) *buckets {
	return &buckets{m: map[string]*bucket{}, rps: rps, burst: burst, idle: idle, now: time.Now}
}

func (b *buckets) allow(k string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if now.Sub(b.lastSweep) >= b.idle {
		for key, bk := range b.m {
			if now.Sub(bk.seen) >= b.idle {
				delete(b.m, key)
			}
		}
		b.lastSweep = now
	}
	bk := b.m[k]
	if bk == nil {
		bk = &bucket{lim: rate.NewLimiter(b.rps, b.burst)}
		b.m[k] = bk
	}
	bk.seen = now
	return bk.lim.AllowN(now, 1)
}

func (b *buckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.m)
}

func limitWith(b *buckets, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !b.allow(key(c)) {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeTooManyRequests, "too many requests"))
			return
		}
		c.Next()
	}
}

// RateLimitBy 按 key 分桶限流
func RateLimitBy(rps rate.Limit, burst int, key KeyFunc) gin.HandlerFunc {
	return limitWith(newBuckets(rps, burst, bucketIdle), key)
}

func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	return RateLimitBy(rps, burst, ClientIP)
}
