package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig 按客户端限流配置
type RateLimiterConfig struct {
	Rate      rate.Limit
	Burst     int
	ExpiresIn time.Duration
	// IdentifierExtractor 客户端标识，默认 ClientIP
	IdentifierExtractor func(c *gin.Context) string
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore 内存令牌桶，过期的客户端在访问时清理
type rateLimiterStore struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	rate        rate.Limit
	burst       int
	expiresIn   time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

func newRateLimiterStore(cfg RateLimiterConfig) *rateLimiterStore {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 3 * time.Minute
	}
	return &rateLimiterStore{
		visitors:  make(map[string]*visitor),
		rate:      cfg.Rate,
		burst:     cfg.Burst,
		expiresIn: cfg.ExpiresIn,
		now:       time.Now,
	}
}

func (s *rateLimiterStore) allow(identifier string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastCleanup) > s.expiresIn {
		for id, v := range s.visitors {
			if now.Sub(v.lastSeen) > s.expiresIn {
				delete(s.visitors, id)
			}
		}
		s.lastCleanup = now
	}

	v, ok := s.visitors[identifier]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.visitors[identifier] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimiter 按客户端令牌桶限流，超限返回 429
func RateLimiter(cfg RateLimiterConfig) gin.HandlerFunc {
	store := newRateLimiterStore(cfg)
	extract := cfg.IdentifierExtractor
	if extract == nil {
		extract = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		if !store.allow(extract(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
			return
		}
		c.Next()
	}
}
