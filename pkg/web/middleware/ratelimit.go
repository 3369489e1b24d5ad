package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/web/errors"
	"golang.org/x/time/rate"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// RequestsPerSecond 每个调用方每秒请求数
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	// Burst 突发容量
	Burst int `mapstructure:"burst"`
	// MaxLimiters 最多保留的调用方限流器数量，超出按 LRU 淘汰
	MaxLimiters int `mapstructure:"max_limiters"`
}

// DefaultRateLimitConfig 默认限流配置
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 5,
		Burst:             10,
		MaxLimiters:       10000,
	}
}

// RateLimiter 按调用方限流
type RateLimiter struct {
	cfg      *RateLimitConfig
	mu       sync.Mutex
	limiters *lru.Cache
	logger   logger.Logger
}

// NewRateLimiter 创建限流器
func NewRateLimiter(l logger.Logger, cfg *RateLimitConfig) (*RateLimiter, error) {
	if cfg == nil {
		cfg = DefaultRateLimitConfig()
	}
	cache, err := lru.NewWithEvict(cfg.MaxLimiters, func(key, _ interface{}) {
		l.Debug("rate limiter evicted", "key", key)
	})
	if err != nil {
		return nil, err
	}
	return &RateLimiter{cfg: cfg, limiters: cache, logger: l}, nil
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.limiters.Get(key); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	rl.limiters.Add(key, limiter)
	return limiter
}

// RateLimit 限流中间件，已认证请求按用户限流，否则按 IP
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if caller, ok := GetCaller(c); ok {
			key = "user:" + strconv.FormatUint(caller.UserID, 10)
		}

		if !rl.Allow(key) {
			rl.logger.WarnContext(c.Request.Context(), "rate limit exceeded", "key", key, "path", c.Request.URL.Path)
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    errors.CodeRateLimited,
				"message": "too many requests",
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}
