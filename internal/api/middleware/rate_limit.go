package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"recipe-importer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenBucket 單一客戶端的令牌桶
type TokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

// NewTokenBucket 創建新的令牌桶
func NewTokenBucket(requests int, window time.Duration) *TokenBucket {
	return &TokenBucket{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
	}
}

// Allow 檢查是否允許請求
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastTime).Seconds()
	tb.lastTime = now

	// 添加新令牌
	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}

	// 檢查是否有可用令牌
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// RateLimiter 以客戶端 IP 為鍵的限流器，作為可注入的狀態化協作者
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*TokenBucket
	requests int
	window   time.Duration
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*TokenBucket),
		requests: requests,
		window:   window,
	}
}

// Allow 檢查指定客戶端是否允許請求
func (rl *RateLimiter) Allow(clientKey string) bool {
	rl.mu.Lock()
	bucket, ok := rl.buckets[clientKey]
	if !ok {
		bucket = NewTokenBucket(rl.requests, rl.window)
		rl.buckets[clientKey] = bucket
	}
	rl.mu.Unlock()

	return bucket.Allow()
}

// RateLimit 限流中間件
func RateLimit(limiter *RateLimiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
