package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter keeps per-user fixed windows in memory. Counters are keyed by
// user id and path, so each game endpoint has its own budget.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*rateWindow)}
}

func (l *RateLimiter) allow(key string, limit int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &rateWindow{count: 1, resetAt: now.Add(window)}
		return true
	}
	if w.count >= limit {
		return false
	}
	w.count++
	return true
}

// Limit throttles authenticated play traffic. Anonymous requests pass
// through untouched; RequireAuth handles those.
func (l *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.Next()
			return
		}

		path := c.Request.URL.Path

		var limit int
		var window time.Duration

		switch {
		case strings.Contains(path, "/games/"):
			limit = 60 // 60 plays per minute
			window = time.Minute
		case strings.Contains(path, "/balance/"):
			limit = 120
			window = time.Minute
		default:
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%d", path, user.ID)
		if !l.allow(key, limit, window) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
