package middlewares

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// WindowCounter is satisfied by redisclient.Client.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RateLimiter struct {
	counter WindowCounter
	limit   int
	window  time.Duration
	prefix  string
	log     *slog.Logger
}

func NewRateLimiter(counter WindowCounter, limit int, window time.Duration, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		limit:   limit,
		window:  window,
		prefix:  "cohorthub:ratelimit:",
		log:     log,
	}
}

// RateLimiterMiddleware enforces a fixed window per derived key. If the
// counter store is unreachable the request is let through.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			key = clientIP(c)
		}

		n, left, err := rl.counter.IncrWindow(c.Request.Context(), rl.prefix+key, rl.window)
		if err != nil {
			rl.log.WarnContext(c.Request.Context(), "rate limiter unavailable", "err", err)
			c.Next()
			return
		}

		if n > int64(rl.limit) {
			retryAfter := int(math.Ceil(left.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// KeyByIP rate limits unauthenticated endpoints by client address.
func KeyByIP(c *gin.Context) string {
	return "ip:" + clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}

	return ip
}
