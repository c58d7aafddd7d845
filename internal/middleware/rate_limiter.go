// ========================================
// internal/middleware/rate_limiter.go
// Rate limiting to prevent abuse

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Allower is the subset of leaguemanager.Cache this middleware needs;
// declared locally so middleware doesn't import leaguemanager.
type Allower interface {
	AllowCall(ctx context.Context, callerID string, limit int, window time.Duration) (bool, error)
}

// RateLimiter throttles each calling agent, identified by remote IP since
// the envelope's sender is only known after the body is decoded, to limit
// calls per window. Falls open on a cache outage rather than blocking
// legitimate traffic.
func RateLimiter(cache Allower, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := cache.AllowCall(c.Request.Context(), c.ClientIP(), limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(window).Unix()))
		c.Next()
	}
}
