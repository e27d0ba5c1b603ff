package middleware

import (
	"context"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/account_go_server/internal/pkg/logger"
	"github.com/qs3c/account_go_server/internal/pkg/ratelimit"
	"github.com/qs3c/account_go_server/internal/pkg/response"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string) (*ratelimit.Result, error)
}

// RateLimit 按客户端 IP 限流。Redis 出错时放行，只记录日志
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			response.TooManyRequests(c, "Too many requests, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
