package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sublimes-drive/drive-core/pkg/response"
)

// RateLimit 全局令牌桶限流
func RateLimit(qps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(qps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			response.TooManyRequests(c, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
