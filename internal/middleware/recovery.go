package middleware

import (
	"errors"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sublimes-drive/drive-core/pkg/logger"
	"github.com/sublimes-drive/drive-core/pkg/response"
)

// Recovery panic 兜底：上报 Sentry 并返回 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				sentry.CaptureException(err)
				logger.L().Error("panic recovered",
					zap.Any("error", r),
					zap.String("path", c.Request.URL.Path),
				)
				response.InternalError(c, errors.New("internal server error"))
				c.Abort()
			}
		}()
		c.Next()
	}
}
