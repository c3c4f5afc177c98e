package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sublimes-drive/drive-core/pkg/response"
)

// CtxUserID gin context key holding the authenticated user's id.
const CtxUserID = "user_id"

func parseToken(secret []byte, raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims := token.Claims.(*jwt.RegisteredClaims)
	if claims.Subject == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// JWTAuth 强制鉴权，写操作路由必须挂载
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		uid, err := parseToken(key, raw)
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}
		c.Set(CtxUserID, uid)
		c.Next()
	}
}

// OptionalAuth 尽力解析身份，匿名请求放行（分享打点等）
func OptionalAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if raw := bearer(c); raw != "" {
			if uid, err := parseToken(key, raw); err == nil {
				c.Set(CtxUserID, uid)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, empty for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}
