package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/security"
	"github.com/lk2023060901/coinbot/pkg/web/errors"
)

// CallerKey gin.Context 中存储 security.Caller 的 key
const CallerKey = "caller"

// Auth JWT 认证中间件
// 解析出的 Caller 同时写入 gin.Context 与 request context（供日志提取 user_id/guild_id）
func Auth(jm *security.JWTManager) gin.HandlerFunc {
	header := jm.GetConfig().HeaderName

	return func(c *gin.Context) {
		token := c.GetHeader(header)
		if token == "" {
			abortUnauthorized(c, security.ErrTokenMissing)
			return
		}

		claims, err := jm.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		caller, err := security.CallerFromClaims(claims)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		ctx := security.WithCaller(c.Request.Context(), caller)
		ctx = logger.WithCaller(ctx, caller.UserID, caller.GuildID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(CallerKey, caller)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    errors.CodeUnAuthorized,
		"message": err.Error(),
		"data":    nil,
	})
}

// GetCaller 从 gin.Context 获取发起者
func GetCaller(c *gin.Context) (security.Caller, bool) {
	v, ok := c.Get(CallerKey)
	if !ok {
		return security.Caller{}, false
	}
	caller, ok := v.(security.Caller)
	return caller, ok
}
