package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/account_go_server/internal/model"
	"github.com/qs3c/account_go_server/internal/pkg/logger"
	"github.com/qs3c/account_go_server/internal/pkg/response"
)

const (
	CurrentUserKey = "currentUser"
)

// SessionResolver 根据 bearer token 找到当前会话的用户
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.User, error)
}

// Auth 认证中间件：校验 token 签名和有效期，加载用户，并确认 token 仍是用户当前的会话 token。
// 任何一步失败都返回 401，不进入后续 handler。
func Auth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		user, err := resolver.ResolveSession(ctx, tokenString)
		if err != nil {
			logger.FromContext(ctx).Debug("rejected bearer token", "error", err)
			response.AuthError(c, "")
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, user)
		c.Request = c.Request.WithContext(logger.WithUserID(ctx, user.ID))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetCurrentUser 从上下文获取当前用户
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}
