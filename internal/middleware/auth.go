package middleware

import (
	"context"
	"net/http"
	"strings"

	"Care_Community/internal/handler"
	"Care_Community/internal/model"
	"Care_Community/internal/pkg"

	"github.com/gin-gonic/gin"
)

const ContextUserIDKey = "user_id"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization format"})
			return
		}

		// 解析 token、核对 redis 中的活动会话并重新加载用户
		user, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			if pkg.KindOf(err) == pkg.KindInternal {
				handler.Fail(c, err)
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(handler.ContextUserKey, user)
		c.Next()
	}
}
