// Package middleware 提供 HTTP 中间件
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"repurpose-ai-api/pkg/logger"
	"repurpose-ai-api/pkg/utils"
)

// AuthConfig 认证配置
type AuthConfig struct {
	// Secret JWT 密钥
	Secret string
	// Issuer JWT 签发者
	Issuer string
	// SkipPaths 跳过认证的路径前缀
	SkipPaths []string
	// Enabled 是否启用认证
	Enabled bool
}

// Auth 认证中间件。校验 Bearer AccessToken，
// 将用户信息注入 Gin 与 Logger Context。
func Auth(cfg AuthConfig) gin.HandlerFunc {
	jwtManager := utils.NewJWTManager(cfg.Secret, cfg.Issuer)

	skipMap := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipMap[path] = true
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}
		for path := range skipMap {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		claims, err := jwtManager.ParseToken(parts[1])
		if err != nil {
			msg := "invalid token"
			if err == utils.ErrExpiredToken {
				msg = "token expired"
			}
			abortUnauthorized(c, msg)
			return
		}

		if claims.Type != "access" {
			abortUnauthorized(c, "invalid token type")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetUserIDFromGin 从 Gin Context 中获取用户 ID
func GetUserIDFromGin(c *gin.Context) string {
	return c.GetString("user_id")
}

// GetRoleFromGin 从 Gin Context 中获取用户角色
func GetRoleFromGin(c *gin.Context) string {
	return c.GetString("role")
}

// abortUnauthorized 终止请求并返回 401
func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":     401,
		"message":  msg,
		"trace_id": c.GetString("trace_id"),
	})
}

// DefaultSkipPaths 默认跳过认证的路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}
