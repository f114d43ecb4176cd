package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/service"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// ContextTokenKey is the gin context key storing the raw bearer token.
// The engine forwards it on every catalogue call, so handlers need it
// alongside the parsed claims.
const ContextTokenKey = "accessToken"

// JWT protects routes by requiring a valid access token.
func JWT(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextTokenKey, parts[1])
		c.Next()
	}
}
