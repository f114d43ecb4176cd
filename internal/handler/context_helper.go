package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/middleware"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func tokenFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextTokenKey)
	if !exists {
		return ""
	}
	token, ok := value.(string)
	if !ok {
		return ""
	}
	return token
}
