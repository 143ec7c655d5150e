package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/studycubs/studycubs-api/internal/middleware"
	"github.com/studycubs/studycubs-api/internal/models"
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

// actorTeacherID returns the teacher ID that scopes repository queries:
// teachers only see their own records, super admins see everything.
func actorTeacherID(claims *models.JWTClaims) string {
	if claims == nil {
		return ""
	}
	if claims.Role == models.RoleTeacher {
		return claims.ProfileID
	}
	return ""
}
