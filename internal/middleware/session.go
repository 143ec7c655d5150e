package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/service"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
	"github.com/studycubs/studycubs-api/pkg/response"
)

// ContextStudentKey is the gin context key storing the resolved student.
const ContextStudentKey = "currentStudent"

// SessionHeader carries the opaque student session token.
const SessionHeader = "X-Student-Session"

// StudentSession resolves the portal session token into a student record.
// Absent, unknown or corrupt sessions all answer 401; the student logs in
// again, nothing is recoverable from a bad token.
func StudentSession(studentAuth *service.StudentAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		if token == "" {
			response.Error(c, appErrors.ErrNoSession)
			c.Abort()
			return
		}

		student, err := studentAuth.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextStudentKey, student)
		c.Next()
	}
}

// CurrentStudent returns the student attached by StudentSession.
func CurrentStudent(c *gin.Context) (*models.PublicStudent, bool) {
	value, exists := c.Get(ContextStudentKey)
	if !exists {
		return nil, false
	}
	student, ok := value.(*models.PublicStudent)
	return student, ok
}
