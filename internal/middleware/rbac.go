package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studycubs/studycubs-api/internal/models"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
	"github.com/studycubs/studycubs-api/pkg/response"
)

// dashboardByRole maps each staff role to its dashboard route. The role
// router below sends every authenticated staff member here after login and
// whenever they request a dashboard that is not theirs.
var dashboardByRole = map[models.Role]string{
	models.RoleSuperAdmin: "/dashboard/admin",
	models.RoleTeacher:    "/dashboard/teacher",
	models.RoleFranchise:  "/dashboard/franchise",
}

// RequireRoles enforces that the authenticated profile holds one of the
// allowed roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// DashboardGate guards one role's dashboard route. Staff with a different
// role are redirected to their own dashboard rather than rejected;
// unauthenticated or unknown-role requests get 401.
func DashboardGate(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Role == role {
			c.Next()
			return
		}
		home, known := dashboardByRole[claims.Role]
		if !known {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "unrecognised role"))
			c.Abort()
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, home)
		c.Abort()
	}
}

// DashboardFor returns the dashboard route for the given role, or the
// empty string when the role is unknown.
func DashboardFor(role models.Role) string {
	return dashboardByRole[role]
}

func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}
