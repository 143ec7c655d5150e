package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/studycubs/studycubs-api/internal/models"
)

func performWithClaims(t *testing.T, handler gin.HandlerFunc, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/teacher", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	handler(c)
	return recorder
}

func TestDashboardGateAllowsMatchingRole(t *testing.T) {
	recorder := performWithClaims(t, DashboardGate(models.RoleTeacher), &models.JWTClaims{ProfileID: "p1", Role: models.RoleTeacher})
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestDashboardGateRedirectsMismatchedStaff(t *testing.T) {
	recorder := performWithClaims(t, DashboardGate(models.RoleTeacher), &models.JWTClaims{ProfileID: "p1", Role: models.RoleSuperAdmin})
	assert.Equal(t, http.StatusTemporaryRedirect, recorder.Code)
	assert.Equal(t, "/dashboard/admin", recorder.Header().Get("Location"))
}

func TestDashboardGateRejectsUnauthenticated(t *testing.T) {
	recorder := performWithClaims(t, DashboardGate(models.RoleTeacher), nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestDashboardGateRejectsUnknownRole(t *testing.T) {
	recorder := performWithClaims(t, DashboardGate(models.RoleTeacher), &models.JWTClaims{ProfileID: "p1", Role: models.Role("intern")})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireRoles(t *testing.T) {
	allowed := performWithClaims(t, RequireRoles(models.RoleSuperAdmin), &models.JWTClaims{ProfileID: "p1", Role: models.RoleSuperAdmin})
	assert.Equal(t, http.StatusOK, allowed.Code)

	denied := performWithClaims(t, RequireRoles(models.RoleSuperAdmin), &models.JWTClaims{ProfileID: "p1", Role: models.RoleTeacher})
	assert.Equal(t, http.StatusForbidden, denied.Code)
}

func TestDashboardFor(t *testing.T) {
	assert.Equal(t, "/dashboard/admin", DashboardFor(models.RoleSuperAdmin))
	assert.Equal(t, "/dashboard/teacher", DashboardFor(models.RoleTeacher))
	assert.Equal(t, "/dashboard/franchise", DashboardFor(models.RoleFranchise))
	assert.Empty(t, DashboardFor(models.Role("intern")))
}
