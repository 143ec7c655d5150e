package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/service"
)

const testTokenSecret = "test-secret"

func newTokenValidator() *service.AuthService {
	return service.NewAuthService(nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: testTokenSecret,
		AccessTokenExpiry: time.Hour,
	})
}

func mintAccessToken(t *testing.T, profileID string, role models.Role) string {
	t.Helper()
	now := time.Now().UTC()
	claims := &models.JWTClaims{
		ProfileID: profileID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testTokenSecret))
	require.NoError(t, err)
	return signed
}

func runAuthMiddleware(t *testing.T, handler gin.HandlerFunc, authorization string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		c.Request.Header.Set("Authorization", authorization)
	}
	handler(c)
	return c, rec
}

func TestJWTAttachesClaims(t *testing.T) {
	token := mintAccessToken(t, "teacher-1", models.RoleTeacher)

	c, rec := runAuthMiddleware(t, JWT(newTokenValidator()), "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, c.IsAborted())
	stored, ok := c.Get(ContextUserKey)
	require.True(t, ok)
	claims := stored.(*models.JWTClaims)
	assert.Equal(t, "teacher-1", claims.ProfileID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	c, rec := runAuthMiddleware(t, JWT(newTokenValidator()), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTRejectsMalformedToken(t *testing.T) {
	c, rec := runAuthMiddleware(t, JWT(newTokenValidator()), "Bearer not-a-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, c.IsAborted())
}

func TestOptionalJWTAttachesClaimsWhenPresent(t *testing.T) {
	token := mintAccessToken(t, "admin-1", models.RoleSuperAdmin)

	c, rec := runAuthMiddleware(t, OptionalJWT(newTokenValidator()), "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, c.IsAborted())
	stored, ok := c.Get(ContextUserKey)
	require.True(t, ok)
	assert.Equal(t, models.RoleSuperAdmin, stored.(*models.JWTClaims).Role)
}

func TestOptionalJWTPassesThroughAnonymous(t *testing.T) {
	c, rec := runAuthMiddleware(t, OptionalJWT(newTokenValidator()), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, c.IsAborted())
	_, ok := c.Get(ContextUserKey)
	assert.False(t, ok)
}

func TestOptionalJWTIgnoresInvalidToken(t *testing.T) {
	c, rec := runAuthMiddleware(t, OptionalJWT(newTokenValidator()), "Bearer garbage")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, c.IsAborted())
	_, ok := c.Get(ContextUserKey)
	assert.False(t, ok)
}
