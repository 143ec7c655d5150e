package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studycubs/studycubs-api/internal/middleware"
	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/service"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type fakeStudentAuthRepo struct {
	students map[string]*models.Student
}

func (f *fakeStudentAuthRepo) FindByUsername(_ context.Context, username string) (*models.Student, error) {
	student, ok := f.students[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.PublicStudent
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]models.PublicStudent)}
}

func (f *fakeSessionStore) Save(_ context.Context, student models.PublicStudent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := uuid.NewString()
	f.sessions[token] = student
	return token, nil
}

func (f *fakeSessionStore) Load(_ context.Context, token string) (*models.PublicStudent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	student, ok := f.sessions[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNoSession, "")
	}
	return &student, nil
}

func (f *fakeSessionStore) Clear(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func portalLoginRequest(t *testing.T, handler *PortalHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/portal/login", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.Login(c)
	return rec
}

func newPortalFixture(t *testing.T) (*PortalHandler, *fakeSessionStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret99"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)
	username := "ashapatel_1234"
	repo := &fakeStudentAuthRepo{students: map[string]*models.Student{
		username: {
			ID:           "stu-00001234",
			FullName:     "Asha Patel",
			TeacherID:    "teacher-1",
			Username:     &username,
			PasswordHash: &hashStr,
			LoginEnabled: true,
			Active:       true,
		},
	}}
	sessions := newFakeSessionStore()
	auth := service.NewStudentAuthService(repo, sessions, nil, nil)
	return NewPortalHandler(auth, nil, nil, nil), sessions
}

func TestPortalLoginSuccess(t *testing.T) {
	handler, sessions := newPortalFixture(t)

	rec := portalLoginRequest(t, handler, `{"username":"ashapatel_1234","password":"s3cret99"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data struct {
			SessionToken string               `json:"session_token"`
			Student      models.PublicStudent `json:"student"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.SessionToken)
	assert.Equal(t, "stu-00001234", envelope.Data.Student.ID)
	assert.Len(t, sessions.sessions, 1)
}

func TestPortalLoginWrongPassword(t *testing.T) {
	handler, _ := newPortalFixture(t)

	rec := portalLoginRequest(t, handler, `{"username":"ashapatel_1234","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid username or password")
}

func TestPortalLoginMissingFields(t *testing.T) {
	handler, _ := newPortalFixture(t)

	rec := portalLoginRequest(t, handler, `{"username":"  ","password":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortalLogoutRequiresSessionHeader(t *testing.T) {
	handler, _ := newPortalFixture(t)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/portal/logout", nil)

	handler.Logout(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPortalLogoutClearsSession(t *testing.T) {
	handler, sessions := newPortalFixture(t)

	token, err := sessions.Save(context.Background(), models.PublicStudent{ID: "stu-1"})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/portal/logout", nil)
	c.Request.Header.Set(middleware.SessionHeader, token)

	handler.Logout(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, sessions.sessions)
}

func TestPortalMeRequiresSession(t *testing.T) {
	handler, _ := newPortalFixture(t)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/portal/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPortalMeReturnsCurrentStudent(t *testing.T) {
	handler, _ := newPortalFixture(t)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/portal/me", nil)
	c.Set(middleware.ContextStudentKey, &models.PublicStudent{ID: "stu-1", FullName: "Asha Patel"})

	handler.Me(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Asha Patel")
}
