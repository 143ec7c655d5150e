package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycubs/studycubs-api/internal/middleware"
	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/service"
	"github.com/studycubs/studycubs-api/pkg/storage"
)

type fakeStudentRepo struct {
	students map[string]*models.Student
	taken    map[string]bool
}

func newFakeStudentRepo(students ...*models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[string]*models.Student), taken: make(map[string]bool)}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (f *fakeStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range f.students {
		if filter.TeacherID != "" && s.TeacherID != filter.TeacherID {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *student
	return &copied, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id string) error {
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) SetCredentials(_ context.Context, studentID, username, passwordHash string) error {
	student := f.students[studentID]
	student.Username = &username
	student.PasswordHash = &passwordHash
	student.LoginEnabled = true
	f.taken[username] = true
	return nil
}

func newStudentFixture(t *testing.T, students ...*models.Student) (*StudentHandler, *fakeStudentRepo) {
	t.Helper()
	repo := newFakeStudentRepo(students...)
	studentSvc := service.NewStudentService(repo, nil, nil, nil)
	credentialSvc := service.NewCredentialService(repo, nil, nil, service.CredentialConfig{})

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	exportSvc := service.NewExportService(repo, store, signer, service.ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)

	return NewStudentHandler(studentSvc, credentialSvc, exportSvc), repo
}

func performCredentialRequest(t *testing.T, handler *StudentHandler, studentID string, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students/"+studentID+"/credentials", nil)
	c.Params = gin.Params{{Key: "id", Value: studentID}}
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	handler.GenerateCredentials(c)
	return rec
}

func TestGenerateCredentialsReturnsPlaintextOnce(t *testing.T) {
	handler, repo := newStudentFixture(t, &models.Student{
		ID:        "stu-00001234",
		FullName:  "Asha Patel",
		TeacherID: "teacher-1",
		Active:    true,
	})

	rec := performCredentialRequest(t, handler, "stu-00001234", &models.JWTClaims{ProfileID: "teacher-1", Role: models.RoleTeacher})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data struct {
			StudentID string `json:"student_id"`
			Username  string `json:"username"`
			Password  string `json:"password"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "ashapatel_1234", envelope.Data.Username)
	assert.Len(t, envelope.Data.Password, 8)

	// Stored record keeps only the hash, never the plaintext.
	stored := repo.students["stu-00001234"]
	assert.True(t, stored.LoginEnabled)
	require.NotNil(t, stored.PasswordHash)
	assert.NotEqual(t, envelope.Data.Password, *stored.PasswordHash)
}

func TestGenerateCredentialsConflictsWhenEnabled(t *testing.T) {
	handler, _ := newStudentFixture(t, &models.Student{
		ID:           "stu-00001234",
		FullName:     "Asha Patel",
		TeacherID:    "teacher-1",
		LoginEnabled: true,
	})

	rec := performCredentialRequest(t, handler, "stu-00001234", &models.JWTClaims{ProfileID: "teacher-1", Role: models.RoleTeacher})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGenerateCredentialsForbiddenForForeignStudent(t *testing.T) {
	handler, repo := newStudentFixture(t, &models.Student{
		ID:        "stu-00001234",
		FullName:  "Asha Patel",
		TeacherID: "teacher-1",
	})

	rec := performCredentialRequest(t, handler, "stu-00001234", &models.JWTClaims{ProfileID: "teacher-2", Role: models.RoleTeacher})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, repo.students["stu-00001234"].LoginEnabled)
}

func TestGenerateCredentialsUnknownStudent(t *testing.T) {
	handler, _ := newStudentFixture(t)

	rec := performCredentialRequest(t, handler, "missing", &models.JWTClaims{ProfileID: "teacher-1", Role: models.RoleTeacher})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentExportReturnsSignedURL(t *testing.T) {
	handler, _ := newStudentFixture(t, &models.Student{
		ID:        "stu-00001234",
		FullName:  "Asha Patel",
		TeacherID: "teacher-1",
		Grade:     "5",
	})

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/export", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{ProfileID: "teacher-1", Role: models.RoleTeacher})

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Data.URL, "/api/v1/exports/")
}
