package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/studycubs/studycubs-api/internal/middleware"
	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/service"
)

type fakeFranchiseRepo struct {
	bySlug map[string]*models.FranchisePage
}

func (f *fakeFranchiseRepo) List(context.Context) ([]models.FranchisePage, error) {
	var out []models.FranchisePage
	for _, page := range f.bySlug {
		out = append(out, *page)
	}
	return out, nil
}

func (f *fakeFranchiseRepo) FindByID(_ context.Context, id string) (*models.FranchisePage, error) {
	for _, page := range f.bySlug {
		if page.ID == id {
			copied := *page
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFranchiseRepo) FindBySlug(_ context.Context, slug string) (*models.FranchisePage, error) {
	page, ok := f.bySlug[slug]
	if !ok || !page.Active {
		return nil, sql.ErrNoRows
	}
	copied := *page
	return &copied, nil
}

func (f *fakeFranchiseRepo) FindBySlugAny(_ context.Context, slug string) (*models.FranchisePage, error) {
	page, ok := f.bySlug[slug]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *page
	return &copied, nil
}

func (f *fakeFranchiseRepo) Create(_ context.Context, page *models.FranchisePage) error {
	f.bySlug[page.Slug] = page
	return nil
}

func (f *fakeFranchiseRepo) Update(_ context.Context, page *models.FranchisePage) error {
	f.bySlug[page.Slug] = page
	return nil
}

func (f *fakeFranchiseRepo) Delete(_ context.Context, id string) error {
	for slug, page := range f.bySlug {
		if page.ID == id {
			delete(f.bySlug, slug)
		}
	}
	return nil
}

func newFranchiseFixture(enabled bool) *FranchiseHandler {
	repo := &fakeFranchiseRepo{bySlug: map[string]*models.FranchisePage{
		"pune-maharashtra": {
			ID:     "page-1",
			Slug:   "pune-maharashtra",
			City:   "Pune",
			State:  "Maharashtra",
			Title:  "Best Coaching Classes in Pune | StudyCubs Pune | Top Educational Center Maharashtra",
			Active: true,
		},
		"nagpur-maharashtra": {
			ID:     "page-2",
			Slug:   "nagpur-maharashtra",
			City:   "Nagpur",
			State:  "Maharashtra",
			Title:  "Best Coaching Classes in Nagpur | StudyCubs Nagpur | Top Educational Center Maharashtra",
			Active: false,
		},
	}}
	svc := service.NewFranchiseService(repo, nil, nil, service.FranchiseConfig{Enabled: enabled})
	return NewFranchiseHandler(svc)
}

func performPublicPageRequest(t *testing.T, handler *FranchiseHandler, slug string, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/pages/"+slug, nil)
	c.Params = gin.Params{{Key: "slug", Value: slug}}
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	handler.PublicPage(c)
	return rec
}

func TestPublicPageFound(t *testing.T) {
	handler := newFranchiseFixture(true)

	rec := performPublicPageRequest(t, handler, "pune-maharashtra", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Best Coaching Classes in Pune")
}

func TestPublicPageNormalizesSlug(t *testing.T) {
	handler := newFranchiseFixture(true)

	rec := performPublicPageRequest(t, handler, "Pune-Maharashtra", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicPageMissingSlug(t *testing.T) {
	handler := newFranchiseFixture(true)

	rec := performPublicPageRequest(t, handler, "nowhere-nostate", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicPageFeatureDisabled(t *testing.T) {
	handler := newFranchiseFixture(false)

	rec := performPublicPageRequest(t, handler, "pune-maharashtra", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicPageHidesInactiveFromAnonymous(t *testing.T) {
	handler := newFranchiseFixture(true)

	rec := performPublicPageRequest(t, handler, "nagpur-maharashtra", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicPageAdminPreviewsInactive(t *testing.T) {
	handler := newFranchiseFixture(true)

	rec := performPublicPageRequest(t, handler, "nagpur-maharashtra", &models.JWTClaims{ProfileID: "admin-1", Role: models.RoleSuperAdmin})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Best Coaching Classes in Nagpur")
}

func TestPublicPageTeacherGetsNoPreview(t *testing.T) {
	handler := newFranchiseFixture(true)

	rec := performPublicPageRequest(t, handler, "nagpur-maharashtra", &models.JWTClaims{ProfileID: "teacher-1", Role: models.RoleTeacher})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
