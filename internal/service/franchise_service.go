package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/repository"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type franchiseRepository interface {
	List(ctx context.Context) ([]models.FranchisePage, error)
	FindByID(ctx context.Context, id string) (*models.FranchisePage, error)
	FindBySlug(ctx context.Context, slug string) (*models.FranchisePage, error)
	FindBySlugAny(ctx context.Context, slug string) (*models.FranchisePage, error)
	Create(ctx context.Context, page *models.FranchisePage) error
	Update(ctx context.Context, page *models.FranchisePage) error
	Delete(ctx context.Context, id string) error
}

// CreateFranchisePageRequest represents payload for creating a landing page.
// SEO metadata is generated from city/state and can be adjusted afterwards
// through updates.
type CreateFranchisePageRequest struct {
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"required,max=100"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,max=50"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	Address      string `json:"address" validate:"omitempty,max=500"`
}

// UpdateFranchisePageRequest represents payload for editing a landing page.
type UpdateFranchisePageRequest struct {
	Title           string `json:"title" validate:"required,max=300"`
	MetaDescription string `json:"meta_description" validate:"omitempty,max=500"`
	MetaKeywords    string `json:"meta_keywords" validate:"omitempty,max=1000"`
	HeroTitle       string `json:"hero_title" validate:"omitempty,max=300"`
	HeroSubtitle    string `json:"hero_subtitle" validate:"omitempty,max=300"`
	ContactPhone    string `json:"contact_phone" validate:"omitempty,max=50"`
	ContactEmail    string `json:"contact_email" validate:"omitempty,email"`
	Address         string `json:"address" validate:"omitempty,max=500"`
	Active          *bool  `json:"active"`
}

// FranchiseConfig tunes landing page generation.
type FranchiseConfig struct {
	Enabled   bool
	BrandName string
}

// FranchiseService manages city landing pages and their generated SEO
// metadata.
type FranchiseService struct {
	repo      franchiseRepository
	validator *validator.Validate
	logger    *zap.Logger
	cfg       FranchiseConfig
}

// NewFranchiseService constructs a FranchiseService.
func NewFranchiseService(repo franchiseRepository, validate *validator.Validate, logger *zap.Logger, cfg FranchiseConfig) *FranchiseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BrandName == "" {
		cfg.BrandName = "StudyCubs"
	}
	return &FranchiseService{repo: repo, validator: validate, logger: logger, cfg: cfg}
}

// Enabled reports whether public landing pages are served at all.
func (s *FranchiseService) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// List returns every landing page, active or not, for admin management.
func (s *FranchiseService) List(ctx context.Context) ([]models.FranchisePage, error) {
	pages, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list franchise pages")
	}
	if pages == nil {
		pages = []models.FranchisePage{}
	}
	return pages, nil
}

// Get returns a landing page by id.
func (s *FranchiseService) Get(ctx context.Context, id string) (*models.FranchisePage, error) {
	page, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "franchise page not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load franchise page")
	}
	return page, nil
}

// GetBySlug returns a landing page for public rendering. Inactive pages
// stay hidden unless includeInactive is set, which admin preview uses.
func (s *FranchiseService) GetBySlug(ctx context.Context, slug string, includeInactive bool) (*models.FranchisePage, error) {
	lookup := s.repo.FindBySlug
	if includeInactive {
		lookup = s.repo.FindBySlugAny
	}
	page, err := lookup(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load franchise page")
	}
	return page, nil
}

// Create generates slug and SEO metadata from city/state and stores the
// page. Duplicate slugs conflict.
func (s *FranchiseService) Create(ctx context.Context, createdBy string, req CreateFranchisePageRequest) (*models.FranchisePage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid franchise page payload")
	}

	city := strings.TrimSpace(req.City)
	state := strings.TrimSpace(req.State)
	brand := s.cfg.BrandName

	page := &models.FranchisePage{
		Slug:            pageSlug(city, state),
		City:            city,
		State:           state,
		Title:           fmt.Sprintf("Best Coaching Classes in %s | %s %s | Top Educational Center %s", city, brand, city, state),
		MetaDescription: fmt.Sprintf("Join %s %s - Premium coaching classes for kids in %s, %s. Expert teachers, proven methods, personalized learning. Enroll today for academic excellence!", brand, city, city, state),
		MetaKeywords:    pageKeywords(city, state),
		HeroTitle:       fmt.Sprintf("%s %s", brand, city),
		HeroSubtitle:    fmt.Sprintf("Premium Educational Excellence in %s", city),
		ContactPhone:    strings.TrimSpace(req.ContactPhone),
		ContactEmail:    strings.TrimSpace(req.ContactEmail),
		Address:         strings.TrimSpace(req.Address),
		Active:          true,
		CreatedBy:       createdBy,
	}

	if err := s.repo.Create(ctx, page); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a page for this city and state already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create franchise page")
	}
	return page, nil
}

// Update edits the generated content of an existing page. Slug, city and
// state are fixed at creation time.
func (s *FranchiseService) Update(ctx context.Context, id string, req UpdateFranchisePageRequest) (*models.FranchisePage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid franchise page payload")
	}

	page, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	page.Title = strings.TrimSpace(req.Title)
	if req.MetaDescription != "" {
		page.MetaDescription = strings.TrimSpace(req.MetaDescription)
	}
	if req.MetaKeywords != "" {
		page.MetaKeywords = strings.TrimSpace(req.MetaKeywords)
	}
	if req.HeroTitle != "" {
		page.HeroTitle = strings.TrimSpace(req.HeroTitle)
	}
	if req.HeroSubtitle != "" {
		page.HeroSubtitle = strings.TrimSpace(req.HeroSubtitle)
	}
	page.ContactPhone = strings.TrimSpace(req.ContactPhone)
	page.ContactEmail = strings.TrimSpace(req.ContactEmail)
	page.Address = strings.TrimSpace(req.Address)
	if req.Active != nil {
		page.Active = *req.Active
	}

	if err := s.repo.Update(ctx, page); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update franchise page")
	}
	return page, nil
}

// Delete removes a landing page.
func (s *FranchiseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete franchise page")
	}
	return nil
}

func pageSlug(city, state string) string {
	join := fmt.Sprintf("%s-%s", city, state)
	join = strings.ToLower(join)
	join = strings.ReplaceAll(join, " ", "-")
	return join
}

func pageKeywords(city, state string) string {
	lc := strings.ToLower(city)
	ls := strings.ToLower(state)
	keywords := []string{
		fmt.Sprintf("coaching classes %s", lc),
		fmt.Sprintf("education center %s", lc),
		fmt.Sprintf("tutoring %s", lc),
		fmt.Sprintf("study cubs %s", lc),
		fmt.Sprintf("best coaching %s %s", lc, ls),
		fmt.Sprintf("kids learning %s", lc),
		fmt.Sprintf("academic support %s", lc),
		fmt.Sprintf("teaching center %s", lc),
	}
	return strings.Join(keywords, ", ")
}
