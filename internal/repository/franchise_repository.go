package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/studycubs/studycubs-api/internal/models"
)

// ErrDuplicateSlug is returned when a franchise page slug already exists.
var ErrDuplicateSlug = errors.New("franchise page slug already exists")

// FranchiseRepository manages persistence for franchise landing pages.
type FranchiseRepository struct {
	db *sqlx.DB
}

// NewFranchiseRepository constructs a FranchiseRepository.
func NewFranchiseRepository(db *sqlx.DB) *FranchiseRepository {
	return &FranchiseRepository{db: db}
}

const franchiseColumns = `id, slug, city, state, title, meta_description, meta_keywords, hero_title, hero_subtitle,
        contact_phone, contact_email, address, active, created_by, created_at, updated_at`

// List returns all franchise pages, newest first.
func (r *FranchiseRepository) List(ctx context.Context) ([]models.FranchisePage, error) {
	query := fmt.Sprintf(`SELECT %s FROM franchise_pages ORDER BY created_at DESC`, franchiseColumns)
	var pages []models.FranchisePage
	if err := r.db.SelectContext(ctx, &pages, query); err != nil {
		return nil, fmt.Errorf("list franchise pages: %w", err)
	}
	return pages, nil
}

// FindByID fetches a page by ID.
func (r *FranchiseRepository) FindByID(ctx context.Context, id string) (*models.FranchisePage, error) {
	query := fmt.Sprintf(`SELECT %s FROM franchise_pages WHERE id = $1 LIMIT 1`, franchiseColumns)
	var page models.FranchisePage
	if err := r.db.GetContext(ctx, &page, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find franchise page: %w", err)
	}
	return &page, nil
}

// FindBySlug fetches an active page by slug for public rendering.
func (r *FranchiseRepository) FindBySlug(ctx context.Context, slug string) (*models.FranchisePage, error) {
	query := fmt.Sprintf(`SELECT %s FROM franchise_pages WHERE slug = $1 AND active = TRUE LIMIT 1`, franchiseColumns)
	var page models.FranchisePage
	if err := r.db.GetContext(ctx, &page, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find franchise page by slug: %w", err)
	}
	return &page, nil
}

// FindBySlugAny fetches a page by slug regardless of active state, for
// admin preview.
func (r *FranchiseRepository) FindBySlugAny(ctx context.Context, slug string) (*models.FranchisePage, error) {
	query := fmt.Sprintf(`SELECT %s FROM franchise_pages WHERE slug = $1 LIMIT 1`, franchiseColumns)
	var page models.FranchisePage
	if err := r.db.GetContext(ctx, &page, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find franchise page by slug: %w", err)
	}
	return &page, nil
}

// Create inserts a new franchise page.
func (r *FranchiseRepository) Create(ctx context.Context, page *models.FranchisePage) error {
	if page.ID == "" {
		page.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = now
	const query = `INSERT INTO franchise_pages (id, slug, city, state, title, meta_description, meta_keywords, hero_title, hero_subtitle,
        contact_phone, contact_email, address, active, created_by, created_at, updated_at)
        VALUES (:id, :slug, :city, :state, :title, :meta_description, :meta_keywords, :hero_title, :hero_subtitle,
        :contact_phone, :contact_email, :address, :active, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, page); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create franchise page: %w", err)
	}
	return nil
}

// Update modifies an existing franchise page.
func (r *FranchiseRepository) Update(ctx context.Context, page *models.FranchisePage) error {
	page.UpdatedAt = time.Now().UTC()
	const query = `UPDATE franchise_pages SET title = :title, meta_description = :meta_description, meta_keywords = :meta_keywords,
        hero_title = :hero_title, hero_subtitle = :hero_subtitle, contact_phone = :contact_phone, contact_email = :contact_email,
        address = :address, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, page); err != nil {
		return fmt.Errorf("update franchise page: %w", err)
	}
	return nil
}

// Delete removes a franchise page.
func (r *FranchiseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM franchise_pages WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete franchise page: %w", err)
	}
	return nil
}
