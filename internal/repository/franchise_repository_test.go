package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycubs/studycubs-api/internal/models"
)

func franchiseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "slug", "city", "state", "title", "meta_description", "meta_keywords", "hero_title", "hero_subtitle",
		"contact_phone", "contact_email", "address", "active", "created_by", "created_at", "updated_at",
	})
}

func TestFranchiseRepositoryFindBySlug(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewFranchiseRepository(db)

	rows := franchiseRows().
		AddRow("p1", "pune-maharashtra", "Pune", "Maharashtra", "Best Coaching Classes in Pune | StudyCubs Pune | Top Educational Center Maharashtra",
			"", "", "StudyCubs Pune", "Premium Educational Excellence in Pune", "", "", "", true, "admin-1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM franchise_pages WHERE slug = \\$1 AND active = TRUE").
		WithArgs("pune-maharashtra").
		WillReturnRows(rows)

	page, err := repo.FindBySlug(context.Background(), "pune-maharashtra")
	require.NoError(t, err)
	assert.Equal(t, "Pune", page.City)
	assert.Equal(t, "StudyCubs Pune", page.HeroTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFranchiseRepositoryFindBySlugHidesInactive(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewFranchiseRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM franchise_pages WHERE slug = \\$1 AND active = TRUE").
		WithArgs("pune-maharashtra").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindBySlug(context.Background(), "pune-maharashtra")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFranchiseRepositoryFindBySlugAnyIncludesInactive(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewFranchiseRepository(db)

	rows := franchiseRows().
		AddRow("p2", "nagpur-maharashtra", "Nagpur", "Maharashtra", "Best Coaching Classes in Nagpur | StudyCubs Nagpur | Top Educational Center Maharashtra",
			"", "", "StudyCubs Nagpur", "Premium Educational Excellence in Nagpur", "", "", "", false, "admin-1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM franchise_pages WHERE slug = \\$1 LIMIT 1").
		WithArgs("nagpur-maharashtra").
		WillReturnRows(rows)

	page, err := repo.FindBySlugAny(context.Background(), "nagpur-maharashtra")
	require.NoError(t, err)
	assert.Equal(t, "Nagpur", page.City)
	assert.False(t, page.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFranchiseRepositoryCreateDuplicateSlug(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewFranchiseRepository(db)

	mock.ExpectExec("INSERT INTO franchise_pages").
		WillReturnError(&pq.Error{Code: "23505"})

	page := &models.FranchisePage{Slug: "pune-maharashtra", City: "Pune", State: "Maharashtra"}
	err := repo.Create(context.Background(), page)
	assert.ErrorIs(t, err, ErrDuplicateSlug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFranchiseRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewFranchiseRepository(db)

	mock.ExpectExec("INSERT INTO franchise_pages").
		WillReturnResult(sqlmock.NewResult(1, 1))

	page := &models.FranchisePage{Slug: "pune-maharashtra", City: "Pune", State: "Maharashtra", Active: true}
	err := repo.Create(context.Background(), page)
	require.NoError(t, err)
	assert.NotEmpty(t, page.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
