package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studycubs/studycubs-api/internal/models"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type batchRepository interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error)
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	Create(ctx context.Context, batch *models.Batch) error
	Update(ctx context.Context, batch *models.Batch) error
	Delete(ctx context.Context, id string) error
}

// CreateBatchRequest represents payload for creating batches.
type CreateBatchRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	MaxStudents int    `json:"max_students" validate:"omitempty,min=1,max=500"`
}

// UpdateBatchRequest represents payload for updating batches.
type UpdateBatchRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	MaxStudents int    `json:"max_students" validate:"omitempty,min=1,max=500"`
	Active      *bool  `json:"active"`
}

// BatchService orchestrates batch operations. Every mutation is scoped to
// the owning teacher; super admins pass an empty actorTeacherID and bypass
// the ownership check.
type BatchService struct {
	repo      batchRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService constructs a BatchService.
func NewBatchService(repo batchRepository, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{repo: repo, validator: validate, logger: logger}
}

// List returns batches plus pagination data.
func (s *BatchService) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, *models.Pagination, error) {
	batches, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	return batches, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a batch by id, enforcing teacher ownership when set.
func (s *BatchService) Get(ctx context.Context, id, actorTeacherID string) (*models.Batch, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if actorTeacherID != "" && batch.TeacherID != actorTeacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "batch belongs to another teacher")
	}
	return batch, nil
}

// Create registers a new batch owned by the given teacher. Batches start
// active.
func (s *BatchService) Create(ctx context.Context, teacherID string, req CreateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}

	batch := &models.Batch{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		TeacherID:   teacherID,
		MaxStudents: req.MaxStudents,
		Active:      true,
	}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}
	return batch, nil
}

// Update modifies an existing batch.
func (s *BatchService) Update(ctx context.Context, id, actorTeacherID string, req UpdateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	batch, err := s.Get(ctx, id, actorTeacherID)
	if err != nil {
		return nil, err
	}

	batch.Name = strings.TrimSpace(req.Name)
	batch.Description = strings.TrimSpace(req.Description)
	if req.MaxStudents > 0 {
		batch.MaxStudents = req.MaxStudents
	}
	if req.Active != nil {
		batch.Active = *req.Active
	}

	if err := s.repo.Update(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch")
	}
	return batch, nil
}

// Delete removes a batch.
func (s *BatchService) Delete(ctx context.Context, id, actorTeacherID string) error {
	if _, err := s.Get(ctx, id, actorTeacherID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch")
	}
	return nil
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
