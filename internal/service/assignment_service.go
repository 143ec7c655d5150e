package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studycubs/studycubs-api/internal/dto"
	"github.com/studycubs/studycubs-api/internal/models"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	ListForStudent(ctx context.Context, studentID string) ([]dto.StudentAssignmentView, error)
}

// CreateAssignmentRequest represents payload for creating assignments.
type CreateAssignmentRequest struct {
	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	BatchID     string     `json:"batch_id" validate:"required"`
	DueDate     *time.Time `json:"due_date"`
	TotalMarks  int        `json:"total_marks" validate:"omitempty,min=0,max=1000"`
	FileName    *string    `json:"file_name" validate:"omitempty,max=300"`
	FileURL     *string    `json:"file_url" validate:"omitempty,max=1000"`
}

// UpdateAssignmentRequest represents payload for updating assignments.
type UpdateAssignmentRequest struct {
	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	BatchID     string     `json:"batch_id" validate:"required"`
	DueDate     *time.Time `json:"due_date"`
	TotalMarks  int        `json:"total_marks" validate:"omitempty,min=0,max=1000"`
	FileName    *string    `json:"file_name" validate:"omitempty,max=300"`
	FileURL     *string    `json:"file_url" validate:"omitempty,max=1000"`
}

// AssignmentService orchestrates assignment lifecycle operations.
// Assignments are created unpublished and become visible to students only
// when the owning teacher flips the publish flag.
type AssignmentService struct {
	repo      assignmentRepository
	batches   batchOwnershipChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, batches batchOwnershipChecker, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, batches: batches, validator: validate, logger: logger}
}

// List returns assignments plus pagination data.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns an assignment by id, enforcing teacher ownership when set.
func (s *AssignmentService) Get(ctx context.Context, id, actorTeacherID string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if actorTeacherID != "" && assignment.TeacherID != actorTeacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another teacher")
	}
	return assignment, nil
}

// Create registers a new assignment for the given teacher, unpublished.
func (s *AssignmentService) Create(ctx context.Context, teacherID string, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	if err := s.checkBatch(ctx, req.BatchID, teacherID); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		BatchID:     req.BatchID,
		TeacherID:   teacherID,
		DueDate:     req.DueDate,
		TotalMarks:  req.TotalMarks,
		Published:   false,
		FileName:    req.FileName,
		FileURL:     req.FileURL,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Update modifies an existing assignment.
func (s *AssignmentService) Update(ctx context.Context, id, actorTeacherID string, req UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	assignment, err := s.Get(ctx, id, actorTeacherID)
	if err != nil {
		return nil, err
	}
	if err := s.checkBatch(ctx, req.BatchID, assignment.TeacherID); err != nil {
		return nil, err
	}

	assignment.Title = strings.TrimSpace(req.Title)
	assignment.Description = strings.TrimSpace(req.Description)
	assignment.BatchID = req.BatchID
	assignment.DueDate = req.DueDate
	assignment.TotalMarks = req.TotalMarks
	assignment.FileName = req.FileName
	assignment.FileURL = req.FileURL

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	return assignment, nil
}

// SetPublished toggles assignment visibility. Setting the current state
// again is a no-op, not an error.
func (s *AssignmentService) SetPublished(ctx context.Context, id, actorTeacherID string, published bool) (*models.Assignment, error) {
	assignment, err := s.Get(ctx, id, actorTeacherID)
	if err != nil {
		return nil, err
	}
	if assignment.Published == published {
		return assignment, nil
	}
	if err := s.repo.SetPublished(ctx, id, published); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update publish state")
	}
	assignment.Published = published
	return assignment, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, id, actorTeacherID string) error {
	if _, err := s.Get(ctx, id, actorTeacherID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

// ListForStudent returns every published assignment for the student's
// batch joined with the student's own submission state. Past-due
// assignments stay listed.
func (s *AssignmentService) ListForStudent(ctx context.Context, studentID string) ([]dto.StudentAssignmentView, error) {
	views, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student assignments")
	}
	if views == nil {
		views = []dto.StudentAssignmentView{}
	}
	return views, nil
}

func (s *AssignmentService) checkBatch(ctx context.Context, batchID, teacherID string) error {
	if batchID == "" || s.batches == nil {
		return nil
	}
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "batch does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if teacherID != "" && batch.TeacherID != teacherID {
		return appErrors.Clone(appErrors.ErrForbidden, "batch belongs to another teacher")
	}
	return nil
}
