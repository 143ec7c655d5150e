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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type batchOwnershipChecker interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

// CreateStudentRequest represents payload for enrolling students.
type CreateStudentRequest struct {
	FullName    string  `json:"full_name" validate:"required,max=200"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Phone       string  `json:"phone" validate:"omitempty,max=50"`
	Age         int     `json:"age" validate:"omitempty,min=3,max=25"`
	Grade       string  `json:"grade" validate:"omitempty,max=20"`
	ParentName  string  `json:"parent_name" validate:"omitempty,max=200"`
	ParentPhone string  `json:"parent_phone" validate:"omitempty,max=50"`
	ParentEmail string  `json:"parent_email" validate:"omitempty,email"`
	BatchID     *string `json:"batch_id"`
}

// UpdateStudentRequest represents payload for updating students.
type UpdateStudentRequest struct {
	FullName    string  `json:"full_name" validate:"required,max=200"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Phone       string  `json:"phone" validate:"omitempty,max=50"`
	Age         int     `json:"age" validate:"omitempty,min=3,max=25"`
	Grade       string  `json:"grade" validate:"omitempty,max=20"`
	ParentName  string  `json:"parent_name" validate:"omitempty,max=200"`
	ParentPhone string  `json:"parent_phone" validate:"omitempty,max=50"`
	ParentEmail string  `json:"parent_email" validate:"omitempty,email"`
	BatchID     *string `json:"batch_id"`
	Active      *bool   `json:"active"`
}

// StudentService orchestrates student roster operations.
type StudentService struct {
	repo      studentRepository
	batches   batchOwnershipChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, batches batchOwnershipChecker, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, batches: batches, validator: validate, logger: logger}
}

// List returns students plus pagination data.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a student by id, enforcing teacher ownership when set.
func (s *StudentService) Get(ctx context.Context, id, actorTeacherID string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if actorTeacherID != "" && student.TeacherID != actorTeacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student belongs to another teacher")
	}
	return student, nil
}

// Create enrolls a new student under the given teacher. Students start
// active with login disabled.
func (s *StudentService) Create(ctx context.Context, teacherID string, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	if err := s.checkBatch(ctx, req.BatchID, teacherID); err != nil {
		return nil, err
	}

	student := &models.Student{
		FullName:    strings.TrimSpace(req.FullName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Age:         req.Age,
		Grade:       strings.TrimSpace(req.Grade),
		ParentName:  strings.TrimSpace(req.ParentName),
		ParentPhone: strings.TrimSpace(req.ParentPhone),
		ParentEmail: strings.TrimSpace(req.ParentEmail),
		TeacherID:   teacherID,
		BatchID:     req.BatchID,
		Active:      true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student. Credentials are never touched here;
// they only change through the credential service.
func (s *StudentService) Update(ctx context.Context, id, actorTeacherID string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.Get(ctx, id, actorTeacherID)
	if err != nil {
		return nil, err
	}
	if err := s.checkBatch(ctx, req.BatchID, student.TeacherID); err != nil {
		return nil, err
	}

	student.FullName = strings.TrimSpace(req.FullName)
	student.Email = strings.TrimSpace(req.Email)
	student.Phone = strings.TrimSpace(req.Phone)
	student.Age = req.Age
	student.Grade = strings.TrimSpace(req.Grade)
	student.ParentName = strings.TrimSpace(req.ParentName)
	student.ParentPhone = strings.TrimSpace(req.ParentPhone)
	student.ParentEmail = strings.TrimSpace(req.ParentEmail)
	student.BatchID = req.BatchID
	if req.Active != nil {
		student.Active = *req.Active
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student record.
func (s *StudentService) Delete(ctx context.Context, id, actorTeacherID string) error {
	if _, err := s.Get(ctx, id, actorTeacherID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

func (s *StudentService) checkBatch(ctx context.Context, batchID *string, teacherID string) error {
	if batchID == nil || *batchID == "" || s.batches == nil {
		return nil
	}
	batch, err := s.batches.FindByID(ctx, *batchID)
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
