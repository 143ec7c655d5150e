package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/repository"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type submissionRepository interface {
	Create(ctx context.Context, submission *models.AssignmentSubmission) error
	FindByID(ctx context.Context, id string) (*models.AssignmentSubmission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.AssignmentSubmission, int, error)
}

type submissionAssignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
}

// SubmitRequest represents a student's submission payload.
type SubmitRequest struct {
	AssignmentID   string  `json:"assignment_id"`
	SubmissionText string  `json:"submission_text"`
	AttachmentURL  *string `json:"attachment_url,omitempty"`
}

// SubmissionService handles student submissions and teacher-side reads.
// Grading fields are written by an external collaborator; this service
// only ever reads them.
type SubmissionService struct {
	repo        submissionRepository
	assignments submissionAssignmentReader
	logger      *zap.Logger
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(repo submissionRepository, assignments submissionAssignmentReader, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{repo: repo, assignments: assignments, logger: logger}
}

// Submit stores a student's answer. Empty submission text is rejected
// before touching the database, and a second submission for the same
// assignment conflicts.
func (s *SubmissionService) Submit(ctx context.Context, student *models.PublicStudent, req SubmitRequest) (*models.AssignmentSubmission, error) {
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no active student session")
	}
	req.SubmissionText = strings.TrimSpace(req.SubmissionText)
	if req.AssignmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignment id is required")
	}
	if req.SubmissionText == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "submission text cannot be empty")
	}

	assignment, err := s.assignments.FindByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if !assignment.Published {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	if student.BatchID == nil || assignment.BatchID != *student.BatchID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignment is not available to this student")
	}

	submission := &models.AssignmentSubmission{
		AssignmentID:   req.AssignmentID,
		StudentID:      student.ID,
		SubmissionText: req.SubmissionText,
		AttachmentURL:  req.AttachmentURL,
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already submitted")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}
	return submission, nil
}

// Get returns a submission by id, enforcing teacher ownership through the
// owning assignment when set.
func (s *SubmissionService) Get(ctx context.Context, id, actorTeacherID string) (*models.AssignmentSubmission, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if actorTeacherID != "" {
		assignment, err := s.assignments.FindByID(ctx, submission.AssignmentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
		}
		if assignment.TeacherID != actorTeacherID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another teacher")
		}
	}
	return submission, nil
}

// List returns submissions plus pagination data.
func (s *SubmissionService) List(ctx context.Context, filter models.SubmissionFilter) ([]models.AssignmentSubmission, *models.Pagination, error) {
	submissions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, paginationFor(filter.Page, filter.PageSize, total), nil
}
