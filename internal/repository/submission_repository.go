package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/studycubs/studycubs-api/internal/models"
)

// ErrDuplicateSubmission is returned when a student submits the same
// assignment twice; one submission per (assignment, student).
var ErrDuplicateSubmission = errors.New("assignment already submitted")

// SubmissionRepository manages persistence for assignment submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, assignment_id, student_id, submission_text, attachment_url, marks_obtained, feedback, graded_at, graded_by, submitted_at`

// Create inserts a submission. The (assignment_id, student_id) unique
// constraint maps to ErrDuplicateSubmission.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.AssignmentSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignment_submissions (id, assignment_id, student_id, submission_text, attachment_url, submitted_at)
        VALUES (:id, :assignment_id, :student_id, :submission_text, :attachment_url, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// FindByID fetches a submission by ID.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.AssignmentSubmission, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignment_submissions WHERE id = $1 LIMIT 1`, submissionColumns)
	var submission models.AssignmentSubmission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &submission, nil
}

// ExistsFor reports whether the student already submitted the assignment.
func (r *SubmissionRepository) ExistsFor(ctx context.Context, assignmentID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM assignment_submissions WHERE assignment_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, assignmentID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check submission: %w", err)
	}
	return true, nil
}

// List returns submissions matching the provided filters; teacher filtering
// joins through the owning assignment.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.AssignmentSubmission, int, error) {
	base := "FROM assignment_submissions s JOIN assignments a ON a.id = s.assignment_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AssignmentID != "" {
		conditions = append(conditions, fmt.Sprintf("s.assignment_id = $%d", len(args)+1))
		args = append(args, filter.AssignmentID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("s.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("a.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	columns := make([]string, 0)
	for _, col := range strings.Split(submissionColumns, ",") {
		columns = append(columns, "s."+strings.TrimSpace(col))
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY s.submitted_at DESC LIMIT %d OFFSET %d", strings.Join(columns, ", "), base, size, offset)

	var submissions []models.AssignmentSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}
	return submissions, total, nil
}
