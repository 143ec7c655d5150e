package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycubs/studycubs-api/internal/models"
)

func submissionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "assignment_id", "student_id", "submission_text", "attachment_url",
		"marks_obtained", "feedback", "graded_at", "graded_by", "submitted_at",
	})
}

func TestSubmissionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO assignment_submissions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	submission := &models.AssignmentSubmission{AssignmentID: "a1", StudentID: "s1", SubmissionText: "done"}
	err := repo.Create(context.Background(), submission)
	require.NoError(t, err)
	assert.NotEmpty(t, submission.ID)
	assert.False(t, submission.SubmittedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO assignment_submissions").
		WillReturnError(&pq.Error{Code: "23505"})

	submission := &models.AssignmentSubmission{AssignmentID: "a1", StudentID: "s1", SubmissionText: "done"}
	err := repo.Create(context.Background(), submission)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListJoinsTeacher(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	rows := submissionRows().
		AddRow("sub1", "a1", "s1", "done", nil, nil, nil, nil, nil, time.Now())
	mock.ExpectQuery("FROM assignment_submissions s JOIN assignments a ON a.id = s.assignment_id WHERE 1=1 AND a.teacher_id = \\$1").
		WithArgs("t1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM assignment_submissions").
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	submissions, total, err := repo.List(context.Background(), models.SubmissionFilter{TeacherID: "t1"})
	require.NoError(t, err)
	assert.Len(t, submissions, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
