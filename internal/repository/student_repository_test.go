package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycubs/studycubs-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "full_name", "email", "phone", "age", "grade", "parent_name", "parent_phone", "parent_email",
		"teacher_id", "batch_id", "active", "username", "password_hash", "is_login_enabled", "enrollment_date", "created_at", "updated_at",
	})
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := studentRows().
		AddRow("s1", "Asha Rao", "asha@example.com", "555", 9, "4", "Parent", "556", "p@example.com",
			"t1", nil, true, nil, nil, false, time.Now(), time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM students WHERE 1=1 AND teacher_id = \\$1").
		WithArgs("t1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students WHERE 1=1 AND teacher_id = \\$1").
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{TeacherID: "t1"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{FullName: "Asha Rao", TeacherID: "t1", Active: true}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.False(t, student.EnrollmentDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySetCredentials(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET username = \\$2, password_hash = \\$3, is_login_enabled = TRUE").
		WithArgs("s1", "asharao_ab12", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetCredentials(context.Background(), "s1", "asharao_ab12", "$2a$10$hash")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySetCredentialsDuplicate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET username = \\$2, password_hash = \\$3, is_login_enabled = TRUE").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.SetCredentials(context.Background(), "s1", "asharao_ab12", "$2a$10$hash")
	require.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestStudentRepositorySetCredentialsAlreadyEnabled(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET username = \\$2, password_hash = \\$3, is_login_enabled = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetCredentials(context.Background(), "s1", "asharao_ab12", "$2a$10$hash")
	require.ErrorIs(t, err, ErrLoginAlreadyEnabled)
}

func TestStudentRepositoryFindByUsername(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	username := "asharao_ab12"
	hash := "$2a$10$hash"
	rows := studentRows().
		AddRow("s1", "Asha Rao", "", "", 9, "4", "", "", "",
			"t1", nil, true, &username, &hash, true, time.Now(), time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM students WHERE username = \\$1 AND is_login_enabled = TRUE AND active = TRUE").
		WithArgs(username).
		WillReturnRows(rows)

	student, err := repo.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	assert.Equal(t, "s1", student.ID)
	require.NotNil(t, student.Username)
	assert.Equal(t, username, *student.Username)
}
