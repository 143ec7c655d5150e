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

// ErrDuplicateUsername is returned when the students.username unique
// constraint rejects a credential insert. Callers regenerate and retry.
var ErrDuplicateUsername = errors.New("username already exists")

// ErrLoginAlreadyEnabled is returned when credentials are generated for a
// student whose login was already enabled; the transition is one-way.
var ErrLoginAlreadyEnabled = errors.New("student login already enabled")

const uniqueViolation = "23505"

// StudentRepository manages persistence for student records, including the
// credential columns that back the student login flow.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, full_name, email, phone, age, grade, parent_name, parent_phone, parent_email,
        teacher_id, batch_id, active, username, password_hash, is_login_enabled, enrollment_date, created_at, updated_at`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(COALESCE(username, '')) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"full_name": true, "enrollment_date": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "enrollment_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, base, sortBy, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1 LIMIT 1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// FindByUsername fetches an active, login-enabled student by username.
// The password hash never travels further than the authenticating service.
func (r *StudentRepository) FindByUsername(ctx context.Context, username string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE username = $1 AND is_login_enabled = TRUE AND active = TRUE LIMIT 1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by username: %w", err)
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, full_name, email, phone, age, grade, parent_name, parent_phone, parent_email,
        teacher_id, batch_id, active, is_login_enabled, enrollment_date, created_at, updated_at)
        VALUES (:id, :full_name, :email, :phone, :age, :grade, :parent_name, :parent_phone, :parent_email,
        :teacher_id, :batch_id, :active, :is_login_enabled, :enrollment_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student. Credential columns are untouched;
// they only change through SetCredentials.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, email = :email, phone = :phone, age = :age, grade = :grade,
        parent_name = :parent_name, parent_phone = :parent_phone, parent_email = :parent_email,
        batch_id = :batch_id, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student row.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// SetCredentials stores the generated username and password hash and flips
// is_login_enabled. The is_login_enabled = FALSE guard makes concurrent
// generations race safely: exactly one wins, the rest see
// ErrLoginAlreadyEnabled. Unique-constraint rejects on username map to
// ErrDuplicateUsername so the caller can regenerate.
func (r *StudentRepository) SetCredentials(ctx context.Context, studentID, username, passwordHash string) error {
	const query = `UPDATE students SET username = $2, password_hash = $3, is_login_enabled = TRUE, updated_at = $4
        WHERE id = $1 AND is_login_enabled = FALSE`
	res, err := r.db.ExecContext(ctx, query, studentID, username, passwordHash, time.Now().UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("set student credentials: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set student credentials: %w", err)
	}
	if affected == 0 {
		return ErrLoginAlreadyEnabled
	}
	return nil
}
