package models

import "time"

// Student represents a learner enrolled with one teacher, optionally
// assigned to a batch. Username and password hash stay unset until the
// teacher generates login credentials; once is_login_enabled flips to true
// there is no reverse transition exposed by this API.
type Student struct {
	ID             string    `db:"id" json:"id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	Age            int       `db:"age" json:"age"`
	Grade          string    `db:"grade" json:"grade"`
	ParentName     string    `db:"parent_name" json:"parent_name"`
	ParentPhone    string    `db:"parent_phone" json:"parent_phone"`
	ParentEmail    string    `db:"parent_email" json:"parent_email"`
	TeacherID      string    `db:"teacher_id" json:"teacher_id"`
	BatchID        *string   `db:"batch_id" json:"batch_id,omitempty"`
	Active         bool      `db:"active" json:"active"`
	Username       *string   `db:"username" json:"username,omitempty"`
	PasswordHash   *string   `db:"password_hash" json:"-"`
	LoginEnabled   bool      `db:"is_login_enabled" json:"is_login_enabled"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Public strips the credential hash for use in student-facing payloads and
// the session store. The hash must never leave the repository boundary.
func (s Student) Public() PublicStudent {
	return PublicStudent{
		ID:             s.ID,
		FullName:       s.FullName,
		Grade:          s.Grade,
		TeacherID:      s.TeacherID,
		BatchID:        s.BatchID,
		Username:       s.Username,
		EnrollmentDate: s.EnrollmentDate,
	}
}

// PublicStudent is the record surfaced to an authenticated student and
// serialized into the session store.
type PublicStudent struct {
	ID             string    `json:"id"`
	FullName       string    `json:"full_name"`
	Grade          string    `json:"grade"`
	TeacherID      string    `json:"teacher_id"`
	BatchID        *string   `json:"batch_id,omitempty"`
	Username       *string   `json:"username,omitempty"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	TeacherID string
	BatchID   string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentCredentials carries a freshly generated username/password pair.
// The plaintext password is surfaced exactly once and never re-derivable.
type StudentCredentials struct {
	StudentID string `json:"student_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}
