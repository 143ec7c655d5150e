package models

import "time"

// Assignment is a piece of work published by a teacher to a batch.
// is_published gates visibility to students; past-due assignments are never
// hidden automatically.
type Assignment struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	BatchID     string     `db:"batch_id" json:"batch_id"`
	TeacherID   string     `db:"teacher_id" json:"teacher_id"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	TotalMarks  int        `db:"total_marks" json:"total_marks"`
	Published   bool       `db:"is_published" json:"is_published"`
	FileName    *string    `db:"file_name" json:"file_name,omitempty"`
	FileURL     *string    `db:"file_url" json:"file_url,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// AssignmentFilter encapsulates allowed search parameters for listing assignments.
type AssignmentFilter struct {
	TeacherID string
	BatchID   string
	Published *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
