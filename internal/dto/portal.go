package dto

import (
	"time"

	"github.com/studycubs/studycubs-api/internal/models"
)

// StudentLoginResponse returns the minted session token and the public
// student record after a successful portal login.
type StudentLoginResponse struct {
	SessionToken string               `json:"session_token"`
	Student      models.PublicStudent `json:"student"`
}

// StudentAssignmentView is one row of the student-facing assignment list:
// the published assignment joined with the student's own submission, when
// one exists.
type StudentAssignmentView struct {
	AssignmentID  string     `db:"assignment_id" json:"assignment_id"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`
	TotalMarks    int        `db:"total_marks" json:"total_marks"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	Submitted     bool       `db:"submitted" json:"submitted"`
	SubmissionID  *string    `db:"submission_id" json:"submission_id,omitempty"`
	MarksObtained *int       `db:"marks_obtained" json:"marks_obtained,omitempty"`
	Feedback      *string    `db:"feedback" json:"feedback,omitempty"`
	GradedAt      *time.Time `db:"graded_at" json:"graded_at,omitempty"`
}
