package models

import "time"

// AssignmentSubmission is a student's answer to a published assignment.
// One submission per (assignment, student); grading fields are populated by
// an external collaborator and only surfaced through reads here.
type AssignmentSubmission struct {
	ID             string     `db:"id" json:"id"`
	AssignmentID   string     `db:"assignment_id" json:"assignment_id"`
	StudentID      string     `db:"student_id" json:"student_id"`
	SubmissionText string     `db:"submission_text" json:"submission_text"`
	AttachmentURL  *string    `db:"attachment_url" json:"attachment_url,omitempty"`
	MarksObtained  *int       `db:"marks_obtained" json:"marks_obtained,omitempty"`
	Feedback       *string    `db:"feedback" json:"feedback,omitempty"`
	GradedAt       *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	GradedBy       *string    `db:"graded_by" json:"graded_by,omitempty"`
	SubmittedAt    time.Time  `db:"submitted_at" json:"submitted_at"`
}

// SubmissionFilter encapsulates search parameters for listing submissions.
type SubmissionFilter struct {
	AssignmentID string
	StudentID    string
	TeacherID    string
	Page         int
	PageSize     int
}
