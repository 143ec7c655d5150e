package dto

import "time"

// TeacherDashboardResponse aggregates the counters shown on the teacher
// dashboard landing view.
type TeacherDashboardResponse struct {
	TeacherID        string    `json:"teacher_id"`
	TotalBatches     int       `json:"total_batches"`
	ActiveBatches    int       `json:"active_batches"`
	TotalStudents    int       `json:"total_students"`
	ActiveStudents   int       `json:"active_students"`
	LoginEnabled     int       `json:"login_enabled_students"`
	TotalAssignments int       `json:"total_assignments"`
	Published        int       `json:"published_assignments"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// AdminDashboardResponse aggregates the center-wide counters shown on the
// super-admin dashboard.
type AdminDashboardResponse struct {
	TotalTeachers    int       `json:"total_teachers"`
	ActiveTeachers   int       `json:"active_teachers"`
	TotalStudents    int       `json:"total_students"`
	TotalBatches     int       `json:"total_batches"`
	TotalAssignments int       `json:"total_assignments"`
	FranchisePages   int       `json:"franchise_pages"`
	GeneratedAt      time.Time `json:"generated_at"`
}
