package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// StatsRepository serves the count queries behind the dashboards.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// TeacherCounts captures the per-teacher dashboard aggregates.
type TeacherCounts struct {
	TotalBatches     int `db:"total_batches"`
	ActiveBatches    int `db:"active_batches"`
	TotalStudents    int `db:"total_students"`
	ActiveStudents   int `db:"active_students"`
	LoginEnabled     int `db:"login_enabled"`
	TotalAssignments int `db:"total_assignments"`
	Published        int `db:"published_assignments"`
}

// AdminCounts captures the center-wide dashboard aggregates.
type AdminCounts struct {
	TotalTeachers    int `db:"total_teachers"`
	ActiveTeachers   int `db:"active_teachers"`
	TotalStudents    int `db:"total_students"`
	TotalBatches     int `db:"total_batches"`
	TotalAssignments int `db:"total_assignments"`
	FranchisePages   int `db:"franchise_pages"`
}

// TeacherCounts aggregates batch/student/assignment counters for one teacher.
func (r *StatsRepository) TeacherCounts(ctx context.Context, teacherID string) (*TeacherCounts, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM batches WHERE teacher_id = $1) AS total_batches,
        (SELECT COUNT(*) FROM batches WHERE teacher_id = $1 AND active = TRUE) AS active_batches,
        (SELECT COUNT(*) FROM students WHERE teacher_id = $1) AS total_students,
        (SELECT COUNT(*) FROM students WHERE teacher_id = $1 AND active = TRUE) AS active_students,
        (SELECT COUNT(*) FROM students WHERE teacher_id = $1 AND is_login_enabled = TRUE) AS login_enabled,
        (SELECT COUNT(*) FROM assignments WHERE teacher_id = $1) AS total_assignments,
        (SELECT COUNT(*) FROM assignments WHERE teacher_id = $1 AND is_published = TRUE) AS published_assignments`
	var counts TeacherCounts
	if err := r.db.GetContext(ctx, &counts, query, teacherID); err != nil {
		return nil, fmt.Errorf("teacher dashboard counts: %w", err)
	}
	return &counts, nil
}

// AdminCounts aggregates the center-wide counters.
func (r *StatsRepository) AdminCounts(ctx context.Context) (*AdminCounts, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM profiles WHERE role = 'teacher') AS total_teachers,
        (SELECT COUNT(*) FROM profiles WHERE role = 'teacher' AND active = TRUE) AS active_teachers,
        (SELECT COUNT(*) FROM students) AS total_students,
        (SELECT COUNT(*) FROM batches) AS total_batches,
        (SELECT COUNT(*) FROM assignments) AS total_assignments,
        (SELECT COUNT(*) FROM franchise_pages) AS franchise_pages`
	var counts AdminCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("admin dashboard counts: %w", err)
	}
	return &counts, nil
}
