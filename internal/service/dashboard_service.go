package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/studycubs/studycubs-api/internal/dto"
	"github.com/studycubs/studycubs-api/internal/repository"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type dashboardStatsRepository interface {
	TeacherCounts(ctx context.Context, teacherID string) (*repository.TeacherCounts, error)
	AdminCounts(ctx context.Context) (*repository.AdminCounts, error)
}

// DashboardConfig tunes dashboard behaviour.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the role-specific dashboard payloads over the
// aggregate count queries, with a short-lived cache in front.
type DashboardService struct {
	stats  dashboardStatsRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardConfig
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(stats dashboardStatsRepository, cache *CacheService, logger *zap.Logger, cfg DashboardConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{stats: stats, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// Teacher returns the per-teacher dashboard and whether it was served from
// cache.
func (s *DashboardService) Teacher(ctx context.Context, teacherID string) (*dto.TeacherDashboardResponse, bool, error) {
	if teacherID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	cacheKey := fmt.Sprintf("dash:teacher:%s", teacherID)
	if s.cache != nil {
		var cached dto.TeacherDashboardResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return &cached, true, nil
		}
	}

	counts, err := s.stats.TeacherCounts(ctx, teacherID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher dashboard")
	}

	summary := &dto.TeacherDashboardResponse{
		TeacherID:        teacherID,
		TotalBatches:     counts.TotalBatches,
		ActiveBatches:    counts.ActiveBatches,
		TotalStudents:    counts.TotalStudents,
		ActiveStudents:   counts.ActiveStudents,
		LoginEnabled:     counts.LoginEnabled,
		TotalAssignments: counts.TotalAssignments,
		Published:        counts.Published,
		GeneratedAt:      s.now().UTC(),
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// Admin returns the center-wide dashboard and whether it was served from
// cache.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, bool, error) {
	const cacheKey = "dash:admin"
	if s.cache != nil {
		var cached dto.AdminDashboardResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return &cached, true, nil
		}
	}

	counts, err := s.stats.AdminCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin dashboard")
	}

	summary := &dto.AdminDashboardResponse{
		TotalTeachers:    counts.TotalTeachers,
		ActiveTeachers:   counts.ActiveTeachers,
		TotalStudents:    counts.TotalStudents,
		TotalBatches:     counts.TotalBatches,
		TotalAssignments: counts.TotalAssignments,
		FranchisePages:   counts.FranchisePages,
		GeneratedAt:      s.now().UTC(),
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// Invalidate drops every cached dashboard. Mutating services call this
// after writes that move the counters.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
