package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studycubs/studycubs-api/internal/repository"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type mockStatsRepo struct {
	teacherCounts *repository.TeacherCounts
	adminCounts   *repository.AdminCounts
	teacherCalls  int
	adminCalls    int
}

func (m *mockStatsRepo) TeacherCounts(ctx context.Context, teacherID string) (*repository.TeacherCounts, error) {
	m.teacherCalls++
	return m.teacherCounts, nil
}

func (m *mockStatsRepo) AdminCounts(ctx context.Context) (*repository.AdminCounts, error) {
	m.adminCalls++
	return m.adminCounts, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = make(map[string][]byte)
	return nil
}

func TestDashboardServiceTeacherCachesSecondRead(t *testing.T) {
	stats := &mockStatsRepo{teacherCounts: &repository.TeacherCounts{
		TotalBatches:     3,
		ActiveBatches:    2,
		TotalStudents:    40,
		ActiveStudents:   38,
		LoginEnabled:     20,
		TotalAssignments: 12,
		Published:        9,
	}}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	service := NewDashboardService(stats, cache, zap.NewNop(), DashboardConfig{})

	first, hit, err := service.Teacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, first.TotalBatches)
	assert.Equal(t, 20, first.LoginEnabled)

	second, hit, err := service.Teacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.TotalStudents, second.TotalStudents)
	assert.Equal(t, 1, stats.teacherCalls)
}

func TestDashboardServiceTeacherRequiresID(t *testing.T) {
	service := NewDashboardService(&mockStatsRepo{}, nil, zap.NewNop(), DashboardConfig{})

	_, _, err := service.Teacher(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDashboardServiceAdmin(t *testing.T) {
	stats := &mockStatsRepo{adminCounts: &repository.AdminCounts{
		TotalTeachers:    5,
		ActiveTeachers:   4,
		TotalStudents:    120,
		TotalBatches:     10,
		TotalAssignments: 33,
		FranchisePages:   2,
	}}
	service := NewDashboardService(stats, nil, zap.NewNop(), DashboardConfig{})

	summary, hit, err := service.Admin(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 5, summary.TotalTeachers)
	assert.Equal(t, 2, summary.FranchisePages)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestDashboardServiceInvalidate(t *testing.T) {
	stats := &mockStatsRepo{teacherCounts: &repository.TeacherCounts{TotalBatches: 1}}
	cacheRepo := &memoryCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	service := NewDashboardService(stats, cache, zap.NewNop(), DashboardConfig{})

	_, _, err := service.Teacher(context.Background(), "t1")
	require.NoError(t, err)
	require.NotEmpty(t, cacheRepo.entries)

	service.Invalidate(context.Background())
	assert.Empty(t, cacheRepo.entries)

	_, hit, err := service.Teacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, stats.teacherCalls)
}
