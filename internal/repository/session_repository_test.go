package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycubs/studycubs-api/internal/models"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type fakeSessionRedis struct {
	values map[string][]byte
}

func newFakeSessionRedis() *fakeSessionRedis {
	return &fakeSessionRedis{values: make(map[string][]byte)}
}

func (f *fakeSessionRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	payload, ok := value.([]byte)
	if !ok {
		return redis.NewStatusResult("", assert.AnError)
	}
	f.values[key] = append([]byte(nil), payload...)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeSessionRedis) Get(_ context.Context, key string) *redis.StringCmd {
	raw, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(raw), nil)
}

func (f *fakeSessionRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func sessionStudent() models.PublicStudent {
	batchID := "batch-1"
	username := "ashapatel_1234"
	return models.PublicStudent{
		ID:             "student-1",
		FullName:       "Asha Patel",
		Grade:          "7",
		TeacherID:      "teacher-1",
		BatchID:        &batchID,
		Username:       &username,
		EnrollmentDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSessionRepositorySaveLoadRoundTrip(t *testing.T) {
	store := newFakeSessionRedis()
	repo := NewSessionRepository(store, "student_session", nil)
	student := sessionStudent()

	token, err := repo.Save(context.Background(), student)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	loaded, err := repo.Load(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, student, *loaded)
}

func TestSessionRepositorySaveMintsDistinctTokens(t *testing.T) {
	store := newFakeSessionRedis()
	repo := NewSessionRepository(store, "student_session", nil)

	first, err := repo.Save(context.Background(), sessionStudent())
	require.NoError(t, err)
	second, err := repo.Save(context.Background(), sessionStudent())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, store.values, 2)
}

func TestSessionRepositoryLoadAbsentToken(t *testing.T) {
	repo := NewSessionRepository(newFakeSessionRedis(), "student_session", nil)

	_, err := repo.Load(context.Background(), "never-issued")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoSession.Code, appErrors.FromError(err).Code)

	_, err = repo.Load(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoSession.Code, appErrors.FromError(err).Code)
}

func TestSessionRepositoryCorruptPayloadCleared(t *testing.T) {
	store := newFakeSessionRedis()
	repo := NewSessionRepository(store, "student_session", nil)
	store.values["student_session:bad-token"] = []byte("{not valid json")

	_, err := repo.Load(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoSession.Code, appErrors.FromError(err).Code)

	// The corrupt entry is deleted, not left behind for a retry.
	assert.NotContains(t, store.values, "student_session:bad-token")
}

func TestSessionRepositoryClear(t *testing.T) {
	store := newFakeSessionRedis()
	repo := NewSessionRepository(store, "student_session", nil)

	token, err := repo.Save(context.Background(), sessionStudent())
	require.NoError(t, err)

	require.NoError(t, repo.Clear(context.Background(), token))
	_, err = repo.Load(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoSession.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.values)
}
