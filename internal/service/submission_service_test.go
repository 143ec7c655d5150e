package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/repository"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type mockSubmissionRepo struct {
	items       map[string]*models.AssignmentSubmission
	created     []models.AssignmentSubmission
	createCalls int
	duplicate   bool
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *models.AssignmentSubmission) error {
	m.createCalls++
	if m.duplicate {
		return repository.ErrDuplicateSubmission
	}
	if submission.ID == "" {
		submission.ID = "generated"
	}
	m.created = append(m.created, *submission)
	return nil
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*models.AssignmentSubmission, error) {
	if submission, ok := m.items[id]; ok {
		cp := *submission
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter models.SubmissionFilter) ([]models.AssignmentSubmission, int, error) {
	return nil, 0, nil
}

func portalStudent(batchID string) *models.PublicStudent {
	return &models.PublicStudent{ID: "s1", FullName: "Asha Rao", TeacherID: "t1", BatchID: &batchID}
}

func TestSubmissionServiceSubmit(t *testing.T) {
	repo := &mockSubmissionRepo{}
	assignments := &mockAssignmentRepo{items: map[string]*models.Assignment{
		"a1": {ID: "a1", BatchID: "b1", TeacherID: "t1", Published: true},
	}}
	service := NewSubmissionService(repo, assignments, zap.NewNop())

	submission, err := service.Submit(context.Background(), portalStudent("b1"), SubmitRequest{
		AssignmentID:   "a1",
		SubmissionText: "My answer",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", submission.StudentID)
	assert.Len(t, repo.created, 1)
}

func TestSubmissionServiceSubmitEmptyTextRejectedLocally(t *testing.T) {
	repo := &mockSubmissionRepo{}
	service := NewSubmissionService(repo, &mockAssignmentRepo{}, zap.NewNop())

	_, err := service.Submit(context.Background(), portalStudent("b1"), SubmitRequest{
		AssignmentID:   "a1",
		SubmissionText: "   \n\t ",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.createCalls)
}

func TestSubmissionServiceSubmitDuplicateConflicts(t *testing.T) {
	repo := &mockSubmissionRepo{duplicate: true}
	assignments := &mockAssignmentRepo{items: map[string]*models.Assignment{
		"a1": {ID: "a1", BatchID: "b1", TeacherID: "t1", Published: true},
	}}
	service := NewSubmissionService(repo, assignments, zap.NewNop())

	_, err := service.Submit(context.Background(), portalStudent("b1"), SubmitRequest{
		AssignmentID:   "a1",
		SubmissionText: "My answer",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSubmissionServiceSubmitUnpublishedHidden(t *testing.T) {
	assignments := &mockAssignmentRepo{items: map[string]*models.Assignment{
		"a1": {ID: "a1", BatchID: "b1", TeacherID: "t1", Published: false},
	}}
	service := NewSubmissionService(&mockSubmissionRepo{}, assignments, zap.NewNop())

	_, err := service.Submit(context.Background(), portalStudent("b1"), SubmitRequest{
		AssignmentID:   "a1",
		SubmissionText: "My answer",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubmissionServiceSubmitWrongBatch(t *testing.T) {
	assignments := &mockAssignmentRepo{items: map[string]*models.Assignment{
		"a1": {ID: "a1", BatchID: "b1", TeacherID: "t1", Published: true},
	}}
	service := NewSubmissionService(&mockSubmissionRepo{}, assignments, zap.NewNop())

	_, err := service.Submit(context.Background(), portalStudent("b2"), SubmitRequest{
		AssignmentID:   "a1",
		SubmissionText: "My answer",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSubmissionServiceGetOwnership(t *testing.T) {
	repo := &mockSubmissionRepo{items: map[string]*models.AssignmentSubmission{
		"sub1": {ID: "sub1", AssignmentID: "a1", StudentID: "s1"},
	}}
	assignments := &mockAssignmentRepo{items: map[string]*models.Assignment{
		"a1": {ID: "a1", BatchID: "b1", TeacherID: "t1", Published: true},
	}}
	service := NewSubmissionService(repo, assignments, zap.NewNop())

	submission, err := service.Get(context.Background(), "sub1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "sub1", submission.ID)

	_, err = service.Get(context.Background(), "sub1", "t2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
