package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studycubs/studycubs-api/internal/models"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type mockProfileRepo struct {
	profiles      map[string]*models.Profile
	byEmail       map[string]*models.Profile
	refreshTokens map[string]*models.RefreshToken
	auditLogs     []*models.AuditLog
	revokedAll    []string
}

func newMockProfileRepo(profiles ...*models.Profile) *mockProfileRepo {
	repo := &mockProfileRepo{
		profiles:      make(map[string]*models.Profile),
		byEmail:       make(map[string]*models.Profile),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
	for _, p := range profiles {
		repo.profiles[p.ID] = p
		repo.byEmail[p.Email] = p
	}
	return repo
}

func (m *mockProfileRepo) FindByEmail(_ context.Context, email string) (*models.Profile, error) {
	profile, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

func (m *mockProfileRepo) FindByID(_ context.Context, id string) (*models.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

func (m *mockProfileRepo) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	if p, ok := m.profiles[id]; ok {
		p.LastLogin = &ts
	}
	return nil
}

func (m *mockProfileRepo) UpdatePassword(_ context.Context, id, passwordHash string, _ time.Time) error {
	if p, ok := m.profiles[id]; ok {
		p.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockProfileRepo) RevokeProfileRefreshTokens(_ context.Context, profileID string) error {
	m.revokedAll = append(m.revokedAll, profileID)
	for _, token := range m.refreshTokens {
		if token.ProfileID == profileID {
			token.Revoked = true
		}
	}
	return nil
}

func (m *mockProfileRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockProfileRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (m *mockProfileRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
		}
	}
	return nil
}

func (m *mockProfileRepo) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func staffProfile(t *testing.T, email, password string, role models.Role) *models.Profile {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Profile{
		ID:           "profile-" + string(role),
		Email:        email,
		FullName:     "Test Staff",
		Role:         role,
		PasswordHash: string(hash),
		Active:       true,
	}
}

func newAuthService(repo *mockProfileRepo) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "studycubs-api",
	})
}

func TestAuthServiceLoginIssuesTokens(t *testing.T) {
	profile := staffProfile(t, "teacher@studycubs.in", "pass1234", models.RoleTeacher)
	repo := newMockProfileRepo(profile)
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@studycubs.in", Password: "pass1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, profile.ID, res.Profile.ID)
	assert.Len(t, repo.refreshTokens, 1)
	require.NotEmpty(t, repo.auditLogs)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.ProfileID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newMockProfileRepo(staffProfile(t, "teacher@studycubs.in", "pass1234", models.RoleTeacher))
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@studycubs.in", Password: "nope"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Empty(t, repo.refreshTokens)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	profile := staffProfile(t, "teacher@studycubs.in", "pass1234", models.RoleTeacher)
	profile.Active = false
	svc := newAuthService(newMockProfileRepo(profile))

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@studycubs.in", Password: "pass1234"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	profile := staffProfile(t, "teacher@studycubs.in", "pass1234", models.RoleTeacher)
	repo := newMockProfileRepo(profile)
	svc := newAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@studycubs.in", Password: "pass1234"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The consumed token is revoked and cannot be replayed.
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRevokesOwnToken(t *testing.T) {
	profile := staffProfile(t, "teacher@studycubs.in", "pass1234", models.RoleTeacher)
	repo := newMockProfileRepo(profile)
	svc := newAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@studycubs.in", Password: "pass1234"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), login.RefreshToken, "someone-else", models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, profile.ID, models.LoginRequest{}))
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	profile := staffProfile(t, "teacher@studycubs.in", "pass1234", models.RoleTeacher)
	repo := newMockProfileRepo(profile)
	svc := newAuthService(repo)

	err := svc.ChangePassword(context.Background(), profile.ID, models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpass99",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.ChangePassword(context.Background(), profile.ID, models.ChangePasswordRequest{
		OldPassword: "pass1234",
		NewPassword: "newpass99",
	}))
	assert.Contains(t, repo.revokedAll, profile.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte("newpass99")))
}

func TestAuthServiceValidateTokenRejectsTampering(t *testing.T) {
	repo := newMockProfileRepo(staffProfile(t, "teacher@studycubs.in", "pass1234", models.RoleTeacher))
	svc := newAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@studycubs.in", Password: "pass1234"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "different-secret", AccessTokenExpiry: time.Hour})
	_, err = other.ValidateToken(login.AccessToken)
	assert.Error(t, err)
}
