package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/studycubs/studycubs-api/internal/dto"
	"github.com/studycubs/studycubs-api/internal/models"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type studentAuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Student, error)
}

type sessionStore interface {
	Save(ctx context.Context, student models.PublicStudent) (string, error)
	Load(ctx context.Context, token string) (*models.PublicStudent, error)
	Clear(ctx context.Context, token string) error
}

// StudentAuthService authenticates students against their generated
// credentials and manages their portal sessions. Unknown usernames and
// wrong passwords produce the same generic failure so the login form
// cannot be used to probe for valid usernames.
type StudentAuthService struct {
	students studentAuthRepository
	sessions sessionStore
	audit    auditWriter
	logger   *zap.Logger
}

// NewStudentAuthService constructs a StudentAuthService.
func NewStudentAuthService(students studentAuthRepository, sessions sessionStore, audit auditWriter, logger *zap.Logger) *StudentAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentAuthService{students: students, sessions: sessions, audit: audit, logger: logger}
}

// Login verifies the username/password pair and mints a session token.
// Both fields are required before any lookup happens.
func (s *StudentAuthService) Login(ctx context.Context, username, password string) (*dto.StudentLoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "username and password are required")
	}

	student, err := s.students.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if student.PasswordHash == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*student.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	public := student.Public()
	token, err := s.sessions.Save(ctx, public)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			Action:     models.AuditActionStudentLogin,
			Resource:   "portal",
			ResourceID: &student.ID,
			NewValues:  []byte(`{"status":"success"}`),
		}); err != nil {
			s.logger.Warn("failed to record student login audit log", zap.Error(err))
		}
	}

	return &dto.StudentLoginResponse{SessionToken: token, Student: public}, nil
}

// Resolve loads the session for the given token.
func (s *StudentAuthService) Resolve(ctx context.Context, token string) (*models.PublicStudent, error) {
	student, err := s.sessions.Load(ctx, token)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrNoSession.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return student, nil
}

// Logout clears the session for the given token. Clearing an absent
// session is not an error.
func (s *StudentAuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Clear(ctx, token); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	return nil
}
