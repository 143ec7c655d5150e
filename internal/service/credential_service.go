package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/repository"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

const passwordAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

type credentialStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	SetCredentials(ctx context.Context, studentID, username, passwordHash string) error
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CredentialConfig tunes generated credential shape.
type CredentialConfig struct {
	PasswordLength int
	MaxAttempts    int
}

// CredentialService generates one-time login credentials for students.
// The plaintext password exists only in the response of a successful
// generation; afterwards only the bcrypt hash survives.
type CredentialService struct {
	students credentialStudentRepository
	audit    auditWriter
	logger   *zap.Logger
	cfg      CredentialConfig
}

// NewCredentialService constructs a CredentialService.
func NewCredentialService(students credentialStudentRepository, audit auditWriter, logger *zap.Logger, cfg CredentialConfig) *CredentialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PasswordLength <= 0 {
		cfg.PasswordLength = 8
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &CredentialService{students: students, audit: audit, logger: logger, cfg: cfg}
}

// Generate derives a username from the student name and ID, mints a random
// password and enables login. Username collisions regenerate with a fresh
// random suffix up to MaxAttempts times before giving up with a conflict.
func (s *CredentialService) Generate(ctx context.Context, studentID string, actorID string) (*models.StudentCredentials, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if student.LoginEnabled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student login already enabled")
	}

	username := deriveUsername(student.FullName, student.ID)
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		password, err := s.generatePassword()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}

		err = s.students.SetCredentials(ctx, student.ID, username, string(hash))
		if err == nil {
			s.recordAudit(ctx, actorID, student.ID, username)
			return &models.StudentCredentials{
				StudentID: student.ID,
				Username:  username,
				Password:  password,
			}, nil
		}
		if errors.Is(err, repository.ErrLoginAlreadyEnabled) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student login already enabled")
		}
		if errors.Is(err, repository.ErrDuplicateUsername) {
			// Collision on the derived name; retry with a random suffix.
			username = deriveUsername(student.FullName, student.ID) + randomSuffix()
			continue
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store credentials")
	}

	return nil, appErrors.Clone(appErrors.ErrDuplicateUsername, "could not allocate a unique username")
}

func (s *CredentialService) recordAudit(ctx context.Context, actorID, studentID, username string) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"username": username})
	log := &models.AuditLog{
		Action:     models.AuditActionCredentialsGenerate,
		Resource:   "students",
		ResourceID: &studentID,
		NewValues:  payload,
	}
	if actorID != "" {
		log.ProfileID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record credential audit log", zap.Error(err))
	}
}

func (s *CredentialService) generatePassword() (string, error) {
	buf := make([]byte, s.cfg.PasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// deriveUsername lowercases the student name, strips everything except
// letters and digits and appends the last four characters of the student ID.
// Names that collapse to nothing fall back to "student".
func deriveUsername(fullName, studentID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(fullName) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" {
		base = "student"
	}
	suffix := studentID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return fmt.Sprintf("%s_%s", base, suffix)
}

func randomSuffix() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1296)) // two base-36 chars
	if err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano()%100)
	}
	v := n.Int64()
	return string([]byte{passwordAlphabet[v/36%36], passwordAlphabet[v%36]})
}
