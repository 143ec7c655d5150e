package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/pkg/export"
	"github.com/studycubs/studycubs-api/pkg/storage"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
)

type exportStudentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// ExportService renders student rosters as CSV downloads and credential
// slips as PDFs, storing the files behind signed URLs.
type ExportService struct {
	students exportStudentLister
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(students exportStudentLister, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		students: students,
		storage:  store,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Roster renders the teacher's student roster as CSV and returns a signed
// download link.
func (s *ExportService) Roster(ctx context.Context, filter models.StudentFilter) (*ExportResult, error) {
	filter.Page = 1
	filter.PageSize = 100
	var all []models.Student
	for {
		page, total, err := s.students.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students for export")
		}
		all = append(all, page...)
		if len(all) >= total || len(page) == 0 {
			break
		}
		filter.Page++
	}

	rows := make([]map[string]string, 0, len(all))
	for _, student := range all {
		rows = append(rows, map[string]string{
			"Name":          student.FullName,
			"Grade":         student.Grade,
			"Username":      derefString(student.Username),
			"Login Enabled": fmt.Sprintf("%t", student.LoginEnabled),
			"Parent":        student.ParentName,
			"Parent Phone":  student.ParentPhone,
			"Enrolled":      student.EnrollmentDate.UTC().Format("2006-01-02"),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Name", "Grade", "Username", "Login Enabled", "Parent", "Parent Phone", "Enrolled"},
		Rows:    rows,
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
	}

	filename := fmt.Sprintf("roster_%s.csv", time.Now().UTC().Format("20060102_150405"))
	return s.store(filename, payload)
}

// CredentialSlip renders a one-page PDF with the freshly generated
// credentials, meant to be handed to the student. It is the only artifact
// that ever carries the plaintext password.
func (s *ExportService) CredentialSlip(student *models.Student, creds *models.StudentCredentials) (*ExportResult, error) {
	if student == nil || creds == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student and credentials are required")
	}
	dataset := export.Dataset{
		Headers: []string{"Field", "Value"},
		Rows: []map[string]string{
			{"Field": "Student", "Value": student.FullName},
			{"Field": "Username", "Value": creds.Username},
			{"Field": "Password", "Value": creds.Password},
			{"Field": "Note", "Value": "The password cannot be retrieved later, only reset."},
		},
	}
	payload, err := s.pdf.Render(dataset, fmt.Sprintf("Login Credentials - %s", student.FullName))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render credential slip")
	}

	filename := fmt.Sprintf("credentials_%s_%s.pdf", sanitizeFilename(creds.Username), time.Now().UTC().Format("20060102_150405"))
	return s.store(filename, payload)
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) store(filename string, payload []byte) (*ExportResult, error) {
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	exportID := uuid.NewString()
	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export url")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s", prefix, token),
		ExpiresAt:    expiresAt,
	}, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
