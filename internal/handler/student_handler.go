package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/service"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
	"github.com/studycubs/studycubs-api/pkg/response"
)

// StudentHandler exposes roster CRUD plus credential and export endpoints.
type StudentHandler struct {
	students    *service.StudentService
	credentials *service.CredentialService
	exports     *service.ExportService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(students *service.StudentService, credentials *service.CredentialService, exports *service.ExportService) *StudentHandler {
	return &StudentHandler{students: students, credentials: credentials, exports: exports}
}

func studentFilterFromQuery(c *gin.Context) models.StudentFilter {
	filter := models.StudentFilter{
		BatchID:   c.Query("batch_id"),
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if active := parseBoolQuery(c.Query("active")); active != nil {
		filter.Active = active
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or parent name"
// @Param batch_id query string false "Filter by batch"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	filter := studentFilterFromQuery(c)
	filter.TeacherID = actorTeacherID(claims)

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	student, err := h.students.Get(c.Request.Context(), c.Param("id"), actorTeacherID(claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Enroll student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), claims.ProfileID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), actorTeacherID(claims), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.students.Delete(c.Request.Context(), c.Param("id"), actorTeacherID(claims)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GenerateCredentials godoc
// @Summary Generate portal credentials
// @Description Generate a portal username and one-time password for a student. The plaintext password is returned exactly once. Pass slip=true to also render a printable PDF slip.
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Param slip query bool false "Also render a PDF credential slip"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/credentials [post]
func (h *StudentHandler) GenerateCredentials(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	studentID := c.Param("id")

	// Ownership check happens before generation so teachers cannot
	// enable logins for students they do not own.
	student, err := h.students.Get(c.Request.Context(), studentID, actorTeacherID(claims))
	if err != nil {
		response.Error(c, err)
		return
	}

	creds, err := h.credentials.Generate(c.Request.Context(), studentID, claims.ProfileID)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{
		"student_id": creds.StudentID,
		"username":   creds.Username,
		"password":   creds.Password,
	}

	if wantSlip := parseBoolQuery(c.Query("slip")); wantSlip != nil && *wantSlip && h.exports != nil {
		slip, err := h.exports.CredentialSlip(student, creds)
		if err != nil {
			response.Error(c, err)
			return
		}
		payload["slip_url"] = slip.URL
		payload["slip_expires_at"] = slip.ExpiresAt
	}

	response.Created(c, payload)
}

// Export godoc
// @Summary Export student roster
// @Description Render the visible roster as CSV and return a signed download URL.
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or parent name"
// @Param batch_id query string false "Filter by batch"
// @Param active query bool false "Filter by active status"
// @Success 200 {object} response.Envelope
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	filter := studentFilterFromQuery(c)
	filter.TeacherID = actorTeacherID(claims)

	result, err := h.exports.Roster(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"url":        result.URL,
		"expires_at": result.ExpiresAt,
	}, nil)
}
