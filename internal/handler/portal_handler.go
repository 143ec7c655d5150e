package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studycubs/studycubs-api/internal/middleware"
	"github.com/studycubs/studycubs-api/internal/service"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
	"github.com/studycubs/studycubs-api/pkg/response"
)

// PortalHandler serves the student-facing portal: session login, the
// published assignment list and submission intake.
type PortalHandler struct {
	auth        *service.StudentAuthService
	assignments *service.AssignmentService
	submissions *service.SubmissionService
	metrics     *service.MetricsService
}

// NewPortalHandler constructs a PortalHandler.
func NewPortalHandler(auth *service.StudentAuthService, assignments *service.AssignmentService, submissions *service.SubmissionService, metrics *service.MetricsService) *PortalHandler {
	return &PortalHandler{auth: auth, assignments: assignments, submissions: submissions, metrics: metrics}
}

type studentLoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Student portal login
// @Description Authenticate a student by generated username and password. Returns an opaque session token for the X-Student-Session header.
// @Tags Portal
// @Accept json
// @Produce json
// @Param payload body studentLoginPayload true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /portal/login [post]
func (h *PortalHandler) Login(c *gin.Context) {
	var payload studentLoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	if strings.TrimSpace(payload.Username) == "" || payload.Password == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "username and password are required"))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordStudentLogin()
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Student portal logout
// @Description Clear the portal session named by the X-Student-Session header.
// @Tags Portal
// @Success 204
// @Router /portal/logout [post]
func (h *PortalHandler) Logout(c *gin.Context) {
	token := c.GetHeader(middleware.SessionHeader)
	if token == "" {
		response.Error(c, appErrors.ErrNoSession)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current portal student
// @Tags Portal
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /portal/me [get]
func (h *PortalHandler) Me(c *gin.Context) {
	student, ok := middleware.CurrentStudent(c)
	if !ok {
		response.Error(c, appErrors.ErrNoSession)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Assignments godoc
// @Summary List published assignments for the current student
// @Description Published assignments for the student's batch joined with their own submissions. Past-due assignments stay visible.
// @Tags Portal
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /portal/assignments [get]
func (h *PortalHandler) Assignments(c *gin.Context) {
	student, ok := middleware.CurrentStudent(c)
	if !ok {
		response.Error(c, appErrors.ErrNoSession)
		return
	}
	views, err := h.assignments.ListForStudent(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Submit godoc
// @Summary Submit assignment work
// @Description Submit work for a published assignment in the student's batch. One submission per assignment.
// @Tags Portal
// @Accept json
// @Produce json
// @Param payload body service.SubmitRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /portal/submissions [post]
func (h *PortalHandler) Submit(c *gin.Context) {
	student, ok := middleware.CurrentStudent(c)
	if !ok {
		response.Error(c, appErrors.ErrNoSession)
		return
	}
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	submission, err := h.submissions.Submit(c.Request.Context(), student, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}
