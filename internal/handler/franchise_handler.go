package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studycubs/studycubs-api/internal/models"
	"github.com/studycubs/studycubs-api/internal/service"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
	"github.com/studycubs/studycubs-api/pkg/response"
)

// FranchiseHandler serves the admin CRUD for franchise landing pages plus
// the public slug lookup.
type FranchiseHandler struct {
	franchises *service.FranchiseService
}

// NewFranchiseHandler constructs a FranchiseHandler.
func NewFranchiseHandler(franchises *service.FranchiseService) *FranchiseHandler {
	return &FranchiseHandler{franchises: franchises}
}

// List godoc
// @Summary List franchise pages
// @Tags Franchise
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /franchise/pages [get]
func (h *FranchiseHandler) List(c *gin.Context) {
	pages, err := h.franchises.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pages, nil)
}

// Get godoc
// @Summary Get franchise page
// @Tags Franchise
// @Produce json
// @Param id path string true "Page ID"
// @Success 200 {object} response.Envelope
// @Router /franchise/pages/{id} [get]
func (h *FranchiseHandler) Get(c *gin.Context) {
	page, err := h.franchises.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Create godoc
// @Summary Create franchise page
// @Description Create a city landing page. Slug and SEO metadata are generated from city and state.
// @Tags Franchise
// @Accept json
// @Produce json
// @Param payload body service.CreateFranchisePageRequest true "Page payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /franchise/pages [post]
func (h *FranchiseHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateFranchisePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid page payload"))
		return
	}
	page, err := h.franchises.Create(c.Request.Context(), claims.ProfileID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, page)
}

// Update godoc
// @Summary Update franchise page
// @Description Update page content. Slug, city and state are immutable.
// @Tags Franchise
// @Accept json
// @Produce json
// @Param id path string true "Page ID"
// @Param payload body service.UpdateFranchisePageRequest true "Page payload"
// @Success 200 {object} response.Envelope
// @Router /franchise/pages/{id} [put]
func (h *FranchiseHandler) Update(c *gin.Context) {
	var req service.UpdateFranchisePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid page payload"))
		return
	}
	page, err := h.franchises.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Delete godoc
// @Summary Delete franchise page
// @Tags Franchise
// @Param id path string true "Page ID"
// @Success 204
// @Router /franchise/pages/{id} [delete]
func (h *FranchiseHandler) Delete(c *gin.Context) {
	if err := h.franchises.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PublicPage godoc
// @Summary Public landing page lookup
// @Description Resolve a landing page by slug. Returns 404 when the page is missing, inactive, or the franchise feature is disabled. Super admins presenting a bearer token also see inactive pages, for preview.
// @Tags Public
// @Produce json
// @Param slug path string true "Page slug (city-state)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pages/{slug} [get]
func (h *FranchiseHandler) PublicPage(c *gin.Context) {
	if !h.franchises.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "page not found"))
		return
	}
	claims := claimsFromContext(c)
	preview := claims != nil && claims.Role == models.RoleSuperAdmin
	page, err := h.franchises.GetBySlug(c.Request.Context(), c.Param("slug"), preview)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}
