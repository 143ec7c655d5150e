package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studycubs/studycubs-api/internal/middleware"
	"github.com/studycubs/studycubs-api/internal/service"
	appErrors "github.com/studycubs/studycubs-api/pkg/errors"
	"github.com/studycubs/studycubs-api/pkg/response"
)

// DashboardHandler serves the role-specific dashboard payloads.
type DashboardHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Home godoc
// @Summary Dashboard redirect
// @Description Redirect the authenticated staff member to their role's dashboard.
// @Tags Dashboard
// @Success 307
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Home(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	home := middleware.DashboardFor(claims.Role)
	if home == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "unrecognised role"))
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, home)
}

// Teacher godoc
// @Summary Teacher dashboard
// @Description Aggregate counts for the authenticated teacher. Served from cache when fresh.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/teacher [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, cacheHit, err := h.dashboards.Teacher(c.Request.Context(), claims.ProfileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// Admin godoc
// @Summary Admin dashboard
// @Description Center-wide aggregate counts. Served from cache when fresh.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	stats, cacheHit, err := h.dashboards.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// Franchise godoc
// @Summary Franchise dashboard
// @Description Placeholder dashboard for franchise staff.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/franchise [get]
func (h *DashboardHandler) Franchise(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"profile_id": claims.ProfileID,
		"role":       claims.Role,
	}, nil)
}
