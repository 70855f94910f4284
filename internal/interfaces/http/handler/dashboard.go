package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/pozinox/backend/internal/application/identity"
	"github.com/pozinox/backend/internal/application/report"
)

// DashboardHandler serves the admin panel landing data and activity log
type DashboardHandler struct {
	BaseHandler
	dashboardService *report.DashboardService
	activityService  *identityapp.ActivityService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *report.DashboardService, activityService *identityapp.ActivityService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		activityService:  activityService,
	}
}

// Get godoc
// @Summary      Admin dashboard
// @Description  Counters for products, low stock, categories, customers, pending orders and users plus the latest orders
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[report.Dashboard]
// @Security     BearerAuth
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.dashboardService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// ListActivity lists the activity log, newest first
func (h *DashboardHandler) ListActivity(c *gin.Context) {
	var filter identityapp.ActivityListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	userID, ok := parseUUIDQuery(c, "user_id")
	if !ok {
		h.BadRequest(c, "Invalid user ID format")
		return
	}
	filter.UserID = userID

	entries, total, err := h.activityService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}
