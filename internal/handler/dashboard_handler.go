package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahana-institute/payroll-api/internal/service"
	"github.com/sahana-institute/payroll-api/pkg/response"
)

// DashboardHandler exposes the admin dashboard endpoint.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Admin godoc
// @Summary Institute-level month summary
// @Tags Dashboard
// @Produce json
// @Param date query string true "Any date in the month"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	summary, err := h.service.AdminDashboard(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
