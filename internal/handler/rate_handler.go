package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahana-institute/payroll-api/internal/dto"
	"github.com/sahana-institute/payroll-api/internal/service"
	appErrors "github.com/sahana-institute/payroll-api/pkg/errors"
	"github.com/sahana-institute/payroll-api/pkg/response"
)

// RateHandler wires HTTP endpoints to the rate service.
type RateHandler struct {
	service *service.RateService
}

// NewRateHandler creates a new handler.
func NewRateHandler(svc *service.RateService) *RateHandler {
	return &RateHandler{service: svc}
}

// ListByTeacher godoc
// @Summary List a teacher's class rates
// @Tags Rates
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{teacherId}/rates [get]
func (h *RateHandler) ListByTeacher(c *gin.Context) {
	rates, err := h.service.ListByTeacher(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rates, nil)
}

// Upsert godoc
// @Summary Set a teacher's rate for a class
// @Tags Rates
// @Accept json
// @Produce json
// @Param payload body dto.UpsertRateRequest true "Rate payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rates [post]
func (h *RateHandler) Upsert(c *gin.Context) {
	var req dto.UpsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rate payload"))
		return
	}

	rate, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rate, nil)
}

// Delete godoc
// @Summary Delete a rate
// @Tags Rates
// @Produce json
// @Param id path string true "Rate ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rates/{id} [delete]
func (h *RateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
