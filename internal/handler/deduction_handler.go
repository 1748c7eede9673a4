package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahana-institute/payroll-api/internal/dto"
	"github.com/sahana-institute/payroll-api/internal/service"
	appErrors "github.com/sahana-institute/payroll-api/pkg/errors"
	"github.com/sahana-institute/payroll-api/pkg/response"
)

// DeductionHandler wires HTTP endpoints to the deduction service.
type DeductionHandler struct {
	service *service.DeductionService
}

// NewDeductionHandler creates a new handler.
func NewDeductionHandler(svc *service.DeductionService) *DeductionHandler {
	return &DeductionHandler{service: svc}
}

// ListByTeacher godoc
// @Summary List a teacher's deductions
// @Tags Deductions
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{teacherId}/deductions [get]
func (h *DeductionHandler) ListByTeacher(c *gin.Context) {
	deductions, err := h.service.ListByTeacher(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, deductions, nil)
}

// List godoc
// @Summary List deductions for a teacher given by query parameter
// @Tags Deductions
// @Produce json
// @Param teacherId query string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /deductions [get]
func (h *DeductionHandler) List(c *gin.Context) {
	teacherID := c.Query("teacherId")
	if teacherID == "" {
		response.Error(c, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "teacherId query parameter is required"))
		return
	}

	deductions, err := h.service.ListByTeacher(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, deductions, nil)
}

// Create godoc
// @Summary Record a deduction
// @Tags Deductions
// @Accept json
// @Produce json
// @Param payload body dto.CreateDeductionRequest true "Deduction payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /deductions [post]
func (h *DeductionHandler) Create(c *gin.Context) {
	var req dto.CreateDeductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid deduction payload"))
		return
	}

	deduction, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, deduction)
}

// Delete godoc
// @Summary Delete a deduction
// @Tags Deductions
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param id path string true "Deduction ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{teacherId}/deductions/{id} [delete]
func (h *DeductionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), c.Param("teacherId"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
