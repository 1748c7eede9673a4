package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahana-institute/payroll-api/internal/middleware"
	"github.com/sahana-institute/payroll-api/internal/service"
	appErrors "github.com/sahana-institute/payroll-api/pkg/errors"
	"github.com/sahana-institute/payroll-api/pkg/response"
)

// SalaryHandler exposes the monthly salary computation endpoints.
type SalaryHandler struct {
	payroll *service.PayrollService
	export  *service.ExportService
}

// NewSalaryHandler creates a new handler.
func NewSalaryHandler(payroll *service.PayrollService, export *service.ExportService) *SalaryHandler {
	return &SalaryHandler{payroll: payroll, export: export}
}

// Monthly godoc
// @Summary Monthly salary reports for all active teachers
// @Tags Salary
// @Produce json
// @Param date query string true "Any date in the month (YYYY-MM-DD or YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /salary [get]
func (h *SalaryHandler) Monthly(c *gin.Context) {
	reports, cached, err := h.payroll.MonthlyReports(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, reports, nil, middleware.ExtractMeta(c))
}

// ByTeacher godoc
// @Summary Monthly salary report for one teacher
// @Tags Salary
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param date query string true "Any date in the month (YYYY-MM-DD or YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /salary/{teacherId} [get]
func (h *SalaryHandler) ByTeacher(c *gin.Context) {
	report, err := h.payroll.TeacherReport(c.Request.Context(), c.Param("teacherId"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Download the month's salary reports
// @Tags Salary
// @Produce text/csv
// @Produce application/pdf
// @Param date query string true "Any date in the month"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /salary/export [get]
func (h *SalaryHandler) Export(c *gin.Context) {
	file, err := h.export.MonthlyExport(c.Request.Context(), c.Query("date"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// Finalize godoc
// @Summary Finalize a month into an immutable payroll run
// @Tags Payroll Runs
// @Accept json
// @Produce json
// @Param payload body object true "Date payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /payroll-runs [post]
func (h *SalaryHandler) Finalize(c *gin.Context) {
	var payload struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date is required"))
		return
	}

	run, err := h.payroll.FinalizeMonth(c.Request.Context(), payload.Date, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, run)
}

// Runs godoc
// @Summary List finalized payroll runs
// @Tags Payroll Runs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payroll-runs [get]
func (h *SalaryHandler) Runs(c *gin.Context) {
	runs, err := h.payroll.Runs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, nil)
}

// Run godoc
// @Summary Get one finalized payroll run
// @Tags Payroll Runs
// @Produce json
// @Param id path string true "Payroll run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payroll-runs/{id} [get]
func (h *SalaryHandler) Run(c *gin.Context) {
	run, err := h.payroll.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}
