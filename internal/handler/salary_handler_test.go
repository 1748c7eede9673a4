package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahana-institute/payroll-api/internal/models"
	"github.com/sahana-institute/payroll-api/internal/repository"
	"github.com/sahana-institute/payroll-api/internal/service"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newSalaryFixture(t *testing.T) (*SalaryHandler, *repository.MemStore, string) {
	t.Helper()
	store := repository.NewMemStore()
	classID := store.AddClass(models.Class{Name: "Physics", FeePerStudent: 50, InstituteFeePercentage: 10})
	teacherID := store.AddTeacher(models.Teacher{Name: "K. Perera", Active: true})
	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: classID,
		Date:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount: 500, StudentCount: 10, TuteCostPerStudent: 5, PostalFeePerStudent: 2,
	})

	payroll := service.NewPayrollService(service.PayrollServiceParams{
		Teachers:    store,
		Collections: store.Collections(),
		Deductions:  store.Deductions(),
	})
	export := service.NewExportService(payroll, nil)
	return NewSalaryHandler(payroll, export), store, teacherID
}

func TestSalaryHandlerMonthlyRequiresDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newSalaryFixture(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/salary", nil)

	handler.Monthly(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalaryHandlerMonthlySuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, teacherID := newSalaryFixture(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/salary?date=2024-03-15", nil)

	handler.Monthly(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	var reports []map[string]interface{}
	require.NoError(t, json.Unmarshal(envelope.Data, &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, teacherID, reports[0]["teacherId"])
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}

func TestSalaryHandlerByTeacherNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newSalaryFixture(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/salary/unknown?date=2024-03-15", nil)
	c.Params = gin.Params{{Key: "teacherId", Value: "unknown"}}

	handler.ByTeacher(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSalaryHandlerByTeacherSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, teacherID := newSalaryFixture(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/salary/"+teacherID+"?date=2024-03-15", nil)
	c.Params = gin.Params{{Key: "teacherId", Value: teacherID}}

	handler.ByTeacher(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(envelope.Data, &report))
	stats := report["stats"].(map[string]interface{})
	assert.Equal(t, 500.0, stats["totalCollection"])
	assert.Equal(t, 380.0, stats["netPay"])
}

func TestSalaryHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newSalaryFixture(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/salary/export?date=2024-03-15&format=csv", nil)

	handler.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "salary-2024-03.csv")
	assert.Contains(t, rec.Body.String(), "K. Perera")
}

func TestSalaryHandlerExportUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newSalaryFixture(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/salary/export?date=2024-03-15&format=xlsx", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
