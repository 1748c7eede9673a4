package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sahana-institute/payroll-api/internal/dto"
	"github.com/sahana-institute/payroll-api/internal/models"
	appErrors "github.com/sahana-institute/payroll-api/pkg/errors"
)

type deductionRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Deduction, error)
	Create(ctx context.Context, deduction *models.Deduction) error
	Delete(ctx context.Context, id string) error
}

// DeductionService manages manual deductions against teacher pay.
type DeductionService struct {
	repo      deductionRepository
	teachers  teacherDirectory
	payroll   *PayrollService
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// DeductionServiceParams groups constructor dependencies.
type DeductionServiceParams struct {
	Repo      deductionRepository
	Teachers  teacherDirectory
	Payroll   *PayrollService
	Audit     auditWriter
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewDeductionService constructs a DeductionService.
func NewDeductionService(params DeductionServiceParams) *DeductionService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &DeductionService{
		repo:      params.Repo,
		teachers:  params.Teachers,
		payroll:   params.Payroll,
		audit:     params.Audit,
		validator: validate,
		logger:    logger,
	}
}

// ListByTeacher returns all deductions recorded against a teacher.
func (s *DeductionService) ListByTeacher(ctx context.Context, teacherID string) ([]models.Deduction, error) {
	deductions, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list deductions")
	}
	return deductions, nil
}

// Create records a manual deduction.
func (s *DeductionService) Create(ctx context.Context, req dto.CreateDeductionRequest, actorID string) (*models.Deduction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid deduction payload")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify teacher")
	}

	now := time.Now().UTC()
	deduction := &models.Deduction{
		ID:          uuid.NewString(),
		TeacherID:   req.TeacherID,
		Type:        req.Type,
		Amount:      req.Amount,
		Date:        date.UTC(),
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, deduction); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create deduction")
	}

	if s.payroll != nil {
		s.payroll.InvalidateMonth(ctx, deduction.Date)
	}
	s.writeAudit(ctx, deduction, actorID, "created")
	return deduction, nil
}

// Delete removes a deduction. The caller must supply the teacher ID so the
// affected month's cache can be invalidated without an extra load.
func (s *DeductionService) Delete(ctx context.Context, id string, teacherID string, actorID string) error {
	deductions, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load deductions")
	}

	var target *models.Deduction
	for i := range deductions {
		if deductions[i].ID == id {
			target = &deductions[i]
			break
		}
	}
	if target == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "deduction not found")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete deduction")
	}

	if s.payroll != nil {
		s.payroll.InvalidateMonth(ctx, target.Date)
	}
	s.writeAudit(ctx, target, actorID, "deleted")
	return nil
}

func (s *DeductionService) writeAudit(ctx context.Context, deduction *models.Deduction, actorID, verb string) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"verb":       verb,
		"type":       deduction.Type,
		"amount":     deduction.Amount,
		"teacher_id": deduction.TeacherID,
	})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionDeductionWrite,
		Resource:   "deductions",
		ResourceID: &deduction.ID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record deduction audit log", zap.Error(err))
	}
}
