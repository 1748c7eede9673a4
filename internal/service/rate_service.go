package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sahana-institute/payroll-api/internal/dto"
	"github.com/sahana-institute/payroll-api/internal/models"
	appErrors "github.com/sahana-institute/payroll-api/pkg/errors"
)

type rateRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherRate, error)
	Upsert(ctx context.Context, rate *models.TeacherRate) error
	Delete(ctx context.Context, id string) error
}

// RateService manages per-teacher-per-class commission percentages. Rates
// are configuration only; the salary computation does not read them.
type RateService struct {
	repo      rateRepository
	teachers  teacherDirectory
	classes   classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRateService constructs a RateService.
func NewRateService(repo rateRepository, teachers teacherDirectory, classes classRepository, validate *validator.Validate, logger *zap.Logger) *RateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RateService{repo: repo, teachers: teachers, classes: classes, validator: validate, logger: logger}
}

// ListByTeacher returns a teacher's configured rates.
func (s *RateService) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherRate, error) {
	rates, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rates")
	}
	return rates, nil
}

// Upsert creates or replaces the rate for a teacher/class pair.
func (s *RateService) Upsert(ctx context.Context, req dto.UpsertRateRequest) (*models.TeacherRate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rate payload")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify teacher")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify class")
	}

	now := time.Now().UTC()
	rate := &models.TeacherRate{
		ID:         uuid.NewString(),
		TeacherID:  req.TeacherID,
		ClassID:    req.ClassID,
		Percentage: req.Percentage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Upsert(ctx, rate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save rate")
	}

	s.logger.Info("rate upserted",
		zap.String("teacher_id", rate.TeacherID),
		zap.String("class_id", rate.ClassID),
		zap.Float64("percentage", rate.Percentage))
	return rate, nil
}

// Delete removes a rate row.
func (s *RateService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "rate not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete rate")
	}
	return nil
}
