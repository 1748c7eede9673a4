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

type collectionRepository interface {
	List(ctx context.Context, filter models.CollectionFilter) ([]models.CollectionWithClass, error)
	FindByID(ctx context.Context, id string) (*models.DailyCollection, error)
	Create(ctx context.Context, collection *models.DailyCollection) error
	Update(ctx context.Context, collection *models.DailyCollection) error
	Delete(ctx context.Context, id string) error
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CollectionService manages daily collection entries. Every mutation
// invalidates the cached salary reports of the affected month.
type CollectionService struct {
	repo      collectionRepository
	teachers  teacherDirectory
	classes   classRepository
	payroll   *PayrollService
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// CollectionServiceParams groups constructor dependencies.
type CollectionServiceParams struct {
	Repo      collectionRepository
	Teachers  teacherDirectory
	Classes   classRepository
	Payroll   *PayrollService
	Audit     auditWriter
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewCollectionService constructs a CollectionService.
func NewCollectionService(params CollectionServiceParams) *CollectionService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &CollectionService{
		repo:      params.Repo,
		teachers:  params.Teachers,
		classes:   params.Classes,
		payroll:   params.Payroll,
		audit:     params.Audit,
		validator: validate,
		logger:    logger,
	}
}

// List returns collections matching the filter.
func (s *CollectionService) List(ctx context.Context, query dto.ListCollectionsQuery) ([]models.CollectionWithClass, error) {
	filter := models.CollectionFilter{TeacherID: query.TeacherID}
	if query.Date != "" {
		day, err := time.Parse("2006-01-02", query.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
		}
		filter.Day = day.UTC()
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list collections")
	}
	return rows, nil
}

// Get returns a single collection entry.
func (s *CollectionService) Get(ctx context.Context, id string) (*models.DailyCollection, error) {
	collection, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "collection not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection")
	}
	return collection, nil
}

// Create records a new daily collection. Teacher and class must exist.
func (s *CollectionService) Create(ctx context.Context, req dto.CreateCollectionRequest, actorID string) (*models.DailyCollection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid collection payload")
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
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify class")
	}

	now := time.Now().UTC()
	collection := &models.DailyCollection{
		ID:                  uuid.NewString(),
		Date:                date.UTC(),
		TeacherID:           req.TeacherID,
		ClassID:             req.ClassID,
		Amount:              req.Amount,
		StudentCount:        req.StudentCount,
		TuteCostPerStudent:  req.TuteCostPerStudent,
		PostalFeePerStudent: req.PostalFeePerStudent,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, collection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create collection")
	}

	s.afterMutation(ctx, collection, actorID, "created")
	return collection, nil
}

// Update applies a partial update to a collection entry.
func (s *CollectionService) Update(ctx context.Context, id string, req dto.UpdateCollectionRequest, actorID string) (*models.DailyCollection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid collection payload")
	}

	collection, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousDate := collection.Date

	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
		}
		collection.Date = date.UTC()
	}
	if req.Amount != nil {
		collection.Amount = *req.Amount
	}
	if req.StudentCount != nil {
		collection.StudentCount = *req.StudentCount
	}
	if req.TuteCostPerStudent != nil {
		collection.TuteCostPerStudent = *req.TuteCostPerStudent
	}
	if req.PostalFeePerStudent != nil {
		collection.PostalFeePerStudent = *req.PostalFeePerStudent
	}
	collection.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, collection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update collection")
	}

	// A date move can shift the entry between months; both months go stale.
	if s.payroll != nil && !previousDate.Equal(collection.Date) {
		s.payroll.InvalidateMonth(ctx, previousDate)
	}
	s.afterMutation(ctx, collection, actorID, "updated")
	return collection, nil
}

// Delete removes a collection entry.
func (s *CollectionService) Delete(ctx context.Context, id string, actorID string) error {
	collection, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete collection")
	}

	s.afterMutation(ctx, collection, actorID, "deleted")
	return nil
}

func (s *CollectionService) afterMutation(ctx context.Context, collection *models.DailyCollection, actorID, verb string) {
	if s.payroll != nil {
		s.payroll.InvalidateMonth(ctx, collection.Date)
	}
	if s.audit != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"verb":       verb,
			"date":       collection.Date.Format("2006-01-02"),
			"teacher_id": collection.TeacherID,
			"amount":     collection.Amount,
		})
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionCollectionWrite,
			Resource:   "collections",
			ResourceID: &collection.ID,
			NewValues:  payload,
		}); err != nil {
			s.logger.Warn("failed to record collection audit log", zap.Error(err))
		}
	}
	s.logger.Info("collection "+verb,
		zap.String("collection_id", collection.ID),
		zap.String("teacher_id", collection.TeacherID))
}
