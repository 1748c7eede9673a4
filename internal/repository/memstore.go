package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sahana-institute/payroll-api/internal/models"
)

// MemStore is an in-memory implementation of the read path the salary
// aggregator needs. It backs demo mode: the same aggregation code runs
// against either Postgres repositories or this store, so the business
// logic exists exactly once.
type MemStore struct {
	mu          sync.RWMutex
	teachers    []models.Teacher
	classes     map[string]models.Class
	collections []models.DailyCollection
	deductions  []models.Deduction
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{classes: make(map[string]models.Class)}
}

// AddTeacher registers a teacher and returns its id.
func (s *MemStore) AddTeacher(teacher models.Teacher) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	s.teachers = append(s.teachers, teacher)
	return teacher.ID
}

// AddClass registers a class and returns its id.
func (s *MemStore) AddClass(class models.Class) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	s.classes[class.ID] = class
	return class.ID
}

// AddCollection records a daily collection.
func (s *MemStore) AddCollection(collection models.DailyCollection) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if collection.ID == "" {
		collection.ID = uuid.NewString()
	}
	s.collections = append(s.collections, collection)
	return collection.ID
}

// AddDeduction records a manual deduction.
func (s *MemStore) AddDeduction(deduction models.Deduction) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if deduction.ID == "" {
		deduction.ID = uuid.NewString()
	}
	s.deductions = append(s.deductions, deduction)
	return deduction.ID
}

// ListActive returns teachers with the active flag set, in insertion order.
func (s *MemStore) ListActive(ctx context.Context) ([]models.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Teacher, 0, len(s.teachers))
	for _, t := range s.teachers {
		if t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

// FindByID returns the teacher with the given id, or sql.ErrNoRows so
// callers treat both backends the same way.
func (s *MemStore) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.teachers {
		if t.ID == id {
			teacher := t
			return &teacher, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Collections exposes the collection read view.
func (s *MemStore) Collections() *MemCollections {
	return &MemCollections{store: s}
}

// Deductions exposes the deduction read view.
func (s *MemStore) Deductions() *MemDeductions {
	return &MemDeductions{store: s}
}

// MemCollections adapts MemStore to the collection store capability.
type MemCollections struct {
	store *MemStore
}

// FindByTeacherAndPeriod filters collections by teacher and closed date
// interval, joining class configuration. Collections whose class was
// removed come back with nil class fields, mirroring the SQL LEFT JOIN.
func (m *MemCollections) FindByTeacherAndPeriod(ctx context.Context, teacherID string, from, to time.Time) ([]models.CollectionWithClass, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	var out []models.CollectionWithClass
	for _, c := range m.store.collections {
		if c.TeacherID != teacherID || c.Date.Before(from) || c.Date.After(to) {
			continue
		}
		row := models.CollectionWithClass{DailyCollection: c}
		if class, ok := m.store.classes[c.ClassID]; ok {
			name := class.Name
			fee := class.FeePerStudent
			pct := class.InstituteFeePercentage
			row.ClassName = &name
			row.ClassFeePerStudent = &fee
			row.InstituteFeePercentage = &pct
		}
		out = append(out, row)
	}
	return out, nil
}

// MemDeductions adapts MemStore to the deduction store capability.
type MemDeductions struct {
	store *MemStore
}

// FindByTeacherAndPeriod filters deductions by teacher and closed date
// interval.
func (m *MemDeductions) FindByTeacherAndPeriod(ctx context.Context, teacherID string, from, to time.Time) ([]models.Deduction, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	var out []models.Deduction
	for _, d := range m.store.deductions {
		if d.TeacherID != teacherID || d.Date.Before(from) || d.Date.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// SeedDemo loads a small realistic dataset for offline demos: two teachers,
// two classes and one month of activity.
func (s *MemStore) SeedDemo(now time.Time) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	mathsID := s.AddClass(models.Class{Name: "Mathematics - Grade 10", FeePerStudent: 1500, InstituteFeePercentage: 10})
	physicsID := s.AddClass(models.Class{Name: "Physics - Grade 11", FeePerStudent: 2000, InstituteFeePercentage: 15})

	perera := s.AddTeacher(models.Teacher{Name: "K. Perera", Active: true})
	silva := s.AddTeacher(models.Teacher{Name: "N. Silva", Active: true})

	s.AddCollection(models.DailyCollection{
		Date: monthStart.AddDate(0, 0, 2), TeacherID: perera, ClassID: mathsID,
		Amount: 45000, StudentCount: 30, TuteCostPerStudent: 50, PostalFeePerStudent: 20,
	})
	s.AddCollection(models.DailyCollection{
		Date: monthStart.AddDate(0, 0, 9), TeacherID: perera, ClassID: mathsID,
		Amount: 42000, StudentCount: 28, TuteCostPerStudent: 50, PostalFeePerStudent: 20,
	})
	s.AddCollection(models.DailyCollection{
		Date: monthStart.AddDate(0, 0, 4), TeacherID: silva, ClassID: physicsID,
		Amount: 60000, StudentCount: 30, TuteCostPerStudent: 80, PostalFeePerStudent: 25,
	})

	s.AddDeduction(models.Deduction{
		TeacherID: perera, Type: "ADVANCE", Amount: 10000, Date: monthStart.AddDate(0, 0, 12),
	})
}
