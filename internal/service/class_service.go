package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/store"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

// CreateClassRequest captures the add-class payload.
type CreateClassRequest struct {
	ClassName string `json:"class_name" validate:"required"`
}

// AssignLessonRequest captures a timetable cell assignment.
type AssignLessonRequest struct {
	ClassName    string `json:"class_name" validate:"required"`
	Day          string `json:"day" validate:"required"`
	LessonNumber int    `json:"lesson_number" validate:"required"`
	LessonName   string `json:"lesson_name" validate:"required"`
}

// ClassService coordinates class lifecycle and timetable writes.
type ClassService struct {
	registry  *store.ClassRegistry
	stores    store.Stores
	sync      *SyncService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(registry *store.ClassRegistry, stores store.Stores, sync *SyncService, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{registry: registry, stores: stores, sync: sync, validator: validate, logger: logger}
}

// List returns the known class names.
func (s *ClassService) List() []string {
	return s.registry.List()
}

// Exists reports whether the class is registered.
func (s *ClassService) Exists(name string) bool {
	return s.registry.Contains(name)
}

// Create provisions a new class: its directory, an empty timetable grid, a
// homework calendar seeded with the current year, an empty roster and an
// empty lesson registry.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if err := store.ValidateName(req.ClassName); err != nil {
		return err
	}
	if s.registry.Contains(req.ClassName) {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("class %s already exists", req.ClassName))
	}

	if err := os.MkdirAll(s.stores.Layout.ClassDir(req.ClassName), 0o755); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class directory")
	}

	if err := s.stores.Timetable(req.ClassName).Create(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable store")
	}
	if err := s.stores.Homework(req.ClassName).Create(ctx, time.Now().Year()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create homework store")
	}
	if err := s.stores.Roster(req.ClassName).Create(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create roster store")
	}
	if err := s.stores.Lessons(req.ClassName).Init(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to init lesson registry")
	}

	if err := s.registry.Add(req.ClassName); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register class")
	}

	s.logger.Info("class created", zap.String("class", req.ClassName))
	return nil
}

// AssignLesson writes a timetable cell, registers the lesson name and, when
// the name is new, runs the schema synchronizer so the homework calendar
// and every marks store grow the matching column.
func (s *ClassService) AssignLesson(ctx context.Context, req AssignLessonRequest) (*SyncReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if req.LessonNumber < models.MinSlot || req.LessonNumber > models.MaxSlot {
		return nil, appErrors.Clone(appErrors.ErrInvalidSlot, fmt.Sprintf("lesson number %d out of range", req.LessonNumber))
	}
	if !models.IsWeekday(req.Day) {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeekday, fmt.Sprintf("unknown weekday %q", req.Day))
	}
	if !s.registry.Contains(req.ClassName) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %s not found", req.ClassName))
	}

	// Reserved-name collisions are rejected before any write so a cell can
	// never hold a lesson the registry would refuse.
	if req.LessonName == models.ReservedColumn {
		return nil, appErrors.Clone(appErrors.ErrReservedLessonName, fmt.Sprintf("lesson name %q is reserved", req.LessonName))
	}

	affected, err := s.stores.Timetable(req.ClassName).Assign(ctx, req.Day, req.LessonNumber, req.LessonName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write timetable cell")
	}
	if affected != 1 {
		return nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("timetable slot %d updated %d rows, expected 1", req.LessonNumber, affected))
	}

	newLesson, err := s.stores.Lessons(req.ClassName).Register(req.LessonName)
	if err != nil {
		return nil, err
	}
	if !newLesson {
		return &SyncReport{Class: req.ClassName}, nil
	}

	report, err := s.sync.SyncClass(ctx, req.ClassName)
	if err != nil {
		return nil, err
	}
	return report, nil
}
