package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/store"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

// SetHomeworkRequest captures a homework cell write.
type SetHomeworkRequest struct {
	ClassName  string `json:"class_name" validate:"required"`
	Date       string `json:"date" validate:"required"`
	LessonName string `json:"lesson_name" validate:"required"`
	Text       string `json:"text"`
}

// SetMarkRequest captures a grade cell write.
type SetMarkRequest struct {
	ClassName  string `json:"class_name" validate:"required"`
	Login      string `json:"login" validate:"required"`
	LessonName string `json:"lesson_name" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Value      string `json:"value" validate:"required"`
}

// DiaryService reads and writes homework and marks cells and produces the
// per-day views the desktop client renders.
type DiaryService struct {
	stores    store.Stores
	accounts  accountDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDiaryService constructs DiaryService.
func NewDiaryService(stores store.Stores, accounts accountDirectory, validate *validator.Validate, logger *zap.Logger) *DiaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiaryService{stores: stores, accounts: accounts, validator: validate, logger: logger}
}

// SetHomework upserts the homework text for a date/lesson cell. The lesson
// must already be a registry member; callers register and sync first.
func (s *DiaryService) SetHomework(ctx context.Context, req SetHomeworkRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework payload")
	}
	if err := store.ValidateName(req.ClassName); err != nil {
		return err
	}

	registered, err := s.lessonRegistered(req.ClassName, req.LessonName)
	if err != nil {
		return err
	}
	if !registered {
		return appErrors.Clone(appErrors.ErrUnknownLesson, fmt.Sprintf("lesson %q is not registered for class %s", req.LessonName, req.ClassName))
	}

	affected, err := s.stores.Homework(req.ClassName).SetText(ctx, req.Date, req.LessonName, req.Text)
	if err != nil {
		if store.IsSchemaLag(err) {
			return appErrors.Clone(appErrors.ErrUnknownLesson, fmt.Sprintf("lesson %q has no column yet; run schema sync", req.LessonName))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write homework cell")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("no calendar row for date %s", req.Date))
	}
	return nil
}

// SetMark writes a grade into a student's marks store. Zero updated rows
// means the date row is missing and is surfaced as an error, never
// swallowed.
func (s *DiaryService) SetMark(ctx context.Context, req SetMarkRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	if err := store.ValidateName(req.ClassName); err != nil {
		return err
	}
	if err := store.ValidateName(req.Login); err != nil {
		return err
	}

	marks := s.stores.Marks(req.ClassName, req.Login)
	exists, err := marks.Exists()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to probe marks store")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrUnknownStudent, fmt.Sprintf("no marks store for login %s", req.Login))
	}

	affected, err := marks.SetMark(ctx, req.Date, req.LessonName, req.Value)
	if err != nil {
		if store.IsSchemaLag(err) {
			return appErrors.Clone(appErrors.ErrUnknownLesson, fmt.Sprintf("lesson %q has no column yet; run schema sync", req.LessonName))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write mark")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("no marks row for date %s", req.Date))
	}
	return nil
}

// DayView returns exactly fifteen (slot, lesson, homework) tuples for the
// weekday: the timetable column joined with the homework texts of the date.
func (s *DiaryService) DayView(ctx context.Context, class, date, weekday string) ([]models.DaySlot, error) {
	if err := store.ValidateName(class); err != nil {
		return nil, err
	}

	lessons, err := s.stores.Timetable(class).DayColumn(ctx, weekday)
	if err != nil {
		return nil, err
	}
	texts, err := s.stores.Homework(class).DayTexts(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read homework calendar")
	}

	slots := make([]models.DaySlot, models.MaxSlot)
	for i := range slots {
		lesson := lessons[i]
		slot := models.DaySlot{Slot: i + models.MinSlot, Lesson: lesson}
		if lesson != "" {
			slot.Homework = texts[lesson]
		}
		slots[i] = slot
	}
	return slots, nil
}

// MarksFor resolves the student's marks store through the account directory
// and returns lesson name to grade for the given date. A date without a row
// yields an empty mapping.
func (s *DiaryService) MarksFor(ctx context.Context, login, date string) (map[string]string, error) {
	if err := store.ValidateName(login); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownStudent, fmt.Sprintf("unknown login %s", login))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}
	if account.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrUnknownStudent, fmt.Sprintf("login %s is not a student", login))
	}

	marks := s.stores.Marks(account.RoutingKey, login)
	exists, err := marks.Exists()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to probe marks store")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrUnknownStudent, fmt.Sprintf("no marks store for login %s", login))
	}

	grades, err := marks.MarksFor(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read marks")
	}
	return grades, nil
}

func (s *DiaryService) lessonRegistered(class, lesson string) (bool, error) {
	lessons, err := s.stores.Lessons(class).Lessons()
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson registry")
	}
	for _, known := range lessons {
		if known == lesson {
			return true, nil
		}
	}
	return false, nil
}
