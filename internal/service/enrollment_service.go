package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/repository"
	"github.com/classdesk/diary-api/internal/store"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

type accountDirectory interface {
	FindByLogin(ctx context.Context, login string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
}

// EnrollStudentRequest captures a student enrollment.
type EnrollStudentRequest struct {
	ClassName  string `json:"class_name" validate:"required"`
	Login      string `json:"login" validate:"required"`
	Password   string `json:"password" validate:"required"`
	Name       string `json:"student_name" validate:"required"`
	Surname    string `json:"student_surname" validate:"required"`
	Patronymic string `json:"student_patronymic" validate:"required"`
}

// StepResult records the outcome of one enrollment step.
type StepResult struct {
	Step   string `json:"step"`
	Status string `json:"status"` // done, skipped, failed
	Error  string `json:"error,omitempty"`
}

// EnrollmentReport lists what each saga step did.
type EnrollmentReport struct {
	Login string       `json:"login"`
	Class string       `json:"class"`
	Steps []StepResult `json:"steps"`
}

// EnrollmentService runs the three-store enrollment saga: marks store,
// roster row, account row. There is no cross-store rollback; each step is
// guarded by an existence probe so a retry resumes where the previous
// attempt stopped instead of duplicating rows.
type EnrollmentService struct {
	stores    store.Stores
	accounts  accountDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(stores store.Stores, accounts accountDirectory, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{stores: stores, accounts: accounts, validator: validate, logger: logger}
}

// Enroll creates the student's marks store seeded from the current lesson
// registry, appends the roster row and registers the account. The first
// failing step aborts the pass; completed steps are reported and skipped on
// retry.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollStudentRequest, classExists func(string) bool) (*EnrollmentReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if err := store.ValidateName(req.ClassName); err != nil {
		return nil, err
	}
	if err := store.ValidateName(req.Login); err != nil {
		return nil, err
	}
	if classExists != nil && !classExists(req.ClassName) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %s not found", req.ClassName))
	}

	report := &EnrollmentReport{Login: req.Login, Class: req.ClassName}

	if err := s.createMarksStore(ctx, req, report); err != nil {
		return report, err
	}
	if err := s.appendRoster(ctx, req, report); err != nil {
		return report, err
	}
	if err := s.createAccount(ctx, req, report); err != nil {
		return report, err
	}

	s.logger.Info("student enrolled", zap.String("class", req.ClassName), zap.String("login", req.Login))
	return report, nil
}

func (s *EnrollmentService) createMarksStore(ctx context.Context, req EnrollStudentRequest, report *EnrollmentReport) error {
	marks := s.stores.Marks(req.ClassName, req.Login)

	exists, err := marks.Exists()
	if err != nil {
		report.Steps = append(report.Steps, StepResult{Step: "marks_store", Status: "failed", Error: err.Error()})
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to probe marks store")
	}
	if exists {
		report.Steps = append(report.Steps, StepResult{Step: "marks_store", Status: "skipped"})
		return nil
	}

	lessons, err := s.stores.Lessons(req.ClassName).Lessons()
	if err != nil {
		report.Steps = append(report.Steps, StepResult{Step: "marks_store", Status: "failed", Error: err.Error()})
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson registry")
	}

	if err := marks.Create(ctx, time.Now().Year(), lessons); err != nil {
		report.Steps = append(report.Steps, StepResult{Step: "marks_store", Status: "failed", Error: err.Error()})
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create marks store")
	}
	report.Steps = append(report.Steps, StepResult{Step: "marks_store", Status: "done"})
	return nil
}

func (s *EnrollmentService) appendRoster(ctx context.Context, req EnrollStudentRequest, report *EnrollmentReport) error {
	roster := s.stores.Roster(req.ClassName)

	listed, err := roster.Contains(ctx, req.Login)
	if err != nil {
		report.Steps = append(report.Steps, StepResult{Step: "roster", Status: "failed", Error: err.Error()})
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to probe roster")
	}
	if listed {
		report.Steps = append(report.Steps, StepResult{Step: "roster", Status: "skipped"})
		return nil
	}

	entry := models.RosterEntry{Name: req.Name, Surname: req.Surname, Patronymic: req.Patronymic, Login: req.Login}
	if err := roster.Append(ctx, entry); err != nil {
		report.Steps = append(report.Steps, StepResult{Step: "roster", Status: "failed", Error: err.Error()})
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append roster row")
	}
	report.Steps = append(report.Steps, StepResult{Step: "roster", Status: "done"})
	return nil
}

func (s *EnrollmentService) createAccount(ctx context.Context, req EnrollStudentRequest, report *EnrollmentReport) error {
	existing, err := s.accounts.FindByLogin(ctx, req.Login)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		report.Steps = append(report.Steps, StepResult{Step: "account", Status: "failed", Error: err.Error()})
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to probe account directory")
	}
	if existing != nil {
		if existing.Role == models.RoleStudent && existing.RoutingKey == req.ClassName {
			report.Steps = append(report.Steps, StepResult{Step: "account", Status: "skipped"})
			return nil
		}
		report.Steps = append(report.Steps, StepResult{Step: "account", Status: "failed", Error: "login taken by another account"})
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("login %s already exists", req.Login))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		report.Steps = append(report.Steps, StepResult{Step: "account", Status: "failed", Error: err.Error()})
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	account := &models.Account{Login: req.Login, PasswordHash: string(hash), Role: models.RoleStudent, RoutingKey: req.ClassName}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateLogin) {
			report.Steps = append(report.Steps, StepResult{Step: "account", Status: "failed", Error: "duplicate login"})
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("login %s already exists", req.Login))
		}
		report.Steps = append(report.Steps, StepResult{Step: "account", Status: "failed", Error: err.Error()})
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}
	report.Steps = append(report.Steps, StepResult{Step: "account", Status: "done"})
	return nil
}
