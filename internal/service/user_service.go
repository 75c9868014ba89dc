package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/repository"
	"github.com/classdesk/diary-api/internal/store"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

// AddUserRequest is the role-dispatched account creation payload the admin
// forms submit.
type AddUserRequest struct {
	Role     string `json:"role" validate:"required"`
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`

	// admin fields
	AdminName string `json:"admin_name"`

	// teacher fields
	TeacherSurname    string   `json:"teacher_surname"`
	TeacherName       string   `json:"teacher_name"`
	TeacherPatronymic string   `json:"teacher_patronymic"`
	Classes           []string `json:"classes"`

	// student fields
	ClassName         string `json:"class_name"`
	StudentName       string `json:"student_name"`
	StudentSurname    string `json:"student_surname"`
	StudentPatronymic string `json:"student_patronymic"`
}

// UserService creates accounts and their role-specific stores.
type UserService struct {
	stores     store.Stores
	accounts   accountDirectory
	enrollment *EnrollmentService
	classes    *ClassService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewUserService constructs UserService.
func NewUserService(stores store.Stores, accounts accountDirectory, enrollment *EnrollmentService, classes *ClassService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{stores: stores, accounts: accounts, enrollment: enrollment, classes: classes, validator: validate, logger: logger}
}

// Add creates the account and the auxiliary store its role requires:
// a marks store for students, a classes-list store for teachers and a
// placeholder store for admins.
func (s *UserService) Add(ctx context.Context, req AddUserRequest) (*EnrollmentReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", req.Role))
	}
	if err := store.ValidateName(req.Login); err != nil {
		return nil, err
	}

	switch role {
	case models.RoleStudent:
		return s.enrollment.Enroll(ctx, EnrollStudentRequest{
			ClassName:  req.ClassName,
			Login:      req.Login,
			Password:   req.Password,
			Name:       req.StudentName,
			Surname:    req.StudentSurname,
			Patronymic: req.StudentPatronymic,
		}, s.classes.Exists)

	case models.RoleTeacher:
		if req.TeacherSurname == "" || req.TeacherName == "" || req.TeacherPatronymic == "" || len(req.Classes) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "missing teacher fields")
		}
		info := strings.Join([]string{req.TeacherSurname, req.TeacherName, req.TeacherPatronymic}, ",")
		if err := s.addStaff(ctx, req, role, info, func() error {
			return store.CreateTeacherStore(ctx, s.stores.Layout.TeacherPath(req.Login), s.stores.Cfg, req.Classes)
		}); err != nil {
			return nil, err
		}
		return nil, nil

	default: // admin
		if req.AdminName == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "missing admin name")
		}
		if err := s.addStaff(ctx, req, role, req.AdminName, func() error {
			return store.CreateAdminStore(ctx, s.stores.Layout.AdminPath(req.Login), s.stores.Cfg)
		}); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func (s *UserService) addStaff(ctx context.Context, req AddUserRequest, role models.Role, info string, createStore func() error) error {
	if _, err := s.accounts.FindByLogin(ctx, req.Login); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("login %s already exists", req.Login))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to probe account directory")
	}

	if err := createStore(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create role store")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	account := &models.Account{Login: req.Login, PasswordHash: string(hash), Role: role, RoutingKey: info}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateLogin) {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("login %s already exists", req.Login))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	s.logger.Info("account created", zap.String("login", req.Login), zap.String("role", string(role)))
	return nil
}
