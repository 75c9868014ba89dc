package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/store"
	"github.com/classdesk/diary-api/pkg/archive"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

// Bundle is the snapshot archive shipped to the desktop client on login.
type Bundle struct {
	Filename string
	Files    []string
	Data     []byte
}

// BundleService packages a user's store files into a flat zip archive.
type BundleService struct {
	stores   store.Stores
	accounts accountDirectory
	logger   *zap.Logger
	metrics  *MetricsService
}

// NewBundleService constructs BundleService.
func NewBundleService(stores store.Stores, accounts accountDirectory, logger *zap.Logger, metrics *MetricsService) *BundleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BundleService{stores: stores, accounts: accounts, logger: logger, metrics: metrics}
}

// Build resolves the caller's role and routing key and archives the fixed
// file set for that role. Individual missing files are skipped; only a
// completely empty selection is an error.
func (s *BundleService) Build(ctx context.Context, login string) (*Bundle, error) {
	account, err := s.accounts.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown login %s", login))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve account")
	}

	paths, err := s.pathsFor(account)
	if err != nil {
		return nil, err
	}

	data, included, err := archive.Build(paths)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build bundle")
	}
	if len(included) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no store files found for %s", login))
	}

	s.metrics.ObserveBundle(string(account.Role), len(data))
	s.logger.Info("bundle built",
		zap.String("login", login),
		zap.String("role", string(account.Role)),
		zap.Int("files", len(included)),
		zap.Int("bytes", len(data)))

	return &Bundle{Filename: login + "_files.zip", Files: included, Data: data}, nil
}

func (s *BundleService) pathsFor(account *models.Account) ([]string, error) {
	switch account.Role {
	case models.RoleStudent:
		class := account.RoutingKey
		if err := store.ValidateName(class); err != nil {
			return nil, err
		}
		return []string{
			s.stores.Layout.MarksPath(class, account.Login),
			s.stores.Layout.HomeworkPath(class),
			s.stores.Layout.TimetablePath(class),
		}, nil
	case models.RoleTeacher:
		return []string{s.stores.Layout.TeacherPath(account.Login)}, nil
	case models.RoleAdmin:
		return []string{s.stores.Layout.AdminPath(account.Login)}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", account.Role))
	}
}
