package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/classdesk/diary-api/internal/store"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

// SyncFailure records one store that could not be brought up to date.
type SyncFailure struct {
	Store string `json:"store"`
	Error string `json:"error"`
}

// SyncReport summarises one synchronizer pass over a class.
type SyncReport struct {
	Class        string        `json:"class"`
	ColumnsAdded int           `json:"columns_added"`
	StoresSynced int           `json:"stores_synced"`
	Failures     []SyncFailure `json:"failures,omitempty"`
}

// SyncService reconciles the lesson registry of a class against the live
// column sets of the homework calendar and every student marks store.
// Evolution is strictly additive and each store is handled independently:
// one failing store is reported and skipped while the rest continue, and
// re-running converges the stragglers.
type SyncService struct {
	stores  store.Stores
	logger  *zap.Logger
	metrics *MetricsService
}

// NewSyncService constructs the schema synchronizer.
func NewSyncService(stores store.Stores, logger *zap.Logger, metrics *MetricsService) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{stores: stores, logger: logger, metrics: metrics}
}

// SyncClass runs one synchronizer pass. Calling it twice in a row leaves
// the schemas untouched the second time.
func (s *SyncService) SyncClass(ctx context.Context, class string) (*SyncReport, error) {
	if err := store.ValidateName(class); err != nil {
		return nil, err
	}

	lessons, err := s.stores.Lessons(class).Lessons()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson registry")
	}

	report := &SyncReport{Class: class}
	if len(lessons) == 0 {
		return report, nil
	}

	homework := s.stores.Homework(class)
	if added, err := homework.SyncColumns(ctx, lessons); err != nil {
		report.Failures = append(report.Failures, SyncFailure{Store: filepath.Base(homework.Path()), Error: err.Error()})
		s.logger.Warn("homework schema sync failed", zap.String("class", class), zap.Error(err))
	} else {
		report.ColumnsAdded += added
		report.StoresSynced++
	}

	logins, err := s.marksStoreLogins(class)
	if err != nil {
		report.Failures = append(report.Failures, SyncFailure{Store: s.stores.Layout.ClassDir(class), Error: err.Error()})
	}
	for _, login := range logins {
		marks := s.stores.Marks(class, login)
		added, err := marks.SyncColumns(ctx, lessons)
		if err != nil {
			report.Failures = append(report.Failures, SyncFailure{Store: filepath.Base(marks.Path()), Error: err.Error()})
			s.logger.Warn("marks schema sync failed",
				zap.String("class", class),
				zap.String("student", login),
				zap.Error(err))
			continue
		}
		report.ColumnsAdded += added
		report.StoresSynced++
	}

	s.metrics.ObserveSchemaSync(report.ColumnsAdded, len(report.Failures))
	if report.ColumnsAdded > 0 {
		s.logger.Info("schema synchronized",
			zap.String("class", class),
			zap.Int("columns_added", report.ColumnsAdded),
			zap.Int("stores_synced", report.StoresSynced))
	}
	return report, nil
}

// marksStoreLogins lists the student marks stores present in the class
// directory. The directory is authoritative here rather than the roster:
// a store created by a half-finished enrollment must still be synced.
func (s *SyncService) marksStoreLogins(class string) ([]string, error) {
	entries, err := os.ReadDir(s.stores.Layout.ClassDir(class))
	if err != nil {
		return nil, err
	}

	fixed := map[string]struct{}{
		filepath.Base(s.stores.Timetable(class).Path()): {},
		filepath.Base(s.stores.Homework(class).Path()):  {},
		filepath.Base(s.stores.Roster(class).Path()):    {},
	}

	var logins []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".db") {
			continue
		}
		if _, ok := fixed[name]; ok {
			continue
		}
		logins = append(logins, strings.TrimSuffix(name, ".db"))
	}
	return logins, nil
}
