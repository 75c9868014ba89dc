package service

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/repository"
	"github.com/classdesk/diary-api/internal/store"
	"github.com/classdesk/diary-api/pkg/config"
)

// fakeDirectory is an in-memory account directory for service tests.
type fakeDirectory struct {
	accounts map[string]*models.Account
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{accounts: make(map[string]*models.Account)}
}

func (f *fakeDirectory) FindByLogin(_ context.Context, login string) (*models.Account, error) {
	account, ok := f.accounts[login]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (f *fakeDirectory) Create(_ context.Context, account *models.Account) error {
	if _, ok := f.accounts[account.Login]; ok {
		return repository.ErrDuplicateLogin
	}
	copied := *account
	f.accounts[account.Login] = &copied
	return nil
}

func newTestStores(t *testing.T) store.Stores {
	t.Helper()
	layout := store.Layout{DataDir: t.TempDir()}
	require.NoError(t, layout.EnsureBaseDirs())
	return store.NewStores(layout, config.StorageConfig{BusyTimeout: time.Second, MaxOpenConns: 1})
}

// provisionClass builds the fixed stores of a class the way class creation
// does, without going through ClassService.
func provisionClass(t *testing.T, stores store.Stores, class string, year int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(stores.Layout.ClassDir(class), 0o755))
	require.NoError(t, stores.Timetable(class).Create(ctx))
	require.NoError(t, stores.Homework(class).Create(ctx, year))
	require.NoError(t, stores.Roster(class).Create(ctx))
	require.NoError(t, stores.Lessons(class).Init())
}
