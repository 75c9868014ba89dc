package service

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/store"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

func entryNames(t *testing.T, data []byte) []string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func TestBuildStudentBundle(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	year := time.Now().Year()
	provisionClass(t, stores, "10A", year)
	require.NoError(t, stores.Marks("10A", "ivanov").Create(ctx, year, nil))

	dir := newFakeDirectory()
	require.NoError(t, dir.Create(ctx, &models.Account{Login: "ivanov", Role: models.RoleStudent, RoutingKey: "10A"}))

	svc := NewBundleService(stores, dir, nil, nil)
	bundle, err := svc.Build(ctx, "ivanov")
	require.NoError(t, err)

	assert.Equal(t, "ivanov_files.zip", bundle.Filename)
	assert.ElementsMatch(t, []string{"ivanov.db", "home_works.db", "time_table.db"}, bundle.Files)
	assert.ElementsMatch(t, bundle.Files, entryNames(t, bundle.Data))
}

func TestBuildStudentBundleToleratesMissingMarks(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	provisionClass(t, stores, "10A", time.Now().Year())

	dir := newFakeDirectory()
	require.NoError(t, dir.Create(ctx, &models.Account{Login: "ivanov", Role: models.RoleStudent, RoutingKey: "10A"}))

	svc := NewBundleService(stores, dir, nil, nil)
	bundle, err := svc.Build(ctx, "ivanov")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"home_works.db", "time_table.db"}, bundle.Files)
}

func TestBuildTeacherBundle(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	require.NoError(t, store.CreateTeacherStore(ctx, stores.Layout.TeacherPath("petrova"), stores.Cfg, []string{"10A"}))

	dir := newFakeDirectory()
	require.NoError(t, dir.Create(ctx, &models.Account{Login: "petrova", Role: models.RoleTeacher, RoutingKey: "Petrova,Anna,Sergeevna"}))

	svc := NewBundleService(stores, dir, nil, nil)
	bundle, err := svc.Build(ctx, "petrova")
	require.NoError(t, err)
	assert.Equal(t, []string{"petrova.db"}, bundle.Files)
}

func TestBuildBundleFailures(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	dir := newFakeDirectory()
	svc := NewBundleService(stores, dir, nil, nil)

	_, err := svc.Build(ctx, "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	// Known account, nothing on disk.
	require.NoError(t, dir.Create(ctx, &models.Account{Login: "root", Role: models.RoleAdmin, RoutingKey: "Director"}))
	_, err = svc.Build(ctx, "root")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
