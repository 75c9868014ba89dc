package service

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/store"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

func newUserService(t *testing.T) (*UserService, *ClassService, store.Stores, *fakeDirectory) {
	t.Helper()
	stores := newTestStores(t)
	registry, err := store.LoadClassRegistry(stores.Layout.ClassesPath())
	require.NoError(t, err)
	dir := newFakeDirectory()
	sync := NewSyncService(stores, nil, nil)
	classes := NewClassService(registry, stores, sync, nil, nil)
	enrollment := NewEnrollmentService(stores, dir, nil, nil)
	return NewUserService(stores, dir, enrollment, classes, nil, nil), classes, stores, dir
}

func TestAddStudentGoesThroughEnrollment(t *testing.T) {
	ctx := context.Background()
	svc, classes, _, dir := newUserService(t)

	require.NoError(t, classes.Create(ctx, CreateClassRequest{ClassName: "10A"}))

	report, err := svc.Add(ctx, AddUserRequest{
		Role:              "student",
		Login:             "ivanov",
		Password:          "secret",
		ClassName:         "10A",
		StudentName:       "Ivan",
		StudentSurname:    "Ivanov",
		StudentPatronymic: "Ivanovich",
	})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "ivanov", report.Login)

	account, err := dir.FindByLogin(ctx, "ivanov")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.Equal(t, "10A", account.RoutingKey)
}

func TestAddTeacher(t *testing.T) {
	ctx := context.Background()
	svc, _, stores, dir := newUserService(t)

	report, err := svc.Add(ctx, AddUserRequest{
		Role:              "teacher",
		Login:             "petrova",
		Password:          "secret",
		TeacherSurname:    "Petrova",
		TeacherName:       "Anna",
		TeacherPatronymic: "Sergeevna",
		Classes:           []string{"10A", "9B"},
	})
	require.NoError(t, err)
	assert.Nil(t, report)

	account, err := dir.FindByLogin(ctx, "petrova")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, account.Role)
	assert.Equal(t, "Petrova,Anna,Sergeevna", account.RoutingKey)

	_, err = os.Stat(stores.Layout.TeacherPath("petrova"))
	require.NoError(t, err)
}

func TestAddAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _, stores, dir := newUserService(t)

	_, err := svc.Add(ctx, AddUserRequest{
		Role:      "admin",
		Login:     "root",
		Password:  "secret",
		AdminName: "Director",
	})
	require.NoError(t, err)

	account, err := dir.FindByLogin(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, account.Role)
	assert.Equal(t, "Director", account.RoutingKey)

	_, err = os.Stat(stores.Layout.AdminPath("root"))
	require.NoError(t, err)
}

func TestAddUserValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _, dir := newUserService(t)

	_, err := svc.Add(ctx, AddUserRequest{Role: "wizard", Login: "x", Password: "y"})
	require.Error(t, err)

	_, err = svc.Add(ctx, AddUserRequest{Role: "teacher", Login: "petrova", Password: "secret"})
	require.Error(t, err)

	_, err = svc.Add(ctx, AddUserRequest{Role: "admin", Login: "root", Password: "secret"})
	require.Error(t, err)

	// Duplicate logins are refused.
	require.NoError(t, dir.Create(ctx, &models.Account{Login: "root", Role: models.RoleAdmin}))
	_, err = svc.Add(ctx, AddUserRequest{Role: "admin", Login: "root", Password: "secret", AdminName: "Director"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
