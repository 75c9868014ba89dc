package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/diary-api/internal/models"
)

func newAccountMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAccountRepositoryFindByLogin(t *testing.T) {
	db, mock, cleanup := newAccountMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	rows := sqlmock.NewRows([]string{"login", "password", "role", "info"}).
		AddRow("ivanov", "$2a$10$hash", "student", "10A")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT login, password, role, info FROM users WHERE login = ? LIMIT 1")).
		WithArgs("ivanov").
		WillReturnRows(rows)

	account, err := repo.FindByLogin(context.Background(), "ivanov")
	require.NoError(t, err)
	assert.Equal(t, "ivanov", account.Login)
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.Equal(t, "10A", account.RoutingKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryFindByLoginMissing(t *testing.T) {
	db, mock, cleanup := newAccountMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT login, password, role, info FROM users").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAccountMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("petrova", "$2a$10$hash", "teacher", "Petrova,Anna,Sergeevna").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Account{
		Login:        "petrova",
		PasswordHash: "$2a$10$hash",
		Role:         models.RoleTeacher,
		RoutingKey:   "Petrova,Anna,Sergeevna",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryCreateDuplicateLogin(t *testing.T) {
	db, mock, cleanup := newAccountMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(sql.ErrConnDone)
	err := repo.Create(context.Background(), &models.Account{Login: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateLogin)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(assertUniqueErr{})
	err = repo.Create(context.Background(), &models.Account{Login: "x"})
	assert.ErrorIs(t, err, ErrDuplicateLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type assertUniqueErr struct{}

func (assertUniqueErr) Error() string { return "constraint failed: UNIQUE constraint failed: users.login" }

func TestAccountRepositoryList(t *testing.T) {
	db, mock, cleanup := newAccountMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	rows := sqlmock.NewRows([]string{"login", "password", "role", "info"}).
		AddRow("ivanov", "h1", "student", "10A").
		AddRow("sidorov", "h2", "student", "9B")
	mock.ExpectQuery("SELECT login, password, role, info FROM users WHERE role").
		WithArgs("student").
		WillReturnRows(rows)

	accounts, err := repo.List(context.Background(), models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "sidorov", accounts[1].Login)
	assert.NoError(t, mock.ExpectationsWereMet())
}
