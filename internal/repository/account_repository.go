package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/classdesk/diary-api/internal/models"
)

// AccountRepository manages the global login directory.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository constructs an account repository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// EnsureSchema creates the users table when missing. The legacy column
// layout is preserved so existing login databases keep working.
func (r *AccountRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS users (
		login TEXT UNIQUE,
		password TEXT,
		role TEXT,
		info TEXT)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure users table: %w", err)
	}
	return nil
}

// FindByLogin returns the account for a login; sql.ErrNoRows when absent.
func (r *AccountRepository) FindByLogin(ctx context.Context, login string) (*models.Account, error) {
	const query = `SELECT login, password, role, info FROM users WHERE login = ? LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, login); err != nil {
		return nil, err
	}
	return &account, nil
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	const query = `INSERT INTO users (login, password, role, info) VALUES (:login, :password, :role, :info)`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLogin
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// List returns all accounts, optionally filtered by role.
func (r *AccountRepository) List(ctx context.Context, role models.Role) ([]models.Account, error) {
	query := `SELECT login, password, role, info FROM users`
	args := []interface{}{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, role)
	}
	var accounts []models.Account
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// ErrDuplicateLogin signals a login that is already taken.
var ErrDuplicateLogin = fmt.Errorf("login already exists")

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToUpper(err.Error()), "UNIQUE")
}
