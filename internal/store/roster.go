package store

import (
	"context"
	"fmt"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/pkg/config"
	"github.com/classdesk/diary-api/pkg/database"
)

// RosterStore is the class list: one row per enrolled student.
type RosterStore struct {
	path string
	cfg  config.StorageConfig
}

func NewRosterStore(path string, cfg config.StorageConfig) *RosterStore {
	return &RosterStore{path: path, cfg: cfg}
}

// Path returns the underlying store file location.
func (s *RosterStore) Path() string { return s.path }

// Create initialises an empty roster and stamps the store.
func (s *RosterStore) Create(ctx context.Context) error {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	const ddl = `CREATE TABLE IF NOT EXISTS class_list(
		Name TEXT,
		Surname TEXT,
		Patronymic TEXT,
		Login TEXT)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create roster table: %w", err)
	}

	if _, err := BumpVersion(ctx, db); err != nil {
		return err
	}
	return nil
}

// Contains reports whether a student login is already on the roster.
func (s *RosterStore) Contains(ctx context.Context, login string) (bool, error) {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return false, err
	}
	defer db.Close() //nolint:errcheck

	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM class_list WHERE Login = ?`, login); err != nil {
		return false, fmt.Errorf("check roster login: %w", err)
	}
	return count > 0, nil
}

// Append adds a student row to the roster.
func (s *RosterStore) Append(ctx context.Context, entry models.RosterEntry) error {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	const query = `INSERT INTO class_list (Name, Surname, Patronymic, Login) VALUES (:Name, :Surname, :Patronymic, :Login)`
	if _, err := db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("append roster entry: %w", err)
	}

	if _, err := BumpVersion(ctx, db); err != nil {
		return err
	}
	return nil
}

// List returns the roster in insertion order.
func (s *RosterStore) List(ctx context.Context) ([]models.RosterEntry, error) {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck

	var entries []models.RosterEntry
	if err := db.SelectContext(ctx, &entries, `SELECT Name, Surname, Patronymic, Login FROM class_list`); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return entries, nil
}
