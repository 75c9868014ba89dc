package store

import (
	"context"
	"fmt"

	"github.com/classdesk/diary-api/pkg/config"
	"github.com/classdesk/diary-api/pkg/database"
)

// Teacher and admin stores are the small per-login databases shipped to the
// desktop client on login.

// CreateTeacherStore initialises a teacher database seeded with the list of
// taught classes.
func CreateTeacherStore(ctx context.Context, path string, cfg config.StorageConfig, classes []string) error {
	db, err := database.Open(path, cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS classes (class_name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create teacher classes table: %w", err)
	}
	for _, class := range classes {
		if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO classes (class_name) VALUES (?)`, class); err != nil {
			return fmt.Errorf("seed teacher class %q: %w", class, err)
		}
	}

	if _, err := BumpVersion(ctx, db); err != nil {
		return err
	}
	return nil
}

// CreateAdminStore initialises the placeholder admin database.
func CreateAdminStore(ctx context.Context, path string, cfg config.StorageConfig) error {
	db, err := database.Open(path, cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS adm (id INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create admin table: %w", err)
	}

	if _, err := BumpVersion(ctx, db); err != nil {
		return err
	}
	return nil
}
