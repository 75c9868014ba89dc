package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/schema"
	"github.com/classdesk/diary-api/pkg/config"
	"github.com/classdesk/diary-api/pkg/database"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

// TimetableStore is the fixed 7x15 grid of lesson-slot assignments for one
// class. Slot numbers map onto the pre-seeded row ids 1..15.
type TimetableStore struct {
	path string
	cfg  config.StorageConfig
}

func NewTimetableStore(path string, cfg config.StorageConfig) *TimetableStore {
	return &TimetableStore{path: path, cfg: cfg}
}

// Path returns the underlying store file location.
func (s *TimetableStore) Path() string { return s.path }

// Create initialises the store with fifteen empty slot rows and stamps it.
func (s *TimetableStore) Create(ctx context.Context) error {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	const ddl = `CREATE TABLE IF NOT EXISTS time_table(
		id INTEGER PRIMARY KEY,
		Monday TEXT,
		Tuesday TEXT,
		Wednesday TEXT,
		Thursday TEXT,
		Friday TEXT,
		Saturday TEXT,
		Sunday TEXT)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create timetable table: %w", err)
	}

	// A retried create after a partial class provisioning finds the grid
	// already seeded; re-seeding would collide with the fixed row ids.
	var seeded int
	if err := db.GetContext(ctx, &seeded, `SELECT COUNT(*) FROM time_table`); err != nil {
		return fmt.Errorf("probe timetable rows: %w", err)
	}
	if seeded > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timetable seed: %w", err)
	}
	for slot := models.MinSlot; slot <= models.MaxSlot; slot++ {
		if _, err := tx.ExecContext(ctx, `INSERT INTO time_table (id) VALUES (?)`, slot); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed timetable slot %d: %w", slot, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable seed: %w", err)
	}

	if _, err := BumpVersion(ctx, db); err != nil {
		return err
	}
	return nil
}

// Assign writes a lesson name into the given weekday/slot cell and returns
// the number of rows changed. The slot identifies a pre-seeded row, so
// anything other than exactly one changed row is an inconsistency the
// caller must surface.
func (s *TimetableStore) Assign(ctx context.Context, weekday string, slot int, lesson string) (int64, error) {
	if !models.IsWeekday(weekday) {
		return 0, appErrors.Clone(appErrors.ErrInvalidWeekday, fmt.Sprintf("unknown weekday %q", weekday))
	}

	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return 0, err
	}
	defer db.Close() //nolint:errcheck

	stmt := fmt.Sprintf(`UPDATE time_table SET %s = ? WHERE id = ?`, schema.QuoteIdent(weekday))
	res, err := db.ExecContext(ctx, stmt, lesson, slot)
	if err != nil {
		return 0, fmt.Errorf("assign lesson: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("assign lesson rowcount: %w", err)
	}
	if affected == 0 {
		return 0, nil
	}

	if _, err := BumpVersion(ctx, db); err != nil {
		return affected, err
	}
	return affected, nil
}

// DayColumn returns the fifteen slot cells of one weekday in slot order.
// Empty cells come back as empty strings.
func (s *TimetableStore) DayColumn(ctx context.Context, weekday string) ([]string, error) {
	if !models.IsWeekday(weekday) {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeekday, fmt.Sprintf("unknown weekday %q", weekday))
	}

	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck

	return s.dayColumn(ctx, db, weekday)
}

func (s *TimetableStore) dayColumn(ctx context.Context, db *sqlx.DB, weekday string) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_table ORDER BY id`, schema.QuoteIdent(weekday))
	var cells []sql.NullString
	if err := db.SelectContext(ctx, &cells, query); err != nil {
		return nil, fmt.Errorf("read timetable column %s: %w", weekday, err)
	}

	lessons := make([]string, models.MaxSlot)
	for i := 0; i < len(cells) && i < models.MaxSlot; i++ {
		lessons[i] = cells[i].String
	}
	return lessons, nil
}

// Version exposes the store stamp for diagnostics.
func (s *TimetableStore) Version(ctx context.Context) (models.VersionStamp, error) {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return models.VersionStamp{}, err
	}
	defer db.Close() //nolint:errcheck

	return CurrentVersion(ctx, db)
}
