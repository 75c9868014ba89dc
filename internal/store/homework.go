package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/schema"
	"github.com/classdesk/diary-api/pkg/config"
	"github.com/classdesk/diary-api/pkg/database"
)

// HomeworkStore is the class homework calendar: one row per calendar date of
// the current year, one TEXT column per registered lesson, added lazily by
// the schema synchronizer.
type HomeworkStore struct {
	path string
	cfg  config.StorageConfig
}

func NewHomeworkStore(path string, cfg config.StorageConfig) *HomeworkStore {
	return &HomeworkStore{path: path, cfg: cfg}
}

// Path returns the underlying store file location.
func (s *HomeworkStore) Path() string { return s.path }

// Create initialises the calendar with one row per date of the given year
// and zero lesson columns, then stamps the store.
func (s *HomeworkStore) Create(ctx context.Context, year int) error {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS home_work(Date TEXT)`); err != nil {
		return fmt.Errorf("create homework table: %w", err)
	}

	// A retried create must not duplicate the calendar: one row per date.
	var seeded int
	if err := db.GetContext(ctx, &seeded, `SELECT COUNT(*) FROM home_work`); err != nil {
		return fmt.Errorf("probe homework rows: %w", err)
	}
	if seeded > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin homework seed: %w", err)
	}
	for _, date := range YearDates(year) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO home_work (Date) VALUES (?)`, date); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed homework date %s: %w", date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit homework seed: %w", err)
	}

	if _, err := BumpVersion(ctx, db); err != nil {
		return err
	}
	return nil
}

// Columns returns the live lesson columns (the reserved date column is
// excluded).
func (s *HomeworkStore) Columns(ctx context.Context) ([]string, error) {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck

	cols, err := schema.Columns(ctx, db, "home_work")
	if err != nil {
		return nil, err
	}
	lessons := make([]string, 0, len(cols))
	for _, c := range cols {
		if c.Name != models.ReservedColumn {
			lessons = append(lessons, c.Name)
		}
	}
	return lessons, nil
}

// SyncColumns adds a TEXT column for every lesson missing from the live
// column set and reports how many columns were added. Existing columns are
// never touched, so running it again is a no-op.
func (s *HomeworkStore) SyncColumns(ctx context.Context, lessons []string) (int, error) {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return 0, err
	}
	defer db.Close() //nolint:errcheck

	cols, err := schema.Columns(ctx, db, "home_work")
	if err != nil {
		return 0, err
	}

	added := 0
	for _, lesson := range lessons {
		if schema.Has(cols, lesson) {
			continue
		}
		if err := schema.AddColumn(ctx, db, "home_work", schema.Column{Name: lesson, Type: schema.TypeText}); err != nil {
			return added, err
		}
		added++
	}

	if added > 0 {
		if _, err := BumpVersion(ctx, db); err != nil {
			return added, err
		}
	}
	return added, nil
}

// SetText upserts the homework text for one date/lesson cell and returns
// the number of rows changed.
func (s *HomeworkStore) SetText(ctx context.Context, date, lesson, text string) (int64, error) {
	if err := schema.ValidateName(lesson); err != nil {
		return 0, err
	}

	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return 0, err
	}
	defer db.Close() //nolint:errcheck

	cols, err := schema.Columns(ctx, db, "home_work")
	if err != nil {
		return 0, err
	}
	if !schema.Has(cols, lesson) {
		return 0, errLessonColumnMissing(lesson)
	}

	stmt := fmt.Sprintf(`UPDATE home_work SET %s = ? WHERE Date = ?`, schema.QuoteIdent(lesson))
	res, err := db.ExecContext(ctx, stmt, text, date)
	if err != nil {
		return 0, fmt.Errorf("set homework: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set homework rowcount: %w", err)
	}

	if affected > 0 {
		if _, err := BumpVersion(ctx, db); err != nil {
			return affected, err
		}
	}
	return affected, nil
}

// DayTexts returns lesson name to homework text for the given date; lessons
// without homework map to the empty string. A missing date row yields an
// empty map.
func (s *HomeworkStore) DayTexts(ctx context.Context, date string) (map[string]string, error) {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck

	cols, err := schema.Columns(ctx, db, "home_work")
	if err != nil {
		return nil, err
	}

	texts := make(map[string]string)
	row := db.QueryRowxContext(ctx, `SELECT * FROM home_work WHERE Date = ?`, date)
	cells := make(map[string]interface{})
	if err := row.MapScan(cells); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return texts, nil
		}
		return nil, fmt.Errorf("read homework row %s: %w", date, err)
	}

	for _, c := range cols {
		if c.Name == models.ReservedColumn {
			continue
		}
		texts[c.Name] = cellString(cells[c.Name])
	}
	return texts, nil
}

func cellString(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []byte:
		return string(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
