package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/schema"
	"github.com/classdesk/diary-api/pkg/config"
	"github.com/classdesk/diary-api/pkg/database"
)

// MarksStore holds one student's grades: one row per calendar date of the
// current year, one TEXT column per lesson known at creation time, grown
// lazily by the schema synchronizer to match the lesson registry.
type MarksStore struct {
	path string
	cfg  config.StorageConfig
}

func NewMarksStore(path string, cfg config.StorageConfig) *MarksStore {
	return &MarksStore{path: path, cfg: cfg}
}

// Path returns the underlying store file location.
func (s *MarksStore) Path() string { return s.path }

// Exists reports whether the store file is already on disk.
func (s *MarksStore) Exists() (bool, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat marks store: %w", err)
	}
	return true, nil
}

// Create initialises the store with the date rows of the given year and one
// column per lesson, all grade cells NULL, then stamps it.
func (s *MarksStore) Create(ctx context.Context, year int, lessons []string) error {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	columns := []string{models.ReservedColumn + " TEXT"}
	for _, lesson := range lessons {
		if err := schema.ValidateName(lesson); err != nil {
			return err
		}
		columns = append(columns, schema.QuoteIdent(lesson)+" "+schema.TypeText)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS marks(%s)`, strings.Join(columns, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create marks table: %w", err)
	}

	var seeded int
	if err := db.GetContext(ctx, &seeded, `SELECT COUNT(*) FROM marks`); err != nil {
		return fmt.Errorf("probe marks rows: %w", err)
	}
	if seeded > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin marks seed: %w", err)
	}
	for _, date := range YearDates(year) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO marks (Date) VALUES (?)`, date); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed marks date %s: %w", date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit marks seed: %w", err)
	}

	if _, err := BumpVersion(ctx, db); err != nil {
		return err
	}
	return nil
}

// Columns returns the live lesson columns of the store.
func (s *MarksStore) Columns(ctx context.Context) ([]string, error) {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck

	cols, err := schema.Columns(ctx, db, "marks")
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
// column set, reporting how many were added. Idempotent.
func (s *MarksStore) SyncColumns(ctx context.Context, lessons []string) (int, error) {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return 0, err
	}
	defer db.Close() //nolint:errcheck

	cols, err := schema.Columns(ctx, db, "marks")
	if err != nil {
		return 0, err
	}

	added := 0
	for _, lesson := range lessons {
		if schema.Has(cols, lesson) {
			continue
		}
		if err := schema.AddColumn(ctx, db, "marks", schema.Column{Name: lesson, Type: schema.TypeText}); err != nil {
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

// SetMark writes a grade into the date/lesson cell, returning the number of
// rows updated. The lesson must already exist as a column; zero updated
// rows means the date row is missing or malformed.
func (s *MarksStore) SetMark(ctx context.Context, date, lesson, value string) (int64, error) {
	if err := schema.ValidateName(lesson); err != nil {
		return 0, err
	}

	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return 0, err
	}
	defer db.Close() //nolint:errcheck

	cols, err := schema.Columns(ctx, db, "marks")
	if err != nil {
		return 0, err
	}
	if !schema.Has(cols, lesson) {
		return 0, errLessonColumnMissing(lesson)
	}

	stmt := fmt.Sprintf(`UPDATE marks SET %s = ? WHERE Date = ?`, schema.QuoteIdent(lesson))
	res, err := db.ExecContext(ctx, stmt, value, date)
	if err != nil {
		return 0, fmt.Errorf("set mark: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set mark rowcount: %w", err)
	}

	if affected > 0 {
		if _, err := BumpVersion(ctx, db); err != nil {
			return affected, err
		}
	}
	return affected, nil
}

// MarksFor returns lesson name to grade for every lesson column on the
// given date; ungraded cells map to the empty string. A missing date row
// yields an empty map, not an error.
func (s *MarksStore) MarksFor(ctx context.Context, date string) (map[string]string, error) {
	db, err := database.Open(s.path, s.cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck

	cols, err := schema.Columns(ctx, db, "marks")
	if err != nil {
		return nil, err
	}

	grades := make(map[string]string)
	row := db.QueryRowxContext(ctx, `SELECT * FROM marks WHERE Date = ?`, date)
	cells := make(map[string]interface{})
	if err := row.MapScan(cells); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grades, nil
		}
		return nil, fmt.Errorf("read marks row %s: %w", date, err)
	}

	for _, c := range cols {
		if c.Name == models.ReservedColumn {
			continue
		}
		grades[c.Name] = cellString(cells[c.Name])
	}
	return grades, nil
}

func errLessonColumnMissing(lesson string) error {
	return fmt.Errorf("lesson column %q not present: %w", lesson, errSchemaLag)
}

// errSchemaLag marks writes attempted before the schema synchronizer has
// caught the store up with the lesson registry.
var errSchemaLag = errors.New("store schema lags the lesson registry")

// IsSchemaLag reports whether the error came from a missing lesson column.
func IsSchemaLag(err error) bool {
	return errors.Is(err, errSchemaLag)
}
