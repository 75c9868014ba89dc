package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/classdesk/diary-api/internal/models"
)

// Version stamps live in a one-row "version" table inside each store file.
// The legacy schema is kept: version(Date TEXT, Version INTEGER).

const versionSchema = `CREATE TABLE IF NOT EXISTS version (Date TEXT, Version INTEGER)`

// BumpVersion increments the store revision and refreshes its timestamp.
// A missing table, a rowless table or a NULL revision all read as revision
// zero, so the first bump always writes revision 1.
func BumpVersion(ctx context.Context, db *sqlx.DB) (models.VersionStamp, error) {
	if _, err := db.ExecContext(ctx, versionSchema); err != nil {
		return models.VersionStamp{}, fmt.Errorf("ensure version table: %w", err)
	}

	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return models.VersionStamp{}, err
	}

	stamp := models.VersionStamp{
		Date:     time.Now().UTC().Format(time.DateTime),
		Revision: current.Revision + 1,
	}

	if current.Revision == 0 && current.Date == "" {
		if _, err := db.ExecContext(ctx, `INSERT INTO version (Date, Version) VALUES (?, ?)`, stamp.Date, stamp.Revision); err != nil {
			return models.VersionStamp{}, fmt.Errorf("seed version stamp: %w", err)
		}
		return stamp, nil
	}

	if _, err := db.ExecContext(ctx, `UPDATE version SET Date = ?, Version = ?`, stamp.Date, stamp.Revision); err != nil {
		return models.VersionStamp{}, fmt.Errorf("update version stamp: %w", err)
	}
	return stamp, nil
}

// CurrentVersion reads the store stamp; the zero value means the store has
// never been stamped.
func CurrentVersion(ctx context.Context, db *sqlx.DB) (models.VersionStamp, error) {
	var stamp struct {
		Date     sql.NullString `db:"Date"`
		Revision sql.NullInt64  `db:"Version"`
	}
	err := db.GetContext(ctx, &stamp, `SELECT Date, Version FROM version LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMissingTable(err) {
			return models.VersionStamp{}, nil
		}
		return models.VersionStamp{}, fmt.Errorf("read version stamp: %w", err)
	}

	return models.VersionStamp{Date: stamp.Date.String, Revision: int(stamp.Revision.Int64)}, nil
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
