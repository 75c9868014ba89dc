package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearDates(t *testing.T) {
	assert.Len(t, YearDates(2023), 365)
	assert.Len(t, YearDates(2024), 366)

	dates := YearDates(2024)
	assert.Equal(t, "2024-01-01", dates[0])
	assert.Equal(t, "2024-02-29", dates[59])
	assert.Equal(t, "2024-12-31", dates[len(dates)-1])
}

func TestHomeworkStoreCreateSeedsCalendar(t *testing.T) {
	ctx := context.Background()
	s := NewHomeworkStore(filepath.Join(t.TempDir(), "home_works.db"), testStorageConfig())

	require.NoError(t, s.Create(ctx, 2024))

	lessons, err := s.Columns(ctx)
	require.NoError(t, err)
	assert.Empty(t, lessons)

	// A fresh calendar has the date row but no lesson cells yet.
	texts, err := s.DayTexts(ctx, "2024-02-29")
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestHomeworkStoreCreateIsRetryable(t *testing.T) {
	ctx := context.Background()
	s := NewHomeworkStore(filepath.Join(t.TempDir(), "home_works.db"), testStorageConfig())
	require.NoError(t, s.Create(ctx, 2024))

	_, err := s.SyncColumns(ctx, []string{"Maths"})
	require.NoError(t, err)

	// A retried create must not re-seed the calendar.
	require.NoError(t, s.Create(ctx, 2024))

	// Exactly one row per date: a duplicated calendar would update two rows.
	affected, err := s.SetText(ctx, "2024-03-01", "Maths", "p. 12")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestHomeworkStoreSyncColumnsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewHomeworkStore(filepath.Join(t.TempDir(), "home_works.db"), testStorageConfig())
	require.NoError(t, s.Create(ctx, 2024))

	added, err := s.SyncColumns(ctx, []string{"Maths", "Physics"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = s.SyncColumns(ctx, []string{"Maths", "Physics"})
	require.NoError(t, err)
	assert.Zero(t, added)

	added, err = s.SyncColumns(ctx, []string{"Maths", "Physics", "History"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	lessons, err := s.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maths", "Physics", "History"}, lessons)
}

func TestHomeworkStoreSetTextRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewHomeworkStore(filepath.Join(t.TempDir(), "home_works.db"), testStorageConfig())
	require.NoError(t, s.Create(ctx, 2024))

	_, err := s.SyncColumns(ctx, []string{"Maths"})
	require.NoError(t, err)

	affected, err := s.SetText(ctx, "2024-03-01", "Maths", "ex. 1-5 p. 40")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	texts, err := s.DayTexts(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "ex. 1-5 p. 40", texts["Maths"])

	// A date outside the seeded year has no row; nothing is written.
	affected, err = s.SetText(ctx, "2030-01-01", "Maths", "never lands")
	require.NoError(t, err)
	assert.Zero(t, affected)

	texts, err = s.DayTexts(ctx, "2030-01-01")
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestHomeworkStoreSetTextBeforeSync(t *testing.T) {
	ctx := context.Background()
	s := NewHomeworkStore(filepath.Join(t.TempDir(), "home_works.db"), testStorageConfig())
	require.NoError(t, s.Create(ctx, 2024))

	// The lesson has no column yet; the caller gets the schema-lag signal,
	// not a raw SQL error.
	_, err := s.SetText(ctx, "2024-03-01", "Maths", "p. 12")
	require.Error(t, err)
	assert.True(t, IsSchemaLag(err))
}

func TestHomeworkStoreLessonNamesAreQuoted(t *testing.T) {
	ctx := context.Background()
	s := NewHomeworkStore(filepath.Join(t.TempDir(), "home_works.db"), testStorageConfig())
	require.NoError(t, s.Create(ctx, 2024))

	name := `PE "outdoor"; DROP TABLE home_work`
	added, err := s.SyncColumns(ctx, []string{name})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	affected, err := s.SetText(ctx, "2024-05-10", name, "bring kit")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	texts, err := s.DayTexts(ctx, "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, "bring kit", texts[name])
}
