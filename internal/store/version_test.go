package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/pkg/database"
)

func TestVersionStampLifecycle(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "store.db"), testStorageConfig())
	require.NoError(t, err)
	defer db.Close()

	// An unstamped store reads as revision zero.
	stamp, err := CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, stamp.Revision)
	assert.Empty(t, stamp.Date)

	stamp, err = BumpVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, stamp.Revision)
	assert.NotEmpty(t, stamp.Date)

	stamp, err = BumpVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 2, stamp.Revision)

	current, err := CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Revision)
	assert.Equal(t, stamp.Date, current.Date)
}

func TestVersionRowlessTableReadsAsZero(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "store.db"), testStorageConfig())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE version (Date TEXT, Version INTEGER)`)
	require.NoError(t, err)

	stamp, err := CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, stamp.Revision)

	// The first bump over a rowless table still writes revision 1.
	stamp, err = BumpVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, stamp.Revision)
}

func TestRosterStoreAppendAndContains(t *testing.T) {
	ctx := context.Background()
	s := NewRosterStore(filepath.Join(t.TempDir(), "class_list.db"), testStorageConfig())
	require.NoError(t, s.Create(ctx))

	listed, err := s.Contains(ctx, "ivanov")
	require.NoError(t, err)
	assert.False(t, listed)

	entry := models.RosterEntry{Name: "Ivan", Surname: "Ivanov", Patronymic: "Ivanovich", Login: "ivanov"}
	require.NoError(t, s.Append(ctx, entry))

	listed, err = s.Contains(ctx, "ivanov")
	require.NoError(t, err)
	assert.True(t, listed)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ivanov", entries[0].Login)
	assert.Equal(t, "Ivanov", entries[0].Surname)
}
