package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncClassAddsColumnsEverywhere(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	year := time.Now().Year()
	provisionClass(t, stores, "10A", year)

	require.NoError(t, stores.Marks("10A", "ivanov").Create(ctx, year, nil))
	require.NoError(t, stores.Marks("10A", "sidorov").Create(ctx, year, nil))

	for _, lesson := range []string{"Maths", "Physics"} {
		_, err := stores.Lessons("10A").Register(lesson)
		require.NoError(t, err)
	}

	svc := NewSyncService(stores, nil, nil)
	report, err := svc.SyncClass(ctx, "10A")
	require.NoError(t, err)

	// Two lessons across the homework calendar and both marks stores.
	assert.Equal(t, 6, report.ColumnsAdded)
	assert.Equal(t, 3, report.StoresSynced)
	assert.Empty(t, report.Failures)

	cols, err := stores.Homework("10A").Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maths", "Physics"}, cols)

	cols, err = stores.Marks("10A", "ivanov").Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maths", "Physics"}, cols)
}

func TestSyncClassIsIdempotent(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	year := time.Now().Year()
	provisionClass(t, stores, "10A", year)
	require.NoError(t, stores.Marks("10A", "ivanov").Create(ctx, year, nil))

	_, err := stores.Lessons("10A").Register("Maths")
	require.NoError(t, err)

	svc := NewSyncService(stores, nil, nil)

	first, err := svc.SyncClass(ctx, "10A")
	require.NoError(t, err)
	assert.Equal(t, 2, first.ColumnsAdded)

	second, err := svc.SyncClass(ctx, "10A")
	require.NoError(t, err)
	assert.Zero(t, second.ColumnsAdded)
	assert.Equal(t, 2, second.StoresSynced)
}

func TestSyncClassEmptyRegistryIsNoop(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	provisionClass(t, stores, "10A", time.Now().Year())

	svc := NewSyncService(stores, nil, nil)
	report, err := svc.SyncClass(ctx, "10A")
	require.NoError(t, err)
	assert.Zero(t, report.ColumnsAdded)
	assert.Zero(t, report.StoresSynced)
}

func TestSyncClassCoversUnrosteredMarksStores(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)
	year := time.Now().Year()
	provisionClass(t, stores, "10A", year)

	// A marks store left behind by a half-finished enrollment still gets the
	// new columns.
	require.NoError(t, stores.Marks("10A", "orphan").Create(ctx, year, nil))

	_, err := stores.Lessons("10A").Register("Maths")
	require.NoError(t, err)

	svc := NewSyncService(stores, nil, nil)
	report, err := svc.SyncClass(ctx, "10A")
	require.NoError(t, err)
	assert.Equal(t, 2, report.ColumnsAdded)

	cols, err := stores.Marks("10A", "orphan").Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maths"}, cols)
}
