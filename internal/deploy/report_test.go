package deploy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore_SaveAndLoad(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	report := &Report{
		ID:      NewRunID(),
		App:     "crushbase-backend",
		Session: "crushbase_backend",
		Success: true,
		Steps: []StepReport{
			{Name: "clone", Status: StepOK, Duration: 3 * time.Second},
		},
	}

	require.NoError(t, store.Save(report))

	loaded, err := store.Load(report.ID)
	require.NoError(t, err)

	assert.Equal(t, report.App, loaded.App)
	assert.Len(t, loaded.Steps, 1)
	assert.Equal(t, StepOK, loaded.Steps[0].Status)
}

func TestHistoryStore_SaveRequiresID(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Save(&Report{}))
}

func TestHistoryStore_LoadMissing(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("01JUNKJUNKJUNKJUNKJUNKJUNK")
	assert.Error(t, err)
}

func TestHistoryStore_ListNewestFirst(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	var ids []string

	for i := 0; i < 3; i++ {
		report := &Report{ID: NewRunID(), App: "crushbase-backend"}
		require.NoError(t, store.Save(report))

		ids = append(ids, report.ID)

		// ULIDs created in the same millisecond still sort by entropy;
		// spacing them out keeps the order deterministic
		time.Sleep(2 * time.Millisecond)
	}

	reports, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, ids[2], reports[0].ID)
	assert.Equal(t, ids[0], reports[2].ID)
}

func TestHistoryStore_ListHonorsLimit(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(&Report{ID: NewRunID()}))
		time.Sleep(2 * time.Millisecond)
	}

	reports, err := store.List(2)
	require.NoError(t, err)

	assert.Len(t, reports, 2)
}

func TestNewRunID_IsSortable(t *testing.T) {
	first := NewRunID()
	time.Sleep(2 * time.Millisecond)
	second := NewRunID()

	assert.Less(t, first, second)
}
