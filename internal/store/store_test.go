package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelscout/modelscout/pkg/catalog"
	"github.com/modelscout/modelscout/pkg/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "modelscout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfig(err))
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "modelscout.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestOpenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modelscout.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestSaveListingUpsertsOnTuple(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	l := catalog.Listing{
		Name:        "model-a",
		ModelID:     "org/model-a",
		HubID:       "org/model-a",
		Source:      catalog.SourceHub,
		Downloads:   10,
		CanonicalID: "hub:org-model-a",
	}
	require.NoError(t, s.SaveListing(ctx, &l))

	l.Downloads = 25
	require.NoError(t, s.SaveListing(ctx, &l))

	n, err := s.RawCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "re-saving the same tuple must overwrite, not append")

	stored, err := s.RawListings(ctx, catalog.SourceHub)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(25), stored[0].Downloads)
}

func TestSaveListingDistinctSourcesKept(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	hub := catalog.Listing{ModelID: "org/model-a", Source: catalog.SourceHub, CanonicalID: "org:model-a"}
	router := catalog.Listing{ModelID: "org/model-a", Source: catalog.SourceRouter, CanonicalID: "org:model-a"}
	require.NoError(t, s.SaveListing(ctx, &hub))
	require.NoError(t, s.SaveListing(ctx, &router))

	n, err := s.RawCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func testRecord(id string, downloads int64) catalog.Record {
	return catalog.Record{
		Listing: catalog.Listing{
			Name:        "model",
			ModelID:     id,
			Downloads:   downloads,
			CanonicalID: id,
		},
		AvailableOn:   []catalog.Source{catalog.SourceHub},
		SourcesMerged: 1,
		UpdatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsertCatalogIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	records := []catalog.Record{testRecord("hub:a", 10), testRecord("hub:b", 20)}

	n, err := s.UpsertCatalog(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Second run with updated values: still two rows, latest values win.
	records[0].Downloads = 99
	n, err = s.UpsertCatalog(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := s.CatalogCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := s.Records(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, int64(99), stored[0].Downloads)
}

func TestUpsertCatalogManyBatches(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var records []catalog.Record
	for i := 0; i < UpsertBatchSize+50; i++ {
		records = append(records, testRecord(fmt.Sprintf("hub:model-%d", i), int64(i)))
	}

	n, err := s.UpsertCatalog(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, len(records), n)

	count, err := s.CatalogCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(records), count)
}

func TestEnqueueTaskDuplicateIsSuccess(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	task := catalog.EnrichmentTask{
		TaskType:    catalog.TaskTypeFetchReadme,
		CanonicalID: "hub:org-model-a",
		SourceURL:   "https://hub.example.com/org/model-a",
		ModelID:     "org/model-a",
		Status:      catalog.TaskStatusPending,
		ScheduledAt: time.Now(),
	}

	require.NoError(t, s.EnqueueTask(ctx, &task))
	require.NoError(t, s.EnqueueTask(ctx, &task), "duplicate enqueue must be success by contract")

	n, err := s.TaskCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tasks, err := s.PendingTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, catalog.TaskTypeFetchReadme, tasks[0].TaskType)
	assert.Equal(t, "org/model-a", tasks[0].ModelID)
}

func TestEnqueueTaskDistinctModels(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"hub:a", "hub:b"} {
		task := catalog.EnrichmentTask{
			TaskType:    catalog.TaskTypeFetchReadme,
			CanonicalID: id,
			Status:      catalog.TaskStatusPending,
			ScheduledAt: time.Now(),
		}
		require.NoError(t, s.EnqueueTask(ctx, &task))
	}

	n, err := s.TaskCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
