package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelscout/modelscout/internal/fetch"
	"github.com/modelscout/modelscout/internal/sources"
	"github.com/modelscout/modelscout/internal/sources/hub"
	"github.com/modelscout/modelscout/internal/sources/library"
	"github.com/modelscout/modelscout/internal/sources/router"
	"github.com/modelscout/modelscout/internal/store"
	"github.com/modelscout/modelscout/pkg/catalog"
)

// fakeUpstreams serves all three sources from one handler.
func fakeUpstreams(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/models", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("author") != "acme" || r.URL.Query().Get("skip") != "0" {
			_, _ = w.Write([]byte("[]"))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":        "acme/model-a",
				"downloads": 10,
				"likes":     3,
				"tags":      []string{"llm"},
			},
		}))
	})

	mux.HandleFunc("/api/v1/models", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{
			"id": "acme/model-b",
			"context_length": 8192,
			"pricing": {"prompt": "0.000001", "completion": "0.000002"}
		}]}`))
	})

	mux.HandleFunc("/library", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<a href="/library/llama3">Llama 3</a>`))
	})

	return httptest.NewServer(mux)
}

func newTestCollector(t *testing.T, srv *httptest.Server, dbPath string) (*Collector, *store.Store) {
	t.Helper()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	fetcher := fetch.New(fetch.WithBackoff(0, 0))
	hubClient := hub.New(fetcher, hub.Config{
		BaseURL:      srv.URL,
		PageInterval: time.Nanosecond,
	})
	adapters := []sources.Adapter{
		router.New(fetcher, router.Config{BaseURL: srv.URL}),
		library.New(fetcher, library.Config{PageURL: srv.URL + "/library"}),
	}

	return New(st, hubClient, []string{"acme"}, adapters), st
}

func TestRunEndToEnd(t *testing.T) {
	srv := fakeUpstreams(t)
	defer srv.Close()

	c, st := newTestCollector(t, srv, filepath.Join(t.TempDir(), "ms.db"))
	ctx := context.Background()

	summary, err := c.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Organizations)
	assert.Equal(t, 1, summary.FetchedBySource[catalog.SourceHub])
	assert.Equal(t, 1, summary.FetchedBySource[catalog.SourceRouter])
	assert.Equal(t, 1, summary.FetchedBySource[catalog.SourceLibrary])
	assert.Equal(t, 3, summary.Merged, "distinct identities stay separate")
	assert.Equal(t, 3, summary.Upserted)
	assert.Equal(t, 1, summary.TasksEnqueued, "only the hub-origin record gets enrichment")
	assert.Zero(t, summary.SkippedListings)

	rawCount, err := st.RawCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, rawCount)

	records, err := st.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	var hubRec *catalog.Record
	for i := range records {
		if records[i].CanonicalID == "hub:acme-model-a" {
			hubRec = &records[i]
		}
	}
	require.NotNil(t, hubRec)
	assert.Equal(t, int64(10), hubRec.Downloads)
	assert.Equal(t, []catalog.Source{catalog.SourceHub}, hubRec.AvailableOn)

	tasks, err := st.PendingTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "hub:acme-model-a", tasks[0].CanonicalID)
	assert.Equal(t, catalog.TaskTypeFetchReadme, tasks[0].TaskType)
}

func TestRunIsIdempotent(t *testing.T) {
	srv := fakeUpstreams(t)
	defer srv.Close()

	dbPath := filepath.Join(t.TempDir(), "ms.db")
	c, st := newTestCollector(t, srv, dbPath)
	ctx := context.Background()

	_, err := c.Run(ctx)
	require.NoError(t, err)
	summary, err := c.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Upserted)

	count, err := st.CatalogCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "re-runs must never create duplicate catalog rows")

	rawCount, err := st.RawCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, rawCount, "re-runs overwrite raw snapshots in place")

	taskCount, err := st.TaskCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, taskCount, "duplicate task enqueue is tolerated, not duplicated")
}

func TestRunSourceFailureDegrades(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "acme/model-a"}]`))
	})
	mux.HandleFunc("/api/v1/models", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, _ := newTestCollector(t, srv, filepath.Join(t.TempDir(), "ms.db"))

	summary, err := c.Run(context.Background())
	require.NoError(t, err, "a failing source must not abort the run")
	assert.Equal(t, 1, summary.FetchedBySource[catalog.SourceHub])
	assert.Zero(t, summary.FetchedBySource[catalog.SourceRouter])
}
