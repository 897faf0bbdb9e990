package store

import (
	"context"
	"time"

	"github.com/modelscout/modelscout/pkg/catalog"
	"github.com/modelscout/modelscout/pkg/errors"
)

const timeFormat = time.RFC3339Nano

// EnqueueTask inserts an enrichment task. Idempotence is a property
// of this method: a uniqueness violation on (task_type, canonical_id)
// means the task already exists and counts as success. The queue's
// consumer owns dedup beyond that.
func (s *Store) EnqueueTask(ctx context.Context, t *catalog.EnrichmentTask) error {
	err := s.execWithRetry(ctx, `
		INSERT INTO enrichment_tasks (task_type, canonical_id, source_url, model_id, status, scheduled_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.TaskType, t.CanonicalID, t.SourceURL, t.ModelID, t.Status,
		t.ScheduledAt.UTC().Format(timeFormat),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil
		}
		return errors.WrapStore("enqueue", "enrichment_tasks", t.CanonicalID, err)
	}
	return nil
}

// PendingTasks returns queued tasks awaiting the enrichment worker.
func (s *Store) PendingTasks(ctx context.Context) ([]catalog.EnrichmentTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_type, canonical_id, source_url, model_id, status, scheduled_at
		FROM enrichment_tasks WHERE status = ? ORDER BY id`,
		catalog.TaskStatusPending)
	if err != nil {
		return nil, errors.WrapStore("query", "enrichment_tasks", "", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []catalog.EnrichmentTask
	for rows.Next() {
		var t catalog.EnrichmentTask
		var scheduled string
		if err := rows.Scan(&t.TaskType, &t.CanonicalID, &t.SourceURL, &t.ModelID, &t.Status, &scheduled); err != nil {
			return nil, errors.WrapStore("query", "enrichment_tasks", "", err)
		}
		if ts, err := time.Parse(timeFormat, scheduled); err == nil {
			t.ScheduledAt = ts
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// TaskCount returns the total number of queued tasks.
func (s *Store) TaskCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM enrichment_tasks").Scan(&n)
	return n, errors.WrapStore("query", "enrichment_tasks", "", err)
}
